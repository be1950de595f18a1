package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Yochien/markov-audio-generator/config"
	"github.com/Yochien/markov-audio-generator/fsm"
)

const defaultOutput = "../output/sound_config_template.yaml"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "markov-config <fsm.json>",
		Short: "Write a template sound config for an FSM",
		Long: `Reads the state names of an FSM and writes a config with one sample group
per state, each filled with placeholder sources.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			states, err := fsm.StateNames(args[0])
			if err != nil {
				return err
			}

			if err := config.Save(config.Template(states), output); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s with %d state groups\n", output, len(states))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", defaultOutput, "location and name of the template file")
	return cmd
}
