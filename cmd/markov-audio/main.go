package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Yochien/markov-audio-generator/audio"
	"github.com/Yochien/markov-audio-generator/config"
	"github.com/Yochien/markov-audio-generator/fsm"
	"github.com/Yochien/markov-audio-generator/generator"
)

const defaultOutput = "../output/markov_audio.wav"

type options struct {
	output string
	format string
	seed   int64
	play   bool
	debug  bool
}

func main() {
	if err := execute(newRootCmd()); err != nil {
		os.Exit(1)
	}
}

// execute runs cmd and prints any error, usage errors included, to its stderr
func execute(cmd *cobra.Command) error {
	err := cmd.Execute()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "markov-audio <fsm.json> <config.yaml>",
		Short: "Generate audio by walking a weighted state machine",
		Long: `Walks the FSM from its first state until an accepting state or the step cap,
picks one random sample per visited state and writes the concatenated clip.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logFile := setupLogging(opts.debug)
			if logFile != nil {
				defer logFile.Close()
			}

			return run(cmd, args[0], args[1], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", defaultOutput, "location and name of the generated audio file")
	flags.StringVar(&opts.format, "format", audio.KindWAV, "container format of the generated file")
	flags.Int64Var(&opts.seed, "seed", 0, "random seed; overrides the config and environment when set")
	flags.BoolVar(&opts.play, "play", false, "play the result after exporting")
	flags.BoolVar(&opts.debug, "debug", false, "verbose logging mirrored to logs/"+logFileName)

	return cmd
}

func run(cmd *cobra.Command, fsmPath, configPath string, opts options) error {
	machine, err := fsm.LoadFile(fsmPath)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if !opts.debug {
		level, err := config.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logLevel.Set(level)
	}

	var genOpts []generator.Option
	if cmd.Flags().Changed("seed") {
		genOpts = append(genOpts, generator.WithSeed(opts.seed))
	}

	gen, err := generator.New(machine, cfg, genOpts...)
	if err != nil {
		return err
	}

	res, err := gen.Generate()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	report(out, res)

	if err := res.Export(opts.output, opts.format); err != nil {
		return err
	}
	slog.Info("audio exported", "path", opts.output, "duration", res.Duration(), "seed", res.Seed)

	if opts.play {
		if err := audio.Play(res.Clip); err != nil {
			return fmt.Errorf("playback failed: %w", err)
		}
	}
	return nil
}

// report prints the cap advisory and the visited states
func report(w io.Writer, res *generator.Result) {
	if res.CapReached() {
		fmt.Fprintln(w, "Audio generation ended early due to reaching maximum allowed cycles.")
		fmt.Fprintln(w, "Raise this in your config if this is stopping you from generating the length of piece you want.")
	}
	if res.Truncated() {
		fmt.Fprintln(w, "The walk stopped before reaching an accepting state.")
	}
	if res.BelowMinimum() {
		fmt.Fprintf(w, "Walk length %d is below minimum_simulation_length.\n", res.Walk.Len())
	}
	fmt.Fprintf(w, "Generated states: %s\n", strings.Join(res.States, ", "))
}
