package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Template values written for a fresh FSM
const (
	TemplateMinLength = 1
	TemplateMaxLength = 999
	GroupSuffix       = "_choices"
)

// PlaceholderSources fills every generated group until real samples are chosen
var PlaceholderSources = []string{
	"../samples/filename1",
	"../samples/filename2",
	"../samples/filename3",
}

// GroupName derives the template group of a state
func GroupName(state string) string {
	return state + GroupSuffix
}

// Template builds a skeleton document with one group per state
func Template(states []string) Document {
	minLength, maxLength := TemplateMinLength, TemplateMaxLength

	stateGroups := make(map[string]string, len(states))
	groupSources := make(map[string][]string, len(states))
	for _, state := range states {
		group := GroupName(state)
		stateGroups[state] = group
		groupSources[group] = append([]string(nil), PlaceholderSources...)
	}

	return Document{
		MinimumSimulationLength: &minLength,
		MaximumSimulationLength: &maxLength,
		StateGroupMap:           stateGroups,
		GroupAudioMap:           groupSources,
	}
}

// Marshal encodes a document as YAML
func Marshal(doc Document) ([]byte, error) {
	return yaml.Marshal(doc)
}

// Save writes a document, creating parent directories as needed
func Save(doc Document, path string) error {
	data, err := Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
