package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Env holds overrides read from the process environment
// Unset variables leave the file value in place
type Env struct {
	Seed       *int64   `env:"MARKOV_AUDIO_SEED"`
	SampleRate *int     `env:"MARKOV_AUDIO_SAMPLE_RATE"`
	Gain       *float64 `env:"MARKOV_AUDIO_GAIN"`
	LogLevel   string   `env:"MARKOV_AUDIO_LOG_LEVEL"`
}

// Load reads, decodes, overrides from the environment and validates a config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	cfg, err := FromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Dir = filepath.Dir(path)

	var overrides Env
	if err := env.Parse(&overrides); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	overrides.Apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses a YAML document, rejecting unknown keys
// Empty input decodes to an empty document
func Decode(data []byte) (Document, error) {
	var doc Document

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return Document{}, err
	}
	return doc, nil
}

// Apply copies every set override into cfg
func (e Env) Apply(cfg *Config) {
	if e.Seed != nil {
		cfg.Seed = *e.Seed
	}
	if e.SampleRate != nil {
		cfg.Output.SampleRate = *e.SampleRate
	}
	if e.Gain != nil {
		cfg.Output.Gain = *e.Gain
	}
	if e.LogLevel != "" {
		cfg.LogLevel = e.LogLevel
	}
}
