// Package config loads and validates the generator configuration.
//
// The on-disk document is YAML. Values are layered as defaults, then file,
// then environment overrides, and validated once before anything else runs.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
)

// Sentinel errors
var (
	ErrMissingKey   = errors.New("missing required key")
	ErrInvalidValue = errors.New("invalid value")
)

// Document keys
const (
	KeyMinLength     = "minimum_simulation_length"
	KeyMaxLength     = "maximum_simulation_length"
	KeyStateGroupMap = "state_group_map"
	KeyGroupAudioMap = "group_audio_map"
)

// Output defaults
const (
	DefaultSampleRate = 44100
	DefaultChannels   = 2
	DefaultPrecision  = 2
	DefaultGain       = 1.0
	DefaultLogLevel   = "warn"
)

// Document is the on-disk schema
// Pointer fields distinguish an absent key from a zero value
type Document struct {
	MinimumSimulationLength *int                `yaml:"minimum_simulation_length"`
	MaximumSimulationLength *int                `yaml:"maximum_simulation_length"`
	StateGroupMap           map[string]string   `yaml:"state_group_map"`
	GroupAudioMap           map[string][]string `yaml:"group_audio_map"`
	Seed                    int64               `yaml:"seed,omitempty"`
	LogLevel                string              `yaml:"log_level,omitempty"`
	Output                  *OutputDocument     `yaml:"output,omitempty"`
}

// OutputDocument is the optional output section; zero fields take defaults
type OutputDocument struct {
	SampleRate int      `yaml:"sample_rate,omitempty"`
	Channels   int      `yaml:"channels,omitempty"`
	Precision  int      `yaml:"precision,omitempty"`
	Gain       *float64 `yaml:"gain,omitempty"`
}

// Output describes the exported audio
type Output struct {
	SampleRate int     // Hz
	Channels   int     // 1 or 2
	Precision  int     // Bytes per sample, 1..3
	Gain       float64 // Linear amplitude factor
}

// Config is the validated configuration passed to every component
type Config struct {
	MinLength    int
	MaxLength    int
	StateGroups  map[string]string   // State name -> group name
	GroupSources map[string][]string // Group name -> clip locations
	Seed         int64               // 0 = time-seeded
	LogLevel     string
	Output       Output

	// Dir is the directory of the loaded file; relative sources resolve against it
	Dir string
}

// Default returns a config with every optional field set
func Default() *Config {
	return &Config{
		StateGroups:  make(map[string]string),
		GroupSources: make(map[string][]string),
		LogLevel:     DefaultLogLevel,
		Output: Output{
			SampleRate: DefaultSampleRate,
			Channels:   DefaultChannels,
			Precision:  DefaultPrecision,
			Gain:       DefaultGain,
		},
	}
}

// FromDocument layers a decoded document over the defaults
// Required keys that are absent are reported together
func FromDocument(doc Document) (*Config, error) {
	var missing []error
	if doc.MinimumSimulationLength == nil {
		missing = append(missing, fmt.Errorf("%w: %s", ErrMissingKey, KeyMinLength))
	}
	if doc.MaximumSimulationLength == nil {
		missing = append(missing, fmt.Errorf("%w: %s", ErrMissingKey, KeyMaxLength))
	}
	if doc.StateGroupMap == nil {
		missing = append(missing, fmt.Errorf("%w: %s", ErrMissingKey, KeyStateGroupMap))
	}
	if doc.GroupAudioMap == nil {
		missing = append(missing, fmt.Errorf("%w: %s", ErrMissingKey, KeyGroupAudioMap))
	}
	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}

	cfg := Default()
	cfg.MinLength = *doc.MinimumSimulationLength
	cfg.MaxLength = *doc.MaximumSimulationLength
	cfg.StateGroups = doc.StateGroupMap
	cfg.GroupSources = doc.GroupAudioMap
	cfg.Seed = doc.Seed
	if doc.LogLevel != "" {
		cfg.LogLevel = doc.LogLevel
	}

	if out := doc.Output; out != nil {
		if out.SampleRate != 0 {
			cfg.Output.SampleRate = out.SampleRate
		}
		if out.Channels != 0 {
			cfg.Output.Channels = out.Channels
		}
		if out.Precision != 0 {
			cfg.Output.Precision = out.Precision
		}
		if out.Gain != nil {
			cfg.Output.Gain = *out.Gain
		}
	}

	return cfg, nil
}

// Validate checks ranges and cross-references between the two maps
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidValue, fmt.Sprintf(format, args...)))
	}

	if c.MinLength < 0 {
		invalid("%s must be >= 0, got %d", KeyMinLength, c.MinLength)
	}
	if c.MaxLength < 1 {
		invalid("%s must be >= 1, got %d", KeyMaxLength, c.MaxLength)
	}
	if c.MaxLength < c.MinLength {
		invalid("%s (%d) must be >= %s (%d)", KeyMaxLength, c.MaxLength, KeyMinLength, c.MinLength)
	}

	for _, state := range sortedKeys(c.StateGroups) {
		group := c.StateGroups[state]
		if group == "" {
			invalid("%s: state %q has an empty group name", KeyStateGroupMap, state)
			continue
		}
		if _, ok := c.GroupSources[group]; !ok {
			invalid("%s: state %q maps to undeclared group %q", KeyStateGroupMap, state, group)
		}
	}
	for _, group := range sortedKeys(c.GroupSources) {
		if len(c.GroupSources[group]) == 0 {
			invalid("%s: group %q has no sources", KeyGroupAudioMap, group)
		}
	}

	if c.Output.SampleRate <= 0 {
		invalid("output.sample_rate must be > 0, got %d", c.Output.SampleRate)
	}
	if c.Output.Channels != 1 && c.Output.Channels != 2 {
		invalid("output.channels must be 1 or 2, got %d", c.Output.Channels)
	}
	if c.Output.Precision < 1 || c.Output.Precision > 3 {
		invalid("output.precision must be 1, 2 or 3 bytes, got %d", c.Output.Precision)
	}
	if c.Output.Gain < 0 {
		invalid("output.gain must be >= 0, got %v", c.Output.Gain)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Sources returns the clip locations of every group, resolved against Dir
func (c *Config) Sources() map[string][]string {
	resolved := make(map[string][]string, len(c.GroupSources))
	for group, sources := range c.GroupSources {
		paths := make([]string, len(sources))
		for i, src := range sources {
			paths[i] = c.resolve(src)
		}
		resolved[group] = paths
	}
	return resolved
}

func (c *Config) resolve(src string) string {
	if c.Dir == "" || filepath.IsAbs(src) {
		return src
	}
	return filepath.Join(c.Dir, src)
}

// ParseLevel maps a level name onto slog
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelWarn, fmt.Errorf("%w: unknown log level %q", ErrInvalidValue, name)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
