// Package generator runs the whole pipeline: transition table, walk,
// per-state sampling, assembly and export.
package generator

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/gopxl/beep"

	"github.com/Yochien/markov-audio-generator/audio"
	"github.com/Yochien/markov-audio-generator/config"
	"github.com/Yochien/markov-audio-generator/fsm"
	"github.com/Yochien/markov-audio-generator/markov"
	"github.com/Yochien/markov-audio-generator/sampler"
)

// Option configures a Generator
type Option func(*Generator)

// WithLogger sets the pipeline logger; the sampler shares it
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithLoader replaces the clip decoder
func WithLoader(l sampler.Loader) Option {
	return func(g *Generator) { g.loader = l }
}

// WithSeed overrides the configured seed; 0 seeds from the clock
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
		g.seedSet = true
	}
}

// Generator holds everything that is read-only across runs
type Generator struct {
	machine *fsm.Machine
	cfg     *config.Config
	table   *markov.Table
	samples *sampler.Sampler
	format  beep.Format

	logger  *slog.Logger
	loader  sampler.Loader
	seed    int64
	seedSet bool
}

// Result is one generated clip and the walk that produced it
type Result struct {
	Walk   markov.Walk
	States []string
	Clip   audio.Clip
	Seed   int64 // Seed actually used, for reproduction

	minLength int
	maxSteps  int
}

// Truncated reports that the step cap ended the walk outside an accepting state
func (r *Result) Truncated() bool {
	return r.Walk.Truncated
}

// CapReached reports that the walk used the whole step budget
func (r *Result) CapReached() bool {
	return r.Walk.Cycles >= r.maxSteps
}

// BelowMinimum reports that no attempt reached the configured minimum length
func (r *Result) BelowMinimum() bool {
	return r.Walk.BelowMinimum(r.minLength)
}

// Duration returns the playback length of the assembled clip
func (r *Result) Duration() time.Duration {
	return r.Clip.Duration()
}

// Export writes the clip to path in the given container kind
func (r *Result) Export(path, kind string) error {
	if err := audio.Export(r.Clip, path, kind); err != nil {
		return fmt.Errorf("failed to export %s: %w", path, err)
	}
	return nil
}

// New builds the transition table and eagerly loads every sample group
func New(m *fsm.Machine, cfg *config.Config, opts ...Option) (*Generator, error) {
	if m == nil || m.Len() == 0 {
		return nil, fsm.ErrNoStates
	}
	if cfg == nil {
		return nil, errors.New("nil config")
	}

	g := &Generator{
		machine: m,
		cfg:     cfg,
		logger:  slog.Default(),
		seed:    cfg.Seed,
		format: beep.Format{
			SampleRate:  beep.SampleRate(cfg.Output.SampleRate),
			NumChannels: cfg.Output.Channels,
			Precision:   cfg.Output.Precision,
		},
	}
	for _, opt := range opts {
		opt(g)
	}

	for _, d := range m.Duplicates() {
		g.logger.Warn("duplicate transition overridden by a later declaration",
			"from", m.Name(d.From),
			"to", m.Name(d.To),
			"weight", d.Weight,
		)
	}
	g.table = markov.FromMachine(m)

	g.checkMachine()
	g.checkMapping()

	samplerOpts := []sampler.Option{
		sampler.WithLogger(g.logger),
		sampler.WithFormat(g.format),
	}
	if g.loader != nil {
		samplerOpts = append(samplerOpts, sampler.WithLoader(g.loader))
	}
	samples, err := sampler.New(cfg.StateGroups, cfg.Sources(), samplerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load samples: %w", err)
	}
	g.samples = samples

	for _, st := range m.States {
		if _, ok := samples.Group(st.Name); !ok {
			g.logger.Debug("state has no sample group and will be silent", "state", st.Name)
		}
	}

	g.logger.Debug("generator ready",
		"states", m.Len(),
		"transitions", len(m.Transitions),
		"groups", len(samples.Groups()),
	)
	return g, nil
}

// checkMachine logs non-accepting states that no transition leaves
func (g *Generator) checkMachine() {
	for i, st := range g.machine.States {
		if !st.Accepting && len(g.machine.Outgoing(fsm.StateID(i))) == 0 {
			g.logger.Warn("non-accepting state has no outgoing transitions", "state", st.Name)
		}
	}
}

// checkMapping logs mapped names the machine does not know
func (g *Generator) checkMapping() {
	var unknown []string
	for state := range g.cfg.StateGroups {
		if _, ok := g.machine.Lookup(state); !ok {
			unknown = append(unknown, state)
		}
	}
	sort.Strings(unknown)
	for _, state := range unknown {
		g.logger.Warn("state_group_map names a state not in the FSM", "state", state)
	}
}

// Table returns the transition table built from the machine
func (g *Generator) Table() *markov.Table {
	return g.table
}

// Generate walks the machine once and assembles the matching clip
// A dead end aborts with an error wrapping markov.ErrNoTransition
func (g *Generator) Generate() (*Result, error) {
	seed := g.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	// One source drives the walk then the picks so a seed reproduces both
	rng := rand.New(rand.NewSource(seed))

	walk, err := markov.Simulate(markov.WalkConfig{
		MinLength: g.cfg.MinLength,
		MaxSteps:  g.cfg.MaxLength,
	}, g.table, g.machine.Accepting(), rng)
	if err != nil {
		var dead *markov.DeadEndError
		if errors.As(err, &dead) {
			return nil, fmt.Errorf("walk stuck in state %q: %w", g.machine.Name(dead.State), err)
		}
		return nil, fmt.Errorf("failed to simulate walk: %w", err)
	}

	states := g.machine.Names(walk.Path)
	g.logger.Debug("walk finished",
		"seed", seed,
		"length", walk.Len(),
		"cycles", walk.Cycles,
		"attempts", walk.Attempts,
		"truncated", walk.Truncated,
	)

	clip := audio.Assemble(g.format, g.samples.Using(rng).SampleAll(states)...)
	clip = audio.ApplyGain(clip, g.cfg.Output.Gain)

	return &Result{
		Walk:      walk,
		States:    states,
		Clip:      clip,
		Seed:      seed,
		minLength: g.cfg.MinLength,
		maxSteps:  g.cfg.MaxLength,
	}, nil
}
