// Package sampler maps FSM states to groups of decoded clips and draws one
// clip per visit.
package sampler

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/gopxl/beep"

	"github.com/Yochien/markov-audio-generator/audio"
)

var (
	ErrEmptyGroup   = errors.New("sample group has no sources")
	ErrUnknownGroup = errors.New("state mapped to undeclared group")
)

// Loader decodes one source into a clip of the given format
type Loader func(path string, format beep.Format) (audio.Clip, error)

// Rand is the uniform integer source used for picks; *rand.Rand satisfies it
type Rand interface {
	Intn(n int) int
}

// Option configures a Sampler
type Option func(*Sampler)

// WithLoader replaces audio.LoadFile
func WithLoader(l Loader) Option {
	return func(s *Sampler) { s.load = l }
}

// WithRand sets the pick source
func WithRand(r Rand) Option {
	return func(s *Sampler) { s.rng = r }
}

// WithLogger sets the logger used for unreadable sources
func WithLogger(l *slog.Logger) Option {
	return func(s *Sampler) { s.logger = l }
}

// WithFormat sets the format every clip is decoded to
func WithFormat(f beep.Format) Option {
	return func(s *Sampler) { s.format = f }
}

// Sampler holds every clip in memory; it is read-only after New
type Sampler struct {
	states map[string]string       // State -> group
	groups map[string][]audio.Clip // Group -> decoded clips

	load   Loader
	rng    Rand
	logger *slog.Logger
	format beep.Format
}

// New validates the mappings and decodes every declared source up front
// A source that cannot be read becomes an empty clip and is logged, never fatal
func New(groups map[string]string, sources map[string][]string, opts ...Option) (*Sampler, error) {
	s := &Sampler{
		states: make(map[string]string, len(groups)),
		groups: make(map[string][]audio.Clip, len(sources)),
		load:   audio.LoadFile,
		format: audio.DefaultFormat(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if len(sources[name]) == 0 {
			errs = append(errs, fmt.Errorf("%w: %q", ErrEmptyGroup, name))
		}
	}
	for state, group := range groups {
		if _, ok := sources[group]; !ok {
			errs = append(errs, fmt.Errorf("%w: state %q -> %q", ErrUnknownGroup, state, group))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	for _, name := range names {
		clips := make([]audio.Clip, len(sources[name]))
		for i, path := range sources[name] {
			clip, err := s.load(path, s.format)
			if err != nil {
				s.logger.Warn(failureMessage(err),
					"group", name,
					"path", path,
					"error", err,
				)
				clip = audio.Empty(s.format)
			}
			s.logger.Debug("sample loaded", "group", name, "path", path, "duration", clip.Duration())
			clips[i] = clip
		}
		s.groups[name] = clips
	}

	for state, group := range groups {
		s.states[state] = group
	}

	return s, nil
}

// Sample draws one clip for a state, uniformly with replacement
// Unmapped states yield an empty clip
func (s *Sampler) Sample(state string) audio.Clip {
	group, ok := s.states[state]
	if !ok {
		return audio.Empty(s.format)
	}
	clips := s.groups[group]
	return clips[s.rng.Intn(len(clips))]
}

// Using returns a view that shares the loaded clips but picks with r
func (s *Sampler) Using(r Rand) *Sampler {
	view := *s
	view.rng = r
	return &view
}

// SampleAll draws one clip per name, in order
func (s *Sampler) SampleAll(names []string) []audio.Clip {
	clips := make([]audio.Clip, len(names))
	for i, name := range names {
		clips[i] = s.Sample(name)
	}
	return clips
}

// Group returns the group a state maps to
func (s *Sampler) Group(state string) (string, bool) {
	g, ok := s.states[state]
	return g, ok
}

// Groups returns the declared group names, sorted
func (s *Sampler) Groups() []string {
	names := make([]string, 0, len(s.groups))
	for name := range s.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of clips in a group, 0 if undeclared
func (s *Sampler) Len(group string) int {
	return len(s.groups[group])
}

// Format returns the format clips were decoded to
func (s *Sampler) Format() beep.Format {
	return s.format
}

// failureMessage names why a source fell back to silence
func failureMessage(err error) string {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "sample not found, using silence"
	case errors.Is(err, audio.ErrUnsupportedFormat):
		return "sample format unsupported, using silence"
	}
	return "sample unreadable, using silence"
}
