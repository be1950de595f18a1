package markov

import (
	"errors"
	"fmt"

	"github.com/Yochien/markov-audio-generator/fsm"
)

// WalkConfig bounds a simulation
type WalkConfig struct {
	MinLength int // Walks shorter than this are discarded and retried
	MaxSteps  int // Step cap shared by all attempts
}

// Walk is the outcome of Simulate
type Walk struct {
	Path      []fsm.StateID
	Cycles    int  // Steps consumed across all attempts
	Attempts  int  // Whole walks started
	Truncated bool // Step cap reached before an accepting state
}

// Len returns the number of visited states in the kept attempt
func (w Walk) Len() int {
	return len(w.Path)
}

// BelowMinimum reports whether the cap ran out before a long enough walk was found
func (w Walk) BelowMinimum(minLength int) bool {
	return len(w.Path) < minLength
}

// Simulate walks the table from StateStart until an accepting state or the step cap
//
// Whole walks shorter than MinLength are discarded and restarted. The step
// counter is shared across attempts so the total work never exceeds MaxSteps.
// At least one attempt is always made.
//
// A dead-end row aborts with an error wrapping ErrNoTransition; hitting the
// step cap is reported through Walk.Truncated and is not an error.
func Simulate(cfg WalkConfig, t *Table, accepting []bool, rng Rand) (Walk, error) {
	if t == nil || t.Len() == 0 {
		return Walk{}, ErrEmptyTable
	}
	if len(accepting) != t.Len() {
		return Walk{}, fmt.Errorf("%w: %d accepting flags for %d states", ErrWalkConfig, len(accepting), t.Len())
	}
	if cfg.MinLength < 0 || cfg.MaxSteps < 1 {
		return Walk{}, fmt.Errorf("%w: min %d, max %d", ErrWalkConfig, cfg.MinLength, cfg.MaxSteps)
	}

	var w Walk
	path := make([]fsm.StateID, 0, min(cfg.MaxSteps, 64))
	var current fsm.StateID

	for {
		path = path[:0]
		current = fsm.StateStart
		path = append(path, current)
		w.Cycles++
		w.Attempts++

		for !accepting[current] && w.Cycles < cfg.MaxSteps {
			next, err := t.Next(current, rng)
			if err != nil {
				var dead *DeadEndError
				if errors.As(err, &dead) {
					dead.Step = w.Cycles
				}
				w.Path = append([]fsm.StateID(nil), path...)
				return w, err
			}
			path = append(path, next)
			current = next
			w.Cycles++
		}

		if len(path) >= cfg.MinLength || w.Cycles >= cfg.MaxSteps {
			break
		}
	}

	w.Path = append([]fsm.StateID(nil), path...)
	w.Truncated = !accepting[current]
	return w, nil
}
