package markov

import (
	"errors"
	"fmt"

	"github.com/Yochien/markov-audio-generator/fsm"
)

// Sentinel errors
var (
	ErrNoTransition = errors.New("no viable transition")
	ErrEmptyTable   = errors.New("transition table has no states")
	ErrWalkConfig   = errors.New("invalid walk configuration")
)

// Rand is the randomness source consumed by the walk
// *math/rand.Rand satisfies it
type Rand interface {
	Float64() float64
}

// DeadEndError reports a state whose row has no outgoing probability mass
type DeadEndError struct {
	State fsm.StateID
	Step  int // Cycle count at which the draw failed
}

func (e *DeadEndError) Error() string {
	return fmt.Sprintf("%s from state %d at step %d", ErrNoTransition, e.State, e.Step)
}

func (e *DeadEndError) Unwrap() error { return ErrNoTransition }

// Table is a dense row-stochastic transition matrix indexed by StateID
// Read-only after NewTable
type Table struct {
	rows [][]float64
}

// NewTable builds the matrix for n states
// Cells without a transition are 0; repeated pairs keep the last weight
// No normalization is applied
func NewTable(n int, transitions []fsm.Transition) *Table {
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
	}

	for _, t := range transitions {
		if int(t.From) < 0 || int(t.From) >= n || int(t.To) < 0 || int(t.To) >= n {
			continue
		}
		rows[t.From][t.To] = t.Weight
	}

	return &Table{rows: rows}
}

// FromMachine builds the table for every state and transition of m
func FromMachine(m *fsm.Machine) *Table {
	return NewTable(m.Len(), m.Transitions)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Prob returns the one-step probability from -> to
func (t *Table) Prob(from, to fsm.StateID) float64 {
	if !t.valid(from) || !t.valid(to) {
		return 0
	}
	return t.rows[from][to]
}

// Row returns a copy of one row
func (t *Table) Row(from fsm.StateID) []float64 {
	if !t.valid(from) {
		return nil
	}
	row := make([]float64, len(t.rows[from]))
	copy(row, t.rows[from])
	return row
}

// RowSum returns the total outgoing weight of a state
func (t *Table) RowSum(from fsm.StateID) float64 {
	if !t.valid(from) {
		return 0
	}
	var sum float64
	for _, p := range t.rows[from] {
		sum += p
	}
	return sum
}

// Transitions re-derives the non-zero cells in row-major order
func (t *Table) Transitions() []fsm.Transition {
	var out []fsm.Transition
	for i, row := range t.rows {
		for j, p := range row {
			if p != 0 {
				out = append(out, fsm.Transition{From: fsm.StateID(i), To: fsm.StateID(j), Weight: p})
			}
		}
	}
	return out
}

// Next draws the successor of from, treating the row as categorical weights
// Rows that do not sum to 1 are scaled by their sum; an all-zero row fails
func (t *Table) Next(from fsm.StateID, rng Rand) (fsm.StateID, error) {
	if !t.valid(from) {
		return 0, fmt.Errorf("%w: state %d out of range", ErrNoTransition, from)
	}

	row := t.rows[from]
	sum := t.RowSum(from)
	if sum <= 0 {
		return 0, &DeadEndError{State: from}
	}

	u := rng.Float64() * sum
	var acc float64
	last := -1
	for j, p := range row {
		if p <= 0 {
			continue
		}
		acc += p
		last = j
		if u < acc {
			return fsm.StateID(j), nil
		}
	}

	// Rounding left u at the upper edge
	return fsm.StateID(last), nil
}

func (t *Table) valid(id fsm.StateID) bool {
	return id >= 0 && int(id) < len(t.rows)
}
