package fsm

import (
	"errors"
	"fmt"
)

// StateID is the position of a state in Machine.States
type StateID int

// StateStart is the walk entry point; the first declared state
const StateStart StateID = 0

// Sentinel errors
var (
	ErrNoStates        = errors.New("fsm has no states")
	ErrDuplicateState  = errors.New("duplicate state name")
	ErrBadReference    = errors.New("link references unknown state")
	ErrInvalidWeight   = errors.New("invalid transition weight")
	ErrUnknownLinkType = errors.New("unknown link type")
)

// State is a node of the graph
type State struct {
	Name      string
	Accepting bool
}

// Transition is a weighted directed edge
// From == To for self-links
type Transition struct {
	From   StateID
	To     StateID
	Weight float64
}

func (t Transition) String() string {
	return fmt.Sprintf("%d --> %d w/ %.0f%% chance", t.From, t.To, t.Weight*100)
}

// Machine holds the ordered states and transitions of one FSM
// Immutable after construction
type Machine struct {
	States      []State
	Transitions []Transition

	index map[string]StateID
}

// New validates states and transitions and builds the name index
func New(states []State, transitions []Transition) (*Machine, error) {
	if len(states) == 0 {
		return nil, ErrNoStates
	}

	index := make(map[string]StateID, len(states))
	for i, s := range states {
		if _, exists := index[s.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateState, s.Name)
		}
		index[s.Name] = StateID(i)
	}

	for i, t := range transitions {
		if !validID(t.From, len(states)) || !validID(t.To, len(states)) {
			return nil, fmt.Errorf("transition %d (%d -> %d): %w", i, t.From, t.To, ErrBadReference)
		}
		if !(t.Weight >= 0 && t.Weight <= 1) {
			return nil, fmt.Errorf("transition %d: %w: %v outside [0,1]", i, ErrInvalidWeight, t.Weight)
		}
	}

	return &Machine{
		States:      states,
		Transitions: transitions,
		index:       index,
	}, nil
}

func validID(id StateID, n int) bool {
	return id >= 0 && int(id) < n
}

// Len returns the number of states
func (m *Machine) Len() int {
	return len(m.States)
}

// Lookup resolves a state name to its ID
func (m *Machine) Lookup(name string) (StateID, bool) {
	id, ok := m.index[name]
	return id, ok
}

// Name returns the identifier of a state, empty for out-of-range IDs
func (m *Machine) Name(id StateID) string {
	if !validID(id, len(m.States)) {
		return ""
	}
	return m.States[id].Name
}

// Names maps a path of IDs to state identifiers
func (m *Machine) Names(path []StateID) []string {
	names := make([]string, len(path))
	for i, id := range path {
		names[i] = m.Name(id)
	}
	return names
}

// Accepting returns the accepting flag of every state, indexed by StateID
func (m *Machine) Accepting() []bool {
	flags := make([]bool, len(m.States))
	for i, s := range m.States {
		flags[i] = s.Accepting
	}
	return flags
}

// Outgoing returns the transitions leaving a state in declaration order
func (m *Machine) Outgoing(id StateID) []Transition {
	var out []Transition
	for _, t := range m.Transitions {
		if t.From == id {
			out = append(out, t)
		}
	}
	return out
}

// Duplicates returns every transition whose source/destination pair is
// declared again later; the later declaration wins in the transition table
func (m *Machine) Duplicates() []Transition {
	type edge struct{ from, to StateID }
	last := make(map[edge]int, len(m.Transitions))
	for i, t := range m.Transitions {
		last[edge{t.From, t.To}] = i
	}

	var dupes []Transition
	for i, t := range m.Transitions {
		if last[edge{t.From, t.To}] != i {
			dupes = append(dupes, t)
		}
	}
	return dupes
}
