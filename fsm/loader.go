package fsm

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadFile reads and compiles a designer document from disk
func LoadFile(path string) (*Machine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read FSM file %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load FSM from %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a designer document and compiles it into a Machine
func Parse(data []byte) (*Machine, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal FSM document: %w", err)
	}
	return Compile(doc)
}

// Compile converts a decoded document into a Machine
// StartLink entries are skipped: the walk always begins at the first node
func Compile(doc Document) (*Machine, error) {
	states := make([]State, len(doc.Nodes))
	for i, node := range doc.Nodes {
		states[i] = State{Name: node.Text, Accepting: node.IsAcceptState}
	}

	transitions := make([]Transition, 0, len(doc.Links))
	for i, link := range doc.Links {
		var from, to *int
		switch link.Type {
		case LinkTypeLink:
			from, to = link.NodeA, link.NodeB
		case LinkTypeSelf:
			from, to = link.Node, link.Node
		case LinkTypeStart:
			continue
		default:
			return nil, fmt.Errorf("link %d: %w %q", i, ErrUnknownLinkType, link.Type)
		}

		if from == nil || to == nil {
			return nil, fmt.Errorf("link %d: %w: missing node reference", i, ErrBadReference)
		}

		weight, err := ParseWeight(link.Text)
		if err != nil {
			return nil, fmt.Errorf("link %d: %w", i, err)
		}

		transitions = append(transitions, Transition{
			From:   StateID(*from),
			To:     StateID(*to),
			Weight: weight,
		})
	}

	return New(states, transitions)
}

// ParseWeight converts link text into a transition probability
// Empty text is a single deterministic edge with weight 1
func ParseWeight(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 1, nil
	}

	w, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWeight, text)
	}
	if !(w >= 0 && w <= 1) {
		return 0, fmt.Errorf("%w: %v outside [0,1]", ErrInvalidWeight, w)
	}
	return w, nil
}

// StateNames lists the node texts of a designer document without compiling links
func StateNames(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read FSM file %s: %w", path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal FSM document %s: %w", path, err)
	}

	names := make([]string, len(doc.Nodes))
	for i, node := range doc.Nodes {
		names[i] = node.Text
	}
	return names, nil
}
