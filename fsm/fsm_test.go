package fsm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threeStateDoc = `{
  "nodes": [
    {"x": 100, "y": 100, "text": "start", "isAcceptState": false},
    {"x": 200, "y": 100, "text": "middle", "isAcceptState": false},
    {"x": 300, "y": 100, "text": "end", "isAcceptState": true}
  ],
  "links": [
    {"type": "StartLink", "node": 0, "text": "", "deltaX": -50, "deltaY": 0},
    {"type": "Link", "nodeA": 0, "nodeB": 1, "text": ""},
    {"type": "SelfLink", "node": 1, "text": "0.5", "anchorAngle": 1.57},
    {"type": "Link", "nodeA": 1, "nodeB": 2, "text": "0.5"}
  ]
}`

func TestParse_ThreeStates(t *testing.T) {
	m, err := Parse([]byte(threeStateDoc))
	require.NoError(t, err)

	require.Equal(t, 3, m.Len())
	assert.Equal(t, []string{"start", "middle", "end"}, m.Names([]StateID{0, 1, 2}))
	assert.Equal(t, []bool{false, false, true}, m.Accepting())

	// StartLink is not a transition
	require.Len(t, m.Transitions, 3)
	assert.Equal(t, Transition{From: 0, To: 1, Weight: 1}, m.Transitions[0])
	assert.Equal(t, Transition{From: 1, To: 1, Weight: 0.5}, m.Transitions[1])
	assert.Equal(t, Transition{From: 1, To: 2, Weight: 0.5}, m.Transitions[2])

	id, ok := m.Lookup("middle")
	require.True(t, ok)
	assert.Equal(t, StateID(1), id)

	_, ok = m.Lookup("nowhere")
	assert.False(t, ok)
}

func TestParseWeight(t *testing.T) {
	tests := []struct {
		text    string
		want    float64
		wantErr bool
	}{
		{"", 1, false},
		{"  ", 1, false},
		{"0.25", 0.25, false},
		{" 1 ", 1, false},
		{"0", 0, false},
		{"1.5", 0, true},
		{"-0.1", 0, true},
		{"half", 0, true},
		{"NaN", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseWeight(tt.text)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidWeight)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	zero, five := 0, 5

	tests := []struct {
		name string
		doc  Document
		want error
	}{
		{
			name: "no nodes",
			doc:  Document{},
			want: ErrNoStates,
		},
		{
			name: "duplicate names",
			doc: Document{Nodes: []NodeConfig{
				{Text: "a"}, {Text: "a"},
			}},
			want: ErrDuplicateState,
		},
		{
			name: "out of range node",
			doc: Document{
				Nodes: []NodeConfig{{Text: "a"}},
				Links: []LinkConfig{{Type: LinkTypeLink, NodeA: &zero, NodeB: &five}},
			},
			want: ErrBadReference,
		},
		{
			name: "missing node reference",
			doc: Document{
				Nodes: []NodeConfig{{Text: "a"}},
				Links: []LinkConfig{{Type: LinkTypeSelf}},
			},
			want: ErrBadReference,
		},
		{
			name: "unknown link type",
			doc: Document{
				Nodes: []NodeConfig{{Text: "a"}},
				Links: []LinkConfig{{Type: "Curve", Node: &zero}},
			},
			want: ErrUnknownLinkType,
		},
		{
			name: "bad weight",
			doc: Document{
				Nodes: []NodeConfig{{Text: "a"}},
				Links: []LinkConfig{{Type: LinkTypeSelf, Node: &zero, Text: "2"}},
			},
			want: ErrInvalidWeight,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.doc)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDuplicates_LaterDeclarationWins(t *testing.T) {
	m, err := New(
		[]State{{Name: "a"}, {Name: "b"}},
		[]Transition{
			{From: 0, To: 1, Weight: 0.3},
			{From: 0, To: 0, Weight: 0.2},
			{From: 0, To: 1, Weight: 0.8},
		},
	)
	require.NoError(t, err)

	dupes := m.Duplicates()
	require.Len(t, dupes, 1)
	assert.Equal(t, Transition{From: 0, To: 1, Weight: 0.3}, dupes[0])

	assert.Len(t, m.Outgoing(0), 3)
	assert.Empty(t, m.Outgoing(1))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "machine.json")
	require.NoError(t, os.WriteFile(path, []byte(threeStateDoc), 0644))

	m, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())

	names, err := StateNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "middle", "end"}, names)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.json")
}

func TestName_OutOfRange(t *testing.T) {
	m, err := New([]State{{Name: "only"}}, nil)
	require.NoError(t, err)

	assert.Equal(t, "only", m.Name(StateStart))
	assert.Empty(t, m.Name(-1))
	assert.Empty(t, m.Name(3))
}
