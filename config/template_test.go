package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate(t *testing.T) {
	doc := Template([]string{"start", "middle", "end"})

	require.NotNil(t, doc.MinimumSimulationLength)
	require.NotNil(t, doc.MaximumSimulationLength)
	assert.Equal(t, TemplateMinLength, *doc.MinimumSimulationLength)
	assert.Equal(t, TemplateMaxLength, *doc.MaximumSimulationLength)

	assert.Equal(t, map[string]string{
		"start":  "start_choices",
		"middle": "middle_choices",
		"end":    "end_choices",
	}, doc.StateGroupMap)

	require.Len(t, doc.GroupAudioMap, 3)
	for _, sources := range doc.GroupAudioMap {
		assert.Equal(t, PlaceholderSources, sources)
	}

	// Groups own their slices
	doc.GroupAudioMap["start_choices"][0] = "changed"
	assert.Equal(t, "../samples/filename1", doc.GroupAudioMap["end_choices"][0])
	assert.Equal(t, "../samples/filename1", PlaceholderSources[0])
}

func TestSave_Reloads(t *testing.T) {
	states := []string{"start", "two words", "end.state", "yes", "null", "42", "a: b"}

	path := filepath.Join(t.TempDir(), "out", "template.yaml")
	require.NoError(t, Save(Template(states), path))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, TemplateMinLength, cfg.MinLength)
	assert.Equal(t, TemplateMaxLength, cfg.MaxLength)
	require.Len(t, cfg.StateGroups, len(states))
	for _, state := range states {
		assert.Equal(t, GroupName(state), cfg.StateGroups[state])
		assert.Equal(t, PlaceholderSources, cfg.GroupSources[GroupName(state)])
	}
}

func TestMarshal_YAMLKeys(t *testing.T) {
	data, err := Marshal(Template([]string{"s"}))
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "minimum_simulation_length: 1")
	assert.Contains(t, text, "maximum_simulation_length: 999")
	assert.Contains(t, text, "s: s_choices")
	assert.NotContains(t, text, "output")
	assert.NotContains(t, text, "seed")
}

func TestSave_WriteError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	err := Save(Template([]string{"s"}), filepath.Join(blocker, "template.yaml"))
	require.Error(t, err)
}
