package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Yochien/markov-audio-generator/config"
)

const fsmDoc = `{
  "nodes": [
    {"text": "intro", "isAcceptState": false},
    {"text": "verse", "isAcceptState": false},
    {"text": "outro", "isAcceptState": true}
  ],
  "links": []
}`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func writeFSM(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "fsm.json")
	require.NoError(t, os.WriteFile(path, []byte(fsmDoc), 0644))
	return path
}

func TestTemplate_YAML(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "output", "sound_config_template.yaml")

	stdout, err := execute(t, writeFSM(t, dir), "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "3 state groups")

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, 1, doc["minimum_simulation_length"])
	assert.Equal(t, 999, doc["maximum_simulation_length"])
	assert.Equal(t, map[string]any{
		"intro": "intro_choices",
		"verse": "verse_choices",
		"outro": "outro_choices",
	}, doc["state_group_map"])

	groups := doc["group_audio_map"].(map[string]any)
	require.Len(t, groups, 3)
	assert.Equal(t, []any{"../samples/filename1", "../samples/filename2", "../samples/filename3"}, groups["verse_choices"])
}

func TestTemplate_Reloads(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "template.yml")

	_, err := execute(t, writeFSM(t, dir), "-o", out)
	require.NoError(t, err)

	cfg, err := config.Load(out)
	require.NoError(t, err)
	assert.Equal(t, "outro_choices", cfg.StateGroups["outro"])
	assert.Len(t, cfg.GroupSources, 3)
}

func TestTemplate_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, filepath.Join(dir, "missing.json"), "-o", filepath.Join(dir, "out.yaml"))
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "out.yaml"))

	_, err = execute(t)
	require.Error(t, err)
}
