package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/hexskirmish/scenario"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "hexskirmish dev")
}

func TestValidateEmbeddedScenarios(t *testing.T) {
	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "ok  duel.yaml")
	assert.Contains(t, out, "ok  skirmish.yaml")

	_, err = execute(t, "validate", "missing.yaml")
	assert.Error(t, err)
}

func TestRunPlaysRounds(t *testing.T) {
	out, err := execute(t, "run", "--scenario", "duel.yaml", "--script", "monsters.tengo", "--rounds", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "round 1\n  b attacks a for 2\n")
	assert.Contains(t, out, "round 2")
	assert.NotContains(t, out, "round 3")

	out, err = execute(t, "run", "--scenario", "duel.yaml", "--script", "monsters.tengo", "--rounds", "3", "--json")
	require.NoError(t, err)
	var snap scenario.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, 3, snap.Round)
	assert.Equal(t, scenario.PhaseEndOfRound, snap.Phase)
}

func TestRunRefusesPromptPolicy(t *testing.T) {
	_, err := execute(t, "run", "--scenario", "duel.yaml", "--script", "monsters.tengo", "--draw-policy", "prompt", "--json=false")
	assert.ErrorIs(t, err, errNeedsDriver)
}
