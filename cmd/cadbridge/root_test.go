package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestParseParams(t *testing.T) {
	got, err := parseParams([]string{"n=3", "pitch=2.5"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"n": 3, "pitch": 2.5}, got)

	for _, bad := range []string{"n", "=3", "n=three"} {
		_, err := parseParams([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestParsePoints(t *testing.T) {
	got, err := parsePoints("at", []string{"10,5", " -3 , 4.5"})
	require.NoError(t, err)
	assert.Equal(t, []r2.Vec{{X: 10, Y: 5}, {X: -3, Y: 4.5}}, got)

	_, err = parsePoints("at", []string{"10"})
	assert.ErrorContains(t, err, "--at")
	_, err = parsePoints("at", []string{"a,1"})
	assert.Error(t, err)
}

func TestCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "plan", "status", "ops", "box", "cylinder", "pipe", "plate", "revolve", "serve", "mcp", "version"} {
		assert.True(t, names[want], want)
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "cadbridge version")
}

func TestBoxCommand_DryRun(t *testing.T) {
	t.Chdir(t.TempDir())
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"box", "--dry-run", "--width", "20"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "box: 1 feature(s) in Part1")
}
