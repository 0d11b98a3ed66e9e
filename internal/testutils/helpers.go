// Package testutils holds fixtures shared by the adapter and CLI tests.
package testutils

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/cadbridge"
	"github.com/aretw0/cadbridge/pkg/adapters/memory"
	"github.com/stretchr/testify/require"
)

// NewAutomation connects an Automation to a fresh simulated host and closes
// it when the test ends. It fails the test immediately on error.
func NewAutomation(t *testing.T, host *memory.Host, opts ...cadbridge.Option) *cadbridge.Automation {
	t.Helper()
	if host == nil {
		host = memory.NewHost()
	}
	cad, err := cadbridge.New(context.Background(), host, opts...)
	require.NoError(t, err, "Failed to connect to the simulated host")
	t.Cleanup(cad.Close)
	return cad
}

// Workspace creates a temporary directory holding files, makes it the
// working directory for the rest of the test and returns its path.
func Workspace(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644), "Failed to write %s", name)
	}
	t.Chdir(dir)
	return dir
}
