package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupBuildTree creates a source root with a passable dry-run configuration
// and a PATH directory holding the fake tools the rules need.
func setupBuildTree(t *testing.T) (configPath string) {
	t.Helper()

	bin := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bin, "python"), []byte("#!/bin/sh\n"), 0755))
	t.Setenv("PATH", bin)

	src := t.TempDir()
	content := `
build: x86_64-unknown-linux-gnu
channel: nightly
flags:
  dry-run: true
  codegen-tests: false
target:
  x86_64-unknown-linux-gnu:
    llvm-config: /opt/llvm/bin/llvm-config
`
	configPath = filepath.Join(src, "crucible.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	return configPath
}

func TestPreflightCommand_EndToEnd(t *testing.T) {
	configPath := setupBuildTree(t)

	out, err := execute(t, "preflight", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "build environment OK")

	// The marker short-circuits an unchanged configuration.
	out, err = execute(t, "preflight", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "already validated")

	// --force re-runs the checks.
	out, err = execute(t, "preflight", "--config", configPath, "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "build environment OK")
}

func TestPreflightCommand_EditedConfigInvalidatesMarker(t *testing.T) {
	configPath := setupBuildTree(t)

	_, err := execute(t, "preflight", "--config", configPath)
	require.NoError(t, err)

	// Append a comment; the fingerprint changes, so checks run again.
	f, err := os.OpenFile(configPath, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("# touched\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	out, err := execute(t, "preflight", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "build environment OK")
}

func TestPreflightCommand_FatalDiagnostic(t *testing.T) {
	configPath := setupBuildTree(t)

	// Empty the PATH: the python rule has nothing to resolve.
	t.Setenv("PATH", t.TempDir())

	_, err := execute(t, "preflight", "--config", configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"python"`)
}

func TestPreflightCommand_VerboseOutput(t *testing.T) {
	configPath := setupBuildTree(t)

	out, err := execute(t, "preflight", "--config", configPath, "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "[PASS]")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{3 * time.Hour, "3h"},
		{50 * time.Hour, "2d"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.d))
		})
	}
}
