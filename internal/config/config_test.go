package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig drops a crucible.yaml with the given content into a fresh
// temp directory and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Minimal(t *testing.T) {
	path := writeConfig(t, "build: x86_64-unknown-linux-gnu\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "x86_64-unknown-linux-gnu", cfg.Triple)
	assert.Equal(t, []string{"x86_64-unknown-linux-gnu"}, cfg.Hosts)
	assert.Equal(t, []string{"x86_64-unknown-linux-gnu"}, cfg.Targets)
	assert.Equal(t, "dev", cfg.Channel)
	assert.True(t, cfg.Flags.CodegenTests)
	assert.True(t, cfg.Flags.Jemalloc)
	assert.False(t, cfg.Flags.Sanitizers)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "build"), cfg.OutDir)
	assert.Equal(t, filepath.Dir(path), cfg.SrcDir)
}

func TestLoad_Full(t *testing.T) {
	path := writeConfig(t, `
version: 1
channel: stable
build: x86_64-apple-darwin
targets:
  - aarch64-apple-ios
out: custom-out
flags:
  sanitizers: true
  jemalloc: false
  dry-run: true
tools:
  python: /opt/python/bin/python
target:
  aarch64-apple-ios:
    no-std: false
    cc: ios-clang
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "stable", cfg.Channel)
	assert.Equal(t, []string{"x86_64-apple-darwin"}, cfg.Hosts)
	// Hosts are merged into targets.
	assert.Equal(t, []string{"aarch64-apple-ios", "x86_64-apple-darwin"}, cfg.Targets)
	assert.True(t, cfg.Flags.Sanitizers)
	assert.False(t, cfg.Flags.Jemalloc)
	assert.True(t, cfg.Flags.DryRun)
	assert.Equal(t, "/opt/python/bin/python", cfg.Tools.Python)

	tc := cfg.TargetCfg("aarch64-apple-ios")
	require.NotNil(t, tc)
	require.NotNil(t, tc.NoStd)
	assert.False(t, *tc.NoStd)
	assert.Equal(t, "ios-clang", tc.CC)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownChannel(t *testing.T) {
	path := writeConfig(t, "build: x86_64-unknown-linux-gnu\nchannel: experimental\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CRUCIBLE_CHANNEL", "nightly")
	t.Setenv("CRUCIBLE_DRY_RUN", "1")

	path := writeConfig(t, "build: x86_64-unknown-linux-gnu\nchannel: dev\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nightly", cfg.Channel)
	assert.True(t, cfg.Flags.DryRun)
}

func TestBuild_EnsureTarget(t *testing.T) {
	cfg := NewBuild()

	assert.Nil(t, cfg.TargetCfg("thumbv7m-none-eabi"))

	tc := cfg.EnsureTarget("thumbv7m-none-eabi")
	require.NotNil(t, tc)
	assert.Same(t, tc, cfg.EnsureTarget("thumbv7m-none-eabi"))
	assert.Same(t, tc, cfg.TargetCfg("thumbv7m-none-eabi"))
}

func TestBuild_TriStateNoStd(t *testing.T) {
	cfg := NewBuild()

	assert.Nil(t, cfg.NoStd("thumbv7m-none-eabi"))

	on := true
	cfg.EnsureTarget("thumbv7m-none-eabi").NoStd = &on

	got := cfg.NoStd("thumbv7m-none-eabi")
	require.NotNil(t, got)
	assert.True(t, *got)
}

func TestBuild_MuslRoot(t *testing.T) {
	cfg := NewBuild()
	assert.Empty(t, cfg.MuslRoot("x86_64-unknown-linux-musl"))

	cfg.EnsureTarget("x86_64-unknown-linux-musl").MuslRoot = "/opt/musl"
	assert.Equal(t, "/opt/musl", cfg.MuslRoot("x86_64-unknown-linux-musl"))
}

func TestFindSourceRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultConfigName), []byte("build: a-b\n"), 0644))

	nested := filepath.Join(root, "src", "tools")
	require.NoError(t, os.MkdirAll(nested, 0755))

	got, err := FindSourceRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestFindSourceRoot_GitCheckout(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0755))

	got, err := FindSourceRoot(root)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestIsGitCheckout(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, IsGitCheckout(dir))

	// Worktrees use a .git file rather than a directory.
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git"), []byte("gitdir: elsewhere\n"), 0644))
	assert.True(t, IsGitCheckout(dir))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CRUCIBLE_TEST_MARKER=from-env-file\n"), 0644))

	require.NoError(t, LoadEnvFile(dir))
	t.Cleanup(func() { _ = os.Unsetenv("CRUCIBLE_TEST_MARKER") })

	assert.Equal(t, "from-env-file", os.Getenv("CRUCIBLE_TEST_MARKER"))
}

func TestLoadEnvFile_AbsentIsFine(t *testing.T) {
	assert.NoError(t, LoadEnvFile(t.TempDir()))
}
