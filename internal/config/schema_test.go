package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSchema_Valid(t *testing.T) {
	valid := []struct {
		name string
		yaml string
	}{
		{
			name: "minimal",
			yaml: "build: x86_64-unknown-linux-gnu\n",
		},
		{
			name: "full",
			yaml: `
version: 1
channel: nightly
build: x86_64-unknown-linux-gnu
hosts: [x86_64-unknown-linux-gnu]
targets: [x86_64-unknown-linux-musl]
out: build
flags:
  sanitizers: true
  ninja: true
tools:
  python: /usr/bin/python2
target:
  x86_64-unknown-linux-musl:
    musl-root: /opt/musl
    no-std: false
`,
		},
	}

	for _, tt := range valid {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, ValidateSchema([]byte(tt.yaml)))
		})
	}
}

func TestValidateSchema_Invalid(t *testing.T) {
	invalid := []struct {
		name string
		yaml string
	}{
		{
			name: "missing build triple",
			yaml: "channel: dev\n",
		},
		{
			name: "bad channel",
			yaml: "build: x86_64-unknown-linux-gnu\nchannel: experimental\n",
		},
		{
			name: "unknown top-level key",
			yaml: "build: x86_64-unknown-linux-gnu\nbogus: 1\n",
		},
		{
			name: "triple without separator",
			yaml: "build: linux\n",
		},
		{
			name: "unknown per-target key",
			yaml: "build: x86_64-unknown-linux-gnu\ntarget:\n  x86_64-unknown-linux-gnu:\n    wat: true\n",
		},
		{
			name: "not yaml at all",
			yaml: "build: [unclosed",
		},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ValidateSchema([]byte(tt.yaml)))
		})
	}
}

func TestValidateSchema_LoadRejectsSchemaViolations(t *testing.T) {
	path := writeConfig(t, "build: x86_64-unknown-linux-gnu\nmystery-key: true\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}
