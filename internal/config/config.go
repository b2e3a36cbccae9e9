// Package config provides the build configuration for crucible.
//
// Configuration is loaded from crucible.yaml at the source root, validated
// against the embedded JSON schema, and then amended by environment overrides.
// Preflight validation both reads and mutates the loaded structure; later
// build stages consume the amended result.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigName is the configuration filename looked up at the source root.
const DefaultConfigName = "crucible.yaml"

// Channels are the valid release channels, ordered from least to most stable.
var Channels = []string{"dev", "nightly", "beta", "stable"}

// Build is the complete build configuration. The structure is created by the
// loader before preflight runs and outlives it: preflight holds the only
// reference for the duration of validation and writes resolved tool paths and
// amended defaults back into it.
type Build struct {
	Version int    `yaml:"version"`
	Channel string `yaml:"channel"`

	// Triple is the primary build platform (the machine running the build).
	Triple string `yaml:"build"`

	// Hosts are the platforms the build tools run on. Defaults to [Triple].
	Hosts []string `yaml:"hosts"`

	// Targets are the platforms artifacts are produced for. Defaults to
	// Hosts; hosts are always targets as well.
	Targets []string `yaml:"targets"`

	// Out is the build output directory, relative to the source root
	// unless absolute.
	Out string `yaml:"out"`

	Flags Flags `yaml:"flags"`
	Tools Tools `yaml:"tools"`

	// Target holds per-triple records, created lazily: a triple has no
	// entry until something is configured or amended for it.
	Target map[string]*TargetConfig `yaml:"target"`

	// Runtime state derived by the loader, not serialized.
	SrcDir string `yaml:"-"`
	OutDir string `yaml:"-"`

	// Debugger introspection results, populated by preflight when an lldb
	// installation responds. Both stay empty when it does not.
	LldbVersion   string `yaml:"-"`
	LldbPythonDir string `yaml:"-"`
}

// Flags are the global build knobs preflight consults and, in places, flips.
type Flags struct {
	Sanitizers   bool `yaml:"sanitizers"`
	Ninja        bool `yaml:"ninja"`
	CodegenTests bool `yaml:"codegen-tests"`
	Jemalloc     bool `yaml:"jemalloc"`
	DryRun       bool `yaml:"dry-run"`
}

// Tools holds external tool paths. A non-empty value set by the user must
// resolve on the search path; empty values are filled in by auto-detection
// where preflight finds something.
type Tools struct {
	Python string `yaml:"python"`
	Node   string `yaml:"node"`
	Gdb    string `yaml:"gdb"`
	Ccache string `yaml:"ccache"`
}

// TargetConfig is the per-triple record. All fields are optional.
type TargetConfig struct {
	// LLVMConfig points at an external llvm-config binary; when set, LLVM
	// is not built from source for this triple.
	LLVMConfig string `yaml:"llvm-config"`

	// LLVMFilecheck points at an external FileCheck binary.
	LLVMFilecheck string `yaml:"llvm-filecheck"`

	// MuslRoot is the root of a musl toolchain installation.
	MuslRoot string `yaml:"musl-root"`

	// NoStd is tri-state: nil means unset, preflight may default it.
	NoStd *bool `yaml:"no-std"`

	// CC, CXX and AR override the compiler driver defaults for this triple.
	CC  string `yaml:"cc"`
	CXX string `yaml:"cxx"`
	AR  string `yaml:"ar"`
}

// NewBuild returns a configuration with defaults applied.
func NewBuild() *Build {
	return &Build{
		Version: 1,
		Channel: "dev",
		Out:     "build",
		Flags: Flags{
			CodegenTests: true,
			Jemalloc:     true,
		},
		Target: make(map[string]*TargetConfig),
	}
}

// Load reads, schema-validates and normalizes the configuration file at path.
func Load(path string) (*Build, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	cfg := NewBuild()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	srcDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolve source root: %w", err)
	}
	cfg.SrcDir = srcDir

	cfg.applyEnvOverrides()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// normalize fills in derived fields and expands host/target defaults.
func (b *Build) normalize() {
	if len(b.Hosts) == 0 && b.Triple != "" {
		b.Hosts = []string{b.Triple}
	}
	if len(b.Targets) == 0 {
		b.Targets = slices.Clone(b.Hosts)
	}
	// Every host is also a target.
	for _, host := range b.Hosts {
		if !slices.Contains(b.Targets, host) {
			b.Targets = append(b.Targets, host)
		}
	}

	if b.Target == nil {
		b.Target = make(map[string]*TargetConfig)
	}

	out := b.Out
	if out == "" {
		out = "build"
	}
	if filepath.IsAbs(out) {
		b.OutDir = out
	} else {
		b.OutDir = filepath.Join(b.SrcDir, out)
	}
}

// applyEnvOverrides applies CRUCIBLE_* environment variables on top of the
// file-based configuration.
func (b *Build) applyEnvOverrides() {
	if v := os.Getenv("CRUCIBLE_CHANNEL"); v != "" {
		b.Channel = v
	}
	if v := os.Getenv("CRUCIBLE_OUT"); v != "" {
		b.Out = v
	}
	if v := os.Getenv("CRUCIBLE_DRY_RUN"); v == "1" || v == "true" {
		b.Flags.DryRun = true
	}
}

// Validate performs semantic validation beyond what the schema expresses.
func (b *Build) Validate() error {
	if b.Triple == "" {
		return fmt.Errorf("build triple must be set")
	}
	if !slices.Contains(Channels, b.Channel) {
		return fmt.Errorf("unknown channel %q (valid: %v)", b.Channel, Channels)
	}
	for _, host := range b.Hosts {
		if host == "" {
			return fmt.Errorf("hosts must not contain empty entries")
		}
	}
	for _, target := range b.Targets {
		if target == "" {
			return fmt.Errorf("targets must not contain empty entries")
		}
	}
	return nil
}

// TargetCfg returns the record for triple, or nil when none exists.
func (b *Build) TargetCfg(triple string) *TargetConfig {
	return b.Target[triple]
}

// EnsureTarget returns the record for triple, creating an empty one if
// absent. Used by preflight rules that amend per-target defaults.
func (b *Build) EnsureTarget(triple string) *TargetConfig {
	if b.Target == nil {
		b.Target = make(map[string]*TargetConfig)
	}
	tc, ok := b.Target[triple]
	if !ok {
		tc = &TargetConfig{}
		b.Target[triple] = tc
	}
	return tc
}

// NoStd returns the tri-state no-std setting for triple: nil when unset.
func (b *Build) NoStd(triple string) *bool {
	if tc := b.Target[triple]; tc != nil {
		return tc.NoStd
	}
	return nil
}

// MuslRoot returns the configured musl root for triple, or empty.
func (b *Build) MuslRoot(triple string) string {
	if tc := b.Target[triple]; tc != nil {
		return tc.MuslRoot
	}
	return ""
}

// LLVMConfig returns the external llvm-config path for triple, or empty.
func (b *Build) LLVMConfig(triple string) string {
	if tc := b.Target[triple]; tc != nil {
		return tc.LLVMConfig
	}
	return ""
}

// FindSourceRoot walks up from startDir looking for a crucible.yaml file or
// a .git entry. Returns the starting directory when neither is found.
func FindSourceRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", startDir, err)
	}

	dir := absDir
	for {
		if fileExists(filepath.Join(dir, DefaultConfigName)) {
			return dir, nil
		}
		if IsGitCheckout(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return absDir, nil
		}
		dir = parent
	}
}

// IsGitCheckout reports whether dir is a version-control checkout. The .git
// entry may be a directory or, for worktrees and submodules, a file.
func IsGitCheckout(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// LoadEnvFile loads a .env file from dir into the process environment when
// one exists. Existing variables are not overwritten.
func LoadEnvFile(dir string) error {
	path := filepath.Join(dir, ".env")
	if !fileExists(path) {
		return nil
	}
	return godotenv.Load(path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
