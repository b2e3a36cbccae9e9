package preflight

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/crucible-build/crucible/internal/config"
	"github.com/crucible-build/crucible/internal/errors"
	"github.com/crucible-build/crucible/internal/platform"
	"github.com/crucible-build/crucible/internal/proc"
	"github.com/crucible-build/crucible/internal/stage0"
	"github.com/crucible-build/crucible/internal/toolchain"
)

// PythonOverrideEnv names the environment variable that, when set, supplies
// the python path directly. The value is trusted as-is: wrapper scripts set
// it after doing their own resolution.
const PythonOverrideEnv = "CRUCIBLE_PYTHON"

// Validator runs the ordered preflight rule set against a build
// configuration. Rules run strictly sequentially; the first fatal problem
// stops the pass and is returned unchanged.
type Validator struct {
	log     *slog.Logger
	runner  proc.Runner
	out     io.Writer
	verbose bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the structured logger for check tracing.
func WithLogger(log *slog.Logger) Option {
	return func(v *Validator) {
		v.log = log
	}
}

// WithRunner overrides the subprocess runner used by probe checks.
func WithRunner(r proc.Runner) Option {
	return func(v *Validator) {
		v.runner = r
	}
}

// WithOutput sets the writer for per-rule progress lines.
func WithOutput(w io.Writer) Option {
	return func(v *Validator) {
		v.out = w
	}
}

// WithVerbose enables per-rule progress lines.
func WithVerbose(verbose bool) Option {
	return func(v *Validator) {
		v.verbose = verbose
	}
}

// New creates a Validator with the given options.
func New(opts ...Option) *Validator {
	v := &Validator{
		log:    slog.Default(),
		runner: proc.Exec{},
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// session is the state shared by one validation pass: the configuration under
// validation, the path snapshot, and facts established by earlier rules.
type session struct {
	cfg    *config.Build
	finder *Finder

	// buildingLLVM is set by the cmake rule and gates the ninja rule.
	buildingLLVM bool
}

// check is one rule: a name for diagnostics and the rule body.
type check struct {
	name string
	run  func(ctx context.Context, s *session) error
}

// Check runs every preflight rule in order against cfg, mutating it in place
// where detection amends defaults. It returns the first fatal error, or nil
// when the environment is usable.
func (v *Validator) Check(ctx context.Context, cfg *config.Build) error {
	s := &session{cfg: cfg, finder: NewFinder()}

	for _, c := range v.checks() {
		if err := c.run(ctx, s); err != nil {
			v.log.Debug("preflight check failed", "rule", c.name, "error", err)
			return err
		}
		v.pass(c.name)
	}
	return nil
}

// checks returns the rule set. Order is part of the contract: fail-fast means
// an earlier rule's failure masks every later one.
func (v *Validator) checks() []check {
	return []check{
		{"search-path", v.checkSearchPath},
		{"git", v.checkGit},
		{"cmake", v.checkCMake},
		{"ninja", v.checkNinja},
		{"python", v.checkPython},
		{"node", v.checkNode},
		{"gdb", v.checkGdb},
		{"target-cc", v.checkTargetCC},
		{"host-cxx", v.checkHostCXX},
		{"filecheck", v.checkFilecheck},
		{"target-constraints", v.checkTargetConstraints},
		{"lldb", v.checkLldb},
		{"ccache", v.checkCcache},
		{"stage0", v.checkStage0},
	}
}

// checkSearchPath rejects quote characters in PATH on Windows, where they
// corrupt path splitting and make files unresolvable.
func (v *Validator) checkSearchPath(_ context.Context, s *session) error {
	return validateSearchPath(s.finder.path, platform.HostIsWindows())
}

func validateSearchPath(path string, windows bool) error {
	if windows && strings.Contains(path, `"`) {
		return errors.Newf(errors.ErrCodeBadSearchPath, `PATH contains invalid character '"'`).
			WithSuggestion("remove the quoted entry from PATH and retry")
	}
	return nil
}

// checkGit requires git for version-control checkouts, which the build needs
// for submodules and commit metadata.
func (v *Validator) checkGit(_ context.Context, s *session) error {
	if !config.IsGitCheckout(s.cfg.SrcDir) {
		return nil
	}
	_, err := s.finder.MustHave("git")
	return err
}

// checkCMake requires cmake when LLVM is built from source for any target or
// when sanitizer runtimes are enabled.
func (v *Validator) checkCMake(_ context.Context, s *session) error {
	for _, target := range s.cfg.Targets {
		if s.cfg.LLVMConfig(target) == "" {
			s.buildingLLVM = true
			break
		}
	}

	if s.buildingLLVM || s.cfg.Flags.Sanitizers {
		if _, err := s.finder.MustHave("cmake"); err != nil {
			return err
		}
	}
	return nil
}

// checkNinja resolves the Ninja generator when LLVM is built from source.
// When requested, the renamed ninja-build package satisfies the requirement
// softly before plain ninja becomes mandatory. When not requested on an MSVC
// build host, a present ninja is silently enabled: the default MSVC generator
// mishandles some build options.
func (v *Validator) checkNinja(_ context.Context, s *session) error {
	if !s.buildingLLVM {
		return nil
	}

	if s.cfg.Flags.Ninja {
		// Some Linux distros rename ninja to ninja-build; cmake accepts
		// either binary name.
		if _, ok := s.finder.MaybeHave("ninja-build"); !ok {
			if _, err := s.finder.MustHave("ninja"); err != nil {
				return err
			}
		}
		return nil
	}

	if platform.Classify(s.cfg.Triple).MSVC {
		if _, ok := s.finder.MaybeHave("ninja"); ok {
			s.cfg.Flags.Ninja = true
			v.log.Debug("enabling ninja for the msvc build host")
		}
	}
	return nil
}

// checkPython resolves the python interpreter: a configured path must
// resolve, the environment override is trusted as-is, and otherwise the
// legacy interpreter names are tried before plain python becomes mandatory.
func (v *Validator) checkPython(_ context.Context, s *session) error {
	tools := &s.cfg.Tools

	if tools.Python != "" {
		path, err := s.finder.MustHave(tools.Python)
		if err != nil {
			return err
		}
		tools.Python = path
		return nil
	}

	if override := os.Getenv(PythonOverrideEnv); override != "" {
		tools.Python = override
		return nil
	}

	if path, ok := s.finder.MaybeHave("python2.7"); ok {
		tools.Python = path
		return nil
	}
	if path, ok := s.finder.MaybeHave("python2"); ok {
		tools.Python = path
		return nil
	}

	path, err := s.finder.MustHave("python")
	if err != nil {
		return err
	}
	tools.Python = path
	return nil
}

// checkNode resolves node, accepting the Debian nodejs name. Node is
// optional: both names absent leaves the field unresolved.
func (v *Validator) checkNode(_ context.Context, s *session) error {
	tools := &s.cfg.Tools

	if tools.Node != "" {
		path, err := s.finder.MustHave(tools.Node)
		if err != nil {
			return err
		}
		tools.Node = path
		return nil
	}

	if path, ok := s.finder.MaybeHave("node"); ok {
		tools.Node = path
	} else if path, ok := s.finder.MaybeHave("nodejs"); ok {
		tools.Node = path
	}
	return nil
}

// checkGdb resolves the debugger. Optional.
func (v *Validator) checkGdb(_ context.Context, s *session) error {
	tools := &s.cfg.Tools

	if tools.Gdb != "" {
		path, err := s.finder.MustHave(tools.Gdb)
		if err != nil {
			return err
		}
		tools.Gdb = path
		return nil
	}

	if path, ok := s.finder.MaybeHave("gdb"); ok {
		tools.Gdb = path
	}
	return nil
}

// checkTargetCC requires the C compiler (and any configured archiver) for
// every target. Emscripten targets are skipped: the C toolchain is only
// needed for their own tests, not for artifact builds. Dry runs skip the
// whole rule.
func (v *Validator) checkTargetCC(_ context.Context, s *session) error {
	if s.cfg.Flags.DryRun {
		return nil
	}

	for _, target := range s.cfg.Targets {
		if platform.Classify(target).Emscripten {
			continue
		}

		if _, err := s.finder.MustHave(toolchain.CC(s.cfg, target)); err != nil {
			return err
		}
		if ar := toolchain.AR(s.cfg, target); ar != "" {
			if _, err := s.finder.MustHave(ar); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkHostCXX requires the C++ compiler for every host unless dry-running,
// and unconditionally disables jemalloc on MSVC hosts where the allocator is
// not packaged.
func (v *Validator) checkHostCXX(_ context.Context, s *session) error {
	for _, host := range s.cfg.Hosts {
		if !s.cfg.Flags.DryRun {
			if _, err := s.finder.MustHave(toolchain.CXX(s.cfg, host)); err != nil {
				return err
			}
		}

		if platform.Classify(host).MSVC {
			s.cfg.Flags.Jemalloc = false
		}
	}
	return nil
}

// checkFilecheck verifies that the FileCheck binary expected for the build
// host exists when codegen tests need it. A path inside the build's own
// output tree is exempt: that binary is produced by the build itself.
func (v *Validator) checkFilecheck(_ context.Context, s *session) error {
	filecheck := toolchain.Filecheck(s.cfg, s.cfg.Triple)

	inOutTree := strings.HasPrefix(filecheck, s.cfg.OutDir+string(os.PathSeparator)) ||
		filecheck == s.cfg.OutDir
	if !inOutTree && !pathExists(filecheck) && s.cfg.Flags.CodegenTests {
		return errors.Newf(errors.ErrCodeFileNotFound,
			"FileCheck executable %q does not exist", filecheck).
			WithSuggestion("point target.<triple>.llvm-filecheck at a FileCheck binary, or disable flags.codegen-tests")
	}
	return nil
}

// checkTargetConstraints enforces the per-target platform rules: iOS needs a
// macOS build host, bare-metal targets are no-std, musl targets need their
// static artifacts, and MSVC targets need a cmake with Visual Studio
// generators.
func (v *Validator) checkTargetConstraints(ctx context.Context, s *session) error {
	build := platform.Classify(s.cfg.Triple)

	for _, target := range s.cfg.Targets {
		tp := platform.Classify(target)

		if tp.IOS && !build.Darwin {
			return errors.Newf(errors.ErrCodeTargetUnbuildable,
				"the iOS target %s is only supported on macOS build hosts", target)
		}

		if tp.BareMetal {
			if err := s.applyNoStdDefault(target); err != nil {
				return err
			}
		}

		if tp.Musl {
			if err := s.checkMuslRoot(target); err != nil {
				return err
			}
		}

		if tp.MSVC {
			if err := v.checkMSVCGenerator(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyNoStdDefault defaults bare-metal targets to no-std and rejects an
// explicit opt-out: such targets have no runtime to build.
func (s *session) applyNoStdDefault(target string) error {
	noStd := s.cfg.NoStd(target)
	if noStd == nil {
		enabled := true
		s.cfg.EnsureTarget(target).NoStd = &enabled
		return nil
	}
	if !*noStd {
		return errors.Newf(errors.ErrCodeNoStdConflict,
			"target %s has no operating system runtime and must be no-std", target)
	}
	return nil
}

// checkMuslRoot validates the musl toolchain root for target, defaulting to
// the system toolchain in /usr for native musl builds before giving up.
func (s *session) checkMuslRoot(target string) error {
	if s.cfg.MuslRoot(target) == "" && target == s.cfg.Triple {
		s.cfg.EnsureTarget(target).MuslRoot = "/usr"
	}

	root := s.cfg.MuslRoot(target)
	if root == "" {
		return errors.Newf(errors.ErrCodeMuslRoot,
			"no musl root configured for target %s", target).
			WithSuggestion(fmt.Sprintf("set target.%s.musl-root in %s", target, config.DefaultConfigName))
	}

	for _, lib := range []string{"libc.a", "libunwind.a"} {
		path := filepath.Join(root, "lib", lib)
		if !pathExists(path) {
			return errors.Newf(errors.ErrCodeMuslRoot,
				"couldn't find %s in musl dir: %s", lib, path).
				WithDetail("target", target)
		}
	}
	return nil
}

// checkMSVCGenerator probes cmake's help output for Visual Studio generator
// support. Cygwin/msys builds of cmake lack those generators and cannot
// target MSVC.
func (v *Validator) checkMSVCGenerator(ctx context.Context) error {
	out, err := v.runner.Output(ctx, "cmake", "--help")
	if err != nil || !strings.Contains(out, "Visual Studio") {
		return errors.Newf(errors.ErrCodeCMakeGenerator,
			"cmake does not support Visual Studio generators").
			WithSuggestion("this is likely an msys/cygwin build of cmake; under msys2 install mingw-w64-x86_64-cmake instead: pacman -R cmake && pacman -S mingw-w64-x86_64-cmake")
	}
	return nil
}

// checkLldb captures the debugger's version and Python directory. Best
// effort: any failure leaves the fields unresolved and the pass continues.
func (v *Validator) checkLldb(ctx context.Context, s *session) error {
	version, err := proc.FirstLine(ctx, v.runner, "lldb", "--version")
	if err != nil {
		return nil
	}
	s.cfg.LldbVersion = version

	if dir, err := proc.FirstLine(ctx, v.runner, "lldb", "-P"); err == nil {
		s.cfg.LldbPythonDir = dir
	}
	return nil
}

// checkCcache requires a configured compiler cache to resolve.
func (v *Validator) checkCcache(_ context.Context, s *session) error {
	if s.cfg.Tools.Ccache == "" {
		return nil
	}
	_, err := s.finder.MustHave(s.cfg.Tools.Ccache)
	return err
}

// checkStage0 refuses to cut a stable release bootstrapped from a
// development compiler.
func (v *Validator) checkStage0(_ context.Context, s *session) error {
	if s.cfg.Channel != "stable" {
		return nil
	}

	md, err := stage0.Load(s.cfg.SrcDir)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStage0Provenance, err)
	}
	if md.IsDev() {
		return errors.Newf(errors.ErrCodeStage0Provenance,
			"bootstrapping from a dev compiler in a stable release; stable must bootstrap from a released compiler")
	}
	return nil
}

// pass emits a per-rule progress line in verbose mode.
func (v *Validator) pass(name string) {
	if !v.verbose || v.out == nil {
		return
	}

	label := "PASS"
	if isTerminal(v.out) && !noColor() {
		label = "\x1b[32mPASS\x1b[0m"
	}
	fmt.Fprintf(v.out, "[%s] %s\n", label, name)
}

// isTerminal checks if the writer is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// noColor honors the NO_COLOR convention.
func noColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}
