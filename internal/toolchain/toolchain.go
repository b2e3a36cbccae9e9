// Package toolchain supplies per-target compiler, archiver and LLVM tool
// selections derived from the build configuration.
//
// Preflight only needs program names and paths, never invocations: the rule
// here is "configured value wins, otherwise a conventional default for the
// triple". MSVC triples use cl, native triples the system cc/c++, and cross
// triples the usual <triple>-prefixed GNU driver names.
package toolchain

import (
	"path/filepath"

	"github.com/crucible-build/crucible/internal/config"
	"github.com/crucible-build/crucible/internal/platform"
)

// CC returns the C compiler program for target.
func CC(cfg *config.Build, target string) string {
	if tc := cfg.TargetCfg(target); tc != nil && tc.CC != "" {
		return tc.CC
	}
	return defaultDriver(cfg, target, "cc", "gcc")
}

// CXX returns the C++ compiler program for host.
func CXX(cfg *config.Build, host string) string {
	if tc := cfg.TargetCfg(host); tc != nil && tc.CXX != "" {
		return tc.CXX
	}
	return defaultDriver(cfg, host, "c++", "g++")
}

// AR returns the archiver program configured for target, or empty when none
// is configured. Unlike the compilers there is no default: most toolchains
// bundle their own archiver.
func AR(cfg *config.Build, target string) string {
	if tc := cfg.TargetCfg(target); tc != nil {
		return tc.AR
	}
	return ""
}

// Filecheck returns the path of the LLVM FileCheck binary expected for
// triple: the configured override, a sibling of a configured external
// llvm-config, or the location inside the build's own LLVM output tree.
func Filecheck(cfg *config.Build, triple string) string {
	tc := cfg.TargetCfg(triple)
	if tc != nil && tc.LLVMFilecheck != "" {
		return tc.LLVMFilecheck
	}

	name := "FileCheck" + platform.Classify(triple).ExeSuffix()
	if tc != nil && tc.LLVMConfig != "" {
		return filepath.Join(filepath.Dir(tc.LLVMConfig), name)
	}
	return filepath.Join(cfg.OutDir, triple, "llvm", "build", "bin", name)
}

// defaultDriver picks the conventional driver name for a triple: native and
// MSVC triples use system names, cross triples the GNU prefixed form.
func defaultDriver(cfg *config.Build, triple, native, cross string) string {
	if platform.Classify(triple).MSVC {
		return "cl"
	}
	if triple == cfg.Triple {
		return native
	}
	return triple + "-" + cross
}
