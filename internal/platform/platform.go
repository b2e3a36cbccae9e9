// Package platform classifies target-platform identifiers (triples) into the
// small set of platform families the build system cares about.
//
// Classification happens once per triple; callers branch on the resulting
// flags instead of scattering substring matching across the codebase.
package platform

import (
	"runtime"
	"strings"
)

// Triple is a parsed view of a platform identifier such as
// "x86_64-unknown-linux-gnu" or "aarch64-apple-ios".
type Triple struct {
	// Name is the identifier exactly as configured.
	Name string

	// Windows is true for any Windows-family triple (msvc or gnu ABI).
	Windows bool

	// MSVC is true for triples using the MSVC toolchain ABI.
	MSVC bool

	// Darwin is true for macOS triples.
	Darwin bool

	// IOS is true for iOS triples.
	IOS bool

	// BareMetal is true for triples with no operating system runtime
	// (the "-none-" OS component).
	BareMetal bool

	// Musl is true for triples linking against the musl C library.
	Musl bool

	// Emscripten is true for emscripten web-assembly triples.
	Emscripten bool
}

// Classify parses a platform identifier into its family flags.
func Classify(name string) Triple {
	return Triple{
		Name:       name,
		Windows:    strings.Contains(name, "windows"),
		MSVC:       strings.Contains(name, "msvc"),
		Darwin:     strings.Contains(name, "apple-darwin"),
		IOS:        strings.Contains(name, "apple-ios"),
		BareMetal:  strings.Contains(name, "-none-"),
		Musl:       strings.Contains(name, "musl"),
		Emscripten: strings.Contains(name, "emscripten"),
	}
}

// ExeSuffix returns the executable filename suffix for binaries built for
// this triple: ".exe" for Windows-family triples, empty elsewhere.
func (t Triple) ExeSuffix() string {
	if t.Windows {
		return ".exe"
	}
	return ""
}

// HostIsWindows reports whether the machine running this process is Windows.
// This is distinct from any configured triple: it governs host-side concerns
// like PATH splitting and executable suffixes.
func HostIsWindows() bool {
	return runtime.GOOS == "windows"
}

// ExeSuffix returns the executable filename suffix for the host platform:
// ".exe" on Windows, empty elsewhere.
func ExeSuffix() string {
	if HostIsWindows() {
		return ".exe"
	}
	return ""
}
