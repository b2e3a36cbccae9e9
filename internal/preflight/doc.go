// Package preflight verifies that the build environment is usable before any
// build work starts: every external program the build will need resolves on
// the search path, configuration values are internally consistent, and
// platform constraints (cross targets, generator choice, libc variants) are
// satisfiable.
//
// Checks run synchronously in a fixed order and fail fast: the first
// unrecoverable problem aborts validation with a diagnostic naming the
// missing command or inconsistent value. On the happy path some checks amend
// configuration defaults (enabling Ninja, defaulting a musl root, inferring
// no-std), and those amendments are visible to whatever consumes the
// configuration afterwards.
package preflight
