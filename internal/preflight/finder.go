package preflight

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/crucible-build/crucible/internal/errors"
	"github.com/crucible-build/crucible/internal/platform"
)

// lookupResult caches one resolution: a miss is as cacheable as a hit.
type lookupResult struct {
	path string
	ok   bool
}

// Finder resolves program names against a snapshot of the search path taken
// at construction. Results are memoized under the exact string queried, so
// repeated lookups never re-touch the filesystem and answers stay stable even
// if PATH changes mid-run. A Finder lives for one validation pass and is not
// safe for concurrent use.
type Finder struct {
	cache     map[string]lookupResult
	path      string
	exeSuffix string

	// probes counts directory probes, exposed to tests verifying the
	// at-most-one-search-per-name contract.
	probes int
}

// NewFinder snapshots the current PATH.
func NewFinder() *Finder {
	return &Finder{
		cache:     make(map[string]lookupResult),
		path:      os.Getenv("PATH"),
		exeSuffix: platform.ExeSuffix(),
	}
}

// MaybeHave looks up cmd and returns its path when found. Absence is a
// normal result, not an error.
func (f *Finder) MaybeHave(cmd string) (string, bool) {
	if res, ok := f.cache[cmd]; ok {
		return res.path, res.ok
	}

	res := f.search(cmd)
	f.cache[cmd] = res
	return res.path, res.ok
}

// MustHave looks up cmd and returns a fatal missing-tool error naming it
// when absent. This is the fail-fast primitive behind every mandatory check.
func (f *Finder) MustHave(cmd string) (string, error) {
	path, ok := f.MaybeHave(cmd)
	if !ok {
		return "", errors.ToolNotFound(cmd)
	}
	return path, nil
}

func (f *Finder) search(cmd string) lookupResult {
	// A query carrying its own path component is checked as-is rather
	// than joined onto search directories.
	if strings.ContainsRune(cmd, os.PathSeparator) || filepath.IsAbs(cmd) {
		f.probes++
		if f.matches(cmd, filepath.Base(cmd)) {
			return lookupResult{path: cmd, ok: true}
		}
		return lookupResult{}
	}

	for _, dir := range filepath.SplitList(f.path) {
		if dir == "" {
			continue
		}
		f.probes++
		candidate := filepath.Join(dir, cmd)
		if f.matches(candidate, cmd) {
			return lookupResult{path: candidate, ok: true}
		}
	}
	return lookupResult{}
}

// matches applies the per-candidate policy: the bare file, the file with the
// platform executable suffix, or a directory named like the command holding
// a suffixed executable of the same name.
func (f *Finder) matches(candidate, cmd string) bool {
	if isFile(candidate) {
		return true
	}
	if f.exeSuffix != "" && pathExists(candidate+f.exeSuffix) {
		return true
	}
	return pathExists(filepath.Join(candidate, cmd+f.exeSuffix))
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
