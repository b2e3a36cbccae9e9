package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/crucible-build/crucible/internal/errors"
)

// BuildLock serializes runs over one build output directory. Preflight both
// reads and amends the configuration backing that directory, so two
// concurrent invocations racing on the same tree would see half-applied
// state. Works on all platforms.
type BuildLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewBuildLock creates a lock scoped to the given output directory. The lock
// file is created at <outDir>/.crucible.lock.
func NewBuildLock(outDir string) *BuildLock {
	lockPath := filepath.Join(outDir, ".crucible.lock")
	return &BuildLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// TryLock attempts to acquire the lock without blocking. A held lock is a
// fatal diagnostic: some other crucible invocation owns the directory.
func (l *BuildLock) TryLock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	ok, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire build lock: %w", err)
	}
	if !ok {
		return errors.Newf(errors.ErrCodeLockHeld,
			"another crucible invocation holds the build directory lock at %s", l.path).
			WithSuggestion("wait for the other invocation to finish, or remove the lock file if it is stale")
	}

	l.locked = true
	return nil
}

// Unlock releases the lock. Safe to call when the lock was never acquired.
func (l *BuildLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	return l.flock.Unlock()
}
