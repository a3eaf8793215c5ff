// Package filelock guards a playbook directory against concurrent runs.
package filelock

import (
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/up-stack/up/internal/errors"
)

// LockName is the lock file created inside the playbook directory.
const LockName = ".up.lock"

// RunLock is an advisory lock held for the duration of one run.
type RunLock struct {
	flock *flock.Flock
	path  string
}

// New creates a run lock for the playbook in baseDir. The lock is not
// acquired until Acquire is called.
func New(baseDir string) *RunLock {
	path := filepath.Join(baseDir, LockName)
	return &RunLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Path returns the lock file path.
func (l *RunLock) Path() string {
	return l.path
}

// Acquire takes the lock without blocking. It fails when another run
// already holds it.
func (l *RunLock) Acquire() error {
	acquired, err := l.flock.TryLock()
	if err != nil {
		return errors.Wrap(errors.CodeRunLocked, "acquiring run lock", err).
			WithDetail("path", l.path)
	}
	if !acquired {
		return errors.RunLocked(l.path)
	}
	return nil
}

// Release releases the lock.
func (l *RunLock) Release() error {
	return l.flock.Unlock()
}
