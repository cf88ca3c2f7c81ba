// Package lock guards a sweep output directory against concurrent writers.
// Two sweeps sharing one directory would interleave artifacts and clobber
// results.csv, so the first one plants a lock file and later ones fail fast.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// ErrLocked is returned when another sweep already holds the directory.
var ErrLocked = errors.New("output directory is locked by another sweep")

// LockFileName is the marker planted inside the output directory. It holds
// the PID of the owning process. A crashed sweep leaves it behind; --force
// or manual removal clears it.
const LockFileName = ".minebench.lock"

// SweepLock is an exclusive, file-based lock on one output directory.
// The lock is not acquired until AcquireOrFail is called.
type SweepLock struct {
	path string
	held bool
}

// NewSweepLock creates a lock for the given output directory.
func NewSweepLock(dir string) *SweepLock {
	return &SweepLock{
		path: filepath.Join(dir, LockFileName),
	}
}

// AcquireOrFail plants the lock file, failing with ErrLocked when another
// process got there first. The parent directory is created when missing so
// locking can precede the first artifact write.
func (l *SweepLock) AcquireOrFail() error {
	if l.held {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("preparing lock directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, os.ErrExist) {
		owner := l.ownerPID()
		if owner != "" {
			return fmt.Errorf("%w: %s (held by pid %s)", ErrLocked, l.path, owner)
		}
		return fmt.Errorf("%w: %s", ErrLocked, l.path)
	}
	if err != nil {
		return fmt.Errorf("creating lock file %s: %w", l.path, err)
	}

	_, writeErr := f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
	closeErr := f.Close()
	if writeErr != nil || closeErr != nil {
		os.Remove(l.path)
		if writeErr != nil {
			return fmt.Errorf("writing lock file %s: %w", l.path, writeErr)
		}
		return fmt.Errorf("closing lock file %s: %w", l.path, closeErr)
	}

	l.held = true
	return nil
}

// Release removes the lock file. Releasing a lock that was never acquired
// is a no-op, so defer lock.Release() is always safe.
func (l *SweepLock) Release() error {
	if !l.held {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing lock file %s: %w", l.path, err)
	}
	l.held = false
	return nil
}

// IsHeld reports whether this process holds the lock.
func (l *SweepLock) IsHeld() bool {
	return l.held
}

// Path returns the lock file path.
func (l *SweepLock) Path() string {
	return l.path
}

// ownerPID reads the PID recorded in an existing lock file, for the
// conflict error message. Best effort only.
func (l *SweepLock) ownerPID() string {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return ""
	}
	pid := string(data)
	for len(pid) > 0 && (pid[len(pid)-1] == '\n' || pid[len(pid)-1] == '\r') {
		pid = pid[:len(pid)-1]
	}
	if _, err := strconv.Atoi(pid); err != nil {
		return ""
	}
	return pid
}
