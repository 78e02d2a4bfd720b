package workflow

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"
)

// ErrInstanceRunning means another pipeline process holds the lock.
var ErrInstanceRunning = errors.New("another mediathek instance is already running")

// InstanceLock enforces single-instance execution. The lock file carries the
// holder's PID as ASCII decimal so an operator can identify the process.
type InstanceLock struct {
	path string
	lock *flock.Flock
}

// AcquireLock takes the instance lock at path without blocking.
func AcquireLock(path string) (*InstanceLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire instance lock: %w", err)
	}
	if !ok {
		return nil, ErrInstanceRunning
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("write lock pid: %w", err)
	}
	return &InstanceLock{path: path, lock: lock}, nil
}

// Path returns the lock file location.
func (l *InstanceLock) Path() string { return l.path }

// Release drops the lock and removes the file. Safe to call twice.
func (l *InstanceLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	err := l.lock.Unlock()
	if removeErr := os.Remove(l.path); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) && err == nil {
		err = removeErr
	}
	l.lock = nil
	return err
}
