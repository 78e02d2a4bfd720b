package workflow_test

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"mediathek/internal/workflow"
)

func TestAcquireLockWritesPid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locks", "mediathek.lock")
	lock, err := workflow.AcquireLock(path)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	defer lock.Release()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read lock file: %v", err)
	}
	if string(data) != strconv.Itoa(os.Getpid()) {
		t.Errorf("lock file content = %q, want our pid", data)
	}
}

func TestAcquireLockRefusesSecondHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediathek.lock")
	lock, err := workflow.AcquireLock(path)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	defer lock.Release()

	if _, err := workflow.AcquireLock(path); !errors.Is(err, workflow.ErrInstanceRunning) {
		t.Fatalf("second acquire err = %v, want ErrInstanceRunning", err)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediathek.lock")
	lock, err := workflow.AcquireLock(path)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("lock file still present after release")
	}

	relock, err := workflow.AcquireLock(path)
	if err != nil {
		t.Fatalf("reacquire after release: %v", err)
	}
	relock.Release()
}
