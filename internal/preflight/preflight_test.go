package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"mediathek/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDirectoryReadable(t *testing.T) {
	if result := CheckDirectoryReadable("test", t.TempDir()); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := CheckDirectoryReadable("test", filepath.Join(t.TempDir(), "nope")); result.Passed {
		t.Fatal("expected failure for missing dir")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if result := CheckFreeSpace("test", dir, 1); !result.Passed {
		t.Fatalf("expected pass for tiny floor, got: %s", result.Detail)
	}
	// An absurd floor no filesystem satisfies.
	if result := CheckFreeSpace("test", dir, 1<<62); result.Passed {
		t.Fatal("expected failure for huge floor")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.SourceDirs = []string{t.TempDir()}
	cfg.Paths.StagingDir = t.TempDir()
	cfg.Paths.LibraryDir = t.TempDir()

	results := RunAll(&cfg)
	// Source + staging + library + free space.
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
	if !AllPassed(results) {
		t.Error("AllPassed should be true")
	}
}

func TestRunAll_ReportsMissingSource(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.SourceDirs = []string{filepath.Join(t.TempDir(), "gone")}
	cfg.Paths.StagingDir = t.TempDir()
	cfg.Paths.LibraryDir = ""

	results := RunAll(&cfg)
	if AllPassed(results) {
		t.Fatal("expected a failing check for the missing source dir")
	}
}
