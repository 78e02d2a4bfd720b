package preflight

import (
	"mediathek/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// MinFreeBytes is the staging free-space floor. Transcodes can multiply the
// source footprint, so small remainders are treated as a failure.
const MinFreeBytes = 2 << 30

// RunAll executes the applicable checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, dir := range cfg.Paths.SourceDirs {
		results = append(results, CheckDirectoryReadable("Source directory", dir))
	}
	results = append(results, CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir))
	if cfg.Paths.LibraryDir != "" {
		results = append(results, CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir))
	}
	results = append(results, CheckFreeSpace("Staging free space", cfg.Paths.StagingDir, MinFreeBytes))
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
