package mediaset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MinVideoSizeBytes is the smallest plausible size for a finished rendition.
const MinVideoSizeBytes = 100 * 1024

// ValidationIssue describes one rule a mediaset directory violates.
type ValidationIssue struct {
	Dir    string
	Detail string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", filepath.Base(v.Dir), v.Detail)
}

// Validate checks a materialized mediaset directory against the structural
// invariants: only canonical filenames, Metadaten.yaml present and parseable,
// at least one image or video, and no video below the size floor.
func Validate(dir string) []ValidationIssue {
	var issues []ValidationIssue
	report := func(format string, args ...any) {
		issues = append(issues, ValidationIssue{Dir: dir, Detail: fmt.Sprintf(format, args...)})
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		report("unreadable: %v", err)
		return issues
	}

	var largestVideo int64
	haveYaml := false
	haveMedia := false
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			report("unexpected subdirectory %q", name)
			continue
		}
		if !IsCanonicalName(name) {
			report("non-canonical file %q", name)
			continue
		}
		if name == FileMetadaten {
			haveYaml = true
			continue
		}
		haveMedia = true
		if IsVideoName(name) {
			info, err := entry.Info()
			if err != nil {
				report("stat %q: %v", name, err)
				continue
			}
			if info.Size() > largestVideo {
				largestVideo = info.Size()
			}
		}
	}

	if !haveYaml {
		report("missing %s", FileMetadaten)
	} else if meta, err := Load(dir); err != nil {
		report("unreadable metadata: %v", err)
	} else if err := meta.Validate(); err != nil {
		report("invalid metadata: %v", err)
	}
	if !haveMedia {
		report("no image or video present")
	}
	if largestVideo > 0 && largestVideo < MinVideoSizeBytes {
		report("largest video is %d bytes, below the %d byte floor", largestVideo, MinVideoSizeBytes)
	}
	return issues
}

// IssuesText renders issues as a newline-joined report.
func IssuesText(issues []ValidationIssue) string {
	parts := make([]string, 0, len(issues))
	for _, issue := range issues {
		parts = append(parts, issue.String())
	}
	return strings.Join(parts, "\n")
}
