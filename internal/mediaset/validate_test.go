package mediaset_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediathek/internal/mediaset"
)

func writeSet(t *testing.T, dir string, videoSize int) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	meta := sampleMetadata()
	if err := meta.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if videoSize > 0 {
		if err := os.WriteFile(filepath.Join(dir, mediaset.FileInternetHD), make([]byte, videoSize), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestValidateAcceptsCanonicalSet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "2023_Wanderung_am_See")
	writeSet(t, dir, 200*1024)
	if issues := mediaset.Validate(dir); len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
}

func TestValidateFlagsNonCanonicalNames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "2023_Test")
	writeSet(t, dir, 200*1024)
	if err := os.WriteFile(filepath.Join(dir, "extra.mov"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	issues := mediaset.Validate(dir)
	if len(issues) != 1 || !strings.Contains(issues[0].Detail, "non-canonical") {
		t.Fatalf("issues = %v", issues)
	}
}

func TestValidateFlagsTinyVideo(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "2023_Test")
	writeSet(t, dir, 10*1024)
	issues := mediaset.Validate(dir)
	if len(issues) != 1 || !strings.Contains(issues[0].Detail, "below") {
		t.Fatalf("issues = %v", issues)
	}
}

func TestValidateRequiresMetadataAndMedia(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "2023_Leer")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	issues := mediaset.Validate(dir)
	text := mediaset.IssuesText(issues)
	if !strings.Contains(text, "missing Metadaten.yaml") {
		t.Fatalf("missing yaml not reported: %v", issues)
	}
	if !strings.Contains(text, "no image or video") {
		t.Fatalf("missing media not reported: %v", issues)
	}
}
