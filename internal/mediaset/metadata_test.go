package mediaset_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediathek/internal/mediaset"
)

func sampleMetadata() *mediaset.Metadata {
	return &mediaset.Metadata{
		Spezifikationsversion: mediaset.SpecVersion,
		ID:                    mediaset.NewID(),
		Titel:                 "Wanderung am See",
		Typ:                   mediaset.TypFamilienfilm,
		Untertyp:              mediaset.UntertypEreignis,
		Jahr:                  "2023",
		Version:               1,
		Mediatheksdatum:       "2023-09-01",
		Aufnahmedatum:         "2023-08-01",
		Schluesselwoerter:     []string{"Familie", "Sommer"},
		Videoschnitt:          []string{"Anna"},
		DauerInSekunden:       754,
	}
}

func TestMetadataSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	meta := sampleMetadata()
	if err := meta.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, mediaset.FileMetadaten))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	firstLine := strings.SplitN(string(raw), "\n", 2)[0]
	if !strings.HasPrefix(firstLine, "$schema:") {
		t.Fatalf("first line must be the schema pointer, got %q", firstLine)
	}
	if !strings.Contains(string(raw), "Schlüsselwörter:") {
		t.Fatal("German key names must be preserved")
	}

	loaded, err := mediaset.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ID != meta.ID || loaded.Titel != meta.Titel || loaded.Version != 1 {
		t.Fatalf("round trip lost fields: %+v", loaded)
	}
	if len(loaded.Schluesselwoerter) != 2 || loaded.Schluesselwoerter[1] != "Sommer" {
		t.Fatalf("keywords = %v", loaded.Schluesselwoerter)
	}
	if loaded.DauerInSekunden != 754 {
		t.Fatalf("duration = %d", loaded.DauerInSekunden)
	}
}

func TestMetadataValidate(t *testing.T) {
	meta := sampleMetadata()
	if err := meta.Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	ereignis := *meta
	ereignis.Aufnahmedatum = ""
	if err := ereignis.Validate(); err == nil {
		t.Fatal("Ereignis without Aufnahmedatum must fail")
	}

	rueckblick := *meta
	rueckblick.Untertyp = mediaset.UntertypRueckblick
	rueckblick.Zeitraum = ""
	if err := rueckblick.Validate(); err == nil {
		t.Fatal("Rückblick without Zeitraum must fail")
	}
	rueckblick.Zeitraum = "Sommer 2023"
	if err := rueckblick.Validate(); err != nil {
		t.Fatalf("valid Rückblick rejected: %v", err)
	}

	badYear := *meta
	badYear.Jahr = "23"
	if err := badYear.Validate(); err == nil {
		t.Fatal("2-digit year must fail")
	}

	badVersion := *meta
	badVersion.Version = 0
	if err := badVersion.Validate(); err == nil {
		t.Fatal("zero version must fail")
	}
}

func TestNewIDIsULID(t *testing.T) {
	id := mediaset.NewID()
	if len(id) != 26 {
		t.Fatalf("ULID length = %d", len(id))
	}
	if id == mediaset.NewID() {
		t.Fatal("IDs must be unique")
	}
}
