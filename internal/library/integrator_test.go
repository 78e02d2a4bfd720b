package library_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mediathek/internal/library"
	"mediathek/internal/logging"
	"mediathek/internal/mediaset"
	"mediathek/internal/services"
)

func fixedNow(t *testing.T, integrator *library.Integrator, day string) {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02", day, time.Local)
	if err != nil {
		t.Fatal(err)
	}
	restore := integrator.SetNowForTests(func() time.Time { return ts })
	t.Cleanup(restore)
}

// stageMediaset builds an incoming mediaset directory with one rendition and
// a Metadaten.yaml.
func stageMediaset(t *testing.T, parent string, meta *mediaset.Metadata, videoContent string) string {
	t.Helper()
	dir := filepath.Join(parent, mediaset.DirName(meta.Jahr, "Sommerfest"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, mediaset.FileInternetHD), []byte(videoContent), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := meta.Save(dir); err != nil {
		t.Fatal(err)
	}
	return dir
}

func sampleMeta() *mediaset.Metadata {
	return &mediaset.Metadata{
		Spezifikationsversion: mediaset.SpecVersion,
		ID:                    mediaset.NewID(),
		Titel:                 "Sommerfest",
		Typ:                   mediaset.TypFamilienfilm,
		Untertyp:              mediaset.UntertypEreignis,
		Aufnahmedatum:         "2023-06-10",
		Jahr:                  "2023",
		Version:               1,
	}
}

func TestIntegrateCreatesFreshSlot(t *testing.T) {
	root := t.TempDir()
	staging := t.TempDir()
	meta := sampleMeta()
	dir := stageMediaset(t, staging, meta, "video")

	integrator := library.New(root, 40, logging.NewNop())
	fixedNow(t, integrator, "2023-07-01")

	outcome, err := integrator.Integrate(dir, library.ModeAuto)
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	if !outcome.Created {
		t.Error("outcome should be marked created")
	}
	if outcome.Mode != library.ModeCreated {
		t.Errorf("mode = %q, want %q", outcome.Mode, library.ModeCreated)
	}
	wantSlot := filepath.Join(root, "2023", "2023_Sommerfest")
	if outcome.Slot != wantSlot {
		t.Errorf("slot = %s, want %s", outcome.Slot, wantSlot)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("source directory should be gone")
	}
	stored, err := mediaset.Load(wantSlot)
	if err != nil {
		t.Fatalf("Load slot: %v", err)
	}
	if stored.ID != meta.ID || stored.Version != 1 {
		t.Errorf("stored identity = %s v%d", stored.ID, stored.Version)
	}
	if stored.Mediatheksdatum != "2023-07-01" {
		t.Errorf("Mediatheksdatum = %q", stored.Mediatheksdatum)
	}
}

func TestIntegrateAutoOverwritesRecentSlot(t *testing.T) {
	root := t.TempDir()
	staging := t.TempDir()

	first := sampleMeta()
	integrator := library.New(root, 40, logging.NewNop())
	fixedNow(t, integrator, "2023-07-01")
	if _, err := integrator.Integrate(stageMediaset(t, staging, first, "old"), library.ModeAuto); err != nil {
		t.Fatalf("first Integrate: %v", err)
	}

	// Ten days later, inside the 40-day window.
	second := sampleMeta()
	fixedNow(t, integrator, "2023-07-11")
	outcome, err := integrator.Integrate(stageMediaset(t, staging, second, "new"), library.ModeAuto)
	if err != nil {
		t.Fatalf("second Integrate: %v", err)
	}
	if outcome.Mode != library.ModeOverwrite {
		t.Fatalf("mode = %s, want overwrite", outcome.Mode)
	}
	if outcome.ID != first.ID {
		t.Error("overwrite must preserve the slot identity")
	}
	if outcome.Version != 2 {
		t.Errorf("version = %d, want 2", outcome.Version)
	}
	data, err := os.ReadFile(filepath.Join(outcome.Slot, mediaset.FileInternetHD))
	if err != nil || string(data) != "new" {
		t.Errorf("slot rendition = %q, %v", data, err)
	}
	if _, err := os.Stat(filepath.Join(root, "2023", library.VersionsDirName)); !os.IsNotExist(err) {
		t.Error("overwrite must not create an archive")
	}
}

func TestIntegrateAutoArchivesOldSlot(t *testing.T) {
	root := t.TempDir()
	staging := t.TempDir()

	first := sampleMeta()
	integrator := library.New(root, 40, logging.NewNop())
	fixedNow(t, integrator, "2023-01-10")
	if _, err := integrator.Integrate(stageMediaset(t, staging, first, "old"), library.ModeAuto); err != nil {
		t.Fatalf("first Integrate: %v", err)
	}

	// Half a year later, past the 40-day window.
	second := sampleMeta()
	fixedNow(t, integrator, "2023-07-11")
	outcome, err := integrator.Integrate(stageMediaset(t, staging, second, "new"), library.ModeAuto)
	if err != nil {
		t.Fatalf("second Integrate: %v", err)
	}
	if outcome.Mode != library.ModeNewVersion {
		t.Fatalf("mode = %s, want new-version", outcome.Mode)
	}
	if outcome.ID != second.ID {
		t.Error("new version keeps the incoming identity")
	}
	if outcome.Version != 2 {
		t.Errorf("version = %d, want 2", outcome.Version)
	}

	archived, err := mediaset.Load(filepath.Join(root, "2023", library.VersionsDirName, "Version_1"))
	if err != nil {
		t.Fatalf("archived slot: %v", err)
	}
	if archived.ID != first.ID || archived.Version != 1 {
		t.Errorf("archived identity = %s v%d", archived.ID, archived.Version)
	}
	data, err := os.ReadFile(filepath.Join(outcome.Slot, mediaset.FileInternetHD))
	if err != nil || string(data) != "new" {
		t.Errorf("slot rendition = %q, %v", data, err)
	}
}

func TestIntegrateVersionCollision(t *testing.T) {
	root := t.TempDir()
	staging := t.TempDir()

	first := sampleMeta()
	integrator := library.New(root, 40, logging.NewNop())
	fixedNow(t, integrator, "2023-01-10")
	if _, err := integrator.Integrate(stageMediaset(t, staging, first, "old"), library.ModeAuto); err != nil {
		t.Fatalf("first Integrate: %v", err)
	}
	collision := filepath.Join(root, "2023", library.VersionsDirName, "Version_1")
	if err := os.MkdirAll(collision, 0o755); err != nil {
		t.Fatal(err)
	}

	second := sampleMeta()
	_, err := integrator.Integrate(stageMediaset(t, staging, second, "new"), library.ModeNewVersion)
	var versionErr *library.VersionCollisionError
	if !errors.As(err, &versionErr) {
		t.Fatalf("err = %v, want VersionCollisionError", err)
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Error("collision should carry the validation marker")
	}
}

func TestIntegrateCorruptSlot(t *testing.T) {
	root := t.TempDir()
	staging := t.TempDir()

	cases := []struct {
		name    string
		prepare func(t *testing.T, slot string)
		kind    library.CorruptionKind
	}{
		{
			name: "missing yaml",
			prepare: func(t *testing.T, slot string) {
				if err := os.MkdirAll(slot, 0o755); err != nil {
					t.Fatal(err)
				}
			},
			kind: library.MissingYaml,
		},
		{
			name: "missing id",
			prepare: func(t *testing.T, slot string) {
				meta := sampleMeta()
				meta.ID = ""
				meta.Mediatheksdatum = "2023-01-10"
				if err := os.MkdirAll(slot, 0o755); err != nil {
					t.Fatal(err)
				}
				if err := meta.Save(slot); err != nil {
					t.Fatal(err)
				}
			},
			kind: library.MissingID,
		},
		{
			name: "missing mediatheksdatum",
			prepare: func(t *testing.T, slot string) {
				meta := sampleMeta()
				if err := os.MkdirAll(slot, 0o755); err != nil {
					t.Fatal(err)
				}
				if err := meta.Save(slot); err != nil {
					t.Fatal(err)
				}
			},
			kind: library.MissingMediatheksdatum,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			integrator := library.New(filepath.Join(root, tc.name), 40, logging.NewNop())
			fixedNow(t, integrator, "2023-07-01")
			slot := integrator.SlotPath("2023", "Sommerfest")
			tc.prepare(t, slot)

			dir := stageMediaset(t, filepath.Join(staging, tc.name), sampleMeta(), "video")
			_, err := integrator.Integrate(dir, library.ModeAuto)
			var corrupt *library.CorruptSlotError
			if !errors.As(err, &corrupt) {
				t.Fatalf("err = %v, want CorruptSlotError", err)
			}
			if corrupt.Kind != tc.kind {
				t.Errorf("kind = %s, want %s", corrupt.Kind, tc.kind)
			}
			if !errors.Is(err, services.ErrFatal) {
				t.Error("corruption should carry the fatal marker")
			}
		})
	}
}
