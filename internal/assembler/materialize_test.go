package assembler_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mediathek/internal/assembler"
	"mediathek/internal/logging"
	"mediathek/internal/media/classify"
	"mediathek/internal/media/probe"
	"mediathek/internal/mediaset"
)

func member(t *testing.T, dir, name string, role classify.Role, size int) mediaset.Member {
	t.Helper()
	path := writeSized(t, dir, name, size)
	file := probe.ProbedFile{
		Path:      path,
		Size:      int64(size),
		Kind:      probe.KindForPath(path),
		Container: strings.ToLower(filepath.Ext(path)),
		CreatedAt: time.Date(2023, 6, 10, 12, 0, 0, 0, time.Local),
	}
	return mediaset.Member{File: file, Role: role}
}

func sampleCandidate(t *testing.T, dir string) *mediaset.Candidate {
	t.Helper()
	master := member(t, dir, "master.mov", classify.RoleMaster, 9000)
	server := member(t, dir, "server.mov", classify.RoleMedienserver, 5000)
	hd := member(t, dir, "hd.m4v", classify.RoleInternetHD, 1000)
	poster := member(t, dir, "Sommerfest.png", classify.RolePoster, 200)

	master.File.Tags.Producer = "Anna Berg"
	duration := 240.0
	master.File.Video.Duration = &duration

	return &mediaset.Candidate{
		Key:     classify.Key{Title: "Sommerfest", FullTitle: "2023-06-10 Sommerfest", ContentDate: "2023-06-10"},
		Year:    "2023",
		Members: []mediaset.Member{master, server, hd, poster},
		Source:  master.File,
	}
}

func TestMaterializeCreatesCanonicalLayout(t *testing.T) {
	source := t.TempDir()
	out := t.TempDir()
	candidate := sampleCandidate(t, source)

	materializer := assembler.NewMaterializer(logging.NewNop(), assembler.NoPrompt)
	dir, err := materializer.Materialize(context.Background(), candidate, assembler.MaterializeOptions{OutputRoot: out})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if filepath.Base(dir) != "2023_Sommerfest" {
		t.Errorf("dir = %s, want 2023_Sommerfest", dir)
	}

	for _, name := range []string{
		mediaset.FileMedienserver, mediaset.FileInternetHD,
		mediaset.FilePosterPNG, mediaset.FileMetadaten,
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	// The master stays outside the mediaset directory.
	if _, err := os.Stat(filepath.Join(source, "master.mov")); err != nil {
		t.Errorf("master was moved: %v", err)
	}
	if _, err := os.Stat(filepath.Join(source, "server.mov")); !os.IsNotExist(err) {
		t.Errorf("server.mov still in source dir")
	}

	meta, err := mediaset.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if meta.Titel != "Sommerfest" || meta.Jahr != "2023" || meta.Version != 1 {
		t.Errorf("metadata = %+v", meta)
	}
	if meta.ID == "" {
		t.Error("metadata has no Id")
	}
	if meta.Untertyp != mediaset.UntertypEreignis || meta.Aufnahmedatum != "2023-06-10" {
		t.Errorf("Untertyp/Aufnahmedatum = %q/%q", meta.Untertyp, meta.Aufnahmedatum)
	}
	if meta.Mediatheksdatum != "" {
		t.Errorf("Mediatheksdatum = %q, want empty before integration", meta.Mediatheksdatum)
	}
	if len(meta.Videoschnitt) != 1 || meta.Videoschnitt[0] != "Anna Berg" {
		t.Errorf("Videoschnitt = %v", meta.Videoschnitt)
	}
	if meta.DauerInSekunden != 240 {
		t.Errorf("Dauer = %d", meta.DauerInSekunden)
	}
}

func TestMaterializeSchemaLineComesFirst(t *testing.T) {
	source := t.TempDir()
	out := t.TempDir()
	materializer := assembler.NewMaterializer(logging.NewNop(), assembler.NoPrompt)
	dir, err := materializer.Materialize(context.Background(), sampleCandidate(t, source), assembler.MaterializeOptions{OutputRoot: out})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, mediaset.FileMetadaten))
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	first := strings.SplitN(string(data), "\n", 2)[0]
	if !strings.Contains(first, "$schema") {
		t.Errorf("first line = %q, want $schema pointer", first)
	}
}

func TestMaterializeOverwriteDeclined(t *testing.T) {
	source := t.TempDir()
	out := t.TempDir()
	candidate := sampleCandidate(t, source)

	existingDir := filepath.Join(out, candidate.DirName())
	if err := os.MkdirAll(existingDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(existingDir, mediaset.FileMedienserver), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	materializer := assembler.NewMaterializer(logging.NewNop(), assembler.DenyAll)
	dir, err := materializer.Materialize(context.Background(), candidate, assembler.MaterializeOptions{OutputRoot: out})
	if err == nil {
		t.Fatal("expected overwrite error")
	}
	if dir == "" {
		t.Error("directory path should be returned despite the failure")
	}

	// The declined target keeps its old content, the rest moved.
	data, readErr := os.ReadFile(filepath.Join(existingDir, mediaset.FileMedienserver))
	if readErr != nil || string(data) != "old" {
		t.Errorf("existing file was replaced: %q %v", data, readErr)
	}
	if _, statErr := os.Stat(filepath.Join(existingDir, mediaset.FileInternetHD)); statErr != nil {
		t.Errorf("other renditions should still materialize: %v", statErr)
	}
}

func TestMaterializeRueckblickNeedsZeitraum(t *testing.T) {
	source := t.TempDir()
	out := t.TempDir()
	candidate := sampleCandidate(t, source)

	materializer := assembler.NewMaterializer(logging.NewNop(), assembler.NoPrompt)
	_, err := materializer.Materialize(context.Background(), candidate, assembler.MaterializeOptions{
		OutputRoot: out,
		Overrides:  assembler.Overrides{Untertyp: mediaset.UntertypRueckblick},
	})
	if err == nil || !strings.Contains(err.Error(), "Zeitraum") {
		t.Fatalf("err = %v, want missing Zeitraum", err)
	}

	dir, err := materializer.Materialize(context.Background(), sampleCandidate(t, t.TempDir()), assembler.MaterializeOptions{
		OutputRoot: t.TempDir(),
		Overrides:  assembler.Overrides{Untertyp: mediaset.UntertypRueckblick, Zeitraum: "Sommer 2023"},
	})
	if err != nil {
		t.Fatalf("Materialize with Zeitraum: %v", err)
	}
	meta, err := mediaset.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if meta.Untertyp != mediaset.UntertypRueckblick || meta.Zeitraum != "Sommer 2023" {
		t.Errorf("metadata = %+v", meta)
	}
}

type fakeConverter struct {
	calls [][2]string
	err   error
}

func (f *fakeConverter) ToJPEG(_ context.Context, sourcePath, targetPath string) error {
	f.calls = append(f.calls, [2]string{sourcePath, targetPath})
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(targetPath, []byte("jpeg"), 0o644)
}

func TestMaterializeDerivesPosterJPEG(t *testing.T) {
	source := t.TempDir()
	out := t.TempDir()
	candidate := sampleCandidate(t, source)
	converter := &fakeConverter{}

	materializer := assembler.NewMaterializer(logging.NewNop(), assembler.NoPrompt,
		assembler.WithConverter(converter))
	dir, err := materializer.Materialize(context.Background(), candidate, assembler.MaterializeOptions{
		OutputRoot:        out,
		ConvertPosterJPEG: true,
	})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if len(converter.calls) != 1 {
		t.Fatalf("converter calls = %d, want 1", len(converter.calls))
	}
	for _, name := range []string{mediaset.FilePosterJPG, mediaset.FilePosterPNG} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestMaterializeSkipsPosterJPEGWithoutConverter(t *testing.T) {
	source := t.TempDir()
	candidate := sampleCandidate(t, source)

	materializer := assembler.NewMaterializer(logging.NewNop(), assembler.NoPrompt)
	dir, err := materializer.Materialize(context.Background(), candidate, assembler.MaterializeOptions{
		OutputRoot:        t.TempDir(),
		ConvertPosterJPEG: true,
	})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, mediaset.FilePosterJPG)); err == nil {
		t.Errorf("unexpected Titelbild.jpg without a converter")
	}
}
