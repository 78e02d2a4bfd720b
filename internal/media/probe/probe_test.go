package probe_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mediathek/internal/logging"
	"mediathek/internal/media/probe"
	"mediathek/internal/services"
)

func writeFixture(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("fixture"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestProbeMergesToolOutputs(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "clip.mov")

	restoreExif := probe.SetExiftoolRunnerForTests(func(ctx context.Context, binary, p string) (probe.ExiftoolRecord, error) {
		return probe.ExiftoolRecord{
			Title:        "2024-05-03 Birthday",
			CreationDate: "2024:05:03 14:30:00+02:00",
			Producer:     "Anna, Ben",
		}, nil
	})
	defer restoreExif()

	bitrate := int64(62_000_000)
	restoreFF := probe.SetFFprobeRunnerForTests(func(ctx context.Context, binary, p string) (probe.VideoStream, error) {
		return probe.VideoStream{Codec: "hevc", BitRate: &bitrate, Width: 3840, Height: 2160}, nil
	})
	defer restoreFF()

	prober := probe.New("exiftool", "ffprobe", logging.NewNop())
	file, err := prober.Probe(context.Background(), path)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if file.Kind != probe.KindVideo || file.Container != ".mov" {
		t.Fatalf("kind/container = %v %q", file.Kind, file.Container)
	}
	if file.Video.Codec != "hevc" || file.Video.Height != 2160 {
		t.Fatalf("stream values lost: %+v", file.Video)
	}
	if mbps, ok := file.BitRateMbps(); !ok || mbps != 62 {
		t.Fatalf("BitRateMbps = %v %v", mbps, ok)
	}
	if file.Tags.Title != "2024-05-03 Birthday" {
		t.Fatalf("title = %q", file.Tags.Title)
	}
	if file.TimezoneAssumed {
		t.Fatal("timezone was explicit in CreationDate")
	}
	want := time.Date(2024, 5, 3, 14, 30, 0, 0, time.FixedZone("", 2*3600))
	if !file.CreatedAt.Equal(want) {
		t.Fatalf("CreatedAt = %v, want %v", file.CreatedAt, want)
	}
}

func TestProbeFallsBackToModTime(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "still.jpg")

	restore := probe.SetExiftoolRunnerForTests(func(ctx context.Context, binary, p string) (probe.ExiftoolRecord, error) {
		return probe.ExiftoolRecord{}, nil
	})
	defer restore()

	prober := probe.New("exiftool", "ffprobe", logging.NewNop())
	file, err := prober.Probe(context.Background(), path)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if file.Kind != probe.KindImage {
		t.Fatalf("kind = %v", file.Kind)
	}
	if !file.TimezoneAssumed {
		t.Fatal("mtime fallback must flag the assumed timezone")
	}
	if file.CreatedAt.IsZero() {
		t.Fatal("CreatedAt unset")
	}
}

func TestProbeCachesPerPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "still.png")

	calls := 0
	restore := probe.SetExiftoolRunnerForTests(func(ctx context.Context, binary, p string) (probe.ExiftoolRecord, error) {
		calls++
		return probe.ExiftoolRecord{Title: "Herbst"}, nil
	})
	defer restore()

	prober := probe.New("exiftool", "ffprobe", logging.NewNop())
	for i := 0; i < 3; i++ {
		if _, err := prober.Probe(context.Background(), path); err != nil {
			t.Fatalf("Probe #%d: %v", i, err)
		}
	}
	if calls != 1 {
		t.Fatalf("exiftool ran %d times, want 1", calls)
	}
}

func TestProbeReturnsStructuredErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "clip.mp4")

	restore := probe.SetExiftoolRunnerForTests(func(ctx context.Context, binary, p string) (probe.ExiftoolRecord, error) {
		return probe.ExiftoolRecord{}, &probe.Error{Kind: probe.ToolFailed, Path: p, Tool: binary}
	})
	defer restore()

	prober := probe.New("exiftool", "ffprobe", logging.NewNop())
	_, err := prober.Probe(context.Background(), path)
	var probeErr *probe.Error
	if !errors.As(err, &probeErr) || probeErr.Kind != probe.ToolFailed {
		t.Fatalf("expected ToolFailed, got %v", err)
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatal("probe errors classify as external tool errors")
	}
}

func TestProbeMissingFile(t *testing.T) {
	prober := probe.New("exiftool", "ffprobe", logging.NewNop())
	_, err := prober.Probe(context.Background(), filepath.Join(t.TempDir(), "absent.mov"))
	var probeErr *probe.Error
	if !errors.As(err, &probeErr) || probeErr.Kind != probe.FileUnreadable {
		t.Fatalf("expected FileUnreadable, got %v", err)
	}
}

func TestKindForPath(t *testing.T) {
	cases := map[string]probe.Kind{
		"a.MOV":    probe.KindVideo,
		"b.m4v":    probe.KindVideo,
		"c.png":    probe.KindImage,
		"d.HEIC":   probe.KindImage,
		"e.txt":    probe.KindOther,
		"노래.mp4":   probe.KindVideo,
		"f.mov.sb": probe.KindOther,
	}
	for path, want := range cases {
		if got := probe.KindForPath(path); got != want {
			t.Fatalf("KindForPath(%q) = %v, want %v", path, got, want)
		}
	}
}
