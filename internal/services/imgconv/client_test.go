package imgconv_test

import (
	"context"
	"errors"
	"testing"

	"mediathek/internal/services/imgconv"
)

type recordingExecutor struct {
	args []string
	err  error
}

func (r *recordingExecutor) Run(_ context.Context, _ string, args []string) error {
	r.args = args
	return r.err
}

func TestToJPEGArguments(t *testing.T) {
	exec := &recordingExecutor{}
	client, err := imgconv.New("sips", imgconv.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := client.ToJPEG(context.Background(), "/in/Titelbild.heic", "/out/Titelbild.jpg"); err != nil {
		t.Fatalf("ToJPEG: %v", err)
	}
	want := []string{
		"--setProperty", "format", "jpeg",
		"--matchTo", imgconv.AdobeRGBProfile,
		"/in/Titelbild.heic",
		"--out", "/out/Titelbild.jpg",
	}
	if len(exec.args) != len(want) {
		t.Fatalf("args = %v", exec.args)
	}
	for i := range want {
		if exec.args[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, exec.args[i], want[i])
		}
	}
}

func TestToJPEGValidatesPaths(t *testing.T) {
	client, err := imgconv.New("sips", imgconv.WithExecutor(&recordingExecutor{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := client.ToJPEG(context.Background(), "", "/out/x.jpg"); err == nil {
		t.Error("empty source accepted")
	}
	if err := client.ToJPEG(context.Background(), "/in/x.heic", ""); err == nil {
		t.Error("empty target accepted")
	}
}

func TestToJPEGWrapsError(t *testing.T) {
	boom := errors.New("sips failed")
	client, err := imgconv.New("sips", imgconv.WithExecutor(&recordingExecutor{err: boom}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := client.ToJPEG(context.Background(), "/in/x.heic", "/out/x.jpg"); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}
