package tagger_test

import (
	"context"
	"errors"
	"testing"

	"mediathek/internal/services/tagger"
)

type fakeExecutor struct {
	output string
	err    error
	calls  [][]string
}

func (f *fakeExecutor) Run(_ context.Context, _ string, args []string) (string, error) {
	f.calls = append(f.calls, args)
	return f.output, f.err
}

func TestHasLabel(t *testing.T) {
	exec := &fakeExecutor{output: "Rot, An Apple Kompressor übergeben"}
	client, err := tagger.New("tag", tagger.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	found, err := client.HasLabel(context.Background(), "/in/master.mov", tagger.SubmittedLabel)
	if err != nil {
		t.Fatalf("HasLabel: %v", err)
	}
	if !found {
		t.Error("label should be found")
	}

	exec.output = "Rot"
	found, err = client.HasLabel(context.Background(), "/in/master.mov", tagger.SubmittedLabel)
	if err != nil {
		t.Fatalf("HasLabel: %v", err)
	}
	if found {
		t.Error("label should be absent")
	}
}

func TestAddLabel(t *testing.T) {
	exec := &fakeExecutor{}
	client, err := tagger.New("tag", tagger.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := client.AddLabel(context.Background(), "/in/master.mov", tagger.SubmittedLabel); err != nil {
		t.Fatalf("AddLabel: %v", err)
	}
	if len(exec.calls) != 1 {
		t.Fatalf("calls = %d", len(exec.calls))
	}
	args := exec.calls[0]
	if args[0] != "--add" || args[1] != tagger.SubmittedLabel || args[2] != "/in/master.mov" {
		t.Errorf("args = %v", args)
	}
}

func TestLabelErrorsPropagate(t *testing.T) {
	boom := errors.New("tag failed")
	client, err := tagger.New("tag", tagger.WithExecutor(&fakeExecutor{err: boom}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.HasLabel(context.Background(), "/x", "L"); !errors.Is(err, boom) {
		t.Errorf("HasLabel err = %v", err)
	}
	if err := client.AddLabel(context.Background(), "/x", "L"); !errors.Is(err, boom) {
		t.Errorf("AddLabel err = %v", err)
	}
}
