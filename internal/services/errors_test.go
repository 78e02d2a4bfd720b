package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"mediathek/internal/services"
)

func TestWrapCarriesMarkerAndDetail(t *testing.T) {
	cause := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "probe", "run exiftool", "exit status 1", cause)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("marker lost: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost: %v", err)
	}
	for _, part := range []string{"probe", "run exiftool", "exit status 1"} {
		if !strings.Contains(err.Error(), part) {
			t.Fatalf("detail %q missing from %v", part, err)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "transcode", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestIsFatal(t *testing.T) {
	if services.IsFatal(nil) {
		t.Fatal("nil must not be fatal")
	}
	if services.IsFatal(services.Wrap(services.ErrTransient, "job", "poll", "timed out", nil)) {
		t.Fatal("transient must not be fatal")
	}
	if !services.IsFatal(services.Wrap(services.ErrFatal, "library", "integrate", "corrupt slot", nil)) {
		t.Fatal("fatal marker ignored")
	}
	if !services.IsFatal(fmt.Errorf("outer: %w", services.ErrConfiguration)) {
		t.Fatal("configuration errors are fatal")
	}
}
