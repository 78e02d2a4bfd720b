package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mediathek/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The directories exist on return, the source dir included. Transcoder poll
// parameters are set to test-friendly values and can be overridden.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceDirs = []string{filepath.Join(base, "source")}
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.LibraryDir = filepath.Join(base, "library")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Transcoder.MaxConcurrentJobs = 2
	cfgVal.Transcoder.CheckIntervalSeconds = 1
	cfgVal.Transcoder.MaxChecks = 5
	cfgVal.Transcoder.MinSourceSizeBytes = 100
	cfgVal.Transcoder.MinOutputSizeBytes = 50
	cfgVal.Notifications.NtfyTopic = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	for _, dir := range builder.cfg.Paths.SourceDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir source dir: %v", err)
		}
	}
	return builder.cfg
}

// WithTranscoder customizes the transcoder settings on the test config.
func WithTranscoder(fn func(*config.Transcoder)) ConfigOption {
	return func(b *configBuilder) {
		fn(&b.cfg.Transcoder)
	}
}

// WithNtfyTopic enables notifications on the test config.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}
