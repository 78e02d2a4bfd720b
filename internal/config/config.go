package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// SourceDirs are the roots scanned for incoming media files.
	SourceDirs []string `toml:"source_dirs"`
	// StagingDir receives materialized mediasets before integration.
	StagingDir string `toml:"staging_dir"`
	// LibraryDir is the root of the versioned media library.
	LibraryDir string `toml:"library_dir"`
	LogDir     string `toml:"log_dir"`
	// CacheDir holds the instance lock and the run journal.
	CacheDir string `toml:"cache_dir"`
}

// Tools names the external binaries the pipeline drives. Empty values fall
// back to the conventional command names.
type Tools struct {
	Exiftool       string `toml:"exiftool"`
	FFprobe        string `toml:"ffprobe"`
	Transcoder     string `toml:"transcoder"`
	Tagger         string `toml:"tagger"`
	ImageConverter string `toml:"image_converter"`
}

// Transcoder tunes the transcode supervisor. The poll parameters are
// deliberately configurable; historical runs used intervals between 30 and
// 60 seconds and check budgets between 10 and 100.
type Transcoder struct {
	MaxConcurrentJobs    int    `toml:"max_concurrent_jobs"`
	CheckIntervalSeconds int    `toml:"check_interval_seconds"`
	MaxChecks            int    `toml:"max_checks"`
	MinSourceSizeBytes   int64  `toml:"min_source_size_bytes"`
	MinOutputSizeBytes   int64  `toml:"min_output_size_bytes"`
	MedienserverProfile  string `toml:"medienserver_profile"`
	DeleteSourceOnDone   bool   `toml:"delete_source_on_success"`
}

// Integration tunes the library integrator.
type Integration struct {
	// NewVersionAfterDays is the Mediatheksdatum age beyond which an Auto
	// integration opens a new version instead of overwriting.
	NewVersionAfterDays int `toml:"new_version_after_days"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	OnCompletion   bool   `toml:"on_completion"`
	OnFailure      bool   `toml:"on_failure"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for mediathek.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Tools         Tools         `toml:"tools"`
	Transcoder    Transcoder    `toml:"transcoder"`
	Integration   Integration   `toml:"integration"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path of the default config file.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mediathek/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a config file was actually found.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run needs. LibraryDir is
// created best-effort so runs can start while external storage is offline.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir, c.Paths.CacheDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.LibraryDir) != "" {
		_ = os.MkdirAll(c.Paths.LibraryDir, 0o755)
	}
	return nil
}

// LockPath returns the single-instance lockfile location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.CacheDir, "mediathek.lock")
}

// JournalPath returns the run-journal database location.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.CacheDir, "journal.db")
}

// ExiftoolBinary returns the exiftool executable name.
func (c *Config) ExiftoolBinary() string { return binaryOr(c.Tools.Exiftool, "exiftool") }

// FFprobeBinary returns the ffprobe executable name.
func (c *Config) FFprobeBinary() string { return binaryOr(c.Tools.FFprobe, "ffprobe") }

// TranscoderBinary returns the transcoder executable name.
func (c *Config) TranscoderBinary() string { return binaryOr(c.Tools.Transcoder, "compressor") }

// TaggerBinary returns the file tagger executable name.
func (c *Config) TaggerBinary() string { return binaryOr(c.Tools.Tagger, "tag") }

// ImageConverterBinary returns the image converter executable name.
func (c *Config) ImageConverterBinary() string { return binaryOr(c.Tools.ImageConverter, "sips") }

func binaryOr(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
