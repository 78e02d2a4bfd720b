package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTranscoder(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		return errors.New("paths.library_dir must be set")
	}
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return errors.New("paths.staging_dir must be set")
	}
	return nil
}

func (c *Config) validateTranscoder() error {
	if c.Transcoder.MaxConcurrentJobs > 16 {
		return fmt.Errorf("transcoder.max_concurrent_jobs %d exceeds the supported maximum of 16", c.Transcoder.MaxConcurrentJobs)
	}
	if c.Transcoder.MinOutputSizeBytes >= c.Transcoder.MinSourceSizeBytes {
		return errors.New("transcoder.min_output_size_bytes must be smaller than min_source_size_bytes")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
}
