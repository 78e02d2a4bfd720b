package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscoder()
	c.normalizeIntegration()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	expanded := make([]string, 0, len(c.Paths.SourceDirs))
	for i, dir := range c.Paths.SourceDirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		resolved, err := expandPath(dir)
		if err != nil {
			return fmt.Errorf("paths.source_dirs[%d]: %w", i, err)
		}
		expanded = append(expanded, resolved)
	}
	c.Paths.SourceDirs = expanded
	return nil
}

func (c *Config) normalizeTranscoder() {
	if c.Transcoder.MaxConcurrentJobs <= 0 {
		c.Transcoder.MaxConcurrentJobs = defaultMaxConcurrentJobs
	}
	if c.Transcoder.CheckIntervalSeconds <= 0 {
		c.Transcoder.CheckIntervalSeconds = defaultCheckIntervalSeconds
	}
	if c.Transcoder.MaxChecks <= 0 {
		c.Transcoder.MaxChecks = defaultMaxChecks
	}
	if c.Transcoder.MinSourceSizeBytes <= 0 {
		c.Transcoder.MinSourceSizeBytes = defaultMinSourceSizeBytes
	}
	if c.Transcoder.MinOutputSizeBytes <= 0 {
		c.Transcoder.MinOutputSizeBytes = defaultMinOutputSizeBytes
	}
	if strings.TrimSpace(c.Transcoder.MedienserverProfile) == "" {
		c.Transcoder.MedienserverProfile = defaultMedienserverProfile
	}
}

func (c *Config) normalizeIntegration() {
	if c.Integration.NewVersionAfterDays <= 0 {
		c.Integration.NewVersionAfterDays = defaultNewVersionAfterDays
	}
}

func (c *Config) normalizeLogging() {
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}
