package config

const (
	defaultStagingDir           = "~/.local/share/mediathek/staging"
	defaultLibraryDir           = "~/Mediathek"
	defaultLogDir               = "~/.local/share/mediathek/logs"
	defaultCacheDir             = "~/.cache/mediathek"
	defaultMaxConcurrentJobs    = 3
	defaultCheckIntervalSeconds = 30
	defaultMaxChecks            = 60
	defaultMinSourceSizeBytes   = 25 * 1024 * 1024
	defaultMinOutputSizeBytes   = 100 * 1024
	defaultMedienserverProfile  = "HEVC Medienserver"
	defaultNewVersionAfterDays  = 40
	defaultNotifyTimeout        = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
			CacheDir:   defaultCacheDir,
		},
		Transcoder: Transcoder{
			MaxConcurrentJobs:    defaultMaxConcurrentJobs,
			CheckIntervalSeconds: defaultCheckIntervalSeconds,
			MaxChecks:            defaultMaxChecks,
			MinSourceSizeBytes:   defaultMinSourceSizeBytes,
			MinOutputSizeBytes:   defaultMinOutputSizeBytes,
			MedienserverProfile:  defaultMedienserverProfile,
		},
		Integration: Integration{
			NewVersionAfterDays: defaultNewVersionAfterDays,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			OnCompletion:   true,
			OnFailure:      true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
