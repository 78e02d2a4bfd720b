package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mediathek/internal/assembler"
	"mediathek/internal/config"
	"mediathek/internal/journal"
	"mediathek/internal/library"
	"mediathek/internal/logging"
	"mediathek/internal/media/probe"
	"mediathek/internal/notifications"
	"mediathek/internal/services/compressor"
	"mediathek/internal/services/imgconv"
	"mediathek/internal/services/tagger"
	"mediathek/internal/transcode"
)

// Manager wires the pipeline stages together for one process.
type Manager struct {
	cfg        *config.Config
	logger     *slog.Logger
	prober     *probe.Prober
	assembler  *assembler.Assembler
	supervisor *transcode.Supervisor
	integrator *library.Integrator
	converter  imgconv.Converter
	journal    *journal.Store
	notifier   notifications.Service
}

// Dependencies lets tests and special setups replace the external
// collaborators. Nil fields keep the default wiring.
type Dependencies struct {
	Submitter compressor.Submitter
	Tagger    tagger.Tagger
	Converter imgconv.Converter
	Journal   *journal.Store
	Notifier  notifications.Service
}

// New constructs a manager with the production collaborators.
func New(cfg *config.Config, logger *slog.Logger) (*Manager, error) {
	return NewWithDependencies(cfg, logger, Dependencies{})
}

// NewWithDependencies constructs a manager, overriding collaborators where
// the dependency struct provides them.
func NewWithDependencies(cfg *config.Config, logger *slog.Logger, deps Dependencies) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("workflow manager requires a config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	submitter := deps.Submitter
	if submitter == nil {
		client, err := compressor.New(cfg.TranscoderBinary())
		if err != nil {
			return nil, fmt.Errorf("transcoder client: %w", err)
		}
		submitter = client
	}
	tags := deps.Tagger
	if tags == nil {
		client, err := tagger.New(cfg.TaggerBinary())
		if err != nil {
			return nil, fmt.Errorf("tagger client: %w", err)
		}
		tags = client
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	converter := deps.Converter
	if converter == nil {
		client, err := imgconv.New(cfg.ImageConverterBinary())
		if err != nil {
			return nil, fmt.Errorf("image converter client: %w", err)
		}
		converter = client
	}

	prober := probe.New(cfg.ExiftoolBinary(), cfg.FFprobeBinary(), logger)
	supervisor, err := transcode.New(transcode.Settings{
		MaxConcurrentJobs:   cfg.Transcoder.MaxConcurrentJobs,
		CheckInterval:       time.Duration(cfg.Transcoder.CheckIntervalSeconds) * time.Second,
		MaxChecks:           cfg.Transcoder.MaxChecks,
		MinSourceSize:       cfg.Transcoder.MinSourceSizeBytes,
		MinOutputSize:       cfg.Transcoder.MinOutputSizeBytes,
		MedienserverProfile: cfg.Transcoder.MedienserverProfile,
		DeleteSourceOnDone:  cfg.Transcoder.DeleteSourceOnDone,
		FFprobeBinary:       cfg.FFprobeBinary(),
	}, submitter, tags, logger)
	if err != nil {
		return nil, err
	}

	return &Manager{
		cfg:        cfg,
		logger:     logging.WithComponent(logger, "workflow"),
		prober:     prober,
		assembler:  assembler.New(prober, logger),
		supervisor: supervisor,
		integrator: library.New(cfg.Paths.LibraryDir, cfg.Integration.NewVersionAfterDays, logger),
		converter:  converter,
		journal:    deps.Journal,
		notifier:   notifier,
	}, nil
}

// OpenJournal attaches the run journal. Callers that only inspect history
// can skip this; Run works without a journal, it just records nothing.
func (m *Manager) OpenJournal(ctx context.Context) error {
	if m.journal != nil {
		return nil
	}
	if err := m.cfg.EnsureDirectories(); err != nil {
		return err
	}
	store, err := journal.Open(ctx, m.cfg.JournalPath())
	if err != nil {
		return err
	}
	m.journal = store
	return nil
}

// Close releases resources held by the manager.
func (m *Manager) Close() error {
	return m.journal.Close()
}

// Integrator exposes the library integrator for single-directory commands.
func (m *Manager) Integrator() *library.Integrator { return m.integrator }

// Journal returns the attached run journal, nil before OpenJournal.
func (m *Manager) Journal() *journal.Store { return m.journal }
