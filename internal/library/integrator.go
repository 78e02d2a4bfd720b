package library

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mediathek/internal/fileutil"
	"mediathek/internal/logging"
	"mediathek/internal/mediaset"
	"mediathek/internal/services"
	"mediathek/internal/textutil"
)

// Mode selects the integration strategy for an occupied slot.
type Mode string

const (
	// ModeAuto decides between overwrite and new-version from the age of
	// the slot's Mediatheksdatum.
	ModeAuto Mode = "auto"
	// ModeOverwrite replaces the slot's files, preserving its identity.
	ModeOverwrite Mode = "overwrite"
	// ModeNewVersion archives the slot and installs the incoming mediaset
	// as a distinct release under the same slot name.
	ModeNewVersion Mode = "new-version"
	// ModeCreated is never requested; it reports that the slot was empty
	// and the mediaset went in fresh.
	ModeCreated Mode = "created"
)

// VersionsDirName holds archived releases inside a year directory.
const VersionsDirName = "Vorherige_Versionen"

// Outcome describes a finished integration.
type Outcome struct {
	// Slot is the final slot directory.
	Slot string
	// Mode is the strategy actually applied; for ModeAuto it is the
	// resolved one.
	Mode Mode
	// ID and Version are the slot's identity after integration.
	ID      string
	Version int
	// Created is set when the slot did not exist before.
	Created bool
	// ArchivedTo is the path the previous release moved to, when one was.
	ArchivedTo string
}

// Integrator commits assembled mediasets into the versioned library.
// Integrations are sequential; the orchestrator never interleaves them.
type Integrator struct {
	root                string
	newVersionAfterDays int
	logger              *slog.Logger
	now                 func() time.Time
}

// New constructs an Integrator rooted at the library directory.
func New(root string, newVersionAfterDays int, logger *slog.Logger) *Integrator {
	return &Integrator{
		root:                root,
		newVersionAfterDays: newVersionAfterDays,
		logger:              logging.WithComponent(logger, "library"),
		now:                 time.Now,
	}
}

// SetNowForTests replaces the clock and returns a restore function.
func (i *Integrator) SetNowForTests(now func() time.Time) func() {
	previous := i.now
	i.now = now
	return func() { i.now = previous }
}

// SlotPath returns the slot directory for a year and title.
func (i *Integrator) SlotPath(year, title string) string {
	return filepath.Join(i.root, year, mediaset.DirName(year, textutil.SanitizeFileName(title)))
}

// Integrate reconciles mediasetDir against the library. The incoming
// Metadaten.yaml supplies year and title for slot resolution; on success the
// source directory is gone and the slot holds the new release.
func (i *Integrator) Integrate(mediasetDir string, mode Mode) (*Outcome, error) {
	meta, err := mediaset.Load(mediasetDir)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation,
			"library", "load-incoming", "incoming mediaset has no readable Metadaten.yaml", err)
	}
	if meta.Version < 1 {
		meta.Version = 1
	}

	slot := i.SlotPath(meta.Jahr, meta.Titel)
	today := i.now().Format("2006-01-02")

	if !fileutil.Exists(slot) {
		return i.createSlot(mediasetDir, slot, meta, today)
	}
	if !fileutil.Exists(filepath.Join(slot, mediaset.FileMetadaten)) {
		return nil, &CorruptSlotError{Slot: slot, Kind: MissingYaml}
	}

	existing, err := i.loadSlot(slot)
	if err != nil {
		return nil, err
	}

	resolved := mode
	if resolved == ModeAuto {
		resolved, err = i.decide(slot, existing)
		if err != nil {
			return nil, err
		}
	}

	switch resolved {
	case ModeOverwrite:
		return i.overwrite(mediasetDir, slot, meta, existing, today)
	case ModeNewVersion:
		return i.newVersion(mediasetDir, slot, meta, existing, today)
	default:
		return nil, services.Wrap(services.ErrValidation,
			"library", "integrate", fmt.Sprintf("unknown integration mode %q", resolved), nil)
	}
}

// loadSlot reads and sanity-checks the occupied slot's metadata.
func (i *Integrator) loadSlot(slot string) (*mediaset.Metadata, error) {
	existing, err := mediaset.Load(slot)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &CorruptSlotError{Slot: slot, Kind: MissingYaml, Err: err}
		}
		return nil, &CorruptSlotError{Slot: slot, Kind: UnparseableVersion, Err: err}
	}
	if existing.ID == "" {
		return nil, &CorruptSlotError{Slot: slot, Kind: MissingID}
	}
	if existing.Mediatheksdatum == "" {
		return nil, &CorruptSlotError{Slot: slot, Kind: MissingMediatheksdatum}
	}
	if existing.Version < 1 {
		existing.Version = 1
	}
	return existing, nil
}

// decide implements the auto rule: edits close to the last integration are
// revisions of the same release, edits far apart are a new release.
func (i *Integrator) decide(slot string, existing *mediaset.Metadata) (Mode, error) {
	last, err := time.ParseInLocation("2006-01-02", existing.Mediatheksdatum, time.Local)
	if err != nil {
		return "", &CorruptSlotError{Slot: slot, Kind: MissingMediatheksdatum, Err: err}
	}
	ageDays := int(i.now().Sub(last).Hours() / 24)
	if ageDays > i.newVersionAfterDays {
		return ModeNewVersion, nil
	}
	return ModeOverwrite, nil
}

func (i *Integrator) createSlot(mediasetDir, slot string, meta *mediaset.Metadata, today string) (*Outcome, error) {
	if err := os.MkdirAll(filepath.Dir(slot), 0o755); err != nil {
		return nil, fmt.Errorf("create year directory: %w", err)
	}
	if err := fileutil.MoveDir(mediasetDir, slot); err != nil {
		return nil, fmt.Errorf("move mediaset into slot: %w", err)
	}
	meta.Mediatheksdatum = today
	if err := meta.Save(slot); err != nil {
		return nil, err
	}
	i.logger.Info("created library slot",
		logging.String(logging.FieldPath, slot),
		logging.Int(logging.FieldVersion, meta.Version))
	return &Outcome{Slot: slot, Mode: ModeCreated, ID: meta.ID, Version: meta.Version, Created: true}, nil
}

func (i *Integrator) overwrite(mediasetDir, slot string, meta, existing *mediaset.Metadata, today string) (*Outcome, error) {
	meta.ID = existing.ID
	meta.Version = existing.Version + 1
	meta.Mediatheksdatum = today

	entries, err := os.ReadDir(mediasetDir)
	if err != nil {
		return nil, fmt.Errorf("read incoming mediaset: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == mediaset.FileMetadaten {
			continue
		}
		src := filepath.Join(mediasetDir, entry.Name())
		dst := filepath.Join(slot, entry.Name())
		if err := fileutil.MoveFile(src, dst); err != nil {
			return nil, fmt.Errorf("replace %s: %w", entry.Name(), err)
		}
	}
	// The yaml goes last so a reader never sees new metadata with old files.
	if err := meta.Save(slot); err != nil {
		return nil, err
	}
	if err := os.RemoveAll(mediasetDir); err != nil {
		return nil, fmt.Errorf("remove integrated source: %w", err)
	}
	i.logger.Info("overwrote library slot",
		logging.String(logging.FieldPath, slot),
		logging.Int(logging.FieldVersion, meta.Version))
	return &Outcome{Slot: slot, Mode: ModeOverwrite, ID: meta.ID, Version: meta.Version}, nil
}

func (i *Integrator) newVersion(mediasetDir, slot string, meta, existing *mediaset.Metadata, today string) (*Outcome, error) {
	versionsDir := filepath.Join(i.root, existing.Jahr, VersionsDirName)
	if err := os.MkdirAll(versionsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create versions directory: %w", err)
	}
	archiveTarget := filepath.Join(versionsDir, fmt.Sprintf("Version_%d", existing.Version))
	if fileutil.Exists(archiveTarget) {
		return nil, &VersionCollisionError{Target: archiveTarget}
	}
	if err := fileutil.MoveDir(slot, archiveTarget); err != nil {
		return nil, fmt.Errorf("archive previous release: %w", err)
	}
	// Archived copies stay self-contained, so an absent Version is filled
	// in before the slot name is reused.
	if archived, err := mediaset.Load(archiveTarget); err == nil && archived.Version < 1 {
		archived.Version = existing.Version
		if err := archived.Save(archiveTarget); err != nil {
			return nil, fmt.Errorf("backfill archived version: %w", err)
		}
	}

	meta.Version = existing.Version + 1
	meta.Mediatheksdatum = today
	if err := fileutil.MoveDir(mediasetDir, slot); err != nil {
		return nil, fmt.Errorf("install new release: %w", err)
	}
	if err := meta.Save(slot); err != nil {
		return nil, err
	}
	i.logger.Info("archived previous release and installed new one",
		logging.String(logging.FieldPath, slot),
		logging.String("archived_to", archiveTarget),
		logging.Int(logging.FieldVersion, meta.Version))
	return &Outcome{
		Slot: slot, Mode: ModeNewVersion, ID: meta.ID,
		Version: meta.Version, ArchivedTo: archiveTarget,
	}, nil
}
