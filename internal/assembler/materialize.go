package assembler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mediathek/internal/fileutil"
	"mediathek/internal/logging"
	"mediathek/internal/media/classify"
	"mediathek/internal/mediaset"
	"mediathek/internal/services/imgconv"
)

// Overrides carries operator-supplied metadata values. A non-empty override
// wins over anything derived from the probed source.
type Overrides struct {
	Untertyp                string
	Aufnahmedatum           string
	Zeitraum                string
	Beschreibung            string
	Notiz                   string
	Album                   string
	FilmfassungName         string
	FilmfassungBeschreibung string
}

// MaterializeOptions configures a materialization run.
type MaterializeOptions struct {
	// OutputRoot is the directory the mediaset directory is created under,
	// typically the staging area.
	OutputRoot string
	// Overrides are applied after tag derivation.
	Overrides Overrides
	// ConvertPosterJPEG additionally derives a Titelbild.jpg from a PNG
	// poster, when a converter is attached.
	ConvertPosterJPEG bool
}

// Materializer turns assembled candidates into on-disk mediaset directories
// with canonical filenames and a Metadaten.yaml.
type Materializer struct {
	logger    *slog.Logger
	prompter  Prompter
	converter imgconv.Converter
}

// MaterializerOption configures a materializer.
type MaterializerOption func(*Materializer)

// WithConverter attaches an image converter for poster JPEG derivation.
func WithConverter(converter imgconv.Converter) MaterializerOption {
	return func(m *Materializer) {
		m.converter = converter
	}
}

// NewMaterializer returns a materializer using the given prompter for
// overwrite decisions.
func NewMaterializer(logger *slog.Logger, prompter Prompter, opts ...MaterializerOption) *Materializer {
	if logger == nil {
		logger = logging.NewNop()
	}
	if prompter == nil {
		prompter = DenyAll
	}
	materializer := &Materializer{
		logger:   logging.WithComponent(logger, "assembler"),
		prompter: prompter,
	}
	for _, opt := range opts {
		opt(materializer)
	}
	return materializer
}

// Materialize creates the mediaset directory for candidate, moves every
// rendition member onto its canonical name, and writes Metadaten.yaml last.
// ProRes masters are never moved; they stay where they were found.
//
// Completed moves are not rolled back on a later failure, so the directory
// path is returned even alongside an error.
func (m *Materializer) Materialize(ctx context.Context, candidate *mediaset.Candidate, opts MaterializeOptions) (string, error) {
	dir := filepath.Join(opts.OutputRoot, candidate.DirName())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create mediaset directory: %w", err)
	}

	var failures []error
	for _, member := range candidate.Members {
		if member.Role == classify.RoleMaster {
			m.logger.Info("leaving master in place",
				logging.String(logging.FieldMediaset, candidate.Key.Title),
				logging.String(logging.FieldPath, member.File.Path))
			continue
		}
		name, err := mediaset.CanonicalName(member.Role, filepath.Ext(member.File.Path))
		if err != nil {
			failures = append(failures, err)
			continue
		}
		if member.Role == classify.RolePoster {
			if err := m.derivePosterJPEG(ctx, dir, member.File.Path, opts); err != nil {
				failures = append(failures, err)
			}
		}
		target := filepath.Join(dir, name)
		if fileutil.Exists(target) && !m.prompter.ConfirmOverwrite(target) {
			m.logger.Warn("target exists, overwrite declined",
				logging.String(logging.FieldMediaset, candidate.Key.Title),
				logging.String(logging.FieldPath, target))
			failures = append(failures, fmt.Errorf("%s: overwrite declined", target))
			continue
		}
		if err := fileutil.MoveFile(member.File.Path, target); err != nil {
			failures = append(failures, fmt.Errorf("move %s: %w", name, err))
			continue
		}
		m.logger.Info("materialized rendition",
			logging.String(logging.FieldMediaset, candidate.Key.Title),
			logging.String(logging.FieldRole, member.Role.String()),
			logging.String(logging.FieldPath, target))
	}

	meta, err := m.buildMetadata(candidate, opts.Overrides)
	if err != nil {
		failures = append(failures, err)
		return dir, errors.Join(failures...)
	}
	if err := meta.Save(dir); err != nil {
		failures = append(failures, err)
	}
	return dir, errors.Join(failures...)
}

// derivePosterJPEG converts a PNG poster into an additional Titelbild.jpg
// while the source file is still at its original path. Sets without a
// converter or with a JPEG poster are left alone.
func (m *Materializer) derivePosterJPEG(ctx context.Context, dir, sourcePath string, opts MaterializeOptions) error {
	if !opts.ConvertPosterJPEG || m.converter == nil {
		return nil
	}
	if !strings.EqualFold(filepath.Ext(sourcePath), ".png") {
		return nil
	}
	target := filepath.Join(dir, mediaset.FilePosterJPG)
	if fileutil.Exists(target) && !m.prompter.ConfirmOverwrite(target) {
		return fmt.Errorf("%s: overwrite declined", target)
	}
	if err := m.converter.ToJPEG(ctx, sourcePath, target); err != nil {
		return fmt.Errorf("derive poster jpeg: %w", err)
	}
	m.logger.Info("derived poster jpeg",
		logging.String(logging.FieldPath, target))
	return nil
}

// buildMetadata derives the Metadaten.yaml record for a fresh mediaset:
// new ULID, Version 1, tag-derived fields, then overrides. Mediatheksdatum
// stays empty until library integration.
func (m *Materializer) buildMetadata(candidate *mediaset.Candidate, overrides Overrides) (*mediaset.Metadata, error) {
	meta := &mediaset.Metadata{
		Spezifikationsversion: mediaset.SpecVersion,
		ID:                    mediaset.NewID(),
		Titel:                 candidate.Key.Title,
		Typ:                   mediaset.TypFamilienfilm,
		Jahr:                  candidate.Year,
		Version:               1,
	}
	applyProbedTags(meta, candidate.Source)

	meta.Untertyp = overrides.Untertyp
	if meta.Untertyp == "" {
		meta.Untertyp = untertypFromShareCategory(candidate.Source.Tags.AppleProappsShareCategory)
	}
	applyOverrides(meta, overrides)

	switch meta.Untertyp {
	case mediaset.UntertypEreignis:
		if meta.Aufnahmedatum == "" {
			meta.Aufnahmedatum = contentDate(candidate)
		}
		if meta.Aufnahmedatum == "" {
			return nil, &MissingFieldError{Title: candidate.Key.Title, Field: "Aufnahmedatum"}
		}
	case mediaset.UntertypRueckblick:
		if meta.Zeitraum == "" {
			return nil, &MissingFieldError{Title: candidate.Key.Title, Field: "Zeitraum"}
		}
	}
	if err := meta.Validate(); err != nil {
		return nil, fmt.Errorf("metadata for %q: %w", candidate.Key.Title, err)
	}
	return meta, nil
}

func applyOverrides(meta *mediaset.Metadata, overrides Overrides) {
	if overrides.Aufnahmedatum != "" {
		meta.Aufnahmedatum = overrides.Aufnahmedatum
	}
	if overrides.Zeitraum != "" {
		meta.Zeitraum = overrides.Zeitraum
	}
	if overrides.Beschreibung != "" {
		meta.Beschreibung = overrides.Beschreibung
	}
	if overrides.Notiz != "" {
		meta.Notiz = overrides.Notiz
	}
	if overrides.Album != "" {
		meta.Album = overrides.Album
	}
	if overrides.FilmfassungName != "" {
		meta.FilmfassungName = overrides.FilmfassungName
	}
	if overrides.FilmfassungBeschreibung != "" {
		meta.FilmfassungBeschreibung = overrides.FilmfassungBeschreibung
	}
}

// contentDate returns the ISO recording date for the candidate, preferring
// the date stripped from the title over the probed creation timestamp.
func contentDate(candidate *mediaset.Candidate) string {
	if candidate.Key.ContentDate != "" {
		return candidate.Key.ContentDate
	}
	ts := candidate.Key.ContentTime(candidate.Source)
	if ts.IsZero() {
		return ""
	}
	return ts.Format("2006-01-02")
}
