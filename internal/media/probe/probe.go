package probe

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"mediathek/internal/logging"
)

// Prober extracts ProbedFile records. Results are cached per absolute path
// for the lifetime of the Prober, which callers scope to one run.
type Prober struct {
	exiftool string
	ffprobe  string
	logger   *slog.Logger

	mu    sync.Mutex
	cache map[string]cached
}

type cached struct {
	file ProbedFile
	err  error
}

// New creates a Prober driving the given tool binaries.
func New(exiftoolBinary, ffprobeBinary string, logger *slog.Logger) *Prober {
	return &Prober{
		exiftool: exiftoolBinary,
		ffprobe:  ffprobeBinary,
		logger:   logging.WithComponent(logger, "probe"),
		cache:    map[string]cached{},
	}
}

// Probe inspects path and returns its normalized record. Failures come back
// as *Error; they are never silently collapsed into an empty record.
func (p *Prober) Probe(ctx context.Context, path string) (ProbedFile, error) {
	p.mu.Lock()
	if hit, ok := p.cache[path]; ok {
		p.mu.Unlock()
		return hit.file, hit.err
	}
	p.mu.Unlock()

	file, err := p.probe(ctx, path)

	p.mu.Lock()
	p.cache[path] = cached{file: file, err: err}
	p.mu.Unlock()
	return file, err
}

func (p *Prober) probe(ctx context.Context, path string) (ProbedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ProbedFile{}, newError(FileUnreadable, path, "stat", err)
	}

	file := ProbedFile{
		Path:      path,
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		Kind:      KindForPath(path),
		Container: containerExt(path),
	}

	record, err := exiftoolRunner(ctx, p.exiftool, path)
	if err != nil {
		return ProbedFile{}, err
	}
	file.Tags = tagsFromRecord(record)

	if file.Kind == KindVideo {
		video, err := ffprobeRunner(ctx, p.ffprobe, path)
		if err != nil {
			return ProbedFile{}, err
		}
		file.Video = video
	}

	p.resolveCreatedAt(&file, record)
	return file, nil
}

// resolveCreatedAt applies the creation-timestamp resolution order:
// CreationDate/ContentCreateDate for containers, DateTimeOriginal (plus
// OffsetTimeOriginal) for stills, filesystem mtime in the local zone last.
func (p *Prober) resolveCreatedAt(file *ProbedFile, record ExiftoolRecord) {
	candidates := []struct {
		value  string
		offset string
	}{
		{record.CreationDate, ""},
		{record.ContentCreateDate, ""},
		{record.DateTimeOriginal, record.OffsetTimeOriginal},
	}
	for _, candidate := range candidates {
		if candidate.value == "" {
			continue
		}
		ts, zoneKnown, err := parseExifTime(candidate.value, candidate.offset)
		if err != nil {
			p.logger.Debug("unparseable creation timestamp",
				logging.String(logging.FieldPath, file.Path),
				logging.String("value", candidate.value))
			continue
		}
		file.CreatedAt = ts
		file.TimezoneAssumed = !zoneKnown
		if file.TimezoneAssumed {
			p.logger.Warn("timezone assumed for creation timestamp",
				logging.String(logging.FieldPath, file.Path))
		}
		return
	}

	file.CreatedAt = file.ModTime.In(time.Local)
	file.TimezoneAssumed = true
	p.logger.Warn("creation timestamp fell back to file mtime",
		logging.String(logging.FieldPath, file.Path))
}

func tagsFromRecord(record ExiftoolRecord) Tags {
	tags := Tags{
		Title:                     record.Title,
		DisplayName:               record.DisplayName,
		Description:               record.Description,
		Album:                     record.Album,
		Genre:                     record.Genre,
		Keywords:                  record.Keywords,
		Producer:                  record.Producer,
		Director:                  record.Director,
		Artist:                    record.Artist,
		Studio:                    record.Studio,
		AppleProappsShareCategory: record.AppleProappsShareCategory,
		DurationText:              durationText(record),
	}
	if record.CreationDate != "" {
		if ts, _, err := parseExifTime(record.CreationDate, ""); err == nil {
			tags.CreationDate = &ts
		}
	}
	if record.DateTimeOriginal != "" {
		if ts, _, err := parseExifTime(record.DateTimeOriginal, record.OffsetTimeOriginal); err == nil {
			tags.DateTimeOriginal = &ts
		}
	}
	return tags
}

func durationText(record ExiftoolRecord) string {
	if record.MediaDuration != "" {
		return record.MediaDuration
	}
	return record.Duration.String()
}

func containerExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
