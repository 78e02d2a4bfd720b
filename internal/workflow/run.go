package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"mediathek/internal/assembler"
	"mediathek/internal/journal"
	"mediathek/internal/library"
	"mediathek/internal/logging"
	"mediathek/internal/media/classify"
	"mediathek/internal/media/probe"
	"mediathek/internal/mediaset"
	"mediathek/internal/preflight"
	"mediathek/internal/services"
	"mediathek/internal/transcode"
)

// Options selects what a run does. Assembly always happens; the later
// stages can be switched off for partial commands.
type Options struct {
	// SearchDirs overrides the configured source directories when set.
	SearchDirs     []string
	AdditionalDirs []string
	// Mode is the integration strategy, ModeAuto when empty.
	Mode library.Mode
	// NoPrompt answers every overwrite question with yes.
	NoPrompt  bool
	Overrides assembler.Overrides
	// JPEGPoster derives a Titelbild.jpg next to PNG posters.
	JPEGPoster bool

	Transcode   bool
	Materialize bool
	Integrate   bool
}

// ImportOptions returns the options for the full pipeline.
func ImportOptions() Options {
	return Options{Transcode: true, Materialize: true, Integrate: true}
}

// Run executes the pipeline under the instance lock. Per-mediaset failures
// are collected into the summary; the error return is reserved for
// run-level aborts (lock held, preflight failure, cancellation).
func (m *Manager) Run(ctx context.Context, opts Options) (*Summary, error) {
	lock, err := AcquireLock(m.cfg.LockPath())
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Release() }()

	if results := preflight.RunAll(m.cfg); !preflight.AllPassed(results) {
		var failed []string
		for _, result := range results {
			if !result.Passed {
				failed = append(failed, result.Name+": "+result.Detail)
			}
		}
		return nil, services.Wrap(services.ErrFatal, "workflow", "preflight",
			strings.Join(failed, "; "), nil)
	}

	summary := &Summary{RunID: uuid.NewString(), StartedAt: time.Now()}
	m.beginRun(ctx, summary, opts)
	defer func() { summary.Duration = time.Since(summary.StartedAt) }()

	searchDirs := opts.SearchDirs
	if len(searchDirs) == 0 {
		searchDirs = m.cfg.Paths.SourceDirs
	}
	candidates, diags, err := m.assembler.Assemble(ctx, searchDirs, opts.AdditionalDirs)
	if err != nil {
		m.finishRun(ctx, summary, err)
		return summary, err
	}
	summary.Probed = diags.ScannedFiles
	summary.ProbeFailures = len(diags.ProbeFailures)
	summary.Grouped = len(candidates)
	summary.Dropped = len(diags.DroppedGroups)
	summary.Warnings = append(summary.Warnings, diags.Warnings...)
	for _, dropped := range diags.DroppedGroups {
		summary.record(MediasetOutcome{
			Title: dropped.Title, Stage: "assemble",
			Result: "dropped", Detail: dropped.Err.Error(), Skipped: true,
		})
	}

	if opts.Transcode {
		m.superviseTranscodes(ctx, summary, candidates)
	}
	if ctx.Err() != nil {
		m.finishRun(ctx, summary, ctx.Err())
		return summary, ctx.Err()
	}

	var staged []stagedMediaset
	if opts.Materialize {
		staged = m.materializeAll(ctx, summary, candidates, opts)
	}
	if opts.Integrate {
		m.integrateAll(ctx, summary, staged, opts.Mode)
	}

	m.finishRun(ctx, summary, nil)
	return summary, nil
}

type stagedMediaset struct {
	title string
	dir   string
}

// superviseTranscodes queues a Medienserver transcode for every candidate
// that has a master but no Medienserver rendition, then folds the produced
// outputs back into the candidates' member lists.
func (m *Manager) superviseTranscodes(ctx context.Context, summary *Summary, candidates []*mediaset.Candidate) {
	var jobs []transcode.Job
	var owners []*mediaset.Candidate
	for _, candidate := range candidates {
		master, ok := candidate.MemberForRole(classify.RoleMaster)
		if !ok {
			continue
		}
		if _, ok := candidate.MemberForRole(classify.RoleMedienserver); ok {
			continue
		}
		output := filepath.Join(m.cfg.Paths.StagingDir, "transcodes",
			candidate.Key.FileName(), mediaset.FileMedienserver)
		if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
			summary.record(MediasetOutcome{
				Title: candidate.Key.Title, Stage: "transcode",
				Result: "failed", Detail: err.Error(), Fatal: true,
			})
			summary.Failed++
			continue
		}
		jobs = append(jobs, transcode.Job{
			Mediaset:   candidate.Key.Title,
			SourcePath: master.File.Path,
			OutputPath: output,
			Profile:    m.cfg.Transcoder.MedienserverProfile,
		})
		owners = append(owners, candidate)
	}
	if len(jobs) == 0 {
		return
	}
	summary.Submitted = len(jobs)

	// Results come back index-aligned with jobs, not in completion order.
	results := m.supervisor.Run(ctx, jobs)
	for i, result := range results {
		candidate := owners[i]
		m.journalOutcome(ctx, summary.RunID, journal.Outcome{
			Mediaset: result.Job.Mediaset,
			Kind:     journal.KindTranscode,
			Result:   string(result.Outcome),
			Detail:   errDetail(result.Err),
		})
		switch result.Outcome {
		case transcode.OutcomeDone, transcode.OutcomeAlreadyDone:
			summary.Transcoded++
			m.adoptOutput(candidate, result.Job.OutputPath)
		case transcode.OutcomeSkippedSmallSource:
			summary.record(MediasetOutcome{
				Title: candidate.Key.Title, Stage: "transcode",
				Result: string(result.Outcome), Skipped: true,
			})
		case transcode.OutcomeFailed:
			summary.Failed++
			summary.record(MediasetOutcome{
				Title: candidate.Key.Title, Stage: "transcode",
				Result: string(result.Outcome), Detail: errDetail(result.Err), Fatal: true,
			})
		default: // timed out or cancelled, safe to retry later
			summary.Failed++
			summary.record(MediasetOutcome{
				Title: candidate.Key.Title, Stage: "transcode",
				Result: string(result.Outcome), Detail: errDetail(result.Err),
			})
		}
	}
}

// adoptOutput probes a finished transcode and adds it to the candidate.
func (m *Manager) adoptOutput(candidate *mediaset.Candidate, outputPath string) {
	info, err := os.Stat(outputPath)
	if err != nil {
		m.logger.Warn("finished output vanished",
			logging.String(logging.FieldPath, outputPath), logging.Error(err))
		return
	}
	file := probe.ProbedFile{
		Path:      outputPath,
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		Kind:      probe.KindVideo,
		Container: strings.ToLower(filepath.Ext(outputPath)),
	}
	candidate.Members = append(candidate.Members,
		mediaset.Member{File: file, Role: classify.RoleMedienserver})
}

func (m *Manager) materializeAll(ctx context.Context, summary *Summary, candidates []*mediaset.Candidate, opts Options) []stagedMediaset {
	prompter := assembler.InteractivePrompter()
	if opts.NoPrompt {
		prompter = assembler.NoPrompt
	}
	materializer := assembler.NewMaterializer(m.logger, prompter,
		assembler.WithConverter(m.converter))

	var staged []stagedMediaset
	for _, candidate := range candidates {
		if !candidate.HasVideo() {
			summary.record(MediasetOutcome{
				Title: candidate.Key.Title, Year: candidate.Year, Stage: "materialize",
				Result: "skipped", Detail: "no distributable video rendition", Skipped: true,
			})
			continue
		}
		if !candidate.HasPoster() {
			summary.record(MediasetOutcome{
				Title: candidate.Key.Title, Year: candidate.Year, Stage: "materialize",
				Result: "skipped", Detail: "no poster", Skipped: true,
			})
			continue
		}
		dir, err := materializer.Materialize(ctx, candidate, assembler.MaterializeOptions{
			OutputRoot:        m.cfg.Paths.StagingDir,
			Overrides:         opts.Overrides,
			ConvertPosterJPEG: opts.JPEGPoster,
		})
		if err != nil {
			summary.Failed++
			summary.record(MediasetOutcome{
				Title: candidate.Key.Title, Year: candidate.Year, Stage: "materialize",
				Result: "failed", Detail: err.Error(), Fatal: services.IsFatal(err),
			})
			continue
		}
		summary.Materialized++
		staged = append(staged, stagedMediaset{title: candidate.Key.Title, dir: dir})
	}
	return staged
}

func (m *Manager) integrateAll(ctx context.Context, summary *Summary, staged []stagedMediaset, mode library.Mode) {
	if mode == "" {
		mode = library.ModeAuto
	}
	for _, item := range staged {
		outcome, err := m.integrator.Integrate(item.dir, mode)
		if err != nil {
			summary.Failed++
			var corrupt *library.CorruptSlotError
			fatal := errors.As(err, &corrupt)
			summary.record(MediasetOutcome{
				Title: item.title, Stage: "integrate",
				Result: "failed", Detail: err.Error(), Fatal: fatal,
			})
			m.journalOutcome(ctx, summary.RunID, journal.Outcome{
				Mediaset: item.title, Kind: journal.KindIntegration,
				Result: "failed", Detail: err.Error(),
			})
			continue
		}
		summary.Integrated++
		detail := fmt.Sprintf("version %d", outcome.Version)
		if outcome.Created {
			detail = "new slot, " + detail
		}
		summary.record(MediasetOutcome{
			Title: item.title, Stage: "integrate",
			Result: string(outcome.Mode), Detail: detail,
		})
		m.journalOutcome(ctx, summary.RunID, journal.Outcome{
			Mediaset: item.title, Kind: journal.KindIntegration,
			Result: string(outcome.Mode), Detail: detail,
		})
		if err := m.notifier.NotifyMediasetIntegrated(ctx, item.title, outcome.Version); err != nil {
			m.logger.Warn("notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) beginRun(ctx context.Context, summary *Summary, opts Options) {
	if m.journal == nil {
		return
	}
	command := "assemble"
	switch {
	case opts.Integrate:
		command = "import"
	case opts.Transcode:
		command = "transcode"
	}
	if err := m.journal.BeginRun(ctx, summary.RunID, command, summary.StartedAt); err != nil {
		m.logger.Warn("journal unavailable", logging.Error(err))
	}
}

func (m *Manager) finishRun(ctx context.Context, summary *Summary, runErr error) {
	summary.Duration = time.Since(summary.StartedAt)
	if m.journal != nil {
		line := fmt.Sprintf("%d integrated, %d skipped, %d failed",
			summary.Integrated, summary.Skipped, summary.Failed)
		if err := m.journal.FinishRun(ctx, summary.RunID, runErr == nil && summary.Success(), line); err != nil {
			m.logger.Warn("journal unavailable", logging.Error(err))
		}
	}
	if runErr != nil || !summary.Success() {
		notifyErr := runErr
		if notifyErr == nil {
			notifyErr = fmt.Errorf("%d fatal failures", summary.Fatal)
		}
		if err := m.notifier.NotifyRunFailed(ctx, notifyErr); err != nil {
			m.logger.Warn("notification failed", logging.Error(err))
		}
		return
	}
	if err := m.notifier.NotifyRunCompleted(ctx, summary.Integrated, summary.Skipped, summary.Duration); err != nil {
		m.logger.Warn("notification failed", logging.Error(err))
	}
}

func (m *Manager) journalOutcome(ctx context.Context, runID string, outcome journal.Outcome) {
	if m.journal == nil {
		return
	}
	outcome.RunID = runID
	if err := m.journal.RecordOutcome(ctx, outcome); err != nil {
		m.logger.Warn("journal unavailable", logging.Error(err))
	}
}

func errDetail(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
