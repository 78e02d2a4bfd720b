package transcode

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"mediathek/internal/logging"
	"mediathek/internal/media/probe"
	"mediathek/internal/services"
	"mediathek/internal/services/compressor"
	"mediathek/internal/services/tagger"
)

// sidecarMarker appears in the names of the scratch files the transcoder
// keeps next to an output while the batch is still running.
const sidecarMarker = ".sb-"

// Settings holds the supervision parameters.
type Settings struct {
	MaxConcurrentJobs int
	CheckInterval     time.Duration
	MaxChecks         int
	MinSourceSize     int64
	MinOutputSize     int64
	// MedienserverProfile names the profile whose outputs must verify as
	// HEVC streams.
	MedienserverProfile string
	DeleteSourceOnDone  bool
	FFprobeBinary       string
}

// Supervisor hands sources to the external transcoder and watches the
// filesystem until the outputs are ready. The transcoder gives no completion
// signal; readiness is inferred from the output file and its sidecars.
type Supervisor struct {
	settings  Settings
	submitter compressor.Submitter
	tags      tagger.Tagger
	logger    *slog.Logger
}

// New constructs a supervisor.
func New(settings Settings, submitter compressor.Submitter, tags tagger.Tagger, logger *slog.Logger) (*Supervisor, error) {
	if submitter == nil {
		return nil, fmt.Errorf("transcode submitter required")
	}
	if settings.MaxConcurrentJobs < 1 {
		settings.MaxConcurrentJobs = 1
	}
	if settings.MaxChecks < 1 {
		settings.MaxChecks = 1
	}
	if settings.CheckInterval <= 0 {
		settings.CheckInterval = time.Second
	}
	return &Supervisor{
		settings:  settings,
		submitter: submitter,
		tags:      tags,
		logger:    logging.WithComponent(logger, "transcode"),
	}, nil
}

// Run supervises all jobs, at most MaxConcurrentJobs in flight. Slots are
// acquired and batches handed off in input order; only the waiting overlaps.
// Every job reaches a terminal state and results are index-aligned with
// jobs; failures are captured per result, never returned as a run-level
// error.
func (s *Supervisor) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	slots := make(chan struct{}, s.settings.MaxConcurrentJobs)
	var wg sync.WaitGroup
	for i, job := range jobs {
		if ctx.Err() != nil {
			results[i] = Result{Job: job, Outcome: OutcomeCancelled, Err: ctx.Err()}
			continue
		}
		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			results[i] = Result{Job: job, Outcome: OutcomeCancelled, Err: ctx.Err()}
			continue
		}
		pending, terminal := s.launch(ctx, job)
		if terminal != nil {
			<-slots
			results[i] = *terminal
			continue
		}
		wg.Add(1)
		go func(i int, pending launchedJob) {
			defer wg.Done()
			defer func() { <-slots }()
			results[i] = s.await(ctx, pending)
		}(i, pending)
	}
	wg.Wait()
	return results
}

// launchedJob carries a handed-off batch into its polling goroutine.
type launchedJob struct {
	job     Job
	log     *slog.Logger
	started time.Time
	resumed bool
}

// launch runs the pre-checks and hands the batch to the transcoder. A
// non-nil Result means the job reached a terminal state before any waiting
// was needed.
func (s *Supervisor) launch(ctx context.Context, job Job) (launchedJob, *Result) {
	started := time.Now()
	log := s.logger.With(
		logging.String(logging.FieldMediaset, job.Mediaset),
		logging.String(logging.FieldJob, filepath.Base(job.SourcePath)),
		logging.String(logging.FieldProfile, job.Profile))

	finish := func(outcome Outcome, err error) (launchedJob, *Result) {
		return launchedJob{}, &Result{Job: job, Outcome: outcome, Err: err, Elapsed: time.Since(started)}
	}

	info, err := os.Stat(job.SourcePath)
	if err != nil {
		return finish(OutcomeFailed, services.Wrap(services.ErrValidation,
			"transcode", "stat-source", "source not readable", err))
	}
	if info.Size() < s.settings.MinSourceSize {
		log.Info("skipping undersized source", logging.Int64("bytes", info.Size()))
		return finish(OutcomeSkippedSmallSource, nil)
	}

	ready, verifyErr := s.outputReady(ctx, job)
	if verifyErr != nil {
		return finish(OutcomeFailed, verifyErr)
	}
	if ready {
		log.Info("output already present, nothing to do",
			logging.String(logging.FieldPath, job.OutputPath))
		return finish(OutcomeAlreadyDone, nil)
	}

	submitted, err := s.alreadySubmitted(ctx, job)
	if err != nil {
		log.Warn("label check failed, assuming not submitted", logging.Error(err))
	}
	if submitted {
		log.Info("batch already handed off, resuming wait")
	} else {
		if err := s.submit(ctx, job); err != nil {
			return finish(OutcomeFailed, err)
		}
		log.Info("batch submitted", logging.String(logging.FieldPath, job.OutputPath))
	}
	return launchedJob{job: job, log: log, started: started, resumed: submitted}, nil
}

// await polls a launched batch to its terminal state.
func (s *Supervisor) await(ctx context.Context, pending launchedJob) Result {
	outcome, checks, err := s.wait(ctx, pending.job, pending.log)
	return Result{
		Job:     pending.job,
		Outcome: outcome,
		Err:     err,
		Checks:  checks,
		Elapsed: time.Since(pending.started),
		Resumed: pending.resumed,
	}
}

// wait polls until the output verifies, the check budget runs out, or the
// context is cancelled.
func (s *Supervisor) wait(ctx context.Context, job Job, log *slog.Logger) (Outcome, int, error) {
	ticker := time.NewTicker(s.settings.CheckInterval)
	defer ticker.Stop()
	for checks := 1; checks <= s.settings.MaxChecks; checks++ {
		select {
		case <-ctx.Done():
			return OutcomeCancelled, checks - 1, ctx.Err()
		case <-ticker.C:
		}
		ready, err := s.outputReady(ctx, job)
		if err != nil {
			return OutcomeFailed, checks, err
		}
		if ready {
			log.Info("output ready",
				logging.Int("checks", checks),
				logging.String(logging.FieldPath, job.OutputPath))
			s.finalizeSource(ctx, job, log)
			return OutcomeDone, checks, nil
		}
		log.Debug("output not ready yet", logging.Int("checks", checks))
	}
	return OutcomeTimedOut, s.settings.MaxChecks, services.Wrap(services.ErrTransient,
		"transcode", "wait-output",
		fmt.Sprintf("output not ready after %d checks", s.settings.MaxChecks), nil)
}

// outputReady decides whether the transcoder has finished with job. An error
// return means the output exists but is definitively wrong; (false, nil)
// means keep waiting.
func (s *Supervisor) outputReady(ctx context.Context, job Job) (bool, error) {
	info, err := os.Stat(job.OutputPath)
	if err != nil {
		return false, nil
	}
	if info.Size() < s.settings.MinOutputSize {
		return false, nil
	}
	busy, err := hasSidecars(job.OutputPath)
	if err != nil {
		return false, nil
	}
	if busy {
		return false, nil
	}
	if job.Profile == s.settings.MedienserverProfile && s.settings.FFprobeBinary != "" {
		video, err := probe.InspectVideo(ctx, s.settings.FFprobeBinary, job.OutputPath)
		if err != nil {
			// Possibly still being written; ffprobe on a torso fails.
			return false, nil
		}
		if !strings.EqualFold(video.Codec, "hevc") {
			return false, services.Wrap(services.ErrValidation,
				"transcode", "verify-output",
				fmt.Sprintf("expected hevc output, got %q", video.Codec), nil)
		}
	}
	return true, nil
}

// hasSidecars reports whether the transcoder keeps scratch files for path.
// Scratch files sit in the same directory and combine the output's base name
// with the .sb- fragment, so out.mov.sb-1234 marks out.mov as still being
// written. Their presence means the batch is still writing.
func hasSidecars(path string) (bool, error) {
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		return false, err
	}
	base := filepath.Base(path)
	for _, entry := range entries {
		name := entry.Name()
		if name == base {
			continue
		}
		if strings.Contains(name, base) && strings.Contains(name, sidecarMarker) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Supervisor) alreadySubmitted(ctx context.Context, job Job) (bool, error) {
	if s.tags == nil {
		return false, nil
	}
	return s.tags.HasLabel(ctx, job.SourcePath, tagger.SubmittedLabel)
}

// submit labels the source before handing the batch over, so a crash between
// the two steps cannot lose the resubmission guard. The label is idempotent.
func (s *Supervisor) submit(ctx context.Context, job Job) error {
	if s.tags != nil {
		if err := s.tags.AddLabel(ctx, job.SourcePath, tagger.SubmittedLabel); err != nil {
			s.logger.Warn("could not label source as submitted",
				logging.String(logging.FieldPath, job.SourcePath),
				logging.Error(err))
		}
	}
	batch := compressor.Job{
		BatchName:  job.Mediaset,
		SourcePath: job.SourcePath,
		OutputPath: job.OutputPath,
		Profile:    job.Profile,
	}
	if err := s.submitter.Submit(ctx, batch); err != nil {
		return services.Wrap(services.ErrExternalTool,
			"transcode", "submit", "transcoder rejected batch", err)
	}
	return nil
}

// finalizeSource removes the source after a verified transcode when
// configured to. A removal failure is logged, not fatal; the rendition is
// already in place.
func (s *Supervisor) finalizeSource(_ context.Context, job Job, log *slog.Logger) {
	if !s.settings.DeleteSourceOnDone {
		return
	}
	if err := os.Remove(job.SourcePath); err != nil {
		log.Warn("could not delete transcoded source",
			logging.String(logging.FieldPath, job.SourcePath),
			logging.Error(err))
		return
	}
	log.Info("deleted transcoded source", logging.String(logging.FieldPath, job.SourcePath))
}
