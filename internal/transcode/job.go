package transcode

import "time"

// Job is one transcode handoff: a source video, the output the transcoder
// should produce, and the named profile to apply.
type Job struct {
	// Mediaset is the owning mediaset title, for logs and summaries.
	Mediaset string
	// SourcePath is the input video handed to the transcoder.
	SourcePath string
	// OutputPath is where the transcoder writes the rendition.
	OutputPath string
	// Profile is the named transcoder setting.
	Profile string
}

// Outcome is the terminal state of one supervised job.
type Outcome string

const (
	// OutcomeDone means the output appeared and passed verification.
	OutcomeDone Outcome = "done"
	// OutcomeAlreadyDone means a verified output existed before submission;
	// the job was short-circuited without touching the transcoder.
	OutcomeAlreadyDone Outcome = "already-done"
	// OutcomeSkippedSmallSource means the source was below the minimum size
	// and is assumed to be a stub or a broken export.
	OutcomeSkippedSmallSource Outcome = "skipped-small-source"
	// OutcomeFailed means submission or verification failed definitively.
	OutcomeFailed Outcome = "failed"
	// OutcomeTimedOut means the output never became ready within the check
	// budget. The batch may still finish later; rerunning resumes it.
	OutcomeTimedOut Outcome = "timed-out"
	// OutcomeCancelled means the run context was cancelled while waiting.
	OutcomeCancelled Outcome = "cancelled"
)

// Success reports whether the outcome leaves the mediaset usable.
func (o Outcome) Success() bool {
	switch o {
	case OutcomeDone, OutcomeAlreadyDone, OutcomeSkippedSmallSource:
		return true
	}
	return false
}

// Result pairs a job with its terminal state.
type Result struct {
	Job     Job
	Outcome Outcome
	Err     error
	// Checks counts the poll iterations spent waiting.
	Checks int
	// Elapsed is the wall time from submission to the terminal state.
	Elapsed time.Duration
	// Resumed is set when a prior run had already submitted the batch and
	// this run only waited for it.
	Resumed bool
}
