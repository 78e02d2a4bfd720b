package workflow

import "time"

// MediasetOutcome is one candidate's fate within a run, for the summary
// table and the journal.
type MediasetOutcome struct {
	Title   string
	Year    string
	Stage   string // assemble, transcode, materialize, integrate
	Result  string
	Detail  string
	Fatal   bool
	Skipped bool
}

// Summary aggregates a run's counts for the final report and the exit code.
type Summary struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration

	Probed        int
	ProbeFailures int
	Grouped       int
	Dropped       int
	Submitted     int
	Transcoded    int
	Materialized  int
	Integrated    int
	Skipped       int
	Failed        int
	Fatal         int

	Warnings []string
	Outcomes []MediasetOutcome
}

func (s *Summary) record(outcome MediasetOutcome) {
	s.Outcomes = append(s.Outcomes, outcome)
	if outcome.Fatal {
		s.Fatal++
	}
	if outcome.Skipped {
		s.Skipped++
	}
}

// Success reports whether the run may exit 0: no fatal error occurred.
// Transient failures (timed-out transcodes, skipped candidates) do not
// spoil the exit code; they are reported and left for a re-run.
func (s *Summary) Success() bool {
	return s.Fatal == 0
}

// ExitCode maps the summary onto the process exit code.
func (s *Summary) ExitCode() int {
	if s.Success() {
		return 0
	}
	return 1
}
