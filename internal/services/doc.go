// Package services holds the error classification shared by all pipeline
// components and the thin clients around the external tools the pipeline
// drives (transcoder, tagger, image converter).
//
// Errors are recovered locally whenever the unit of failure is smaller than
// the pipeline's unit of progress (per file, per candidate, per job, per
// slot) and surfaced in the final summary. Only fatal-class errors flip the
// process exit code.
package services
