// Package workflow composes the pipeline: assemble candidates, supervise
// transcodes, materialize mediaset directories, and integrate them into the
// library. It owns the single-instance lock and the run summary.
package workflow
