// Package preflight provides readiness checks for the filesystem paths and
// disk capacity a pipeline run depends on.
//
// The workflow manager calls RunAll before a run; a failed check aborts
// before any file is touched. The CLI "mediathek deps" command reuses the
// individual checks to display health.
package preflight
