// Package logging configures the process-wide slog logger and provides the
// attribute helpers used throughout the pipeline. Two output formats exist:
// a compact console format for interactive runs and a JSON format for log
// files and scripting.
package logging
