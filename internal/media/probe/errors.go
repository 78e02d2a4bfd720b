package probe

import (
	"fmt"

	"mediathek/internal/services"
)

// ErrorKind identifies the failure mode of a probe.
type ErrorKind int

const (
	ToolMissing ErrorKind = iota
	ToolFailed
	UnparseableOutput
	FileUnreadable
)

func (k ErrorKind) String() string {
	switch k {
	case ToolMissing:
		return "tool missing"
	case ToolFailed:
		return "tool failed"
	case UnparseableOutput:
		return "unparseable output"
	case FileUnreadable:
		return "file unreadable"
	default:
		return "unknown"
	}
}

// Error is the structured per-file probe failure. Probing never swallows a
// failure into an empty record; callers decide whether it is fatal.
type Error struct {
	Kind ErrorKind
	Path string
	Tool string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("probe %s: %s (%s): %v", e.Path, e.Kind, e.Tool, e.Err)
	}
	return fmt.Sprintf("probe %s: %s (%s)", e.Path, e.Kind, e.Tool)
}

func (e *Error) Unwrap() error { return e.Err }

// Is classifies every probe failure as an external tool error.
func (e *Error) Is(target error) bool { return target == services.ErrExternalTool }

func newError(kind ErrorKind, path, tool string, err error) *Error {
	return &Error{Kind: kind, Path: path, Tool: tool, Err: err}
}
