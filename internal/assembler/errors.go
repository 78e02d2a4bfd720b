package assembler

import (
	"fmt"

	"mediathek/internal/services"
)

// NoElectableSourceError reports a group without any .mov or .mp4/.m4v
// member to elect as metadata source. The group is dropped with a warning.
type NoElectableSourceError struct {
	Title string
}

func (e *NoElectableSourceError) Error() string {
	return fmt.Sprintf("mediaset %q has no electable metadata source", e.Title)
}

func (e *NoElectableSourceError) Is(target error) bool { return target == services.ErrValidation }

// MissingFieldError reports a required metadata field that could not be
// derived or supplied. The affected candidate is not materialized.
type MissingFieldError struct {
	Title string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("mediaset %q is missing required field %s", e.Title, e.Field)
}

func (e *MissingFieldError) Is(target error) bool { return target == services.ErrValidation }
