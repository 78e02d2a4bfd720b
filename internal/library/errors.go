package library

import (
	"fmt"

	"mediathek/internal/services"
)

// CorruptionKind names what disqualifies an existing slot from integration.
type CorruptionKind string

const (
	MissingYaml            CorruptionKind = "missing-yaml"
	MissingID              CorruptionKind = "missing-id"
	MissingMediatheksdatum CorruptionKind = "missing-mediatheksdatum"
	UnparseableVersion     CorruptionKind = "unparseable-version"
)

// CorruptSlotError reports a library slot whose Metadaten.yaml cannot anchor
// an integration decision. Manual repair is required; the run counts it as
// fatal for the exit code.
type CorruptSlotError struct {
	Slot string
	Kind CorruptionKind
	Err  error
}

func (e *CorruptSlotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt library slot %s (%s): %v", e.Slot, e.Kind, e.Err)
	}
	return fmt.Sprintf("corrupt library slot %s (%s)", e.Slot, e.Kind)
}

func (e *CorruptSlotError) Unwrap() error { return e.Err }

func (e *CorruptSlotError) Is(target error) bool { return target == services.ErrFatal }

// VersionCollisionError reports that the archive target for a displaced slot
// already exists. The caller must pick Overwrite or resolve by hand.
type VersionCollisionError struct {
	Target string
}

func (e *VersionCollisionError) Error() string {
	return fmt.Sprintf("archive target already exists: %s", e.Target)
}

func (e *VersionCollisionError) Is(target error) bool { return target == services.ErrValidation }
