package state

import "errors"

// ErrNotFound indicates a mutating operation referenced an orchestration id
// that was never initialized. Reads do not return it; [Store.Get] degrades to
// a default record instead.
var ErrNotFound = errors.New("orchestration not found")

// Store persists orchestration records.
//
// Implementations must be safe for concurrent use. Mutating operations on an
// unknown id return [ErrNotFound]; Get never does.
type Store interface {
	// Init creates the record for a new orchestration with status
	// [StatusCreated], an empty completed-step set, and the given initial
	// variables. Re-initializing an existing id is a no-op.
	Init(id string, variables map[string]any) error

	// Get returns a copy of the record. Unknown ids yield a default
	// record with [StatusUnknown] and a nil error.
	Get(id string) (Orchestration, error)

	// Update applies a partial update to the record.
	Update(id string, u Update) error

	// MarkStepComplete adds a step id to the completed set. Marking an
	// already-completed step again is a no-op.
	MarkStepComplete(id, stepID string) error

	// SetCurrentStep sets the step cursor.
	SetCurrentStep(id string, index int) error
}
