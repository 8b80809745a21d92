// Package state tracks the progress of orchestrations.
//
// An [Orchestration] record holds the lifecycle status, step cursor,
// completed-step set, and mutable variables of one workflow run. Records are
// kept behind the [Store] interface; [NewMemoryStore] serves tests and
// short-lived runs, [NewFileStore] persists each record as a JSON file so a
// run survives process restarts.
package state

import "time"

// Status is the lifecycle state of an orchestration.
type Status string

const (
	// StatusUnknown is reported for identifiers no record exists for.
	StatusUnknown Status = "unknown"

	// StatusCreated means the orchestration is initialized but has not
	// issued its first directive.
	StatusCreated Status = "created"

	// StatusRunning means at least one directive has been issued.
	StatusRunning Status = "running"

	// StatusCompleted means every workflow step has completed.
	StatusCompleted Status = "completed"
)

// Orchestration is the tracked record of one workflow run.
type Orchestration struct {
	ID               string         `json:"orchestration_id"`
	Status           Status         `json:"status"`
	CurrentStepIndex int            `json:"current_step_index"`
	CompletedStepIDs []string       `json:"completed_steps"`
	Variables        map[string]any `json:"variables"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// StepCompleted reports whether the given step id is in the completed set.
func (o *Orchestration) StepCompleted(stepID string) bool {
	for _, id := range o.CompletedStepIDs {
		if id == stepID {
			return true
		}
	}
	return false
}

// clone returns an independent copy so callers cannot mutate stored records.
func (o *Orchestration) clone() Orchestration {
	c := *o
	c.CompletedStepIDs = append([]string(nil), o.CompletedStepIDs...)
	c.Variables = make(map[string]any, len(o.Variables))
	for k, v := range o.Variables {
		c.Variables[k] = v
	}
	return c
}

// Update is a partial update applied to an orchestration record. Nil fields
// leave the stored value untouched; Variables entries merge key-wise into the
// stored map rather than replacing it.
type Update struct {
	Status           *Status
	CurrentStepIndex *int
	Variables        map[string]any
}

// apply merges the update into the record and refreshes UpdatedAt.
func (u Update) apply(o *Orchestration) {
	if u.Status != nil {
		o.Status = *u.Status
	}
	if u.CurrentStepIndex != nil {
		o.CurrentStepIndex = *u.CurrentStepIndex
	}
	if len(u.Variables) > 0 {
		if o.Variables == nil {
			o.Variables = make(map[string]any, len(u.Variables))
		}
		for k, v := range u.Variables {
			o.Variables[k] = v
		}
	}
	o.UpdatedAt = time.Now().UTC()
}

// defaultRecord is the degraded record [Store.Get] returns for ids no record
// exists for. Reads never fail on unknown ids; only mutations do.
func defaultRecord(id string) Orchestration {
	return Orchestration{
		ID:               id,
		Status:           StatusUnknown,
		CompletedStepIDs: []string{},
		Variables:        map[string]any{},
	}
}
