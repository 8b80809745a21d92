package state

import (
	"sync"
	"time"
)

// MemoryStore keeps orchestration records in process memory. Records are
// lost when the process exits.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*Orchestration
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Orchestration)}
}

// Init implements [Store].
func (s *MemoryStore) Init(id string, variables map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; ok {
		return nil
	}

	now := time.Now().UTC()
	rec := &Orchestration{
		ID:               id,
		Status:           StatusCreated,
		CompletedStepIDs: []string{},
		Variables:        make(map[string]any, len(variables)),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	for k, v := range variables {
		rec.Variables[k] = v
	}
	s.records[id] = rec
	return nil
}

// Get implements [Store].
func (s *MemoryStore) Get(id string) (Orchestration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return defaultRecord(id), nil
	}
	return rec.clone(), nil
}

// Update implements [Store].
func (s *MemoryStore) Update(id string, u Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	u.apply(rec)
	return nil
}

// MarkStepComplete implements [Store].
func (s *MemoryStore) MarkStepComplete(id, stepID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	if !rec.StepCompleted(stepID) {
		rec.CompletedStepIDs = append(rec.CompletedStepIDs, stepID)
	}
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

// SetCurrentStep implements [Store].
func (s *MemoryStore) SetCurrentStep(id string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	rec.CurrentStepIndex = index
	rec.UpdatedAt = time.Now().UTC()
	return nil
}
