package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileStore persists each orchestration record as a JSON file under a base
// directory, one file per id. Writes go through a temp file and rename so a
// crash never leaves a half-written record.
type FileStore struct {
	dir string

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

// NewFileStore creates a store rooted at dir, creating the directory if
// needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id != filepath.Base(id) {
		return "", fmt.Errorf("invalid orchestration id %q", id)
	}
	return filepath.Join(s.dir, id+".json"), nil
}

func (s *FileStore) read(id string) (*Orchestration, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read orchestration %s: %w", id, err)
	}

	var rec Orchestration
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse orchestration %s: %w", id, err)
	}
	return &rec, nil
}

func (s *FileStore) write(rec *Orchestration) error {
	path, err := s.path(rec.ID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal orchestration %s: %w", rec.ID, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write orchestration %s: %w", rec.ID, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write orchestration %s: %w", rec.ID, err)
	}
	return nil
}

// Init implements [Store].
func (s *FileStore) Init(id string, variables map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.read(id); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
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
	return s.write(rec)
}

// Get implements [Store].
func (s *FileStore) Get(id string) (Orchestration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(id)
	if errors.Is(err, ErrNotFound) {
		return defaultRecord(id), nil
	}
	if err != nil {
		return Orchestration{}, err
	}
	return *rec, nil
}

// Update implements [Store].
func (s *FileStore) Update(id string, u Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(id)
	if err != nil {
		return err
	}
	u.apply(rec)
	return s.write(rec)
}

// MarkStepComplete implements [Store].
func (s *FileStore) MarkStepComplete(id, stepID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(id)
	if err != nil {
		return err
	}
	if !rec.StepCompleted(stepID) {
		rec.CompletedStepIDs = append(rec.CompletedStepIDs, stepID)
	}
	rec.UpdatedAt = time.Now().UTC()
	return s.write(rec)
}

// SetCurrentStep implements [Store].
func (s *FileStore) SetCurrentStep(id string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(id)
	if err != nil {
		return err
	}
	rec.CurrentStepIndex = index
	rec.UpdatedAt = time.Now().UTC()
	return s.write(rec)
}
