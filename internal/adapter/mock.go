package adapter

import (
	"context"
	"sync"
)

// MockAdapter is a scriptable [Adapter] for tests. Queued results are
// returned in order; when the queue is empty it reports a generic success.
type MockAdapter struct {
	mu        sync.Mutex
	executed  []Directive
	queue     []Result
	err       error
	cleanedUp bool
}

// NewMockAdapter creates a mock that succeeds on every directive until
// scripted otherwise.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{}
}

// QueueResult appends a result to be returned by the next Execute calls.
func (m *MockAdapter) QueueResult(r Result) *MockAdapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, r)
	return m
}

// FailWith makes every subsequent Execute return err.
func (m *MockAdapter) FailWith(err error) *MockAdapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Execute implements [Adapter].
func (m *MockAdapter) Execute(_ context.Context, d Directive) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.executed = append(m.executed, d)
	if m.err != nil {
		return Result{}, m.err
	}
	if len(m.queue) > 0 {
		r := m.queue[0]
		m.queue = m.queue[1:]
		return r, nil
	}
	return Result{Output: "completed successfully", Status: StatusSuccess}, nil
}

// Cleanup implements [Adapter].
func (m *MockAdapter) Cleanup() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanedUp = true
	return nil
}

// Executed returns the directives received so far.
func (m *MockAdapter) Executed() []Directive {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Directive(nil), m.executed...)
}

// CleanedUp reports whether Cleanup has been called.
func (m *MockAdapter) CleanedUp() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleanedUp
}
