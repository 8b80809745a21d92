package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	mock := NewMockAdapter()

	require.NoError(t, reg.Register("mock", mock))

	got, err := reg.Get("mock")
	require.NoError(t, err)
	assert.Same(t, Adapter(mock), got)
}

func TestRegistryDuplicateName(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("mock", NewMockAdapter()))
	assert.Error(t, reg.Register("mock", NewMockAdapter()))
}

func TestRegistryUnknownName(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("missing")
	assert.ErrorIs(t, err, ErrAdapterNotFound)
}

func TestRegistryRejectsInvalidRegistrations(t *testing.T) {
	reg := NewRegistry()
	assert.Error(t, reg.Register("", NewMockAdapter()))
	assert.Error(t, reg.Register("nil", nil))
}

func TestRegistryNames(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("b", NewMockAdapter()))
	require.NoError(t, reg.Register("a", NewMockAdapter()))
	assert.Equal(t, []string{"a", "b"}, reg.Names())
}

func TestRegistryCleanup(t *testing.T) {
	reg := NewRegistry()
	first := NewMockAdapter()
	second := NewMockAdapter()
	require.NoError(t, reg.Register("first", first))
	require.NoError(t, reg.Register("second", second))

	require.NoError(t, reg.Cleanup())
	assert.True(t, first.CleanedUp())
	assert.True(t, second.CleanedUp())
}

func TestMockAdapterScripting(t *testing.T) {
	mock := NewMockAdapter()
	mock.QueueResult(Result{Output: "failure: missing data", Status: StatusError, Error: "missing data"})

	d := Directive{Type: DirectiveExecuteStep, StepID: "step_1"}

	r, err := mock.Execute(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, StatusError, r.Status)

	// Queue drained; falls back to the default success.
	r, err = mock.Execute(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, r.Status)

	require.Len(t, mock.Executed(), 2)
	assert.Equal(t, "step_1", mock.Executed()[0].StepID)
}

func TestMockAdapterFailure(t *testing.T) {
	boom := errors.New("backend unreachable")
	mock := NewMockAdapter().FailWith(boom)

	_, err := mock.Execute(context.Background(), Directive{Type: DirectiveExecuteStep})
	assert.ErrorIs(t, err, boom)
}
