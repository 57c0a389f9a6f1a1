package status_test

import (
	"testing"

	"custom-print-backend/internal/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_ApproveThenComplete(t *testing.T) {
	next, err := status.Transition(status.Pending, status.ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, status.Approved, next)

	next, err = status.Transition(next, status.ActionComplete)
	require.NoError(t, err)
	assert.Equal(t, status.Completed, next)
	assert.True(t, next.IsTerminal())
}

func TestTransition_RepeatApproveRejected(t *testing.T) {
	next, err := status.Transition(status.Pending, status.ActionApprove)
	require.NoError(t, err)

	_, err = status.Transition(next, status.ActionApprove)
	assert.ErrorIs(t, err, status.ErrInvalidTransition)
}

func TestTransition_TerminalStates(t *testing.T) {
	for _, from := range []status.Status{status.Rejected, status.Completed} {
		for _, action := range []status.Action{status.ActionApprove, status.ActionReject, status.ActionComplete} {
			_, err := status.Transition(from, action)
			assert.ErrorIs(t, err, status.ErrInvalidTransition, "%s from %s", action, from)
		}
	}
}

func TestTransition_CompleteRequiresApproval(t *testing.T) {
	_, err := status.Transition(status.Pending, status.ActionComplete)
	assert.ErrorIs(t, err, status.ErrInvalidTransition)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, status.CanTransition(status.Pending, status.Rejected))
	assert.True(t, status.CanTransition(status.Approved, status.Completed))
	assert.False(t, status.CanTransition(status.Approved, status.Rejected))
	assert.False(t, status.CanTransition(status.Completed, status.Pending))
}

func TestParse(t *testing.T) {
	s, err := status.Parse("pending")
	require.NoError(t, err)
	assert.Equal(t, status.Pending, s)

	s, err = status.Parse(" APPROVED ")
	require.NoError(t, err)
	assert.Equal(t, status.Approved, s)

	_, err = status.Parse("shipped")
	assert.ErrorIs(t, err, status.ErrUnknownStatus)

	assert.True(t, status.Completed.Valid())
	assert.False(t, status.Status("Approved").Valid())
}
