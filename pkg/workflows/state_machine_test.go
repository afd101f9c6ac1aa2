package workflows

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClaimStateMachineTransitions(t *testing.T) {
	sm := NewClaimStateMachine()

	assert.True(t, sm.CanTransition("PENDING", "PARTIALLY_VERIFIED"))
	assert.True(t, sm.CanTransition("PENDING", "REJECTED"))
	assert.True(t, sm.CanTransition("PARTIALLY_VERIFIED", "VERIFIED"))
	assert.True(t, sm.CanTransition("PARTIALLY_VERIFIED", "REJECTED"))

	// No skipping straight to Verified and no leaving a terminal status.
	assert.False(t, sm.CanTransition("PENDING", "VERIFIED"))
	assert.False(t, sm.CanTransition("VERIFIED", "REJECTED"))
	assert.False(t, sm.CanTransition("REJECTED", "PENDING"))
	assert.False(t, sm.CanTransition("VERIFIED", "PARTIALLY_VERIFIED"))
}

func TestClaimStateMachineTerminalStates(t *testing.T) {
	sm := NewClaimStateMachine()

	assert.True(t, sm.IsTerminal("VERIFIED"))
	assert.True(t, sm.IsTerminal("REJECTED"))
	assert.False(t, sm.IsTerminal("PENDING"))
	assert.False(t, sm.IsTerminal("PARTIALLY_VERIFIED"))
}

func TestClaimStateMachineUnknownStatus(t *testing.T) {
	sm := NewClaimStateMachine()

	assert.False(t, sm.CanTransition("DRAFT", "PENDING"))
	assert.False(t, sm.IsTerminal("DRAFT"))
	assert.Empty(t, sm.GetAllowedTransitions("DRAFT"))
}
