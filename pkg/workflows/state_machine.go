package workflows

// StateMachine enforces claim status transitions
type StateMachine struct {
	allowedTransitions map[string][]string
}

// NewClaimStateMachine creates the state machine for work claim statuses.
// Verified and Rejected are terminal.
func NewClaimStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			"PENDING":            {"PARTIALLY_VERIFIED", "REJECTED"},
			"PARTIALLY_VERIFIED": {"VERIFIED", "REJECTED"},
			"VERIFIED":           {},
			"REJECTED":           {},
		},
	}
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist from the status
func (sm *StateMachine) IsTerminal(status string) bool {
	allowed, exists := sm.allowedTransitions[status]
	return exists && len(allowed) == 0
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return allowed
}
