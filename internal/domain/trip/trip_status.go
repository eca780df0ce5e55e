package trip

import (
	"fmt"

	"github.com/intu-mobility/service-ride/internal/platform/domain"
)

// Status represents the current state of a trip intent in its lifecycle.
type Status string

const (
	// StatusRequested is the state right after a quote is confirmed: the
	// intent is recorded and dispatch (simulated today) is looking for a
	// driver.
	StatusRequested      Status = "requested"
	StatusDriverAssigned Status = "driver_assigned"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

// validTransitions defines the state machine for trip status transitions.
var validTransitions = map[Status][]Status{
	StatusRequested:      {StatusDriverAssigned, StatusCancelled},
	StatusDriverAssigned: {StatusCompleted, StatusCancelled},
	StatusCompleted:      {},
	StatusCancelled:      {},
}

// IsValid returns true if the status is a recognized trip status.
func (s Status) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s Status) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", domain.NewValidationError(fmt.Sprintf("invalid trip status: %s", s))
	}
	return status, nil
}
