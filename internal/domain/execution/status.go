package execution

import (
	"encoding/json"
	"fmt"
)

// Status is the lifecycle state of one plan's execution.
type Status string

const (
	StatusRunning          Status = "running"
	StatusAwaitingApproval Status = "awaiting_approval"
	StatusFailed           Status = "failed"
	StatusCompleted        Status = "completed"
)

// validTransitions defines the allowed state transitions and their events.
// Map: currentStatus -> event -> targetStatus
var validTransitions = map[Status]map[string]Status{
	StatusRunning: {
		"pause":    StatusAwaitingApproval,
		"complete": StatusCompleted,
		"fail":     StatusFailed,
	},
	StatusAwaitingApproval: {
		"resume": StatusRunning,
		"reject": StatusFailed,
	},
}

// AllStatuses returns all valid execution statuses.
func AllStatuses() []Status {
	return []Status{
		StatusRunning,
		StatusAwaitingApproval,
		StatusFailed,
		StatusCompleted,
	}
}

// IsValid returns true if the status is a valid execution status.
func (s Status) IsValid() bool {
	switch s {
	case StatusRunning, StatusAwaitingApproval, StatusFailed, StatusCompleted:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if the status is a final state. Terminal
// states admit no further execution calls.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionWith returns true if the given event can trigger a
// transition from this status.
func (s Status) CanTransitionWith(event string) bool {
	transitions, ok := validTransitions[s]
	if !ok {
		return false
	}
	_, ok = transitions[event]
	return ok
}

// TransitionWith returns the target status for the given event.
func (s Status) TransitionWith(event string) (Status, error) {
	transitions, ok := validTransitions[s]
	if !ok {
		return "", fmt.Errorf("no transitions allowed from status %q", s)
	}
	target, ok := transitions[event]
	if !ok {
		return "", fmt.Errorf("event %q is not allowed in status %q", event, s)
	}
	return target, nil
}

// ValidEvents returns the valid events for this status.
func (s Status) ValidEvents() []string {
	transitions, ok := validTransitions[s]
	if !ok {
		return nil
	}
	events := make([]string, 0, len(transitions))
	for e := range transitions {
		events = append(events, e)
	}
	return events
}

// MarshalJSON implements json.Marshaler interface.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status := Status(str)
	if !status.IsValid() {
		return fmt.Errorf("invalid execution status: %s", str)
	}

	*s = status
	return nil
}
