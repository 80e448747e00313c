package types

import "fmt"

// StandupStatus represents the lifecycle status of a standup
type StandupStatus string

const (
	StandupStatusScheduled  StandupStatus = "SCHEDULED"
	StandupStatusInProgress StandupStatus = "IN_PROGRESS"
	StandupStatusProcessing StandupStatus = "PROCESSING"
	StandupStatusCompleted  StandupStatus = "COMPLETED"
	StandupStatusCancelled  StandupStatus = "CANCELLED"
)

// AllStandupStatuses returns all valid standup statuses
func AllStandupStatuses() []StandupStatus {
	return []StandupStatus{
		StandupStatusScheduled,
		StandupStatusInProgress,
		StandupStatusProcessing,
		StandupStatusCompleted,
		StandupStatusCancelled,
	}
}

// IsValid checks if the standup status is valid
func (s StandupStatus) IsValid() bool {
	switch s {
	case StandupStatusScheduled,
		StandupStatusInProgress,
		StandupStatusProcessing,
		StandupStatusCompleted,
		StandupStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal checks if the status is a terminal state
func (s StandupStatus) IsTerminal() bool {
	return s == StandupStatusCompleted || s == StandupStatusCancelled
}

// rank orders the forward-only lifecycle. Cancelled sits outside the order.
func (s StandupStatus) rank() int {
	switch s {
	case StandupStatusScheduled:
		return 0
	case StandupStatusInProgress:
		return 1
	case StandupStatusProcessing:
		return 2
	case StandupStatusCompleted:
		return 3
	default:
		return -1
	}
}

// CanTransitionTo checks whether moving from s to next is a legal lifecycle
// transition. The lifecycle only moves forward (skipping states is allowed,
// regressing is not); Cancelled is reachable from any non-terminal state.
func (s StandupStatus) CanTransitionTo(next StandupStatus) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	if next == StandupStatusCancelled {
		return !s.IsTerminal()
	}
	if s == StandupStatusCancelled {
		return false
	}
	return next.rank() > s.rank()
}

// Normalize returns the status, treating empty as StandupStatusScheduled.
func (s StandupStatus) Normalize() StandupStatus {
	if s == "" {
		return StandupStatusScheduled
	}
	return s
}

// String returns the string representation of the standup status
func (s StandupStatus) String() string {
	return string(s)
}

// ParseStandupStatus parses a string into a StandupStatus
func ParseStandupStatus(s string) (StandupStatus, error) {
	status := StandupStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid standup status: %s", s)
	}
	return status, nil
}
