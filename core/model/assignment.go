package model

import "time"

// AssignmentState tracks the lifecycle of a driver-to-load assignment.
// Assignments are never removed; completed and cancelled are terminal.
type AssignmentState int

const (
	AssignmentPending AssignmentState = iota
	AssignmentConfirmed
	AssignmentCompleted
	AssignmentCancelled
)

func (s AssignmentState) String() string {
	switch s {
	case AssignmentPending:
		return "pending"
	case AssignmentConfirmed:
		return "confirmed"
	case AssignmentCompleted:
		return "completed"
	case AssignmentCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends the assignment lifecycle.
func (s AssignmentState) Terminal() bool {
	return s == AssignmentCompleted || s == AssignmentCancelled
}

// Active reports whether the assignment still binds the driver and the load.
func (s AssignmentState) Active() bool {
	return s == AssignmentPending || s == AssignmentConfirmed
}

// Assignment binds one driver to one load. Version increments on every
// mutation and is the optimistic-concurrency token callers hand back when
// transitioning the assignment.
type Assignment struct {
	ID        string
	DriverID  string
	LoadID    string
	State     AssignmentState
	Category  MatchCategory
	Score     float64
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   uint64
}
