// Package events defines the typed events published on the internal bus.
package events

import (
	"time"

	"github.com/kopong25/freightquick/core/model"
)

// AssignmentCommitted is published once per driver after a successful
// atomic assign.
type AssignmentCommitted struct {
	Assignment model.Assignment
	Route      model.Route
	Time       time.Time
}

// AssignmentTransitioned is published after a confirm/complete/cancel.
type AssignmentTransitioned struct {
	Assignment model.Assignment
	From       model.AssignmentState
	Time       time.Time
}

// RouteRebuilt is published when a driver's route snapshot is replaced.
type RouteRebuilt struct {
	Route model.Route
	Time  time.Time
}
