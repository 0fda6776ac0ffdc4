// Package notify defines how committed assignments reach drivers. The MQTT
// implementation and the in-memory mock live in infra/mqtt.
package notify

import (
	"context"
	"time"

	"github.com/kopong25/freightquick/core/model"
)

// Notice is the message a driver receives when a load is assigned, changes
// state, or is pulled back.
type Notice struct {
	DriverID     string                `json:"driver_id"`
	AssignmentID string                `json:"assignment_id"`
	LoadID       string                `json:"load_id"`
	State        model.AssignmentState `json:"-"`
	StateLabel   string                `json:"state"`
	Category     string                `json:"category"`
	Time         time.Time             `json:"timestamp"`
}

// Publisher delivers notices to drivers. Delivery is best-effort: a failed
// notification never rolls back a committed assignment, it is logged and
// the dispatcher follows up out of band.
type Publisher interface {
	NotifyAssignment(ctx context.Context, n Notice) error
	Close() error
}

// NopPublisher drops every notice.
type NopPublisher struct{}

func (NopPublisher) NotifyAssignment(context.Context, Notice) error { return nil }
func (NopPublisher) Close() error                                   { return nil }
