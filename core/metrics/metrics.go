// Package metrics defines the observability surface of the dispatch core.
// Concrete sinks (Prometheus, InfluxDB) live in infra/metrics.
package metrics

import (
	"time"

	"github.com/kopong25/freightquick/core/model"
)

// AssignmentEvent is one per-driver assignment state change to be recorded.
type AssignmentEvent struct {
	AssignmentID string
	DriverID     string
	LoadID       string
	Category     model.MatchCategory
	Score        float64
	State        model.AssignmentState
	Time         time.Time
}

// MetricsSink records assignment events for observability purposes.
type MetricsSink interface {
	RecordAssignment(events []AssignmentEvent) error
}

// MatchEvent captures one scoring pass over a load.
type MatchEvent struct {
	LoadID     string
	Candidates int
	Matches    int
	Duration   time.Duration
	Time       time.Time
}

// MatchRecorder records match scoring passes.
type MatchRecorder interface {
	RecordMatch(ev MatchEvent) error
}

// RouteEvent captures a rebuilt route's derived totals.
type RouteEvent struct {
	DriverID string
	Stops    int
	Miles    float64
	Hours    float64
	FuelCost float64
	TollCost float64
	Time     time.Time
}

// RouteRecorder records route rebuilds.
type RouteRecorder interface {
	RecordRoute(ev RouteEvent) error
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) RecordAssignment([]AssignmentEvent) error { return nil }
func (NopSink) RecordMatch(MatchEvent) error             { return nil }
func (NopSink) RecordRoute(RouteEvent) error             { return nil }
