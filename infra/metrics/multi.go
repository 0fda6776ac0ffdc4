package metrics

import coremetrics "github.com/kopong25/freightquick/core/metrics"

// MultiSink fans dispatch events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAssignment forwards the events to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordAssignment(events []coremetrics.AssignmentEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordAssignment(events); err != nil {
			return err
		}
	}
	return nil
}

// RecordMatch forwards scoring passes to sinks that support them.
func (m *MultiSink) RecordMatch(ev coremetrics.MatchEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.MatchRecorder); ok {
			if err := rec.RecordMatch(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordRoute forwards route snapshots to sinks that support them.
func (m *MultiSink) RecordRoute(ev coremetrics.RouteEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.RouteRecorder); ok {
			if err := rec.RecordRoute(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
