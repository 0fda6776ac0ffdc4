package metrics

import (
	coremetrics "github.com/kopong25/freightquick/core/metrics"
	"github.com/kopong25/freightquick/core/model"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records dispatch events in Prometheus metrics.
type PromSink struct {
	assignments *prometheus.CounterVec
	scores      *prometheus.HistogramVec
	matchRuns   prometheus.Counter
	matchTime   prometheus.Histogram
	routeMiles  *prometheus.GaugeVec
	routeStops  *prometheus.GaugeVec
}

// NewPromSink registers dispatch metrics on the default Prometheus registerer.
// The Prometheus server should be started separately via Serve.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_assignments_total",
		Help: "Total number of assignment state changes",
	}, []string{"category", "state"})
	scores := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dispatch_match_score",
		Help:    "Score of committed matches",
		Buckets: prometheus.LinearBuckets(0, 20, 8),
	}, []string{"category"})
	matchRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_match_runs_total",
		Help: "Number of match scoring passes",
	})
	matchTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dispatch_match_duration_seconds",
		Help:    "Duration of match scoring passes",
		Buckets: prometheus.DefBuckets,
	})
	routeMiles := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dispatch_route_miles",
		Help: "Total miles of the driver's current route",
	}, []string{"driver_id"})
	routeStops := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dispatch_route_stops",
		Help: "Stop count of the driver's current route",
	}, []string{"driver_id"})

	if err := reg.Register(assignments); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			assignments = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(scores); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			scores = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(matchRuns); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			matchRuns = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(matchTime); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			matchTime = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(routeMiles); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			routeMiles = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(routeStops); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			routeStops = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{
		assignments: assignments,
		scores:      scores,
		matchRuns:   matchRuns,
		matchTime:   matchTime,
		routeMiles:  routeMiles,
		routeStops:  routeStops,
	}, nil
}

// RecordAssignment increments the counter for each assignment event and
// observes the score of newly created assignments.
func (s *PromSink) RecordAssignment(events []coremetrics.AssignmentEvent) error {
	for _, ev := range events {
		s.assignments.WithLabelValues(ev.Category.String(), ev.State.String()).Inc()
		// Scores are observed once, at creation.
		if ev.State == model.AssignmentPending {
			s.scores.WithLabelValues(ev.Category.String()).Observe(ev.Score)
		}
	}
	return nil
}

// RecordMatch counts scoring passes and observes their duration.
func (s *PromSink) RecordMatch(ev coremetrics.MatchEvent) error {
	s.matchRuns.Inc()
	s.matchTime.Observe(ev.Duration.Seconds())
	return nil
}

// RecordRoute updates the per-driver route gauges.
func (s *PromSink) RecordRoute(ev coremetrics.RouteEvent) error {
	s.routeMiles.WithLabelValues(ev.DriverID).Set(ev.Miles)
	s.routeStops.WithLabelValues(ev.DriverID).Set(float64(ev.Stops))
	return nil
}
