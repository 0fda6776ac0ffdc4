package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	coremetrics "github.com/kopong25/freightquick/core/metrics"
	"github.com/kopong25/freightquick/core/model"
)

type recordingSink struct {
	assignments int
	matches     int
	routes      int
}

func (r *recordingSink) RecordAssignment(events []coremetrics.AssignmentEvent) error {
	r.assignments += len(events)
	return nil
}

func (r *recordingSink) RecordMatch(coremetrics.MatchEvent) error {
	r.matches++
	return nil
}

func (r *recordingSink) RecordRoute(coremetrics.RouteEvent) error {
	r.routes++
	return nil
}

func TestMultiSinkFanout(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	m := NewMultiSink(a, b, coremetrics.NopSink{})

	events := []coremetrics.AssignmentEvent{
		{AssignmentID: "a1", DriverID: "d1", LoadID: "l1", State: model.AssignmentPending, Time: time.Now()},
		{AssignmentID: "a2", DriverID: "d2", LoadID: "l1", State: model.AssignmentPending, Time: time.Now()},
	}
	require.NoError(t, m.RecordAssignment(events))
	require.NoError(t, m.RecordMatch(coremetrics.MatchEvent{LoadID: "l1", Candidates: 3, Matches: 1}))
	require.NoError(t, m.RecordRoute(coremetrics.RouteEvent{DriverID: "d1", Stops: 2, Miles: 410}))

	require.Equal(t, 2, a.assignments)
	require.Equal(t, 2, b.assignments)
	require.Equal(t, 1, a.matches)
	require.Equal(t, 1, b.routes)
}
