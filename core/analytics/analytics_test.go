package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kopong25/freightquick/core/ledger"
	"github.com/kopong25/freightquick/core/model"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

func stubRoute(driver model.Driver, loads []model.Load) (model.Route, error) {
	var miles float64
	var stops []model.Stop
	for _, l := range loads {
		miles += l.Miles
		stops = append(stops,
			model.Stop{LoadID: l.ID, Kind: model.StopPickup, Location: l.Origin},
			model.Stop{LoadID: l.ID, Kind: model.StopDelivery, Location: l.Destination},
		)
	}
	return model.Route{DriverID: driver.ID, Stops: stops, Miles: miles, FuelCost: miles * 0.43}, nil
}

func eligible(context.Context, model.Load, model.Driver, []model.Load) error { return nil }

func TestComputeEmptyLedger(t *testing.T) {
	lg, err := ledger.New(4, nopLogger{})
	require.NoError(t, err)

	s := Compute(lg)
	require.Zero(t, s.TotalDrivers)
	require.Zero(t, s.UtilizationRate)
	require.Empty(t, s.Utilization)
}

func TestComputeFleetSummary(t *testing.T) {
	lg, err := ledger.New(4, nopLogger{})
	require.NoError(t, err)
	ctx := context.Background()

	origin := model.Location{Name: "Chicago, IL"}
	dest := model.Location{Name: "Detroit, MI"}
	drivers := []model.Driver{
		{ID: "d1", Equipment: model.EquipmentOTR, OnTimeRate: 0.90, DutyHoursLeft: 11},
		{ID: "d2", Equipment: model.EquipmentOTR, OnTimeRate: 0.96, DutyHoursLeft: 11},
		{ID: "d3", Equipment: model.EquipmentSolo, OnTimeRate: 0.99, DutyHoursLeft: 11, OffDuty: true},
	}
	for _, d := range drivers {
		_, err := lg.UpsertDriver(d)
		require.NoError(t, err)
	}
	for _, id := range []string{"l1", "l2"} {
		_, err := lg.UpsertLoad(model.Load{ID: id, Origin: origin, Destination: dest, Miles: 283, Rate: 1850, PostedAt: time.Now()})
		require.NoError(t, err)
	}

	res, err := lg.Assign(ctx, ledger.AssignRequest{
		DriverIDs: []string{"d1"},
		LoadID:    "l1",
		Matches:   map[string]model.MatchResult{"d1": {Score: 95}},
	}, eligible, stubRoute)
	require.NoError(t, err)

	s := Compute(lg)
	require.Equal(t, 3, s.TotalDrivers)
	require.Equal(t, 1, s.AvailableDrivers) // d1 on load, d3 off duty
	require.InDelta(t, 66.7, s.UtilizationRate, 0.1)
	require.Equal(t, 2, s.ActiveLoads)
	require.Equal(t, 1, s.ActiveAssignments)
	require.InDelta(t, 95.0, s.AvgOnTimeRate, 0.1) // mean of 0.90, 0.96, 0.99
	require.Greater(t, s.StdOnTimeRate, 0.0)
	require.InDelta(t, 283.0, s.TotalRouteMiles, 0.01)
	require.Equal(t, 95.0, s.ScoreMean)

	require.Len(t, s.Utilization, 2)
	require.Equal(t, "OTR", s.Utilization[0].Equipment)
	require.Equal(t, 2, s.Utilization[0].Total)
	require.Equal(t, 1, s.Utilization[0].Active)

	// Completing the assignment moves revenue into the delivered bucket.
	_, err = lg.Transition(ctx, res.Assignments[0].ID, model.AssignmentConfirmed, nil)
	require.NoError(t, err)
	_, err = lg.Transition(ctx, res.Assignments[0].ID, model.AssignmentCompleted, stubRoute)
	require.NoError(t, err)

	s = Compute(lg)
	require.Equal(t, 1850.0, s.DeliveredRevenue)
	require.Equal(t, 1, s.ActiveLoads)
	require.Zero(t, s.ActiveAssignments)
}
