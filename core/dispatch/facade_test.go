package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kopong25/freightquick/core/ledger"
	"github.com/kopong25/freightquick/core/logger"
	"github.com/kopong25/freightquick/core/match"
	"github.com/kopong25/freightquick/core/model"
	"github.com/kopong25/freightquick/core/notify"
	"github.com/kopong25/freightquick/core/oracle"
	"github.com/kopong25/freightquick/core/route"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

var _ logger.Logger = nopLogger{}

// legOracle answers from a symmetric mileage table; hours follow from a
// 55 mph average and tolls are flat per leg.
type legOracle struct {
	miles map[string]float64
	fail  bool
}

func (o *legOracle) Distance(_ context.Context, from, to model.Location) (oracle.Distance, error) {
	if o.fail {
		return oracle.Distance{}, errors.New("routing api down")
	}
	m, ok := o.miles[from.Key()+"|"+to.Key()]
	if !ok {
		m, ok = o.miles[to.Key()+"|"+from.Key()]
	}
	if !ok {
		m = 500
	}
	return oracle.Distance{Miles: m, Hours: m / 55, Toll: m * 0.08}, nil
}

type fakeStore struct {
	mu          sync.Mutex
	assignments map[string]model.Assignment
	routes      map[string]model.Route
}

func newFakeStore() *fakeStore {
	return &fakeStore{assignments: make(map[string]model.Assignment), routes: make(map[string]model.Route)}
}

func (s *fakeStore) Drivers(context.Context) ([]model.Driver, error) { return nil, nil }
func (s *fakeStore) Driver(context.Context, string) (model.Driver, error) {
	return model.Driver{}, errors.New("not implemented")
}
func (s *fakeStore) Loads(context.Context) ([]model.Load, error) { return nil, nil }
func (s *fakeStore) Load(context.Context, string) (model.Load, error) {
	return model.Load{}, errors.New("not implemented")
}
func (s *fakeStore) SaveAssignment(_ context.Context, a model.Assignment) error {
	s.mu.Lock()
	s.assignments[a.ID] = a
	s.mu.Unlock()
	return nil
}
func (s *fakeStore) SaveRoute(_ context.Context, r model.Route) error {
	s.mu.Lock()
	s.routes[r.DriverID] = r
	s.mu.Unlock()
	return nil
}
func (s *fakeStore) Close() error { return nil }

type fakeNotifier struct {
	mu      sync.Mutex
	notices []notify.Notice
}

func (n *fakeNotifier) NotifyAssignment(_ context.Context, notice notify.Notice) error {
	n.mu.Lock()
	n.notices = append(n.notices, notice)
	n.mu.Unlock()
	return nil
}
func (n *fakeNotifier) Close() error { return nil }

var (
	chicago   = model.Location{Name: "Chicago, IL"}
	gary      = model.Location{Name: "Gary, IN"}
	detroit   = model.Location{Name: "Detroit, MI"}
	miami     = model.Location{Name: "Miami, FL"}
	milwaukee = model.Location{Name: "Milwaukee, WI"}
	champaign = model.Location{Name: "Champaign, IL"}
)

func fixtureOracle() *legOracle {
	return &legOracle{miles: map[string]float64{
		gary.Key() + "|" + chicago.Key():      25,
		gary.Key() + "|" + detroit.Key():      255,
		chicago.Key() + "|" + detroit.Key():   283,
		miami.Key() + "|" + chicago.Key():     1380,
		miami.Key() + "|" + detroit.Key():     1390,
		milwaukee.Key() + "|" + chicago.Key(): 52,
		champaign.Key() + "|" + chicago.Key(): 137,
		champaign.Key() + "|" + detroit.Key(): 350,
	}}
}

func fixtureFacade(t *testing.T, o oracle.DistanceOracle) (*Facade, *fakeStore, *fakeNotifier) {
	t.Helper()
	log := nopLogger{}
	led, err := ledger.New(4, log)
	require.NoError(t, err)
	scorer, err := match.NewScorer(match.Config{}, o, log)
	require.NoError(t, err)
	builder, err := route.NewBuilder(route.Config{}, log)
	require.NoError(t, err)
	st := newFakeStore()
	nt := &fakeNotifier{}
	f, err := New(led, scorer, builder, o, st, nt, nil, nil, log)
	require.NoError(t, err)

	_, err = led.UpsertDriver(model.Driver{
		ID: "d-near", Name: "Ivan Grau", Equipment: model.EquipmentOTR,
		CurrentLocation: gary, DutyHoursLeft: 11, OnTimeRate: 0.97,
	})
	require.NoError(t, err)
	_, err = led.UpsertDriver(model.Driver{
		ID: "d-far", Name: "Carol Smith", Equipment: model.EquipmentOTR,
		CurrentLocation: miami, DutyHoursLeft: 11, OnTimeRate: 0.99,
	})
	require.NoError(t, err)
	_, err = led.UpsertLoad(model.Load{
		ID: "l1", LoadNumber: "010192-206", Origin: chicago, Destination: detroit,
		Equipment: model.EquipmentOTR, Miles: 283, Rate: 1850, PostedAt: time.Now(),
	})
	require.NoError(t, err)
	return f, st, nt
}

func TestFindMatchesRanksNearestFirst(t *testing.T) {
	f, _, _ := fixtureFacade(t, fixtureOracle())

	matches, err := f.FindMatches(context.Background(), "l1")
	require.NoError(t, err)
	// The far driver busts the deadhead window; only the near one matches.
	require.Len(t, matches, 1)
	require.Equal(t, "d-near", matches[0].DriverID)
	require.Equal(t, model.MatchSourceLoad, matches[0].Category)
	require.Greater(t, matches[0].Score, 0.0)
}

func TestFindMatchesUnknownLoad(t *testing.T) {
	f, _, _ := fixtureFacade(t, fixtureOracle())
	_, err := f.FindMatches(context.Background(), "nope")
	var ineligible *ledger.IneligibleError
	require.True(t, errors.As(err, &ineligible))
}

func TestAssignCommitsAndFansOut(t *testing.T) {
	f, st, nt := fixtureFacade(t, fixtureOracle())

	res, err := f.Assign(context.Background(), AssignRequest{DriverIDs: []string{"d-near"}, LoadID: "l1"})
	require.NoError(t, err)
	require.Len(t, res.Assignments, 1)

	a := res.Assignments[0]
	require.Equal(t, model.AssignmentPending, a.State)
	require.Equal(t, model.MatchSourceLoad, a.Category)
	require.Greater(t, a.Score, 0.0)

	r := res.Routes["d-near"]
	require.Len(t, r.Stops, 2)
	require.Equal(t, model.StopPickup, r.Stops[0].Kind)
	require.Greater(t, r.Miles, 0.0)

	// Load is no longer available.
	lv, ok := f.Ledger().LoadView("l1")
	require.True(t, ok)
	require.Equal(t, model.LoadAssigned, lv.Status)

	// Post-commit fanout reached the store and the notifier.
	_, saved := st.assignments[a.ID]
	require.True(t, saved)
	require.Len(t, nt.notices, 1)
	require.Equal(t, "d-near", nt.notices[0].DriverID)
}

func TestAssignStaleVersionConflicts(t *testing.T) {
	f, _, _ := fixtureFacade(t, fixtureOracle())

	_, err := f.Assign(context.Background(), AssignRequest{
		DriverIDs:        []string{"d-near"},
		LoadID:           "l1",
		ExpectedVersions: map[string]uint64{"d-near": 99},
	})
	var conflict *ledger.ConflictError
	require.True(t, errors.As(err, &conflict))

	// Nothing committed.
	require.Empty(t, f.Ledger().Assignments())
}

func TestAssignOracleDownLeavesLedgerUntouched(t *testing.T) {
	o := fixtureOracle()
	f, _, _ := fixtureFacade(t, o)
	o.fail = true

	_, err := f.Assign(context.Background(), AssignRequest{DriverIDs: []string{"d-near"}, LoadID: "l1"})
	var unavailable *oracle.UnavailableError
	require.True(t, errors.As(err, &unavailable))
	require.Empty(t, f.Ledger().Assignments())

	lv, _ := f.Ledger().LoadView("l1")
	require.Equal(t, model.LoadAvailable, lv.Status)
}

func TestAssignAtomicAcrossDrivers(t *testing.T) {
	f, _, _ := fixtureFacade(t, fixtureOracle())

	// d-far is outside the deadhead window, so the team assign must fail
	// as a whole even though d-near alone would commit.
	_, err := f.Assign(context.Background(), AssignRequest{DriverIDs: []string{"d-near", "d-far"}, LoadID: "l1"})
	var ineligible *ledger.IneligibleError
	require.True(t, errors.As(err, &ineligible))
	require.Empty(t, f.Ledger().Assignments())
}

func TestLifecycleConfirmCompleteDerivesStatuses(t *testing.T) {
	f, _, _ := fixtureFacade(t, fixtureOracle())
	ctx := context.Background()

	res, err := f.Assign(ctx, AssignRequest{DriverIDs: []string{"d-near"}, LoadID: "l1"})
	require.NoError(t, err)
	id := res.Assignments[0].ID

	confirmed, err := f.Confirm(ctx, id)
	require.NoError(t, err)
	require.Equal(t, model.AssignmentConfirmed, confirmed.State)

	lv, _ := f.Ledger().LoadView("l1")
	require.Equal(t, model.LoadInTransit, lv.Status)
	dv, _ := f.Ledger().DriverView("d-near")
	require.Equal(t, model.DriverOnLoad, dv.Status)

	completed, err := f.Complete(ctx, id)
	require.NoError(t, err)
	require.Equal(t, model.AssignmentCompleted, completed.State)

	lv, _ = f.Ledger().LoadView("l1")
	require.Equal(t, model.LoadDelivered, lv.Status)
	dv, _ = f.Ledger().DriverView("d-near")
	require.Equal(t, model.DriverAvailable, dv.Status)

	// The route shrank back to empty.
	r, ok := f.Ledger().Route("d-near")
	require.True(t, ok)
	require.True(t, r.Empty())
}

func TestCancelReturnsLoadToBoard(t *testing.T) {
	f, _, _ := fixtureFacade(t, fixtureOracle())
	ctx := context.Background()

	res, err := f.Assign(ctx, AssignRequest{DriverIDs: []string{"d-near"}, LoadID: "l1"})
	require.NoError(t, err)

	cancelled, err := f.Cancel(ctx, res.Assignments[0].ID)
	require.NoError(t, err)
	require.Equal(t, model.AssignmentCancelled, cancelled.State)

	lv, _ := f.Ledger().LoadView("l1")
	require.Equal(t, model.LoadAvailable, lv.Status)

	// The load can be assigned again.
	_, err = f.Assign(ctx, AssignRequest{DriverIDs: []string{"d-near"}, LoadID: "l1"})
	require.NoError(t, err)
}

func TestCompleteRequiresConfirm(t *testing.T) {
	f, _, _ := fixtureFacade(t, fixtureOracle())
	ctx := context.Background()

	res, err := f.Assign(ctx, AssignRequest{DriverIDs: []string{"d-near"}, LoadID: "l1"})
	require.NoError(t, err)

	_, err = f.Complete(ctx, res.Assignments[0].ID)
	var invalid *ledger.InvalidTransitionError
	require.True(t, errors.As(err, &invalid))
}

func TestOptimizeRouteUnknownDriver(t *testing.T) {
	f, _, _ := fixtureFacade(t, fixtureOracle())
	_, err := f.OptimizeRoute(context.Background(), "ghost")
	var ineligible *ledger.IneligibleError
	require.True(t, errors.As(err, &ineligible))
}

func TestOptimizeRouteEmptyTour(t *testing.T) {
	f, _, _ := fixtureFacade(t, fixtureOracle())
	r, err := f.OptimizeRoute(context.Background(), "d-near")
	require.NoError(t, err)
	require.True(t, r.Empty())
}

func TestUpdateDriverPositionBumpsVersion(t *testing.T) {
	f, _, _ := fixtureFacade(t, fixtureOracle())

	matches, err := f.FindMatches(context.Background(), "l1")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	stale := matches[0].DriverVersion

	hours := 9.5
	require.NoError(t, f.UpdateDriverPosition(context.Background(), "d-near", detroit, &hours))

	v, ok := f.Ledger().DriverView("d-near")
	require.True(t, ok)
	require.Equal(t, detroit, v.Driver.CurrentLocation)
	require.InDelta(t, 9.5, v.Driver.DutyHoursLeft, 1e-9)
	require.Greater(t, v.Version, stale)

	// A match scored against the old position no longer commits.
	_, err = f.Assign(context.Background(), AssignRequest{
		DriverIDs:        []string{"d-near"},
		LoadID:           "l1",
		ExpectedVersions: map[string]uint64{"d-near": stale},
	})
	var conflict *ledger.ConflictError
	require.True(t, errors.As(err, &conflict))
}

func TestAssignRejectsSecondStandaloneLoad(t *testing.T) {
	f, _, _ := fixtureFacade(t, fixtureOracle())
	led := f.Ledger()

	_, err := led.UpsertDriver(model.Driver{
		ID: "d-tour", Name: "Jules Toro", Equipment: model.EquipmentOTR,
		CurrentLocation: champaign, DutyHoursLeft: 11, OnTimeRate: 0.95,
	})
	require.NoError(t, err)
	_, err = led.UpsertLoad(model.Load{
		ID: "l-cmi", LoadNumber: "010203-118", Origin: champaign, Destination: detroit,
		Equipment: model.EquipmentOTR, Miles: 350, Rate: 2100, PostedAt: time.Now(),
	})
	require.NoError(t, err)

	_, err = f.Assign(context.Background(), AssignRequest{DriverIDs: []string{"d-tour"}, LoadID: "l-cmi"})
	require.NoError(t, err)

	// Reposition the driver far from the tour anchor but inside the
	// one-hour window of the Chicago load. The open tour no longer covers
	// that origin, so the driver must not pick up a standalone second load.
	require.NoError(t, f.UpdateDriverPosition(context.Background(), "d-tour", milwaukee, nil))

	_, err = f.Assign(context.Background(), AssignRequest{DriverIDs: []string{"d-tour"}, LoadID: "l1"})
	var ineligible *ledger.IneligibleError
	require.True(t, errors.As(err, &ineligible))
	require.Len(t, led.Assignments(), 1)

	v, ok := led.LoadView("l1")
	require.True(t, ok)
	require.Equal(t, model.LoadAvailable, v.Status)
}

func TestUpdateDriverPositionUnknownDriver(t *testing.T) {
	f, _, _ := fixtureFacade(t, fixtureOracle())
	err := f.UpdateDriverPosition(context.Background(), "ghost", detroit, nil)
	var ineligible *ledger.IneligibleError
	require.True(t, errors.As(err, &ineligible))
}
