package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/kopong25/freightquick/core/ledger"
	"github.com/kopong25/freightquick/core/logger"
	"github.com/kopong25/freightquick/core/match"
	"github.com/kopong25/freightquick/core/metrics"
	"github.com/kopong25/freightquick/core/model"
	"github.com/kopong25/freightquick/core/notify"
	"github.com/kopong25/freightquick/core/oracle"
	"github.com/kopong25/freightquick/core/route"
	"github.com/kopong25/freightquick/core/store"
	"github.com/kopong25/freightquick/internal/eventbus"

	coreevents "github.com/kopong25/freightquick/core/events"
)

// AssignRequest is the boundary-level assign call: which drivers onto which
// load, with optional optimistic-concurrency hints from a prior FindMatches.
type AssignRequest struct {
	DriverIDs        []string
	LoadID           string
	ExpectedVersions map[string]uint64
}

// AssignResult mirrors the ledger's commit result.
type AssignResult = ledger.AssignResult

// Facade is the single entry point the CRUD layer calls.
type Facade struct {
	ledger   *ledger.Ledger
	scorer   *match.Scorer
	builder  *route.Builder
	oracle   oracle.DistanceOracle
	records  store.RecordStore
	notifier notify.Publisher
	metrics  metrics.MetricsSink
	bus      eventbus.EventBus
	log      logger.Logger
	now      func() time.Time
}

// New creates a Facade. Ledger, scorer, builder, oracle and logger are
// required; records, notifier, sink and bus may be nil and default to no-ops.
func New(led *ledger.Ledger, scorer *match.Scorer, builder *route.Builder, o oracle.DistanceOracle,
	records store.RecordStore, notifier notify.Publisher, sink metrics.MetricsSink, bus eventbus.EventBus,
	log logger.Logger) (*Facade, error) {
	if led == nil || scorer == nil || builder == nil || o == nil || log == nil {
		return nil, errors.New("dispatch: nil parameter provided to New")
	}
	if notifier == nil {
		notifier = notify.NopPublisher{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Facade{
		ledger:   led,
		scorer:   scorer,
		builder:  builder,
		oracle:   o,
		records:  records,
		notifier: notifier,
		metrics:  sink,
		bus:      bus,
		log:      log,
		now:      time.Now,
	}, nil
}

// Ledger exposes the underlying ledger for read-only boundary queries
// (listings, analytics).
func (f *Facade) Ledger() *ledger.Ledger { return f.ledger }

// SyncFromStore hydrates the ledger with the record store's current driver
// and load snapshots. Called at startup and whenever the boundary signals a
// record change.
func (f *Facade) SyncFromStore(ctx context.Context) error {
	if f.records == nil {
		return nil
	}
	drivers, err := f.records.Drivers(ctx)
	if err != nil {
		return err
	}
	for _, d := range drivers {
		if _, err := f.ledger.UpsertDriver(d); err != nil {
			return err
		}
	}
	loads, err := f.records.Loads(ctx)
	if err != nil {
		return err
	}
	for _, l := range loads {
		if _, err := f.ledger.UpsertLoad(l); err != nil {
			return err
		}
	}
	f.log.Infof("ledger hydrated: %d drivers, %d loads", len(drivers), len(loads))
	return nil
}

// UpdateDriverPosition applies a telemetry position report to the ledger.
// The driver's entity version bumps, so matches scored against the old
// position turn into conflicts instead of committing on stale distances.
func (f *Facade) UpdateDriverPosition(ctx context.Context, driverID string, loc model.Location, dutyHoursLeft *float64) error {
	v, ok := f.ledger.DriverView(driverID)
	if !ok {
		return &ledger.IneligibleError{DriverID: driverID, Reason: "unknown driver"}
	}
	d := v.Driver
	d.CurrentLocation = loc
	if dutyHoursLeft != nil {
		d.DutyHoursLeft = *dutyHoursLeft
	}
	_, err := f.ledger.UpsertDriver(d)
	return err
}

// FindMatches ranks eligible drivers for the load, best first. Read-only.
func (f *Facade) FindMatches(ctx context.Context, loadID string) ([]model.MatchResult, error) {
	lv, ok := f.ledger.LoadView(loadID)
	if !ok {
		return nil, &ledger.IneligibleError{LoadID: loadID, Reason: "unknown load"}
	}
	views := f.ledger.Drivers()
	cands := make([]match.Candidate, 0, len(views))
	for _, v := range views {
		cands = append(cands, match.Candidate{Driver: v.Driver, Version: v.Version, ActiveLoads: v.ActiveLoads})
	}

	start := f.now()
	results, err := f.scorer.FindMatches(ctx, lv.Load, cands, start)
	if err != nil {
		return nil, err
	}
	if rec, ok := f.metrics.(metrics.MatchRecorder); ok {
		ev := metrics.MatchEvent{
			LoadID:     loadID,
			Candidates: len(cands),
			Matches:    len(results),
			Duration:   time.Since(start),
			Time:       start,
		}
		if err := rec.RecordMatch(ev); err != nil {
			f.log.Errorf("match metrics: %v", err)
		}
	}
	return results, nil
}

// Assign commits every requested driver onto the load atomically. The
// distance legs every prospective route needs are prefetched here, before
// the ledger's critical section, so an oracle outage surfaces as a clean
// OracleUnavailable failure with nothing mutated.
func (f *Facade) Assign(ctx context.Context, req AssignRequest) (AssignResult, error) {
	lv, ok := f.ledger.LoadView(req.LoadID)
	if !ok {
		return AssignResult{}, &ledger.IneligibleError{LoadID: req.LoadID, Reason: "unknown load"}
	}

	points := []model.Location{lv.Load.Origin, lv.Load.Destination}
	for _, id := range req.DriverIDs {
		pts, ok := f.ledger.ActivePoints(id, lv.Load)
		if !ok {
			return AssignResult{}, &ledger.IneligibleError{DriverID: id, LoadID: req.LoadID, Reason: "unknown driver"}
		}
		points = append(points, pts...)
	}
	snap, err := oracle.Prefetch(ctx, f.oracle, dedupe(points))
	if err != nil {
		return AssignResult{}, oracle.Unavailable(err)
	}

	snapScorer := f.scorer.WithOracle(snap)
	now := f.now()
	matched := make(map[string]model.MatchResult, len(req.DriverIDs))
	eligible := func(ctx context.Context, load model.Load, driver model.Driver, active []model.Load) error {
		m, err := snapScorer.Match(ctx, load, match.Candidate{Driver: driver, ActiveLoads: active}, now)
		if err != nil {
			return err
		}
		matched[driver.ID] = m
		return nil
	}
	build := func(driver model.Driver, loads []model.Load) (model.Route, error) {
		return f.builder.Build(driver, loads, snap)
	}

	res, err := f.ledger.Assign(ctx, ledger.AssignRequest{
		DriverIDs:        req.DriverIDs,
		LoadID:           req.LoadID,
		ExpectedVersions: req.ExpectedVersions,
		Matches:          matched,
	}, eligible, build)
	if err != nil {
		return AssignResult{}, err
	}
	f.committed(ctx, res)
	return res, nil
}

// Confirm moves a pending assignment to confirmed.
func (f *Facade) Confirm(ctx context.Context, assignmentID string) (model.Assignment, error) {
	return f.transition(ctx, assignmentID, model.AssignmentConfirmed)
}

// Complete closes out a confirmed assignment. The load counts as delivered
// once no active assignment remains.
func (f *Facade) Complete(ctx context.Context, assignmentID string) (model.Assignment, error) {
	return f.transition(ctx, assignmentID, model.AssignmentCompleted)
}

// Cancel pulls an active assignment back. The load returns to available
// once no active assignment remains; the driver's route is rebuilt over
// what is left of the tour.
func (f *Facade) Cancel(ctx context.Context, assignmentID string) (model.Assignment, error) {
	return f.transition(ctx, assignmentID, model.AssignmentCancelled)
}

func (f *Facade) transition(ctx context.Context, assignmentID string, to model.AssignmentState) (model.Assignment, error) {
	a, ok := f.ledger.Assignment(assignmentID)
	if !ok {
		return model.Assignment{}, &ledger.IneligibleError{Reason: "unknown assignment " + assignmentID}
	}

	var build ledger.RouteBuildFunc
	if to.Terminal() {
		points, ok := f.ledger.ActivePoints(a.DriverID)
		if !ok {
			return model.Assignment{}, &ledger.IneligibleError{DriverID: a.DriverID, Reason: "unknown driver"}
		}
		snap, err := oracle.Prefetch(ctx, f.oracle, dedupe(points))
		if err != nil {
			return model.Assignment{}, oracle.Unavailable(err)
		}
		build = func(driver model.Driver, loads []model.Load) (model.Route, error) {
			return f.builder.Reoptimize(driver, loads, snap)
		}
	}

	from := a.State
	updated, err := f.ledger.Transition(ctx, assignmentID, to, build)
	if err != nil {
		return model.Assignment{}, err
	}

	f.persistAssignment(ctx, updated)
	if r, ok := f.ledger.Route(updated.DriverID); ok && to.Terminal() {
		f.persistRoute(ctx, r)
	}
	f.notifyDriver(ctx, updated)
	f.recordAssignments([]model.Assignment{updated})
	if f.bus != nil {
		f.bus.Publish(coreevents.AssignmentTransitioned{Assignment: updated, From: from, Time: f.now()})
	}
	return updated, nil
}

// OptimizeRoute rebuilds the driver's route from its current active
// assignments. A driver with nothing active gets an empty route back, a
// no-op success rather than an error.
func (f *Facade) OptimizeRoute(ctx context.Context, driverID string) (model.Route, error) {
	points, ok := f.ledger.ActivePoints(driverID)
	if !ok {
		return model.Route{}, &ledger.IneligibleError{DriverID: driverID, Reason: "unknown driver"}
	}
	snap, err := oracle.Prefetch(ctx, f.oracle, dedupe(points))
	if err != nil {
		return model.Route{}, oracle.Unavailable(err)
	}
	r, err := f.ledger.RebuildRoute(driverID, func(driver model.Driver, loads []model.Load) (model.Route, error) {
		return f.builder.Reoptimize(driver, loads, snap)
	})
	if err != nil {
		return model.Route{}, err
	}
	f.persistRoute(ctx, r)
	if rec, ok := f.metrics.(metrics.RouteRecorder); ok {
		ev := metrics.RouteEvent{
			DriverID: r.DriverID,
			Stops:    len(r.Stops),
			Miles:    r.Miles,
			Hours:    r.Hours,
			FuelCost: r.FuelCost,
			TollCost: r.TollCost,
			Time:     f.now(),
		}
		if err := rec.RecordRoute(ev); err != nil {
			f.log.Errorf("route metrics: %v", err)
		}
	}
	if f.bus != nil {
		f.bus.Publish(coreevents.RouteRebuilt{Route: r, Time: f.now()})
	}
	return r, nil
}

// committed fans a successful assign out to persistence, notifications,
// metrics and the event bus. All of it is post-commit and best-effort
// except route persistence, which is what keeps invariant checks outside
// the ledger honest.
func (f *Facade) committed(ctx context.Context, res AssignResult) {
	for _, a := range res.Assignments {
		f.persistAssignment(ctx, a)
		f.notifyDriver(ctx, a)
		if f.bus != nil {
			f.bus.Publish(coreevents.AssignmentCommitted{Assignment: a, Route: res.Routes[a.DriverID], Time: f.now()})
		}
	}
	for _, r := range res.Routes {
		f.persistRoute(ctx, r)
	}
	f.recordAssignments(res.Assignments)
}

func (f *Facade) persistAssignment(ctx context.Context, a model.Assignment) {
	if f.records == nil {
		return
	}
	if err := f.records.SaveAssignment(ctx, a); err != nil {
		f.log.Errorf("persist assignment %s: %v", a.ID, err)
	}
}

func (f *Facade) persistRoute(ctx context.Context, r model.Route) {
	if f.records == nil {
		return
	}
	if err := f.records.SaveRoute(ctx, r); err != nil {
		f.log.Errorf("persist route for driver %s: %v", r.DriverID, err)
	}
}

func (f *Facade) notifyDriver(ctx context.Context, a model.Assignment) {
	n := notify.Notice{
		DriverID:     a.DriverID,
		AssignmentID: a.ID,
		LoadID:       a.LoadID,
		State:        a.State,
		StateLabel:   a.State.String(),
		Category:     a.Category.String(),
		Time:         f.now(),
	}
	if err := f.notifier.NotifyAssignment(ctx, n); err != nil {
		f.log.Warnf("notify driver %s: %v", a.DriverID, err)
	}
}

func (f *Facade) recordAssignments(list []model.Assignment) {
	if len(list) == 0 {
		return
	}
	events := make([]metrics.AssignmentEvent, 0, len(list))
	for _, a := range list {
		events = append(events, metrics.AssignmentEvent{
			AssignmentID: a.ID,
			DriverID:     a.DriverID,
			LoadID:       a.LoadID,
			Category:     a.Category,
			Score:        a.Score,
			State:        a.State,
			Time:         a.UpdatedAt,
		})
	}
	if err := f.metrics.RecordAssignment(events); err != nil {
		f.log.Errorf("assignment metrics: %v", err)
	}
}

// dedupe removes duplicate locations by key, preserving order.
func dedupe(points []model.Location) []model.Location {
	seen := make(map[string]bool, len(points))
	out := points[:0]
	for _, p := range points {
		if seen[p.Key()] {
			continue
		}
		seen[p.Key()] = true
		out = append(out, p)
	}
	return out
}
