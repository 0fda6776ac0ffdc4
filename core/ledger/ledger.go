// Package ledger holds the authoritative in-memory state of drivers, loads,
// assignments and routes. Every mutation funnels through one critical
// section per ledger, and every read that feeds a later write is treated as
// a racy snapshot: the entity version check at commit time is the sole
// concurrency-correctness mechanism.
package ledger

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kopong25/freightquick/core/logger"
	"github.com/kopong25/freightquick/core/model"
)

// EligibilityFunc re-validates the hard matching constraints for one driver
// at commit time. It must not perform remote calls: callers hand in a
// closure over a prefetched oracle snapshot.
type EligibilityFunc func(ctx context.Context, load model.Load, driver model.Driver, activeLoads []model.Load) error

// RouteBuildFunc builds the route for a driver's prospective active load
// set. Like EligibilityFunc it runs inside the critical section and must be
// oracle-free.
type RouteBuildFunc func(driver model.Driver, activeLoads []model.Load) (model.Route, error)

// AssignRequest asks for an atomic commit of every listed driver onto the
// load. ExpectedVersions carries optimistic-concurrency hints keyed by
// entity ID (drivers and, optionally, the load); a missing entry skips the
// check for that entity.
type AssignRequest struct {
	DriverIDs        []string
	LoadID           string
	ExpectedVersions map[string]uint64
	// Matches optionally carries the scored match per driver so the created
	// assignments record their category and score.
	Matches map[string]model.MatchResult
}

// AssignResult reports the committed assignments (in request order) and the
// rebuilt route per driver.
type AssignResult struct {
	Assignments []model.Assignment
	Routes      map[string]model.Route
}

// DriverView is a consistent snapshot of one driver.
type DriverView struct {
	Driver      model.Driver
	Version     uint64
	Status      model.DriverStatus
	Assignments []model.Assignment
	ActiveLoads []model.Load
}

// LoadView is a consistent snapshot of one load.
type LoadView struct {
	Load    model.Load
	Version uint64
	Status  model.LoadStatus
}

type driverEntry struct {
	driver  model.Driver
	version uint64
}

type loadEntry struct {
	load    model.Load
	version uint64
}

// Ledger is the single shared-mutable-state owner of the dispatch core.
type Ledger struct {
	mu          sync.Mutex
	tourCap     int
	drivers     map[string]*driverEntry
	loads       map[string]*loadEntry
	assignments map[string]*model.Assignment
	byDriver    map[string][]string // driver ID -> assignment IDs, insertion order
	byLoad      map[string][]string // load ID -> assignment IDs
	routes      map[string]model.Route
	log         logger.Logger
	now         func() time.Time
	newID       func() string
}

// New creates an empty ledger. tourCap bounds concurrently pending
// assignments per driver; zero applies the default of four.
func New(tourCap int, log logger.Logger) (*Ledger, error) {
	if tourCap == 0 {
		tourCap = 4
	}
	if tourCap < 1 {
		return nil, errors.New("ledger: tour cap must be at least 1")
	}
	if log == nil {
		return nil, errors.New("ledger: nil logger")
	}
	return &Ledger{
		tourCap:     tourCap,
		drivers:     make(map[string]*driverEntry),
		loads:       make(map[string]*loadEntry),
		assignments: make(map[string]*model.Assignment),
		byDriver:    make(map[string][]string),
		byLoad:      make(map[string][]string),
		routes:      make(map[string]model.Route),
		log:         log,
		now:         time.Now,
		newID:       uuid.NewString,
	}, nil
}

// UpsertDriver installs or replaces a driver record and returns its new
// entity version. Drivers are owned by the record store; the ledger only
// tracks their dispatch state.
func (lg *Ledger) UpsertDriver(d model.Driver) (uint64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	lg.mu.Lock()
	defer lg.mu.Unlock()
	e, ok := lg.drivers[d.ID]
	if !ok {
		lg.drivers[d.ID] = &driverEntry{driver: d, version: 1}
		return 1, nil
	}
	e.driver = d
	e.version++
	return e.version, nil
}

// UpsertLoad installs or replaces a load record and returns its version.
func (lg *Ledger) UpsertLoad(l model.Load) (uint64, error) {
	if err := l.Validate(); err != nil {
		return 0, err
	}
	lg.mu.Lock()
	defer lg.mu.Unlock()
	e, ok := lg.loads[l.ID]
	if !ok {
		lg.loads[l.ID] = &loadEntry{load: l, version: 1}
		return 1, nil
	}
	e.load = l
	e.version++
	return e.version, nil
}

// DriverView returns a snapshot of one driver.
func (lg *Ledger) DriverView(id string) (DriverView, bool) {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	e, ok := lg.drivers[id]
	if !ok {
		return DriverView{}, false
	}
	return lg.driverViewLocked(e), true
}

// Drivers returns snapshots of every driver, ordered by ID so repeated
// calls over the same state produce the same sequence.
func (lg *Ledger) Drivers() []DriverView {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	ids := make([]string, 0, len(lg.drivers))
	for id := range lg.drivers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	views := make([]DriverView, 0, len(ids))
	for _, id := range ids {
		views = append(views, lg.driverViewLocked(lg.drivers[id]))
	}
	return views
}

// LoadView returns a snapshot of one load.
func (lg *Ledger) LoadView(id string) (LoadView, bool) {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	e, ok := lg.loads[id]
	if !ok {
		return LoadView{}, false
	}
	return LoadView{Load: e.load, Version: e.version, Status: lg.loadStatusLocked(id)}, true
}

// Loads returns snapshots of every load ordered by ID.
func (lg *Ledger) Loads() []LoadView {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	ids := make([]string, 0, len(lg.loads))
	for id := range lg.loads {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	views := make([]LoadView, 0, len(ids))
	for _, id := range ids {
		views = append(views, LoadView{Load: lg.loads[id].load, Version: lg.loads[id].version, Status: lg.loadStatusLocked(id)})
	}
	return views
}

// Assignment returns a copy of one assignment.
func (lg *Ledger) Assignment(id string) (model.Assignment, bool) {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	a, ok := lg.assignments[id]
	if !ok {
		return model.Assignment{}, false
	}
	return *a, true
}

// Assignments returns copies of all assignments ordered by creation time,
// newest first.
func (lg *Ledger) Assignments() []model.Assignment {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	out := make([]model.Assignment, 0, len(lg.assignments))
	for _, a := range lg.assignments {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Route returns the current route snapshot for a driver, if any.
func (lg *Ledger) Route(driverID string) (model.Route, bool) {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	r, ok := lg.routes[driverID]
	return r, ok
}

// Routes returns every driver's current route ordered by driver ID.
func (lg *Ledger) Routes() []model.Route {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	ids := make([]string, 0, len(lg.routes))
	for id := range lg.routes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]model.Route, 0, len(ids))
	for _, id := range ids {
		out = append(out, lg.routes[id])
	}
	return out
}

// Assign validates and commits the whole driver set atomically. Either every
// driver gets a pending assignment with a freshly built route, or nothing is
// mutated. No other caller can observe a partially committed state.
func (lg *Ledger) Assign(ctx context.Context, req AssignRequest, eligible EligibilityFunc, build RouteBuildFunc) (AssignResult, error) {
	if len(req.DriverIDs) == 0 {
		return AssignResult{}, &IneligibleError{LoadID: req.LoadID, Reason: "no drivers requested"}
	}
	if eligible == nil || build == nil {
		return AssignResult{}, errors.New("ledger: nil eligibility or route builder")
	}
	seen := make(map[string]bool, len(req.DriverIDs))
	for _, id := range req.DriverIDs {
		if seen[id] {
			return AssignResult{}, &IneligibleError{DriverID: id, LoadID: req.LoadID, Reason: "driver listed twice"}
		}
		seen[id] = true
	}

	lg.mu.Lock()
	defer lg.mu.Unlock()

	le, ok := lg.loads[req.LoadID]
	if !ok {
		return AssignResult{}, &IneligibleError{LoadID: req.LoadID, Reason: "unknown load"}
	}

	// Version checks first: a stale snapshot is a conflict even when the
	// entity would still pass eligibility.
	if v, ok := req.ExpectedVersions[req.LoadID]; ok && v != le.version {
		return AssignResult{}, &ConflictError{EntityID: req.LoadID, Expected: v, Actual: le.version}
	}
	for _, id := range req.DriverIDs {
		de, ok := lg.drivers[id]
		if !ok {
			return AssignResult{}, &IneligibleError{DriverID: id, LoadID: req.LoadID, Reason: "unknown driver"}
		}
		if v, ok := req.ExpectedVersions[id]; ok && v != de.version {
			return AssignResult{}, &ConflictError{EntityID: id, Expected: v, Actual: de.version}
		}
	}

	if st := lg.loadStatusLocked(req.LoadID); st != model.LoadAvailable {
		return AssignResult{}, &IneligibleError{LoadID: req.LoadID, Reason: "load is " + st.String()}
	}

	// Re-validate every driver from current ledger state; a MatchResult is
	// a hint, never a guarantee.
	type staged struct {
		driver model.Driver
		loads  []model.Load
		route  model.Route
	}
	plan := make([]staged, 0, len(req.DriverIDs))
	for _, id := range req.DriverIDs {
		de := lg.drivers[id]
		active := lg.activeLoadsLocked(id)
		if de.driver.OffDuty {
			return AssignResult{}, &IneligibleError{DriverID: id, LoadID: req.LoadID, Reason: "driver is off duty"}
		}
		if len(active) >= lg.tourCap {
			return AssignResult{}, &IneligibleError{DriverID: id, LoadID: req.LoadID, Reason: "tour cap reached"}
		}
		if err := eligible(ctx, le.load, de.driver, active); err != nil {
			return AssignResult{}, wrapEligibility(id, req.LoadID, err)
		}
		prospective := append(append([]model.Load{}, active...), le.load)
		route, err := build(de.driver, prospective)
		if err != nil {
			return AssignResult{}, err
		}
		plan = append(plan, staged{driver: de.driver, loads: prospective, route: route})
	}

	// Commit point: no error path from here on.
	now := lg.now()
	res := AssignResult{Routes: make(map[string]model.Route, len(plan))}
	for i, id := range req.DriverIDs {
		a := &model.Assignment{
			ID:        lg.newID(),
			DriverID:  id,
			LoadID:    req.LoadID,
			State:     model.AssignmentPending,
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
		}
		if m, ok := req.Matches[id]; ok {
			a.Category = m.Category
			a.Score = m.Score
		}
		lg.assignments[a.ID] = a
		lg.byDriver[id] = append(lg.byDriver[id], a.ID)
		lg.byLoad[req.LoadID] = append(lg.byLoad[req.LoadID], a.ID)
		lg.drivers[id].version++
		res.Assignments = append(res.Assignments, *a)
		res.Routes[id] = lg.storeRouteLocked(id, plan[i].route)
	}
	le.version++
	lg.log.Infof("assigned load %s to %d driver(s)", req.LoadID, len(req.DriverIDs))
	return res, nil
}

// Transition moves an assignment to a new state, re-validating the prior
// state. Terminal transitions rebuild the driver's route over the remaining
// active loads through the supplied builder.
func (lg *Ledger) Transition(ctx context.Context, assignmentID string, to model.AssignmentState, build RouteBuildFunc) (model.Assignment, error) {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	a, ok := lg.assignments[assignmentID]
	if !ok {
		return model.Assignment{}, &IneligibleError{Reason: "unknown assignment " + assignmentID}
	}
	if !validTransition(a.State, to) {
		return model.Assignment{}, &InvalidTransitionError{AssignmentID: assignmentID, From: a.State, To: to}
	}

	var route model.Route
	rebuild := to.Terminal() && build != nil
	if rebuild {
		de := lg.drivers[a.DriverID]
		remaining := lg.activeLoadsExceptLocked(a.DriverID, assignmentID)
		r, err := build(de.driver, remaining)
		if err != nil {
			return model.Assignment{}, err
		}
		route = r
	}

	a.State = to
	a.Version++
	a.UpdatedAt = lg.now()
	if de, ok := lg.drivers[a.DriverID]; ok {
		de.version++
	}
	if le, ok := lg.loads[a.LoadID]; ok {
		le.version++
	}
	if rebuild {
		lg.storeRouteLocked(a.DriverID, route)
	}
	lg.log.Infof("assignment %s -> %s", assignmentID, to)
	return *a, nil
}

// RebuildRoute replaces the driver's route snapshot with a freshly built
// one. Used by route re-optimization; the build closure must be oracle-free.
func (lg *Ledger) RebuildRoute(driverID string, build RouteBuildFunc) (model.Route, error) {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	de, ok := lg.drivers[driverID]
	if !ok {
		return model.Route{}, &IneligibleError{DriverID: driverID, Reason: "unknown driver"}
	}
	route, err := build(de.driver, lg.activeLoadsLocked(driverID))
	if err != nil {
		return model.Route{}, err
	}
	return lg.storeRouteLocked(driverID, route), nil
}

// ActivePoints returns the locations a route rebuild for the driver would
// need distances for: current position plus every active pickup/delivery.
func (lg *Ledger) ActivePoints(driverID string, extra ...model.Load) ([]model.Location, bool) {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	de, ok := lg.drivers[driverID]
	if !ok {
		return nil, false
	}
	points := []model.Location{de.driver.CurrentLocation}
	for _, l := range append(lg.activeLoadsLocked(driverID), extra...) {
		points = append(points, l.Origin, l.Destination)
	}
	return points, true
}

func (lg *Ledger) driverViewLocked(e *driverEntry) DriverView {
	var active []model.Assignment
	for _, aid := range lg.byDriver[e.driver.ID] {
		if a := lg.assignments[aid]; a.State.Active() {
			active = append(active, *a)
		}
	}
	return DriverView{
		Driver:      e.driver,
		Version:     e.version,
		Status:      e.driver.Status(len(active)),
		Assignments: active,
		ActiveLoads: lg.activeLoadsLocked(e.driver.ID),
	}
}

// activeLoadsLocked returns the loads of the driver's active assignments in
// assignment insertion order. That order anchors tours: the first active
// load's origin is the tour root.
func (lg *Ledger) activeLoadsLocked(driverID string) []model.Load {
	var loads []model.Load
	for _, aid := range lg.byDriver[driverID] {
		a := lg.assignments[aid]
		if !a.State.Active() {
			continue
		}
		if le, ok := lg.loads[a.LoadID]; ok {
			loads = append(loads, le.load)
		}
	}
	return loads
}

func (lg *Ledger) activeLoadsExceptLocked(driverID, exceptAssignment string) []model.Load {
	var loads []model.Load
	for _, aid := range lg.byDriver[driverID] {
		if aid == exceptAssignment {
			continue
		}
		a := lg.assignments[aid]
		if !a.State.Active() {
			continue
		}
		if le, ok := lg.loads[a.LoadID]; ok {
			loads = append(loads, le.load)
		}
	}
	return loads
}

// loadStatusLocked derives the load status from its assignments: active
// states dominate, delivered only counts once nothing is active.
func (lg *Ledger) loadStatusLocked(loadID string) model.LoadStatus {
	var pending, confirmed, completed bool
	for _, aid := range lg.byLoad[loadID] {
		switch lg.assignments[aid].State {
		case model.AssignmentPending:
			pending = true
		case model.AssignmentConfirmed:
			confirmed = true
		case model.AssignmentCompleted:
			completed = true
		case model.AssignmentCancelled:
		}
	}
	switch {
	case confirmed:
		return model.LoadInTransit
	case pending:
		return model.LoadAssigned
	case completed:
		return model.LoadDelivered
	default:
		return model.LoadAvailable
	}
}

// storeRouteLocked installs the route as the driver's current snapshot,
// carrying the version sequence forward.
func (lg *Ledger) storeRouteLocked(driverID string, route model.Route) model.Route {
	route.DriverID = driverID
	if prev, ok := lg.routes[driverID]; ok {
		route.Version = prev.Version + 1
	} else {
		route.Version = 1
	}
	if route.ID == "" {
		route.ID = lg.newID()
	}
	lg.routes[driverID] = route
	return route
}

func validTransition(from, to model.AssignmentState) bool {
	switch from {
	case model.AssignmentPending:
		return to == model.AssignmentConfirmed || to == model.AssignmentCancelled
	case model.AssignmentConfirmed:
		return to == model.AssignmentCompleted || to == model.AssignmentCancelled
	default:
		return false
	}
}

// wrapEligibility keeps oracle failures distinct from business rejections.
func wrapEligibility(driverID, loadID string, err error) error {
	var ie *IneligibleError
	if errors.As(err, &ie) {
		return err
	}
	if isOracleErr(err) {
		return err
	}
	return &IneligibleError{DriverID: driverID, LoadID: loadID, Reason: err.Error()}
}
