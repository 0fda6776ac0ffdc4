// Package route builds and re-optimizes multi-stop routes for a driver's
// active assignments.
//
// The builder uses a greedy nearest-insertion heuristic: starting from the
// driver's current position it repeatedly picks the reachable stop with the
// smallest incremental deadhead, subject to every pickup preceding its
// delivery. It is deterministic for a fixed input set and distance source,
// but makes no claim of global optimality; with at most eight stops per tour
// that tradeoff buys speed for nothing that matters.
package route

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kopong25/freightquick/core/logger"
	"github.com/kopong25/freightquick/core/model"
	"github.com/kopong25/freightquick/core/oracle"
)

// Builder constructs immutable Route snapshots.
type Builder struct {
	cfg Config
	log logger.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(cfg Config, log logger.Logger) (*Builder, error) {
	cfg.SetDefaults()
	if log == nil {
		return nil, errors.New("route: nil logger")
	}
	return &Builder{cfg: cfg, log: log}, nil
}

// Config returns the effective configuration after defaulting.
func (b *Builder) Config() Config { return b.cfg }

// Build produces the stop sequence and derived totals for the given load
// set. All distances come from the prefetched snapshot, so Build performs no
// remote calls and cannot observe an oracle outage; a leg the snapshot never
// covered aborts the build rather than counting as zero. An empty load set
// yields an empty route (a no-op success, not an error).
func (b *Builder) Build(driver model.Driver, loads []model.Load, legs *oracle.Snapshot) (model.Route, error) {
	now := time.Now()
	if len(loads) == 0 {
		return model.Route{DriverID: driver.ID, BuiltAt: now}, nil
	}
	if n := 2 * len(loads); n > b.cfg.MaxStops {
		return model.Route{}, fmt.Errorf("route: %d stops exceed the %d-stop bound", n, b.cfg.MaxStops)
	}

	pending := make([]model.Stop, 0, 2*len(loads))
	for _, l := range loads {
		pending = append(pending,
			model.Stop{LoadID: l.ID, Kind: model.StopPickup, Location: l.Origin},
			model.Stop{LoadID: l.ID, Kind: model.StopDelivery, Location: l.Destination},
		)
	}
	pickedUp := make(map[string]bool, len(loads))

	current := driver.CurrentLocation
	var (
		stops []model.Stop
		miles float64
		toll  float64
	)
	for len(pending) > 0 {
		best := -1
		var bestLeg oracle.Distance
		for i, s := range pending {
			if s.Kind == model.StopDelivery && !pickedUp[s.LoadID] {
				continue
			}
			leg, ok := legs.Leg(current, s.Location)
			if !ok {
				// The point set raced: a load joined the tour after the
				// prefetch. Abort so the caller retries with a fresh
				// snapshot instead of committing zeroed totals.
				return model.Route{}, fmt.Errorf("route: leg %s -> %s missing from snapshot", current.Key(), s.Location.Key())
			}
			if best == -1 || less(leg, s, bestLeg, pending[best]) {
				best = i
				bestLeg = leg
			}
		}
		if best == -1 {
			return model.Route{}, errors.New("route: no reachable stop, ordering constraint unsatisfiable")
		}
		chosen := pending[best]
		pending = append(pending[:best], pending[best+1:]...)
		if chosen.Kind == model.StopPickup {
			pickedUp[chosen.LoadID] = true
		}
		stops = append(stops, chosen)
		miles += bestLeg.Miles
		toll += bestLeg.Toll
		current = chosen.Location
	}

	hours := miles/b.cfg.AvgSpeedMPH + float64(len(stops))*b.cfg.StopServiceHours
	r := model.Route{
		DriverID: driver.ID,
		Stops:    stops,
		Miles:    round1(miles),
		Hours:    round1(hours),
		FuelCost: round2(miles * b.cfg.FuelCostPerMile),
		TollCost: round2(toll),
		BuiltAt:  now,
	}
	b.log.Debugf("built route for driver %s: %d stops, %.1f mi", driver.ID, len(stops), r.Miles)
	return r, nil
}

// Reoptimize re-runs the heuristic over the loads currently on the route.
// The returned Route is a fresh snapshot; the old one is discarded wholesale
// so the totals can never disagree with the stop sequence.
func (b *Builder) Reoptimize(driver model.Driver, loads []model.Load, legs *oracle.Snapshot) (model.Route, error) {
	return b.Build(driver, loads, legs)
}

// less orders candidate stops: shorter leg first, then pickups before
// deliveries, then load ID. The full ordering keeps the heuristic
// deterministic when legs tie.
func less(aLeg oracle.Distance, a model.Stop, bLeg oracle.Distance, b model.Stop) bool {
	if aLeg.Miles != bLeg.Miles {
		return aLeg.Miles < bLeg.Miles
	}
	if a.Kind != b.Kind {
		return a.Kind == model.StopPickup
	}
	return a.LoadID < b.LoadID
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
