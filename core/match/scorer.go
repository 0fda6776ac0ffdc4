// Package match scores candidate drivers against an open load and
// classifies each match into one of the four dispatch categories. Scoring is
// a pure function over a ledger snapshot plus oracle queries; nothing here
// mutates shared state.
package match

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/kopong25/freightquick/core/logger"
	"github.com/kopong25/freightquick/core/model"
	"github.com/kopong25/freightquick/core/oracle"
)

var errTourCap = errors.New("match: tour cap must be at least 1")

// Candidate is one driver as seen in a ledger snapshot: the record itself,
// its entity version, and the loads of its non-terminal assignments.
type Candidate struct {
	Driver      model.Driver
	Version     uint64
	ActiveLoads []model.Load
}

// status derives the candidate's dispatch status from its active loads.
func (c Candidate) status() model.DriverStatus {
	return c.Driver.Status(len(c.ActiveLoads))
}

// tourAnchor returns the origin the candidate's open tour is rooted at.
// The anchor is the origin of the oldest active load.
func (c Candidate) tourAnchor() (model.Location, bool) {
	if len(c.ActiveLoads) == 0 {
		return model.Location{}, false
	}
	return c.ActiveLoads[0].Origin, true
}

// Scorer implements the matching heuristics.
type Scorer struct {
	cfg    Config
	oracle oracle.DistanceOracle
	log    logger.Logger
}

// NewScorer creates a Scorer over the given distance oracle.
func NewScorer(cfg Config, o oracle.DistanceOracle, log logger.Logger) (*Scorer, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if o == nil || log == nil {
		return nil, errors.New("match: nil parameter provided to NewScorer")
	}
	return &Scorer{cfg: cfg, oracle: o, log: log}, nil
}

// Config returns the effective configuration after defaulting.
func (s *Scorer) Config() Config { return s.cfg }

// WithOracle returns a copy of the scorer reading from a different oracle.
// Commit-time re-validation uses this with a prefetched snapshot so no
// remote call can happen inside the ledger critical section.
func (s *Scorer) WithOracle(o oracle.DistanceOracle) *Scorer {
	cp := *s
	cp.oracle = o
	return &cp
}

// FindMatches scores every eligible candidate against the load and returns
// the results ordered best-first. The order is fully deterministic: score
// descending, then category priority, then deadhead miles, then driver ID.
// Any oracle failure aborts the whole call; no partial list is returned.
func (s *Scorer) FindMatches(ctx context.Context, load model.Load, cands []Candidate, now time.Time) ([]model.MatchResult, error) {
	if err := load.Validate(); err != nil {
		return nil, err
	}
	linehaul, err := s.oracleLeg(ctx, load.Origin, load.Destination)
	if err != nil {
		return nil, err
	}

	var results []model.MatchResult
	for _, c := range cands {
		res, err := s.match(ctx, load, linehaul, c, now)
		if err != nil {
			var unavailable *oracle.UnavailableError
			if errors.As(err, &unavailable) {
				return nil, err
			}
			continue // excluded, not fatal
		}
		results = append(results, res)
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if pa, pb := a.Category.Priority(), b.Category.Priority(); pa != pb {
			return pa < pb
		}
		if a.Breakdown.DeadheadMiles != b.Breakdown.DeadheadMiles {
			return a.Breakdown.DeadheadMiles < b.Breakdown.DeadheadMiles
		}
		return a.DriverID < b.DriverID
	})
	s.log.Debugf("matched %d of %d candidates for load %s", len(results), len(cands), load.ID)
	return results, nil
}

// Match runs hard constraints, classification and scoring for one
// candidate. Exclusions come back as plain errors carrying the reason; an
// *oracle.UnavailableError means the call must be aborted, not the
// candidate skipped. The ledger re-runs Match at commit time through a
// prefetched oracle snapshot so a stale MatchResult can never sneak an
// ineligible driver past the commit.
func (s *Scorer) Match(ctx context.Context, load model.Load, c Candidate, now time.Time) (model.MatchResult, error) {
	linehaul, err := s.oracleLeg(ctx, load.Origin, load.Destination)
	if err != nil {
		return model.MatchResult{}, err
	}
	return s.match(ctx, load, linehaul, c, now)
}

func (s *Scorer) match(ctx context.Context, load model.Load, linehaul oracle.Distance, c Candidate, now time.Time) (model.MatchResult, error) {
	deadhead, margin, err := s.evaluateHard(ctx, load, linehaul, c)
	if err != nil {
		return model.MatchResult{}, err
	}

	cat, ok, err := s.classify(ctx, load, c, deadhead)
	if err != nil {
		return model.MatchResult{}, err
	}
	if !ok {
		if len(c.ActiveLoads) > 0 {
			return model.MatchResult{}, errors.New("open tour not compatible with load origin")
		}
		return model.MatchResult{}, errors.New("deadhead outside every match window")
	}

	ageHours := load.Age(now).Hours()
	exact := c.Driver.Equipment == load.Equipment
	score := s.score(deadhead, margin, exact, ageHours)

	return model.MatchResult{
		DriverID: c.Driver.ID,
		LoadID:   load.ID,
		Category: cat,
		Score:    score,
		Breakdown: model.MatchBreakdown{
			DeadheadMiles:  deadhead.Miles,
			DeadheadHours:  deadhead.Hours,
			HoursMargin:    margin,
			EquipmentExact: exact,
			LoadAgeHours:   ageHours,
		},
		DriverVersion: c.Version,
	}, nil
}

// evaluateHard applies the hard constraints and returns the deadhead leg and
// the duty-hour margin. A plain (non-oracle) error means the candidate is
// excluded; the caller decides whether that is fatal.
func (s *Scorer) evaluateHard(ctx context.Context, load model.Load, linehaul oracle.Distance, c Candidate) (oracle.Distance, float64, error) {
	switch c.status() {
	case model.DriverOffDuty:
		return oracle.Distance{}, 0, errors.New("driver is off duty")
	case model.DriverOnLoad:
		if len(c.ActiveLoads) >= s.cfg.TourCap {
			return oracle.Distance{}, 0, errors.New("no open tour slot")
		}
	case model.DriverAvailable:
	}
	if !c.Driver.Equipment.Compatible(load.Equipment) {
		return oracle.Distance{}, 0, errors.New("equipment type incompatible")
	}

	deadhead, err := s.oracleLeg(ctx, c.Driver.CurrentLocation, load.Origin)
	if err != nil {
		return oracle.Distance{}, 0, err
	}

	needed := deadhead.Hours + linehaul.Hours + s.cfg.HandlingHours
	margin := c.Driver.DutyHoursLeft - needed
	if margin < 0 {
		return oracle.Distance{}, 0, errors.New("insufficient duty hours")
	}
	return deadhead, margin, nil
}

// classify picks the match category, checked in priority order; the first
// hit wins. A driver with an open tour only takes more work as part of that
// tour, anchored at this origin or sharing its region: any other category
// would hand an on-load driver a second standalone assignment.
func (s *Scorer) classify(ctx context.Context, load model.Load, c Candidate, deadhead oracle.Distance) (model.MatchCategory, bool, error) {
	if anchor, ok := c.tourAnchor(); ok {
		if anchor.Key() == load.Origin.Key() {
			return model.MatchSourceTour, true, nil
		}
		inRegion, err := s.sharedRegion(ctx, load, c)
		if err != nil {
			return 0, false, err
		}
		if inRegion {
			return model.MatchFourLoadTour, true, nil
		}
		return 0, false, nil
	}

	if deadhead.Miles <= s.cfg.ToleranceRadiusMiles {
		return model.MatchSourceLoad, true, nil
	}
	if deadhead.Hours <= s.cfg.MaxDeadheadHours {
		return model.MatchOneHrToSource, true, nil
	}
	return 0, false, nil
}

// sharedRegion reports whether every active tour load originates within the
// region radius of the new load's origin.
func (s *Scorer) sharedRegion(ctx context.Context, load model.Load, c Candidate) (bool, error) {
	for _, l := range c.ActiveLoads {
		leg, err := s.oracleLeg(ctx, l.Origin, load.Origin)
		if err != nil {
			return false, err
		}
		if leg.Miles > s.cfg.RegionRadiusMiles {
			return false, nil
		}
	}
	return true, nil
}

// score combines the breakdown into a single number, higher is better.
func (s *Scorer) score(deadhead oracle.Distance, margin float64, exact bool, ageHours float64) float64 {
	score := 100.0
	score -= s.cfg.DeadheadWeight * deadhead.Miles
	if exact {
		score += s.cfg.EquipmentWeight
	}
	score += s.cfg.MarginWeight * margin
	if over := ageHours - s.cfg.StalenessHours; over > 0 {
		// Aging loads should surface sooner: the slower the driver gets
		// there, the harder the penalty.
		score -= s.cfg.StalenessWeight * over * deadhead.Hours
	}
	return score
}

func (s *Scorer) oracleLeg(ctx context.Context, from, to model.Location) (oracle.Distance, error) {
	if from.Key() == to.Key() {
		return oracle.Distance{}, nil
	}
	d, err := s.oracle.Distance(ctx, from, to)
	if err != nil {
		return oracle.Distance{}, oracle.Unavailable(err)
	}
	return d, nil
}
