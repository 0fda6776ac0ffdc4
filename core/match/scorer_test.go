package match

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kopong25/freightquick/core/model"
	"github.com/kopong25/freightquick/core/oracle"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

var (
	chicago   = model.Location{Name: "Chicago, IL"}
	gary      = model.Location{Name: "Gary, IN"}      // 25 mi from Chicago
	rockford  = model.Location{Name: "Rockford, IL"}  // 88 mi from Chicago
	champaign = model.Location{Name: "Champaign, IL"} // 137 mi from Chicago
	detroit   = model.Location{Name: "Detroit, MI"}
	milwaukee = model.Location{Name: "Milwaukee, WI"} // 52 mi from Chicago
)

// tableOracle answers from a symmetric mileage table at a 55 mph average.
// Unlisted lanes are far away rather than unknown.
func tableOracle() oracle.DistanceOracle {
	miles := map[string]float64{
		gary.Key() + "|" + chicago.Key():      25,
		rockford.Key() + "|" + chicago.Key():  88,
		champaign.Key() + "|" + chicago.Key(): 137,
		milwaukee.Key() + "|" + chicago.Key(): 52,
		chicago.Key() + "|" + detroit.Key():   283,
		rockford.Key() + "|" + detroit.Key():  330,
	}
	return oracle.Func(func(_ context.Context, from, to model.Location) (oracle.Distance, error) {
		m, ok := miles[from.Key()+"|"+to.Key()]
		if !ok {
			m, ok = miles[to.Key()+"|"+from.Key()]
		}
		if !ok {
			m = 900
		}
		return oracle.Distance{Miles: m, Hours: m / 55, Toll: m * 0.08}, nil
	})
}

func testScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := NewScorer(Config{}, tableOracle(), nopLogger{})
	require.NoError(t, err)
	return s
}

func testLoad() model.Load {
	return model.Load{
		ID:          "l1",
		Origin:      chicago,
		Destination: detroit,
		Equipment:   model.EquipmentOTR,
		Miles:       283,
		Rate:        1850,
		PostedAt:    time.Now(),
	}
}

func driverAt(id string, loc model.Location) Candidate {
	return Candidate{
		Driver: model.Driver{
			ID:              id,
			Equipment:       model.EquipmentOTR,
			CurrentLocation: loc,
			DutyHoursLeft:   11,
		},
		Version: 1,
	}
}

func tourLoad(id string, origin model.Location) model.Load {
	return model.Load{ID: id, Origin: origin, Destination: detroit, Equipment: model.EquipmentOTR, Miles: 300}
}

func TestClassifySourceLoad(t *testing.T) {
	s := testScorer(t)
	res, err := s.Match(context.Background(), testLoad(), driverAt("d1", gary), time.Now())
	require.NoError(t, err)
	require.Equal(t, model.MatchSourceLoad, res.Category)
	require.Equal(t, 25.0, res.Breakdown.DeadheadMiles)
}

func TestClassifySourceTour(t *testing.T) {
	s := testScorer(t)
	c := driverAt("d1", milwaukee)
	c.ActiveLoads = []model.Load{tourLoad("t1", chicago)}

	res, err := s.Match(context.Background(), testLoad(), c, time.Now())
	require.NoError(t, err)
	require.Equal(t, model.MatchSourceTour, res.Category)
}

func TestClassifyFourLoadTour(t *testing.T) {
	s := testScorer(t)
	// Tour anchored at Rockford, within the 100 mile region of Chicago but
	// not at the origin itself; deadhead from Milwaukee is over tolerance.
	c := driverAt("d1", milwaukee)
	c.ActiveLoads = []model.Load{tourLoad("t1", rockford)}

	res, err := s.Match(context.Background(), testLoad(), c, time.Now())
	require.NoError(t, err)
	require.Equal(t, model.MatchFourLoadTour, res.Category)
}

func TestTourOutsideRegionExcluded(t *testing.T) {
	s := testScorer(t)
	// Champaign is 137 mi from Chicago, past the region radius. The driver
	// sits within the one-hour window, but an on-load driver only matches
	// through its open tour; the fallback must not hand out a second
	// standalone assignment.
	c := driverAt("d1", milwaukee)
	c.ActiveLoads = []model.Load{tourLoad("t1", champaign)}

	_, err := s.Match(context.Background(), testLoad(), c, time.Now())
	require.ErrorContains(t, err, "open tour not compatible")
	var unavailable *oracle.UnavailableError
	require.False(t, errors.As(err, &unavailable))
}

func TestClassifyOneHrToSource(t *testing.T) {
	s := testScorer(t)
	res, err := s.Match(context.Background(), testLoad(), driverAt("d1", milwaukee), time.Now())
	require.NoError(t, err)
	require.Equal(t, model.MatchOneHrToSource, res.Category)
}

func TestTourDriverAtOriginMatchesAsTour(t *testing.T) {
	s := testScorer(t)
	// In tolerance and on a tour anchored at the origin: the tour category
	// applies, since only tour matches may stack assignments on a driver.
	c := driverAt("d1", gary)
	c.ActiveLoads = []model.Load{tourLoad("t1", chicago)}

	res, err := s.Match(context.Background(), testLoad(), c, time.Now())
	require.NoError(t, err)
	require.Equal(t, model.MatchSourceTour, res.Category)
}

func TestExcludedBeyondDeadheadWindow(t *testing.T) {
	s := testScorer(t)
	// Champaign is 137 mi / ~2.5 h from Chicago with no tour to lean on.
	_, err := s.Match(context.Background(), testLoad(), driverAt("d1", champaign), time.Now())
	require.Error(t, err)
	var unavailable *oracle.UnavailableError
	require.False(t, errors.As(err, &unavailable))
}

func TestExcludedOffDuty(t *testing.T) {
	s := testScorer(t)
	c := driverAt("d1", gary)
	c.Driver.OffDuty = true
	_, err := s.Match(context.Background(), testLoad(), c, time.Now())
	require.ErrorContains(t, err, "off duty")
}

func TestExcludedNoTourSlot(t *testing.T) {
	s := testScorer(t)
	c := driverAt("d1", gary)
	for i := 0; i < 4; i++ {
		c.ActiveLoads = append(c.ActiveLoads, tourLoad("t", chicago))
	}
	_, err := s.Match(context.Background(), testLoad(), c, time.Now())
	require.ErrorContains(t, err, "tour slot")
}

func TestEquipmentRules(t *testing.T) {
	s := testScorer(t)

	// A Regional rig cannot haul an OTR load.
	c := driverAt("d1", gary)
	c.Driver.Equipment = model.EquipmentRegional
	_, err := s.Match(context.Background(), testLoad(), c, time.Now())
	require.ErrorContains(t, err, "equipment")

	// An OTR rig covers a Regional load, without the exact-match bonus.
	regional := testLoad()
	regional.Equipment = model.EquipmentRegional
	res, err := s.Match(context.Background(), testLoad(), driverAt("d2", gary), time.Now())
	require.NoError(t, err)
	cross, err := s.Match(context.Background(), regional, driverAt("d2", gary), time.Now())
	require.NoError(t, err)
	require.True(t, res.Breakdown.EquipmentExact)
	require.False(t, cross.Breakdown.EquipmentExact)
	require.Greater(t, res.Score, cross.Score)
}

func TestExcludedInsufficientDutyHours(t *testing.T) {
	s := testScorer(t)
	c := driverAt("d1", gary)
	// Deadhead 0.45h + linehaul 5.1h + handling 2h needs about 7.6h.
	c.Driver.DutyHoursLeft = 6
	_, err := s.Match(context.Background(), testLoad(), c, time.Now())
	require.ErrorContains(t, err, "duty hours")
}

func TestStalenessPenalizesSlowDrivers(t *testing.T) {
	s := testScorer(t)
	now := time.Now()

	fresh := testLoad()
	fresh.PostedAt = now.Add(-2 * time.Hour)
	stale := testLoad()
	stale.PostedAt = now.Add(-40 * time.Hour)

	c := driverAt("d1", milwaukee)
	freshRes, err := s.Match(context.Background(), fresh, c, now)
	require.NoError(t, err)
	staleRes, err := s.Match(context.Background(), stale, c, now)
	require.NoError(t, err)
	require.Less(t, staleRes.Score, freshRes.Score)
}

func TestFindMatchesOrderingDeterministic(t *testing.T) {
	s := testScorer(t)
	cands := []Candidate{
		driverAt("d-far", milwaukee),
		driverAt("d-near", gary),
		driverAt("d-outside", champaign),
	}

	first, err := s.FindMatches(context.Background(), testLoad(), cands, time.Now())
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Equal(t, "d-near", first[0].DriverID)
	require.Equal(t, "d-far", first[1].DriverID)

	// Same state, same order.
	second, err := s.FindMatches(context.Background(), testLoad(), cands, time.Now())
	require.NoError(t, err)
	require.Equal(t, first[0].DriverID, second[0].DriverID)
	require.Equal(t, first[1].DriverID, second[1].DriverID)
}

func TestFindMatchesTieBreaksOnDriverID(t *testing.T) {
	s := testScorer(t)
	cands := []Candidate{
		driverAt("zeta", gary),
		driverAt("alpha", gary),
	}
	res, err := s.FindMatches(context.Background(), testLoad(), cands, time.Now())
	require.NoError(t, err)
	require.Len(t, res, 2)
	require.Equal(t, "alpha", res[0].DriverID)
}

func TestFindMatchesAbortsOnOracleFailure(t *testing.T) {
	failing := oracle.Func(func(context.Context, model.Location, model.Location) (oracle.Distance, error) {
		return oracle.Distance{}, errors.New("dns failure")
	})
	s, err := NewScorer(Config{}, failing, nopLogger{})
	require.NoError(t, err)

	_, err = s.FindMatches(context.Background(), testLoad(), []Candidate{driverAt("d1", gary)}, time.Now())
	var unavailable *oracle.UnavailableError
	require.True(t, errors.As(err, &unavailable))
}

func TestConfigDefaultsAndValidation(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	require.Equal(t, 25.0, cfg.ToleranceRadiusMiles)
	require.Equal(t, 100.0, cfg.RegionRadiusMiles)
	require.Equal(t, 1.0, cfg.MaxDeadheadHours)
	require.Equal(t, 4, cfg.TourCap)
	require.NoError(t, cfg.Validate())

	cfg.TourCap = -1
	require.Error(t, cfg.Validate())
}
