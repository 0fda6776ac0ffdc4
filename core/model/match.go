package model

// MatchCategory classifies how a driver relates to a load's origin. The set
// is closed: every consumer switches exhaustively over it so a new category
// cannot fall through silently.
type MatchCategory int

const (
	// MatchSourceLoad: the driver already sits at the load's origin, zero
	// deadhead. Highest priority.
	MatchSourceLoad MatchCategory = iota
	// MatchSourceTour: the driver runs an open tour anchored at the load's
	// origin and this load extends it.
	MatchSourceTour
	// MatchFourLoadTour: taking the load keeps the driver's open tour at or
	// under the tour cap with all loads sharing a region.
	MatchFourLoadTour
	// MatchOneHrToSource: fallback; the deadhead drive to the origin fits
	// inside the configured window.
	MatchOneHrToSource
)

func (c MatchCategory) String() string {
	switch c {
	case MatchSourceLoad:
		return "SOURCE_LOAD"
	case MatchSourceTour:
		return "SOURCE_TOUR"
	case MatchFourLoadTour:
		return "FOUR_LOAD_TOUR"
	case MatchOneHrToSource:
		return "ONE_HR_TO_SOURCE"
	default:
		return "unknown"
	}
}

// Priority returns the tie-break rank of the category, lower is better.
// The ranking follows the classification order, not the enum values.
func (c MatchCategory) Priority() int {
	switch c {
	case MatchSourceLoad:
		return 0
	case MatchSourceTour:
		return 1
	case MatchFourLoadTour:
		return 2
	case MatchOneHrToSource:
		return 3
	default:
		return 4
	}
}

// MatchBreakdown explains the components that produced a match score.
type MatchBreakdown struct {
	DeadheadMiles  float64
	DeadheadHours  float64
	HoursMargin    float64 // duty hours left after the estimated trip
	EquipmentExact bool
	LoadAgeHours   float64
}

// MatchResult is one scored (driver, load) pair. DriverVersion is the
// ledger's driver entity version at snapshot time; handing it to Assign
// turns stale matches into ConflictError instead of silent double-booking.
type MatchResult struct {
	DriverID      string
	LoadID        string
	Category      MatchCategory
	Score         float64
	Breakdown     MatchBreakdown
	DriverVersion uint64
}
