package model

import "time"

// StopKind distinguishes pickup from delivery stops.
type StopKind int

const (
	StopPickup StopKind = iota
	StopDelivery
)

func (k StopKind) String() string {
	switch k {
	case StopPickup:
		return "pickup"
	case StopDelivery:
		return "delivery"
	default:
		return "unknown"
	}
}

// Stop is one waypoint on a driver's route. A load always contributes
// exactly one pickup and one delivery stop.
type Stop struct {
	LoadID   string
	Kind     StopKind
	Location Location
}

// Route is an immutable snapshot of a driver's stop sequence with derived
// cost totals. Routes are rebuilt wholesale whenever the underlying
// assignment set changes, never patched, so the totals always agree with
// the stops.
type Route struct {
	ID       string
	DriverID string
	Stops    []Stop
	Miles    float64
	Hours    float64
	FuelCost float64
	TollCost float64
	Version  uint64
	BuiltAt  time.Time
}

// Empty reports whether the route has no stops.
func (r Route) Empty() bool { return len(r.Stops) == 0 }

// LoadIDs returns the distinct loads served by the route in stop order.
func (r Route) LoadIDs() []string {
	seen := make(map[string]bool, len(r.Stops))
	var ids []string
	for _, s := range r.Stops {
		if !seen[s.LoadID] {
			seen[s.LoadID] = true
			ids = append(ids, s.LoadID)
		}
	}
	return ids
}
