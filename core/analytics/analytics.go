// Package analytics computes fleet-level summaries over ledger snapshots.
// Everything here is read-only and derived; nothing feeds back into
// dispatch decisions.
package analytics

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/kopong25/freightquick/core/ledger"
	"github.com/kopong25/freightquick/core/model"
)

// Summary is the fleet dashboard payload.
type Summary struct {
	TotalDrivers      int     `json:"total_drivers"`
	AvailableDrivers  int     `json:"available_drivers"`
	UtilizationRate   float64 `json:"utilization_rate"` // percent of drivers not available
	ActiveLoads       int     `json:"active_loads"`
	ActiveAssignments int     `json:"active_assignments"`
	DeliveredRevenue  float64 `json:"delivered_revenue"`
	AvgOnTimeRate     float64 `json:"avg_on_time_rate"` // percent
	StdOnTimeRate     float64 `json:"std_on_time_rate"`
	TotalRouteMiles   float64 `json:"total_route_miles"`
	TotalFuelCost     float64 `json:"total_fuel_cost"`

	ScoreMean   float64 `json:"score_mean"`
	ScoreMedian float64 `json:"score_median"`
	ScoreP90    float64 `json:"score_p90"`

	Utilization []EquipmentUtilization `json:"driver_utilization"`
}

// EquipmentUtilization groups driver activity by equipment type.
type EquipmentUtilization struct {
	Equipment string `json:"equipment"`
	Total     int    `json:"total"`
	Active    int    `json:"active"`
}

// Compute builds the summary from current ledger snapshots.
func Compute(lg *ledger.Ledger) Summary {
	drivers := lg.Drivers()
	loads := lg.Loads()
	assignments := lg.Assignments()
	routes := lg.Routes()

	var s Summary
	s.TotalDrivers = len(drivers)

	onTime := make([]float64, 0, len(drivers))
	byEquipment := make(map[string]*EquipmentUtilization)
	for _, d := range drivers {
		if d.Status == model.DriverAvailable {
			s.AvailableDrivers++
		}
		onTime = append(onTime, d.Driver.OnTimeRate)
		key := d.Driver.Equipment.String()
		u, ok := byEquipment[key]
		if !ok {
			u = &EquipmentUtilization{Equipment: key}
			byEquipment[key] = u
		}
		u.Total++
		if d.Status == model.DriverOnLoad {
			u.Active++
		}
	}
	if s.TotalDrivers > 0 {
		s.UtilizationRate = float64(s.TotalDrivers-s.AvailableDrivers) / float64(s.TotalDrivers) * 100
		s.AvgOnTimeRate = stat.Mean(onTime, nil) * 100
		if len(onTime) > 1 {
			s.StdOnTimeRate = stat.StdDev(onTime, nil) * 100
		}
	}

	for _, l := range loads {
		switch l.Status {
		case model.LoadAvailable, model.LoadAssigned, model.LoadInTransit:
			s.ActiveLoads++
		case model.LoadDelivered:
			s.DeliveredRevenue += l.Load.Rate
		}
	}

	var scores []float64
	for _, a := range assignments {
		if a.State.Active() {
			s.ActiveAssignments++
		}
		scores = append(scores, a.Score)
	}
	if len(scores) > 0 {
		sort.Float64s(scores)
		s.ScoreMean = stat.Mean(scores, nil)
		s.ScoreMedian = stat.Quantile(0.5, stat.Empirical, scores, nil)
		s.ScoreP90 = stat.Quantile(0.9, stat.Empirical, scores, nil)
	}

	for _, r := range routes {
		s.TotalRouteMiles += r.Miles
		s.TotalFuelCost += r.FuelCost
	}

	keys := make([]string, 0, len(byEquipment))
	for k := range byEquipment {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.Utilization = append(s.Utilization, *byEquipment[k])
	}
	return s
}
