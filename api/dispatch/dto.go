package dispatch

import (
	"time"

	"github.com/kopong25/freightquick/core/ledger"
	"github.com/kopong25/freightquick/core/model"
)

// Wire representations for the dispatch endpoints. The core model carries no
// JSON tags on purpose; the boundary owns the encoding.

type locationDTO struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat,omitempty"`
	Lon  float64 `json:"lon,omitempty"`
}

type driverDTO struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Equipment       string      `json:"equipment"`
	HomeBase        locationDTO `json:"home_base"`
	CurrentLocation locationDTO `json:"current_location"`
	DutyHoursLeft   float64     `json:"duty_hours_left"`
	OnTimeRate      float64     `json:"on_time_rate"`
	LoadsCompleted  int         `json:"loads_completed"`
	Status          string      `json:"status"`
	ActiveLoads     int         `json:"active_loads"`
	Version         uint64      `json:"version"`
}

type loadDTO struct {
	ID          string      `json:"id"`
	LoadNumber  string      `json:"load_number"`
	Origin      locationDTO `json:"origin"`
	Destination locationDTO `json:"destination"`
	Equipment   string      `json:"equipment"`
	WeightLbs   float64     `json:"weight_lbs"`
	Miles       float64     `json:"miles"`
	Rate        float64     `json:"rate"`
	Commodity   string      `json:"commodity,omitempty"`
	PostedAt    time.Time   `json:"posted_at"`
	Status      string      `json:"status"`
	Version     uint64      `json:"version"`
}

type assignmentDTO struct {
	ID        string    `json:"id"`
	DriverID  string    `json:"driver_id"`
	LoadID    string    `json:"load_id"`
	State     string    `json:"state"`
	Category  string    `json:"category"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   uint64    `json:"version"`
}

type matchDTO struct {
	DriverID       string  `json:"driver_id"`
	LoadID         string  `json:"load_id"`
	Category       string  `json:"category"`
	Score          float64 `json:"score"`
	DeadheadMiles  float64 `json:"deadhead_miles"`
	DeadheadHours  float64 `json:"deadhead_hours"`
	HoursMargin    float64 `json:"hours_margin"`
	EquipmentExact bool    `json:"equipment_exact"`
	DriverVersion  uint64  `json:"driver_version"`
}

type stopDTO struct {
	LoadID   string      `json:"load_id"`
	Kind     string      `json:"kind"`
	Location locationDTO `json:"location"`
}

type routeDTO struct {
	ID       string    `json:"id"`
	DriverID string    `json:"driver_id"`
	Stops    []stopDTO `json:"stops"`
	Miles    float64   `json:"miles"`
	Hours    float64   `json:"hours"`
	FuelCost float64   `json:"fuel_cost"`
	TollCost float64   `json:"toll_cost"`
	Version  uint64    `json:"version"`
	BuiltAt  time.Time `json:"built_at"`
}

type assignResponseDTO struct {
	Assignments []assignmentDTO     `json:"assignments"`
	Routes      map[string]routeDTO `json:"routes"`
}

func toLocation(l model.Location) locationDTO {
	return locationDTO{Name: l.Name, Lat: l.Lat, Lon: l.Lon}
}

func toDriver(v ledger.DriverView) driverDTO {
	return driverDTO{
		ID:              v.Driver.ID,
		Name:            v.Driver.Name,
		Equipment:       v.Driver.Equipment.String(),
		HomeBase:        toLocation(v.Driver.HomeBase),
		CurrentLocation: toLocation(v.Driver.CurrentLocation),
		DutyHoursLeft:   v.Driver.DutyHoursLeft,
		OnTimeRate:      v.Driver.OnTimeRate,
		LoadsCompleted:  v.Driver.LoadsCompleted,
		Status:          v.Status.String(),
		ActiveLoads:     len(v.ActiveLoads),
		Version:         v.Version,
	}
}

func toLoad(v ledger.LoadView) loadDTO {
	return loadDTO{
		ID:          v.Load.ID,
		LoadNumber:  v.Load.LoadNumber,
		Origin:      toLocation(v.Load.Origin),
		Destination: toLocation(v.Load.Destination),
		Equipment:   v.Load.Equipment.String(),
		WeightLbs:   v.Load.WeightLbs,
		Miles:       v.Load.Miles,
		Rate:        v.Load.Rate,
		Commodity:   v.Load.Commodity,
		PostedAt:    v.Load.PostedAt,
		Status:      v.Status.String(),
		Version:     v.Version,
	}
}

func toAssignment(a model.Assignment) assignmentDTO {
	return assignmentDTO{
		ID:        a.ID,
		DriverID:  a.DriverID,
		LoadID:    a.LoadID,
		State:     a.State.String(),
		Category:  a.Category.String(),
		Score:     a.Score,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		Version:   a.Version,
	}
}

func toMatch(m model.MatchResult) matchDTO {
	return matchDTO{
		DriverID:       m.DriverID,
		LoadID:         m.LoadID,
		Category:       m.Category.String(),
		Score:          m.Score,
		DeadheadMiles:  m.Breakdown.DeadheadMiles,
		DeadheadHours:  m.Breakdown.DeadheadHours,
		HoursMargin:    m.Breakdown.HoursMargin,
		EquipmentExact: m.Breakdown.EquipmentExact,
		DriverVersion:  m.DriverVersion,
	}
}

func toRoute(r model.Route) routeDTO {
	stops := make([]stopDTO, 0, len(r.Stops))
	for _, s := range r.Stops {
		stops = append(stops, stopDTO{
			LoadID:   s.LoadID,
			Kind:     s.Kind.String(),
			Location: toLocation(s.Location),
		})
	}
	return routeDTO{
		ID:       r.ID,
		DriverID: r.DriverID,
		Stops:    stops,
		Miles:    r.Miles,
		Hours:    r.Hours,
		FuelCost: r.FuelCost,
		TollCost: r.TollCost,
		Version:  r.Version,
		BuiltAt:  r.BuiltAt,
	}
}
