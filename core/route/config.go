package route

// Config holds the route cost model. The defaults mirror the constants the
// dispatch desk has always planned with: 55 mph average, $0.43 per mile of
// diesel.
type Config struct {
	AvgSpeedMPH      float64 `json:"avg_speed_mph"`
	FuelCostPerMile  float64 `json:"fuel_cost_per_mile"`
	StopServiceHours float64 `json:"stop_service_hours"`
	// MaxStops bounds the stop count per route. The greedy heuristic is
	// intentionally cheap; the bound keeps it honest.
	MaxStops int `json:"max_stops"`
}

// SetDefaults applies sane defaults for zero-valued fields.
func (c *Config) SetDefaults() {
	if c.AvgSpeedMPH == 0 {
		c.AvgSpeedMPH = 55
	}
	if c.FuelCostPerMile == 0 {
		c.FuelCostPerMile = 0.43
	}
	if c.StopServiceHours == 0 {
		c.StopServiceHours = 0.5
	}
	if c.MaxStops == 0 {
		c.MaxStops = 8
	}
}
