package match

// Config holds the matching tunables. Every threshold is configuration
// with a default rather than a hard-coded constant.
type Config struct {
	// ToleranceRadiusMiles is the radius within which a driver counts as
	// sitting at the load's origin (SOURCE_LOAD).
	ToleranceRadiusMiles float64 `json:"tolerance_radius_miles"`
	// RegionRadiusMiles bounds how far apart tour loads may originate and
	// still count as one region (FOUR_LOAD_TOUR).
	RegionRadiusMiles float64 `json:"region_radius_miles"`
	// MaxDeadheadHours is the fallback window for ONE_HR_TO_SOURCE.
	MaxDeadheadHours float64 `json:"max_deadhead_hours"`
	// TourCap limits concurrently pending assignments per driver.
	TourCap int `json:"tour_cap"`
	// HandlingHours is the fixed load/unload overhead added to the drive
	// time when checking remaining duty hours.
	HandlingHours float64 `json:"handling_hours"`
	// StalenessHours is the load age past which slow drivers get penalized.
	StalenessHours float64 `json:"staleness_hours"`

	// Score weights. The score must stay monotonic: down with deadhead and
	// load age, up with equipment fit and duty-hour margin.
	DeadheadWeight  float64 `json:"deadhead_weight"`
	EquipmentWeight float64 `json:"equipment_weight"`
	MarginWeight    float64 `json:"margin_weight"`
	StalenessWeight float64 `json:"staleness_weight"`
}

// SetDefaults applies sane defaults for zero-valued fields.
func (c *Config) SetDefaults() {
	if c.ToleranceRadiusMiles == 0 {
		c.ToleranceRadiusMiles = 25
	}
	if c.RegionRadiusMiles == 0 {
		c.RegionRadiusMiles = 100
	}
	if c.MaxDeadheadHours == 0 {
		c.MaxDeadheadHours = 1
	}
	if c.TourCap == 0 {
		c.TourCap = 4
	}
	if c.HandlingHours == 0 {
		c.HandlingHours = 2
	}
	if c.StalenessHours == 0 {
		c.StalenessHours = 24
	}
	if c.DeadheadWeight == 0 {
		c.DeadheadWeight = 0.1
	}
	if c.EquipmentWeight == 0 {
		c.EquipmentWeight = 10
	}
	if c.MarginWeight == 0 {
		c.MarginWeight = 1
	}
	if c.StalenessWeight == 0 {
		c.StalenessWeight = 0.5
	}
}

// Validate checks the configured thresholds.
func (c Config) Validate() error {
	if c.TourCap < 1 {
		return errTourCap
	}
	return nil
}
