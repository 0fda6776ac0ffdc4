// Package oracle provides distance oracle implementations: a great-circle
// estimator, a static leg matrix for known lanes, and a Redis-backed cache
// decorator for remote oracles.
package oracle

import (
	"context"
	"fmt"
	"math"

	"github.com/kopong25/freightquick/core/model"
	coreoracle "github.com/kopong25/freightquick/core/oracle"
)

const earthRadiusMiles = 3958.8

// HaversineConfig tunes the great-circle estimator.
type HaversineConfig struct {
	// RoadFactor inflates the great-circle distance to approximate road miles.
	RoadFactor  float64 `json:"road_factor" koanf:"road_factor"`
	AvgSpeedMPH float64 `json:"avg_speed_mph" koanf:"avg_speed_mph"`
	// TollPerMile charges a flat toll rate across the leg.
	TollPerMile float64 `json:"toll_per_mile" koanf:"toll_per_mile"`
}

// SetDefaults fills unset fields.
func (c *HaversineConfig) SetDefaults() {
	if c.RoadFactor <= 0 {
		c.RoadFactor = 1.2
	}
	if c.AvgSpeedMPH <= 0 {
		c.AvgSpeedMPH = 55
	}
	if c.TollPerMile <= 0 {
		c.TollPerMile = 0.08
	}
}

// Haversine estimates road distance from coordinates. Locations without
// coordinates cannot be estimated and yield an error.
type Haversine struct {
	cfg HaversineConfig
}

// NewHaversine creates a Haversine oracle.
func NewHaversine(cfg HaversineConfig) *Haversine {
	cfg.SetDefaults()
	return &Haversine{cfg: cfg}
}

// Distance estimates the leg between the two locations.
func (h *Haversine) Distance(_ context.Context, from, to model.Location) (coreoracle.Distance, error) {
	if from.Lat == 0 && from.Lon == 0 {
		return coreoracle.Distance{}, fmt.Errorf("oracle: no coordinates for %s", from.Key())
	}
	if to.Lat == 0 && to.Lon == 0 {
		return coreoracle.Distance{}, fmt.Errorf("oracle: no coordinates for %s", to.Key())
	}
	miles := greatCircleMiles(from.Lat, from.Lon, to.Lat, to.Lon) * h.cfg.RoadFactor
	return coreoracle.Distance{
		Miles: miles,
		Hours: miles / h.cfg.AvgSpeedMPH,
		Toll:  miles * h.cfg.TollPerMile,
	}, nil
}

func greatCircleMiles(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMiles * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
