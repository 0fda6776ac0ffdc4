package model

import "fmt"

// Location identifies a point a truck can drive to. Freight locations are
// usually referenced by city name ("Chicago, IL"); coordinates are optional
// and only needed by oracles that estimate distances geometrically.
type Location struct {
	Name string
	Lat  float64
	Lon  float64
}

// Key returns a stable identifier usable as a map key. Named locations are
// keyed by name so that two records pointing at the same city compare equal
// even when only one of them carries coordinates.
func (l Location) Key() string {
	if l.Name != "" {
		return l.Name
	}
	return fmt.Sprintf("%.5f,%.5f", l.Lat, l.Lon)
}

// IsZero reports whether the location carries no information.
func (l Location) IsZero() bool {
	return l.Name == "" && l.Lat == 0 && l.Lon == 0
}
