package model

import (
	"fmt"
	"time"
)

// LoadStatus is derived from the load's assignments and transit flags.
type LoadStatus int

const (
	LoadAvailable LoadStatus = iota
	LoadAssigned
	LoadInTransit
	LoadDelivered
)

func (s LoadStatus) String() string {
	switch s {
	case LoadAvailable:
		return "available"
	case LoadAssigned:
		return "assigned"
	case LoadInTransit:
		return "in_transit"
	case LoadDelivered:
		return "delivered"
	default:
		return "unknown"
	}
}

// Load represents a shipment posted for dispatch.
type Load struct {
	ID          string
	LoadNumber  string
	Origin      Location
	Destination Location
	Equipment   EquipmentType // required equipment type
	WeightLbs   float64
	Miles       float64 // linehaul miles as posted, origin to destination
	Rate        float64
	Commodity   string
	PostedAt    time.Time
}

// Validate checks that the load record is usable for matching.
func (l Load) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("load id is required")
	}
	if l.Origin.IsZero() || l.Destination.IsZero() {
		return fmt.Errorf("load %s: origin and destination are required", l.ID)
	}
	return nil
}

// Age returns how long the load has been posted at the given instant.
func (l Load) Age(now time.Time) time.Duration {
	if l.PostedAt.IsZero() {
		return 0
	}
	return now.Sub(l.PostedAt)
}
