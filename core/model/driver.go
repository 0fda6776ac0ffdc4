package model

import "fmt"

// EquipmentType defines the equipment/operation category of a driver or the
// category a load requires.
type EquipmentType int

const (
	EquipmentOTR EquipmentType = iota
	EquipmentRegional
	EquipmentSolo
)

// String returns a human-readable representation of the equipment type.
func (t EquipmentType) String() string {
	switch t {
	case EquipmentOTR:
		return "OTR"
	case EquipmentRegional:
		return "Regional"
	case EquipmentSolo:
		return "Solo"
	default:
		return "unknown"
	}
}

// ParseEquipmentType converts the wire representation used by the record
// store into an EquipmentType.
func ParseEquipmentType(s string) (EquipmentType, error) {
	switch s {
	case "OTR":
		return EquipmentOTR, nil
	case "Regional":
		return EquipmentRegional, nil
	case "Solo":
		return EquipmentSolo, nil
	}
	return 0, fmt.Errorf("unknown equipment type %q", s)
}

// Compatible reports whether a driver running equipment t can haul a load
// requiring req. OTR rigs cover regional lanes as well; the reverse does not
// hold.
func (t EquipmentType) Compatible(req EquipmentType) bool {
	if t == req {
		return true
	}
	return t == EquipmentOTR && req == EquipmentRegional
}

// DriverStatus is a projection of a driver's current assignments. It is
// derived, never stored: see Driver.Status.
type DriverStatus int

const (
	DriverAvailable DriverStatus = iota
	DriverOnLoad
	DriverOffDuty
)

func (s DriverStatus) String() string {
	switch s {
	case DriverAvailable:
		return "available"
	case DriverOnLoad:
		return "on_load"
	case DriverOffDuty:
		return "off_duty"
	default:
		return "unknown"
	}
}

// Driver represents a truck driver known to the dispatch core. The record
// store owns creation and profile updates; the core only reads drivers and
// tracks a per-driver entity version for optimistic concurrency.
type Driver struct {
	ID              string
	Username        string
	Name            string
	Equipment       EquipmentType
	HomeBase        Location
	CurrentLocation Location
	DutyHoursLeft   float64 // remaining drive hours in the current duty cycle
	OnTimeRate      float64 // historical on-time delivery rate in [0,1]
	LoadsCompleted  int
	OffDuty         bool // set by the boundary; overrides the derived status
}

// Validate checks that the driver record is usable for matching.
func (d Driver) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("driver id is required")
	}
	if d.DutyHoursLeft < 0 {
		return fmt.Errorf("duty hours must not be negative")
	}
	return nil
}

// Status derives the driver's status from the number of non-terminal
// assignments currently held. The off-duty flag wins over everything else.
func (d Driver) Status(activeAssignments int) DriverStatus {
	if d.OffDuty {
		return DriverOffDuty
	}
	if activeAssignments > 0 {
		return DriverOnLoad
	}
	return DriverAvailable
}
