package enums

import "fmt"

// VehicleType maps to the vehicle_type_enum enum in Postgres.
type VehicleType string

const (
	VehicleTypeTwoWheeler  VehicleType = "two_wheeler"
	VehicleTypeFourWheeler VehicleType = "four_wheeler"
	VehicleTypeCommercial  VehicleType = "commercial"
)

var validVehicleTypes = []VehicleType{
	VehicleTypeTwoWheeler,
	VehicleTypeFourWheeler,
	VehicleTypeCommercial,
}

// IsValid reports whether the value matches the canonical vehicle type enum.
func (t VehicleType) IsValid() bool {
	for _, candidate := range validVehicleTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseVehicleType converts raw input into VehicleType.
func ParseVehicleType(value string) (VehicleType, error) {
	for _, candidate := range validVehicleTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vehicle type %q", value)
}

// RequiresSeatbelt reports whether the vehicle class is subject to
// seatbelt rules.
func (t VehicleType) RequiresSeatbelt() bool {
	return t == VehicleTypeFourWheeler
}

// Display returns the human readable label used in leaderboard views.
func (t VehicleType) Display() string {
	switch t {
	case VehicleTypeTwoWheeler:
		return "Two Wheeler"
	case VehicleTypeFourWheeler:
		return "Four Wheeler"
	case VehicleTypeCommercial:
		return "Commercial Vehicle"
	}
	return string(t)
}
