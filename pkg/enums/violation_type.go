package enums

import "fmt"

// ViolationType maps to the violation_type_enum enum in Postgres.
type ViolationType string

const (
	ViolationTypeSpeed       ViolationType = "speed_violation"
	ViolationTypeHorn        ViolationType = "horn_violation"
	ViolationTypeSeatbelt    ViolationType = "seatbelt_violation"
	ViolationTypeStop        ViolationType = "stop_violation"
	ViolationTypeNoViolation ViolationType = "no_violation"
)

var validViolationTypes = []ViolationType{
	ViolationTypeSpeed,
	ViolationTypeHorn,
	ViolationTypeSeatbelt,
	ViolationTypeStop,
	ViolationTypeNoViolation,
}

// CountedViolationTypes lists the violation classes that feed the
// compliance rate. Stop violations are tracked on records but excluded
// from this count.
var CountedViolationTypes = []ViolationType{
	ViolationTypeSpeed,
	ViolationTypeHorn,
	ViolationTypeSeatbelt,
}

// IsValid reports whether the value matches the canonical violation type enum.
func (t ViolationType) IsValid() bool {
	for _, candidate := range validViolationTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsViolation reports whether the value represents an actual rule break.
func (t ViolationType) IsViolation() bool {
	return t.IsValid() && t != ViolationTypeNoViolation
}

// ParseViolationType converts raw input into ViolationType.
func ParseViolationType(value string) (ViolationType, error) {
	for _, candidate := range validViolationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid violation type %q", value)
}
