package enums

import "fmt"

// SignType maps to the sign_type_enum enum in Postgres.
type SignType string

const (
	SignTypeSpeedLimit  SignType = "speed_limit"
	SignTypeNoHorn      SignType = "no_horn"
	SignTypeFourWheeler SignType = "four_wheeler"
	SignTypeSeatbelt    SignType = "seatbelt"
	SignTypeStop        SignType = "stop"
	SignTypeYield       SignType = "yield"
	SignTypeOneWay      SignType = "one_way"
	SignTypeNoParking   SignType = "no_parking"
	SignTypeOther       SignType = "other"
)

var validSignTypes = []SignType{
	SignTypeSpeedLimit,
	SignTypeNoHorn,
	SignTypeFourWheeler,
	SignTypeSeatbelt,
	SignTypeStop,
	SignTypeYield,
	SignTypeOneWay,
	SignTypeNoParking,
	SignTypeOther,
}

// IsValid reports whether the value matches the canonical sign type enum.
func (t SignType) IsValid() bool {
	for _, candidate := range validSignTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseSignType converts raw input into SignType.
func ParseSignType(value string) (SignType, error) {
	for _, candidate := range validSignTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sign type %q", value)
}
