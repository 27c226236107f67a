package scoring

import (
	"strconv"
	"strings"

	"github.com/drivewise/drivewise-backend/pkg/enums"
	pkgerrors "github.com/drivewise/drivewise-backend/pkg/errors"
)

// SignReading is the typed interpretation of a sign's raw value. Speed
// signs carry a numeric limit; regulatory-zone signs carry a boolean
// flag; everything else is informational only.
type SignReading struct {
	SignType enums.SignType

	// Limit is set for speed_limit signs.
	Limit int

	// Flag is set for no_horn, seatbelt and four_wheeler signs and
	// reports whether the restriction is in force.
	Flag bool
}

// ParseSignValue interprets a raw sign value according to the sign
// type, replacing the ad-hoc string parsing the sensors feed us.
func ParseSignValue(signType enums.SignType, raw string) (SignReading, error) {
	reading := SignReading{SignType: signType}
	value := strings.TrimSpace(raw)

	switch signType {
	case enums.SignTypeSpeedLimit:
		if value == "" {
			return reading, nil
		}
		limit, err := strconv.Atoi(value)
		if err != nil {
			return SignReading{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "speed limit value must be numeric")
		}
		if limit < 0 {
			return SignReading{}, pkgerrors.New(pkgerrors.CodeValidation, "speed limit value must not be negative")
		}
		reading.Limit = limit
		return reading, nil

	case enums.SignTypeNoHorn, enums.SignTypeSeatbelt, enums.SignTypeFourWheeler:
		reading.Flag = parseFlag(value)
		return reading, nil

	default:
		// Stop, yield, one-way etc. carry no scored value.
		return reading, nil
	}
}

func parseFlag(value string) bool {
	switch strings.ToLower(value) {
	case "", "true", "1", "yes", "active":
		return true
	default:
		return false
	}
}
