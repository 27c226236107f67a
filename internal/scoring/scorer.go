package scoring

import (
	"fmt"
	"strings"

	"github.com/drivewise/drivewise-backend/pkg/db/models"
	"github.com/drivewise/drivewise-backend/pkg/enums"
)

// Evaluation classifies one compliance record: the primary violation,
// its severity, a human-readable description, and the derived score.
type Evaluation struct {
	ViolationType enums.ViolationType
	Severity      enums.Severity
	Description   string
	Score         int
}

// Evaluate derives the violation classification and score from a
// record's observation fields. When several violations co-occur the
// primary classification is picked in reporting order: speed, then
// horn, then seatbelt. The score itself stacks every applicable
// penalty regardless of classification.
func Evaluate(rec *models.ComplianceRecord) Evaluation {
	eval := Evaluation{
		ViolationType: enums.ViolationTypeNoViolation,
		Severity:      enums.SeverityLow,
		Score:         rec.CalculateScore(),
	}

	var parts []string

	if excess := rec.SpeedExcess(); excess > 0 {
		eval.ViolationType = enums.ViolationTypeSpeed
		if excess > models.ExcessiveSpeedMargin {
			eval.Severity = enums.SeverityHigh
		} else {
			eval.Severity = enums.SeverityMedium
		}
		parts = append(parts, fmt.Sprintf("Exceeded speed limit by %d km/h (limit %d, actual %d)", excess, *rec.SpeedLimit, *rec.ActualSpeed))
	}

	if rec.HornViolated() {
		if eval.ViolationType == enums.ViolationTypeNoViolation {
			eval.ViolationType = enums.ViolationTypeHorn
			eval.Severity = enums.SeverityLow
		}
		parts = append(parts, "Horn used in a no-horn zone")
	}

	if rec.SeatbeltViolated() {
		if eval.ViolationType == enums.ViolationTypeNoViolation {
			eval.ViolationType = enums.ViolationTypeSeatbelt
			eval.Severity = enums.SeverityHigh
		}
		parts = append(parts, "Seatbelt not worn")
	}

	if len(parts) == 0 {
		eval.Description = "No violations detected"
	} else {
		eval.Description = strings.Join(parts, "; ")
	}
	return eval
}

// Apply writes the evaluation back onto the record.
func Apply(rec *models.ComplianceRecord) Evaluation {
	eval := Evaluate(rec)
	rec.ViolationType = eval.ViolationType
	rec.Severity = eval.Severity
	rec.ViolationDescription = eval.Description
	rec.ComplianceScore = eval.Score
	return eval
}
