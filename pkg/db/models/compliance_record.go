package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/drivewise/drivewise-backend/pkg/enums"
)

// Score penalties per violation axis.
const (
	SpeedPenalty          = 20
	ExcessiveSpeedPenalty = 10
	ExcessiveSpeedMargin  = 20
	HornPenalty           = 15
	SeatbeltPenalty       = 25

	MaxComplianceScore = 100
)

// ComplianceRecord links one vehicle to one traffic sign encounter and
// carries the observed driving values alongside the derived violation
// classification. SessionID optionally groups records into a driving
// session; the record always resolves to exactly one owning vehicle.
type ComplianceRecord struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VehicleID     uuid.UUID  `gorm:"column:vehicle_id;type:uuid;not null;index"`
	TrafficSignID uuid.UUID  `gorm:"column:traffic_sign_id;type:uuid;not null"`
	SessionID     *uuid.UUID `gorm:"column:session_id;type:uuid"`

	SpeedLimit  *int `gorm:"column:speed_limit"`
	ActualSpeed *int `gorm:"column:actual_speed"`

	NoHornZone  bool `gorm:"column:no_horn_zone;not null;default:false"`
	HornApplied bool `gorm:"column:horn_applied;not null;default:false"`

	SeatbeltRequired bool `gorm:"column:seatbelt_required;not null;default:false"`
	SeatbeltWorn     bool `gorm:"column:seatbelt_worn;not null;default:false"`

	ViolationType        enums.ViolationType `gorm:"column:violation_type;type:violation_type_enum;not null;default:'no_violation'"`
	Severity             enums.Severity      `gorm:"column:severity;type:severity_enum;not null;default:'low'"`
	ViolationDescription string              `gorm:"column:violation_description;type:text"`

	ComplianceScore int       `gorm:"column:compliance_score;not null;default:100"`
	RecordedAt      time.Time `gorm:"column:recorded_at;type:timestamptz;default:now();index"`
}

// SpeedExcess returns how far the vehicle exceeded the posted limit, or
// zero when the speed axis does not apply.
func (r *ComplianceRecord) SpeedExcess() int {
	if r.SpeedLimit == nil || r.ActualSpeed == nil || *r.SpeedLimit == 0 || *r.ActualSpeed == 0 {
		return 0
	}
	if excess := *r.ActualSpeed - *r.SpeedLimit; excess > 0 {
		return excess
	}
	return 0
}

// SpeedViolated reports whether the record crossed the posted limit.
func (r *ComplianceRecord) SpeedViolated() bool {
	return r.SpeedExcess() > 0
}

// HornViolated reports whether the horn was applied inside a no-horn zone.
func (r *ComplianceRecord) HornViolated() bool {
	return r.NoHornZone && r.HornApplied
}

// SeatbeltViolated reports whether a required seatbelt was not worn.
func (r *ComplianceRecord) SeatbeltViolated() bool {
	return r.SeatbeltRequired && !r.SeatbeltWorn
}

// CalculateScore derives the compliance score from the observed values.
// The score starts at 100, subtracts the penalty for each applicable
// violation, and never drops below zero.
func (r *ComplianceRecord) CalculateScore() int {
	score := MaxComplianceScore

	if excess := r.SpeedExcess(); excess > 0 {
		score -= SpeedPenalty
		if excess > ExcessiveSpeedMargin {
			score -= ExcessiveSpeedPenalty
		}
	}

	if r.HornViolated() {
		score -= HornPenalty
	}

	if r.SeatbeltViolated() {
		score -= SeatbeltPenalty
	}

	if score < 0 {
		score = 0
	}
	return score
}

// BeforeSave recomputes the compliance score on every persistence. The
// stored score is always derived from the observation fields, never
// accepted from callers.
func (r *ComplianceRecord) BeforeSave(_ *gorm.DB) error {
	r.ComplianceScore = r.CalculateScore()
	return nil
}
