package events

import (
	"github.com/drivewise/drivewise-backend/pkg/enums"
	"github.com/drivewise/drivewise-backend/pkg/types"
)

// SensorEventInput is one inbound roadside observation.
type SensorEventInput struct {
	VehicleID   string `json:"vehicle_id" validate:"required,max=64"`
	VehicleType string `json:"vehicle_type" validate:"omitempty"`
	OwnerName   string `json:"owner_name" validate:"omitempty,max=120"`

	SignType  string `json:"sign_type" validate:"required"`
	SignValue string `json:"sign_value" validate:"omitempty,max=64"`
	Location  string `json:"location" validate:"omitempty,max=255"`

	ActualSpeed  *int               `json:"actual_speed" validate:"omitempty,gte=0"`
	HornApplied  bool               `json:"horn_applied"`
	SeatbeltWorn bool               `json:"seatbelt_worn"`
	SessionID    types.NullableUUID `json:"session_id"`
}

// ComplianceResultDTO is the scored outcome returned to the sensor layer.
type ComplianceResultDTO struct {
	VehicleID            string              `json:"vehicle_id"`
	ViolationType        enums.ViolationType `json:"violation_type"`
	Severity             enums.Severity      `json:"severity"`
	ComplianceScore      int                 `json:"compliance_score"`
	ViolationDescription string              `json:"violation_description"`
	TokensEarned         int                 `json:"tokens_earned"`
	TotalTrips           int                 `json:"total_trips"`
	QualificationStatus  string              `json:"qualification_status"`
	CurrentRank          *int                `json:"current_rank"`
}
