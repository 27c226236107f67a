package vehicles

import (
	"time"

	"github.com/google/uuid"

	"github.com/drivewise/drivewise-backend/pkg/db/models"
	"github.com/drivewise/drivewise-backend/pkg/enums"
)

// RecordDTO is the wire shape of one compliance record.
type RecordDTO struct {
	ID                   uuid.UUID           `json:"id"`
	TrafficSignID        uuid.UUID           `json:"traffic_sign_id"`
	SessionID            *uuid.UUID          `json:"session_id,omitempty"`
	SpeedLimit           *int                `json:"speed_limit,omitempty"`
	ActualSpeed          *int                `json:"actual_speed,omitempty"`
	ViolationType        enums.ViolationType `json:"violation_type"`
	Severity             enums.Severity      `json:"severity"`
	ViolationDescription string              `json:"violation_description"`
	ComplianceScore      int                 `json:"compliance_score"`
	RecordedAt           time.Time           `json:"recorded_at"`
}

// ComplianceHistoryDTO summarises a vehicle's full compliance history.
type ComplianceHistoryDTO struct {
	VehicleID              string            `json:"vehicle_id"`
	VehicleType            enums.VehicleType `json:"vehicle_type"`
	OwnerName              string            `json:"owner_name"`
	TotalTrips             int               `json:"total_trips"`
	TotalViolations        int               `json:"total_violations"`
	ComplianceRate         float64           `json:"compliance_rate"`
	AverageComplianceScore float64           `json:"average_compliance_score"`
	Qualifies              bool              `json:"qualifies_for_leaderboard"`
	Records                []RecordDTO       `json:"records"`
}

// DashboardDTO carries the per-vehicle dashboard snapshot.
type DashboardDTO struct {
	VehicleID              string      `json:"vehicle_id"`
	OwnerName              string      `json:"owner_name"`
	TotalTrips             int         `json:"total_trips"`
	TotalViolations        int         `json:"total_violations"`
	ComplianceRate         float64     `json:"compliance_rate"`
	AverageComplianceScore float64     `json:"average_compliance_score"`
	TokensAvailable        int         `json:"tokens_available"`
	RecentRecords          []RecordDTO `json:"recent_records"`
}

func toRecordDTO(rec models.ComplianceRecord) RecordDTO {
	return RecordDTO{
		ID:                   rec.ID,
		TrafficSignID:        rec.TrafficSignID,
		SessionID:            rec.SessionID,
		SpeedLimit:           rec.SpeedLimit,
		ActualSpeed:          rec.ActualSpeed,
		ViolationType:        rec.ViolationType,
		Severity:             rec.Severity,
		ViolationDescription: rec.ViolationDescription,
		ComplianceScore:      rec.ComplianceScore,
		RecordedAt:           rec.RecordedAt,
	}
}

func toRecordDTOs(records []models.ComplianceRecord) []RecordDTO {
	dtos := make([]RecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toRecordDTO(rec))
	}
	return dtos
}
