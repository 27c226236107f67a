package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeaderboardEntry caches one qualifying vehicle's ranked snapshot. It
// is a materialized view over vehicles, compliance records and the
// token ledger; the ranker rebuilds it and nothing else writes to it.
type LeaderboardEntry struct {
	ID                     uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VehicleID              uuid.UUID       `gorm:"column:vehicle_id;type:uuid;not null;uniqueIndex"`
	Rank                   int             `gorm:"column:rank;not null;default:0"`
	TotalTrips             int             `gorm:"column:total_trips;not null;default:0"`
	TotalViolations        int             `gorm:"column:total_violations;not null;default:0"`
	ComplianceRate         decimal.Decimal `gorm:"column:compliance_rate;type:numeric(5,2);not null"`
	AverageComplianceScore decimal.Decimal `gorm:"column:average_compliance_score;type:numeric(5,2);not null"`
	TotalTokensEarned      int             `gorm:"column:total_tokens_earned;not null;default:0"`
	LastUpdated            time.Time       `gorm:"column:last_updated;type:timestamptz;autoUpdateTime"`
}
