package models

import (
	"time"

	"github.com/google/uuid"
)

// RewardToken tracks the per-vehicle token ledger. Earned and spent
// counters only ever grow; the spendable balance is their difference.
type RewardToken struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VehicleID    uuid.UUID `gorm:"column:vehicle_id;type:uuid;not null;uniqueIndex"`
	TokensEarned int       `gorm:"column:tokens_earned;not null;default:0"`
	TokensSpent  int       `gorm:"column:tokens_spent;not null;default:0"`
	LastUpdated  time.Time `gorm:"column:last_updated;type:timestamptz;autoUpdateTime"`
}

// TokensAvailable returns the spendable balance.
func (r *RewardToken) TokensAvailable() int {
	return r.TokensEarned - r.TokensSpent
}
