package tokens

import (
	"time"

	"github.com/drivewise/drivewise-backend/pkg/db/models"
)

// LedgerDTO is the wire shape of a vehicle's token balance.
type LedgerDTO struct {
	VehicleID       string    `json:"vehicle_id"`
	TokensEarned    int       `json:"tokens_earned"`
	TokensSpent     int       `json:"tokens_spent"`
	TokensAvailable int       `json:"tokens_available"`
	LastUpdated     time.Time `json:"last_updated"`
}

// SpendInput carries a spend request for a vehicle's balance.
type SpendInput struct {
	Amount     int    `json:"amount" validate:"required,gt=0"`
	RewardType string `json:"reward_type" validate:"omitempty,max=120"`
}

// SpendResultDTO reports a successful spend.
type SpendResultDTO struct {
	VehicleID       string `json:"vehicle_id"`
	TokensSpent     int    `json:"tokens_spent"`
	RewardType      string `json:"reward_type,omitempty"`
	TokensRemaining int    `json:"tokens_remaining"`
}

func toLedgerDTO(vehicleID string, ledger *models.RewardToken) LedgerDTO {
	dto := LedgerDTO{VehicleID: vehicleID}
	if ledger == nil {
		return dto
	}
	dto.TokensEarned = ledger.TokensEarned
	dto.TokensSpent = ledger.TokensSpent
	dto.TokensAvailable = ledger.TokensAvailable()
	dto.LastUpdated = ledger.LastUpdated
	return dto
}
