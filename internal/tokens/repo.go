package tokens

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/drivewise/drivewise-backend/pkg/db/models"
)

// Repository encapsulates the per-vehicle token ledger.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a token repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByVehicleID loads the ledger row for a vehicle.
func (r *Repository) FindByVehicleID(ctx context.Context, vehicleID uuid.UUID) (*models.RewardToken, error) {
	var ledger models.RewardToken
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		First(&ledger).Error
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

// Earn adds delta to the vehicle's earned counter, creating the ledger
// on first award. A zero delta still materialises the ledger row.
func (r *Repository) Earn(ctx context.Context, vehicleID uuid.UUID, delta int) error {
	if delta < 0 {
		return gorm.ErrInvalidValue
	}

	return r.db.WithContext(ctx).Exec(
		`INSERT INTO reward_tokens (id, vehicle_id, tokens_earned, tokens_spent, last_updated)
		 VALUES (?, ?, ?, 0, CURRENT_TIMESTAMP)
		 ON CONFLICT (vehicle_id) DO UPDATE SET
		   tokens_earned = reward_tokens.tokens_earned + excluded.tokens_earned,
		   last_updated = CURRENT_TIMESTAMP`,
		uuid.New(), vehicleID, delta,
	).Error
}

// Spend increases tokens_spent by amount in one guarded statement. It
// reports whether a row was updated; false means the ledger is missing
// or the balance is insufficient, and the caller decides which.
func (r *Repository) Spend(ctx context.Context, vehicleID uuid.UUID, amount int) (bool, error) {
	if amount <= 0 {
		return false, gorm.ErrInvalidValue
	}

	result := r.db.WithContext(ctx).Exec(
		`UPDATE reward_tokens
		 SET tokens_spent = tokens_spent + ?, last_updated = CURRENT_TIMESTAMP
		 WHERE vehicle_id = ? AND tokens_earned - tokens_spent >= ?`,
		amount, vehicleID, amount,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
