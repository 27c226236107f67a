package events

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/drivewise/drivewise-backend/pkg/db/models"
)

// Repository persists the per-event rows: the sign observation and the
// scored compliance record.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an event repository bound to the provided gorm DB.
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

// CreateSign inserts one traffic sign observation.
func (r *Repository) CreateSign(ctx context.Context, sign *models.TrafficSign) error {
	if sign.ID == uuid.Nil {
		sign.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(sign).Error
}

// CreateRecord inserts one compliance record. The model's save hook
// recomputes the score on the way in.
func (r *Repository) CreateRecord(ctx context.Context, record *models.ComplianceRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(record).Error
}
