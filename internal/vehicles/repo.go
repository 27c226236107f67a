package vehicles

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/drivewise/drivewise-backend/pkg/db"
	"github.com/drivewise/drivewise-backend/pkg/db/models"
	"github.com/drivewise/drivewise-backend/pkg/enums"
)

// DefaultOwnerName is assigned when a sensor reports an unregistered vehicle.
const DefaultOwnerName = "Unknown"

// Repository encapsulates vehicle persistence and record aggregation.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a vehicle repository bound to the provided gorm DB.
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

// FindByVehicleID loads a vehicle by its external sensor identity.
func (r *Repository) FindByVehicleID(ctx context.Context, vehicleID string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		First(&vehicle).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// GetOrCreate resolves the external vehicle id, registering the vehicle
// with ingest defaults when it is unknown. A lost insert race falls back
// to the row the winner created.
func (r *Repository) GetOrCreate(ctx context.Context, vehicleID string, vehicleType enums.VehicleType, ownerName string) (*models.Vehicle, error) {
	existing, err := r.FindByVehicleID(ctx, vehicleID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if vehicleType == "" {
		vehicleType = enums.VehicleTypeFourWheeler
	}
	if ownerName == "" {
		ownerName = DefaultOwnerName
	}

	vehicle := models.Vehicle{
		ID:        uuid.New(),
		VehicleID: vehicleID,
		Type:      vehicleType,
		OwnerName: ownerName,
	}
	if err := r.db.WithContext(ctx).Create(&vehicle).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return r.FindByVehicleID(ctx, vehicleID)
		}
		return nil, err
	}
	return &vehicle, nil
}

// RecordStats aggregates a vehicle's full compliance history in one query.
func (r *Repository) RecordStats(ctx context.Context, vehicleID uuid.UUID) (RecordStats, error) {
	var stats RecordStats
	err := r.db.WithContext(ctx).
		Table("compliance_records").
		Select(
			"COUNT(*) AS total_trips, "+
				"COALESCE(SUM(CASE WHEN violation_type IN (?) THEN 1 ELSE 0 END), 0) AS total_violations, "+
				"COALESCE(SUM(compliance_score), 0) AS score_sum",
			countedViolationValues(),
		).
		Where("vehicle_id = ?", vehicleID).
		Scan(&stats).Error
	if err != nil {
		return RecordStats{}, err
	}
	return stats, nil
}

// ListRecords returns the vehicle's compliance records newest first.
// A non-positive limit returns the full history.
func (r *Repository) ListRecords(ctx context.Context, vehicleID uuid.UUID, limit int) ([]models.ComplianceRecord, error) {
	query := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("recorded_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []models.ComplianceRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListAll returns every registered vehicle ordered by registration time.
func (r *Repository) ListAll(ctx context.Context) ([]models.Vehicle, error) {
	var all []models.Vehicle
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&all).Error
	if err != nil {
		return nil, err
	}
	return all, nil
}

// ListQualifying returns the ids of vehicles with at least minTrips records.
func (r *Repository) ListQualifying(ctx context.Context, minTrips int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Table("compliance_records").
		Group("vehicle_id").
		Having("COUNT(*) >= ?", minTrips).
		Pluck("vehicle_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func countedViolationValues() []string {
	values := make([]string, 0, len(enums.CountedViolationTypes))
	for _, vt := range enums.CountedViolationTypes {
		values = append(values, string(vt))
	}
	return values
}
