package leaderboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/drivewise/drivewise-backend/pkg/db/models"
	"github.com/drivewise/drivewise-backend/pkg/enums"
)

// Repository encapsulates leaderboard persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a leaderboard repository bound to the provided gorm DB.
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

// VehicleStats is one qualifying vehicle's raw aggregation, joined with
// its identity and token ledger.
type VehicleStats struct {
	VehicleUUID     uuid.UUID `gorm:"column:vehicle_uuid"`
	VehicleID       string    `gorm:"column:vehicle_id"`
	TotalTrips      int       `gorm:"column:total_trips"`
	TotalViolations int       `gorm:"column:total_violations"`
	ScoreSum        int       `gorm:"column:score_sum"`
	TokensEarned    int       `gorm:"column:tokens_earned"`
}

// QualifyingStats aggregates every vehicle with at least minTrips
// compliance records in a single pass.
func (r *Repository) QualifyingStats(ctx context.Context, minTrips int) ([]VehicleStats, error) {
	counted := make([]string, 0, len(enums.CountedViolationTypes))
	for _, vt := range enums.CountedViolationTypes {
		counted = append(counted, string(vt))
	}

	var stats []VehicleStats
	err := r.db.WithContext(ctx).
		Table("vehicles v").
		Select(
			"v.id AS vehicle_uuid, v.vehicle_id AS vehicle_id, "+
				"COUNT(r.id) AS total_trips, "+
				"COALESCE(SUM(CASE WHEN r.violation_type IN (?) THEN 1 ELSE 0 END), 0) AS total_violations, "+
				"COALESCE(SUM(r.compliance_score), 0) AS score_sum, "+
				"COALESCE(MAX(t.tokens_earned), 0) AS tokens_earned",
			counted,
		).
		Joins("JOIN compliance_records r ON r.vehicle_id = v.id").
		Joins("LEFT JOIN reward_tokens t ON t.vehicle_id = v.id").
		Group("v.id, v.vehicle_id").
		Having("COUNT(r.id) >= ?", minTrips).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// UpsertEntry writes one ranked snapshot, keyed by vehicle.
func (r *Repository) UpsertEntry(ctx context.Context, entry *models.LeaderboardEntry) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO leaderboard_entries
		   (id, vehicle_id, rank, total_trips, total_violations, compliance_rate, average_compliance_score, total_tokens_earned, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (vehicle_id) DO UPDATE SET
		   rank = excluded.rank,
		   total_trips = excluded.total_trips,
		   total_violations = excluded.total_violations,
		   compliance_rate = excluded.compliance_rate,
		   average_compliance_score = excluded.average_compliance_score,
		   total_tokens_earned = excluded.total_tokens_earned,
		   last_updated = CURRENT_TIMESTAMP`,
		uuid.New(), entry.VehicleID, entry.Rank, entry.TotalTrips, entry.TotalViolations,
		entry.ComplianceRate, entry.AverageComplianceScore, entry.TotalTokensEarned,
	).Error
}

// RankedRow is one leaderboard entry joined with vehicle identity.
type RankedRow struct {
	Rank                   int               `gorm:"column:rank"`
	ExternalVehicleID      string            `gorm:"column:external_vehicle_id"`
	VehicleType            enums.VehicleType `gorm:"column:vehicle_type"`
	OwnerName              string            `gorm:"column:owner_name"`
	TotalTrips             int               `gorm:"column:total_trips"`
	TotalViolations        int               `gorm:"column:total_violations"`
	ComplianceRate         decimal.Decimal   `gorm:"column:compliance_rate"`
	AverageComplianceScore decimal.Decimal   `gorm:"column:average_compliance_score"`
	TotalTokensEarned      int               `gorm:"column:total_tokens_earned"`
	LastUpdated            time.Time         `gorm:"column:last_updated"`
}

// ListRanked returns entries in rank order limited to the requested size.
func (r *Repository) ListRanked(ctx context.Context, limit int) ([]RankedRow, error) {
	query := r.db.WithContext(ctx).
		Table("leaderboard_entries e").
		Select("e.rank, e.total_trips, e.total_violations, e.compliance_rate, e.average_compliance_score, e.total_tokens_earned, e.last_updated, " +
			"v.vehicle_id AS external_vehicle_id, v.type AS vehicle_type, v.owner_name AS owner_name").
		Joins("JOIN vehicles v ON v.id = e.vehicle_id").
		Order("e.rank ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []RankedRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListEntries returns every ranked snapshot in rank order.
func (r *Repository) ListEntries(ctx context.Context) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := r.db.WithContext(ctx).
		Order("rank ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// CountEntries returns the number of ranked vehicles.
func (r *Repository) CountEntries(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LeaderboardEntry{}).
		Count(&count).Error
	return count, err
}

// EntryByVehicle loads the ranked snapshot for one vehicle.
func (r *Repository) EntryByVehicle(ctx context.Context, vehicleID uuid.UUID) (*models.LeaderboardEntry, error) {
	var entry models.LeaderboardEntry
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
