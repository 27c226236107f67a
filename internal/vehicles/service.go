package vehicles

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/drivewise/drivewise-backend/pkg/db/models"
	pkgerrors "github.com/drivewise/drivewise-backend/pkg/errors"
)

// dashboardRecentRecords caps the record list on the dashboard view.
const dashboardRecentRecords = 10

type tokenReader interface {
	FindByVehicleID(ctx context.Context, vehicleID uuid.UUID) (*models.RewardToken, error)
}

// ServiceParams groups dependencies for the vehicle service.
type ServiceParams struct {
	VehicleRepo *Repository
	TokenReader tokenReader
	MinTrips    int
}

// Service exposes per-vehicle compliance views.
type Service interface {
	ComplianceHistory(ctx context.Context, vehicleID string) (ComplianceHistoryDTO, error)
	Dashboard(ctx context.Context, vehicleID string) (DashboardDTO, error)
}

type service struct {
	repo     *Repository
	tokens   tokenReader
	minTrips int
}

// NewService builds a vehicle service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.VehicleRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle repo is required")
	}
	if params.TokenReader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token reader is required")
	}
	if params.MinTrips <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min trips must be positive")
	}
	return &service{
		repo:     params.VehicleRepo,
		tokens:   params.TokenReader,
		minTrips: params.MinTrips,
	}, nil
}

// ComplianceHistory returns the vehicle's records newest first with the
// derived compliance summary.
func (s *service) ComplianceHistory(ctx context.Context, vehicleID string) (ComplianceHistoryDTO, error) {
	vehicle, err := s.resolve(ctx, vehicleID)
	if err != nil {
		return ComplianceHistoryDTO{}, err
	}

	agg, err := s.aggregate(ctx, vehicle.ID)
	if err != nil {
		return ComplianceHistoryDTO{}, err
	}

	records, err := s.repo.ListRecords(ctx, vehicle.ID, 0)
	if err != nil {
		return ComplianceHistoryDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list compliance records")
	}

	return ComplianceHistoryDTO{
		VehicleID:              vehicle.VehicleID,
		VehicleType:            vehicle.Type,
		OwnerName:              vehicle.OwnerName,
		TotalTrips:             agg.TotalTrips,
		TotalViolations:        agg.TotalViolations,
		ComplianceRate:         agg.ComplianceRate.InexactFloat64(),
		AverageComplianceScore: agg.AverageComplianceScore.InexactFloat64(),
		Qualifies:              agg.Qualifies,
		Records:                toRecordDTOs(records),
	}, nil
}

// Dashboard returns the aggregate snapshot plus the most recent records
// and the spendable token balance.
func (s *service) Dashboard(ctx context.Context, vehicleID string) (DashboardDTO, error) {
	vehicle, err := s.resolve(ctx, vehicleID)
	if err != nil {
		return DashboardDTO{}, err
	}

	agg, err := s.aggregate(ctx, vehicle.ID)
	if err != nil {
		return DashboardDTO{}, err
	}

	records, err := s.repo.ListRecords(ctx, vehicle.ID, dashboardRecentRecords)
	if err != nil {
		return DashboardDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recent records")
	}

	available := 0
	ledger, err := s.tokens.FindByVehicleID(ctx, vehicle.ID)
	switch {
	case err == nil:
		available = ledger.TokensAvailable()
	case errors.Is(err, gorm.ErrRecordNotFound):
		// no ledger yet, balance stays zero
	default:
		return DashboardDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load token ledger")
	}

	return DashboardDTO{
		VehicleID:              vehicle.VehicleID,
		OwnerName:              vehicle.OwnerName,
		TotalTrips:             agg.TotalTrips,
		TotalViolations:        agg.TotalViolations,
		ComplianceRate:         agg.ComplianceRate.InexactFloat64(),
		AverageComplianceScore: agg.AverageComplianceScore.InexactFloat64(),
		TokensAvailable:        available,
		RecentRecords:          toRecordDTOs(records),
	}, nil
}

func (s *service) resolve(ctx context.Context, vehicleID string) (*models.Vehicle, error) {
	if vehicleID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id is required")
	}
	vehicle, err := s.repo.FindByVehicleID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	return vehicle, nil
}

func (s *service) aggregate(ctx context.Context, vehicleID uuid.UUID) (Aggregate, error) {
	stats, err := s.repo.RecordStats(ctx, vehicleID)
	if err != nil {
		return Aggregate{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate compliance records")
	}
	return ComputeAggregate(stats, s.minTrips), nil
}
