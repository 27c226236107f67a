package tokens

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/drivewise/drivewise-backend/pkg/db/models"
	pkgerrors "github.com/drivewise/drivewise-backend/pkg/errors"
	"github.com/drivewise/drivewise-backend/pkg/logger"
)

type vehicleFinder interface {
	FindByVehicleID(ctx context.Context, vehicleID string) (*models.Vehicle, error)
}

// rewardClaimer is the on-chain reward claim capability. Claims are
// best-effort: a claimer failure never fails the spend.
type rewardClaimer interface {
	Enabled() bool
	ClaimReward(ctx context.Context, vehicleID string, rewardType string, amount int) error
}

// ServiceParams groups dependencies for the token service.
type ServiceParams struct {
	TokenRepo   *Repository
	VehicleRepo vehicleFinder
	Claimer     rewardClaimer
	Logger      *logger.Logger
}

// Service exposes the token ledger operations.
type Service interface {
	Ledger(ctx context.Context, vehicleID string) (LedgerDTO, error)
	Spend(ctx context.Context, vehicleID string, input SpendInput) (SpendResultDTO, error)
}

type service struct {
	repo     *Repository
	vehicles vehicleFinder
	claimer  rewardClaimer
	logg     *logger.Logger
}

// NewService builds a token service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TokenRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token repo is required")
	}
	if params.VehicleRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle repo is required")
	}
	if params.Claimer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reward claimer is required")
	}
	return &service{
		repo:     params.TokenRepo,
		vehicles: params.VehicleRepo,
		claimer:  params.Claimer,
		logg:     params.Logger,
	}, nil
}

// Ledger returns the vehicle's balance snapshot. A vehicle without a
// ledger row reads as a zero balance.
func (s *service) Ledger(ctx context.Context, vehicleID string) (LedgerDTO, error) {
	vehicle, err := s.resolve(ctx, vehicleID)
	if err != nil {
		return LedgerDTO{}, err
	}

	ledger, err := s.repo.FindByVehicleID(ctx, vehicle.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return toLedgerDTO(vehicle.VehicleID, nil), nil
		}
		return LedgerDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load token ledger")
	}
	return toLedgerDTO(vehicle.VehicleID, ledger), nil
}

// Spend deducts tokens from the vehicle's balance. The deduction is a
// single guarded update; a spend that exceeds the available balance is
// rejected without touching the ledger. A vehicle that never earned a
// token has no ledger to spend from.
func (s *service) Spend(ctx context.Context, vehicleID string, input SpendInput) (SpendResultDTO, error) {
	if input.Amount <= 0 {
		return SpendResultDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "spend amount must be positive")
	}

	vehicle, err := s.resolve(ctx, vehicleID)
	if err != nil {
		return SpendResultDTO{}, err
	}

	ok, err := s.repo.Spend(ctx, vehicle.ID, input.Amount)
	if err != nil {
		return SpendResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "spend tokens")
	}
	if !ok {
		ledger, lookupErr := s.repo.FindByVehicleID(ctx, vehicle.ID)
		if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return SpendResultDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "no token ledger for vehicle")
		}
		available := 0
		if lookupErr == nil {
			available = ledger.TokensAvailable()
		}
		return SpendResultDTO{}, pkgerrors.New(pkgerrors.CodeInsufficientBalance, "insufficient token balance").
			WithDetails(map[string]any{
				"available_tokens": available,
				"requested_tokens": input.Amount,
			})
	}

	s.claimOnChain(ctx, vehicle.VehicleID, input)

	remaining := 0
	if ledger, lookupErr := s.repo.FindByVehicleID(ctx, vehicle.ID); lookupErr == nil {
		remaining = ledger.TokensAvailable()
	}

	return SpendResultDTO{
		VehicleID:       vehicle.VehicleID,
		TokensSpent:     input.Amount,
		RewardType:      input.RewardType,
		TokensRemaining: remaining,
	}, nil
}

// claimOnChain fires the best-effort reward claim after a committed
// spend. Failures are logged and swallowed.
func (s *service) claimOnChain(ctx context.Context, vehicleID string, input SpendInput) {
	if !s.claimer.Enabled() {
		return
	}
	if err := s.claimer.ClaimReward(ctx, vehicleID, input.RewardType, input.Amount); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"vehicle_id":  vehicleID,
			"reward_type": input.RewardType,
		}), "chain reward claim failed: "+err.Error())
	}
}

func (s *service) resolve(ctx context.Context, vehicleID string) (*models.Vehicle, error) {
	if vehicleID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id is required")
	}
	vehicle, err := s.vehicles.FindByVehicleID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	return vehicle, nil
}
