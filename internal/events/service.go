package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/drivewise/drivewise-backend/internal/chain"
	"github.com/drivewise/drivewise-backend/internal/scoring"
	"github.com/drivewise/drivewise-backend/internal/tokens"
	"github.com/drivewise/drivewise-backend/internal/vehicles"
	"github.com/drivewise/drivewise-backend/pkg/db/models"
	"github.com/drivewise/drivewise-backend/pkg/enums"
	pkgerrors "github.com/drivewise/drivewise-backend/pkg/errors"
	"github.com/drivewise/drivewise-backend/pkg/logger"
)

// RebuildTrigger tags ranker runs started by sensor ingestion.
const RebuildTrigger = "sensor-event"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ranker interface {
	Rebuild(ctx context.Context, trigger string) error
	CurrentRank(ctx context.Context, vehicleUUID uuid.UUID) (*int, error)
}

// ServiceParams groups dependencies for the sensor event service.
type ServiceParams struct {
	EventRepo   *Repository
	VehicleRepo *vehicles.Repository
	TokenRepo   *tokens.Repository
	Tx          txRunner
	Ranker      ranker
	Notifier    chain.Notifier
	Tiers       tokens.TierTable
	Logger      *logger.Logger
	MinTrips    int
}

// Service turns raw sensor events into scored compliance records.
type Service interface {
	ProcessSensorEvent(ctx context.Context, input SensorEventInput) (ComplianceResultDTO, error)
}

type service struct {
	repo     *Repository
	vehicles *vehicles.Repository
	tokens   *tokens.Repository
	tx       txRunner
	ranker   ranker
	notifier chain.Notifier
	tiers    tokens.TierTable
	logg     *logger.Logger
	minTrips int
}

// NewService builds the sensor event service.
func NewService(params ServiceParams) (Service, error) {
	if params.EventRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event repo is required")
	}
	if params.VehicleRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle repo is required")
	}
	if params.TokenRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	if params.Ranker == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ranker is required")
	}
	if params.Notifier == nil {
		params.Notifier = chain.Noop{}
	}
	if len(params.Tiers) == 0 {
		params.Tiers = tokens.DefaultTiers
	}
	if params.MinTrips <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min trips must be positive")
	}
	return &service{
		repo:     params.EventRepo,
		vehicles: params.VehicleRepo,
		tokens:   params.TokenRepo,
		tx:       params.Tx,
		ranker:   params.Ranker,
		notifier: params.Notifier,
		tiers:    params.Tiers,
		logg:     params.Logger,
		minTrips: params.MinTrips,
	}, nil
}

// ProcessSensorEvent runs the whole scoring unit for one event: resolve
// the vehicle, persist the sign observation and the scored record, and
// award tokens, all in one transaction. A failure anywhere rolls the
// unit back. Chain sync and the leaderboard rebuild happen after
// commit; neither can fail the request.
func (s *service) ProcessSensorEvent(ctx context.Context, input SensorEventInput) (ComplianceResultDTO, error) {
	signType, err := enums.ParseSignType(input.SignType)
	if err != nil {
		return ComplianceResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sign type")
	}

	var vehicleType enums.VehicleType
	if input.VehicleType != "" {
		vehicleType, err = enums.ParseVehicleType(input.VehicleType)
		if err != nil {
			return ComplianceResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle type")
		}
	}

	reading, err := scoring.ParseSignValue(signType, input.SignValue)
	if err != nil {
		return ComplianceResultDTO{}, err
	}

	var (
		vehicle *models.Vehicle
		record  *models.ComplianceRecord
		awarded int
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		vehicleRepo := s.vehicles.WithTx(tx)
		eventRepo := s.repo.WithTx(tx)
		tokenRepo := s.tokens.WithTx(tx)

		vehicle, err = vehicleRepo.GetOrCreate(ctx, input.VehicleID, vehicleType, input.OwnerName)
		if err != nil {
			return fmt.Errorf("resolve vehicle: %w", err)
		}

		sign := models.TrafficSign{
			Type:       signType,
			Value:      input.SignValue,
			Location:   input.Location,
			Active:     true,
			DetectedAt: time.Now().UTC(),
		}
		if err := eventRepo.CreateSign(ctx, &sign); err != nil {
			return fmt.Errorf("create traffic sign: %w", err)
		}

		record = buildRecord(vehicle, &sign, reading, input)
		scoring.Apply(record)
		if err := eventRepo.CreateRecord(ctx, record); err != nil {
			return fmt.Errorf("create compliance record: %w", err)
		}

		awarded = s.tiers.Award(record.ComplianceScore)
		if err := tokenRepo.Earn(ctx, vehicle.ID, awarded); err != nil {
			return fmt.Errorf("award tokens: %w", err)
		}
		return nil
	})
	if err != nil {
		return ComplianceResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "process sensor event")
	}

	s.notifyChain(ctx, vehicle, record)

	if err := s.ranker.Rebuild(ctx, RebuildTrigger); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "post-event leaderboard rebuild failed: "+err.Error())
	}

	stats, err := s.vehicles.RecordStats(ctx, vehicle.ID)
	if err != nil {
		return ComplianceResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate compliance records")
	}

	currentRank, err := s.ranker.CurrentRank(ctx, vehicle.ID)
	if err != nil {
		return ComplianceResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve current rank")
	}

	return ComplianceResultDTO{
		VehicleID:            vehicle.VehicleID,
		ViolationType:        record.ViolationType,
		Severity:             record.Severity,
		ComplianceScore:      record.ComplianceScore,
		ViolationDescription: record.ViolationDescription,
		TokensEarned:         awarded,
		TotalTrips:           stats.TotalTrips,
		QualificationStatus:  qualificationStatus(stats.TotalTrips, s.minTrips),
		CurrentRank:          currentRank,
	}, nil
}

func buildRecord(vehicle *models.Vehicle, sign *models.TrafficSign, reading scoring.SignReading, input SensorEventInput) *models.ComplianceRecord {
	record := models.ComplianceRecord{
		VehicleID:     vehicle.ID,
		TrafficSignID: sign.ID,
		ActualSpeed:   input.ActualSpeed,
		HornApplied:   input.HornApplied,
		SeatbeltWorn:  input.SeatbeltWorn,
		RecordedAt:    time.Now().UTC(),
	}
	record.SessionID = input.SessionID.Ptr()

	switch sign.Type {
	case enums.SignTypeSpeedLimit:
		if reading.Limit > 0 {
			limit := reading.Limit
			record.SpeedLimit = &limit
		}
	case enums.SignTypeNoHorn:
		record.NoHornZone = reading.Flag
	}

	record.SeatbeltRequired = vehicle.Type.RequiresSeatbelt()
	return &record
}

func qualificationStatus(trips, minTrips int) string {
	if trips >= minTrips {
		return "Qualified"
	}
	needed := minTrips - trips
	if needed == 1 {
		return "Needs 1 more entry"
	}
	return fmt.Sprintf("Needs %d more entries", needed)
}

func (s *service) notifyChain(ctx context.Context, vehicle *models.Vehicle, record *models.ComplianceRecord) {
	if !s.notifier.Enabled() {
		return
	}
	if err := s.notifier.SyncVehicle(ctx, vehicle); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "chain vehicle sync failed: "+err.Error())
	}
	if err := s.notifier.SyncRecord(ctx, record); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "chain record sync failed: "+err.Error())
	}
}
