package chain

import (
	"context"

	"go.uber.org/multierr"

	"github.com/drivewise/drivewise-backend/pkg/db/models"
	pkgerrors "github.com/drivewise/drivewise-backend/pkg/errors"
	"github.com/drivewise/drivewise-backend/pkg/logger"
)

type vehicleLister interface {
	ListAll(ctx context.Context) ([]models.Vehicle, error)
}

type entryLister interface {
	ListEntries(ctx context.Context) ([]models.LeaderboardEntry, error)
}

// SyncReportDTO summarises a bulk chain sync.
type SyncReportDTO struct {
	SyncedVehicles int `json:"synced_vehicles"`
	FailedVehicles int `json:"failed_vehicles"`
}

// LeaderboardSyncDTO reports a leaderboard push.
type LeaderboardSyncDTO struct {
	SyncedEntries int `json:"synced_entries"`
}

// ServiceParams groups dependencies for the chain service.
type ServiceParams struct {
	Notifier Notifier
	Vehicles vehicleLister
	Entries  entryLister
	Logger   *logger.Logger
}

// Service drives the explicit chain sync endpoints.
type Service interface {
	SyncAll(ctx context.Context) (SyncReportDTO, error)
	SyncLeaderboard(ctx context.Context) (LeaderboardSyncDTO, error)
}

type service struct {
	notifier Notifier
	vehicles vehicleLister
	entries  entryLister
	logg     *logger.Logger
}

// NewService builds a chain service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "chain notifier is required")
	}
	if params.Vehicles == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle lister is required")
	}
	if params.Entries == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entry lister is required")
	}
	return &service{
		notifier: params.Notifier,
		vehicles: params.Vehicles,
		entries:  params.Entries,
		logg:     params.Logger,
	}, nil
}

// SyncAll pushes every vehicle to the chain. Per-vehicle failures are
// collected rather than aborting the pass; the combined error is logged
// and the counts still report what went through.
func (s *service) SyncAll(ctx context.Context) (SyncReportDTO, error) {
	if !s.notifier.Enabled() {
		return SyncReportDTO{}, pkgerrors.New(pkgerrors.CodeDependency, "chain integration is not configured")
	}

	all, err := s.vehicles.ListAll(ctx)
	if err != nil {
		return SyncReportDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}

	var report SyncReportDTO
	var combined error
	for i := range all {
		if err := s.notifier.SyncVehicle(ctx, &all[i]); err != nil {
			report.FailedVehicles++
			combined = multierr.Append(combined, err)
			continue
		}
		report.SyncedVehicles++
	}

	if combined != nil && s.logg != nil {
		s.logg.Warn(ctx, "chain sync finished with failures: "+combined.Error())
	}
	return report, nil
}

// SyncLeaderboard pushes the current ranked entries to the chain.
func (s *service) SyncLeaderboard(ctx context.Context) (LeaderboardSyncDTO, error) {
	if !s.notifier.Enabled() {
		return LeaderboardSyncDTO{}, pkgerrors.New(pkgerrors.CodeDependency, "chain integration is not configured")
	}

	entries, err := s.entries.ListEntries(ctx)
	if err != nil {
		return LeaderboardSyncDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list leaderboard entries")
	}
	if err := s.notifier.UpdateLeaderboard(ctx, entries); err != nil {
		return LeaderboardSyncDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "push leaderboard")
	}
	return LeaderboardSyncDTO{SyncedEntries: len(entries)}, nil
}
