package chain

import (
	"context"

	"github.com/drivewise/drivewise-backend/pkg/config"
	"github.com/drivewise/drivewise-backend/pkg/db/models"
	"github.com/drivewise/drivewise-backend/pkg/logger"
)

// Notifier is the on-chain capability injected into the scoring and
// ranking paths. Every call is best-effort: callers log failures and
// keep going, a notifier error never aborts the surrounding operation.
type Notifier interface {
	Enabled() bool
	SyncVehicle(ctx context.Context, vehicle *models.Vehicle) error
	SyncRecord(ctx context.Context, record *models.ComplianceRecord) error
	UpdateLeaderboard(ctx context.Context, entries []models.LeaderboardEntry) error
	ClaimReward(ctx context.Context, vehicleID string, rewardType string, amount int) error
}

// Noop is the default notifier when no chain endpoint is configured.
type Noop struct{}

func (Noop) Enabled() bool { return false }

func (Noop) SyncVehicle(context.Context, *models.Vehicle) error { return nil }

func (Noop) SyncRecord(context.Context, *models.ComplianceRecord) error { return nil }

func (Noop) UpdateLeaderboard(context.Context, []models.LeaderboardEntry) error { return nil }

func (Noop) ClaimReward(context.Context, string, string, int) error { return nil }

// logNotifier records every sync intent without real on-chain calls.
// It stands in for the contract client until one exists.
type logNotifier struct {
	logg     *logger.Logger
	network  string
	contract string
}

// New returns the logging notifier when chain config is present and the
// Noop otherwise.
func New(cfg config.ChainConfig, logg *logger.Logger) Notifier {
	if !cfg.Configured() || logg == nil {
		return Noop{}
	}
	return &logNotifier{logg: logg, network: cfg.NetworkURL, contract: cfg.ContractAddress}
}

func (n *logNotifier) Enabled() bool { return true }

func (n *logNotifier) SyncVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	n.logg.Info(n.withChainFields(ctx, map[string]any{
		"vehicle_id": vehicle.VehicleID,
		"owner_name": vehicle.OwnerName,
	}), "chain: sync vehicle")
	return nil
}

func (n *logNotifier) SyncRecord(ctx context.Context, record *models.ComplianceRecord) error {
	n.logg.Info(n.withChainFields(ctx, map[string]any{
		"record_id":        record.ID,
		"violation_type":   record.ViolationType,
		"compliance_score": record.ComplianceScore,
	}), "chain: sync compliance record")
	return nil
}

func (n *logNotifier) UpdateLeaderboard(ctx context.Context, entries []models.LeaderboardEntry) error {
	n.logg.Info(n.withChainFields(ctx, map[string]any{
		"entries": len(entries),
	}), "chain: update leaderboard")
	return nil
}

func (n *logNotifier) ClaimReward(ctx context.Context, vehicleID string, rewardType string, amount int) error {
	n.logg.Info(n.withChainFields(ctx, map[string]any{
		"vehicle_id":  vehicleID,
		"reward_type": rewardType,
		"amount":      amount,
	}), "chain: claim reward")
	return nil
}

func (n *logNotifier) withChainFields(ctx context.Context, fields map[string]any) context.Context {
	fields["network"] = n.network
	fields["contract"] = n.contract
	return n.logg.WithFields(ctx, fields)
}
