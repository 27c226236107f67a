package chain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/drivewise/drivewise-backend/pkg/config"
	"github.com/drivewise/drivewise-backend/pkg/db/models"
	pkgerrors "github.com/drivewise/drivewise-backend/pkg/errors"
)

func TestNewReturnsNoopWithoutConfig(t *testing.T) {
	notifier := New(config.ChainConfig{
		NetworkURL:      "http://127.0.0.1:8545",
		ContractAddress: config.PlaceholderContractAddress,
		PrivateKey:      config.PlaceholderPrivateKey,
	}, nil)

	if notifier.Enabled() {
		t.Fatal("placeholder config must disable the notifier")
	}
	if err := notifier.SyncVehicle(context.Background(), &models.Vehicle{}); err != nil {
		t.Fatalf("noop sync must not fail: %v", err)
	}
}

type stubNotifier struct {
	enabled      bool
	failVehicles map[string]error
	synced       []string
	leaderboards int
}

func (s *stubNotifier) Enabled() bool { return s.enabled }

func (s *stubNotifier) SyncVehicle(_ context.Context, vehicle *models.Vehicle) error {
	if err, ok := s.failVehicles[vehicle.VehicleID]; ok {
		return err
	}
	s.synced = append(s.synced, vehicle.VehicleID)
	return nil
}

func (s *stubNotifier) SyncRecord(context.Context, *models.ComplianceRecord) error { return nil }

func (s *stubNotifier) UpdateLeaderboard(_ context.Context, entries []models.LeaderboardEntry) error {
	s.leaderboards = len(entries)
	return nil
}

func (s *stubNotifier) ClaimReward(context.Context, string, string, int) error { return nil }

type stubVehicleLister struct {
	vehicles []models.Vehicle
}

func (s *stubVehicleLister) ListAll(context.Context) ([]models.Vehicle, error) {
	return s.vehicles, nil
}

type stubEntryLister struct {
	entries []models.LeaderboardEntry
}

func (s *stubEntryLister) ListEntries(context.Context) ([]models.LeaderboardEntry, error) {
	return s.entries, nil
}

func TestSyncAllCollectsFailures(t *testing.T) {
	notifier := &stubNotifier{
		enabled:      true,
		failVehicles: map[string]error{"KA-01-0002": errors.New("rpc timeout")},
	}
	svc, err := NewService(ServiceParams{
		Notifier: notifier,
		Vehicles: &stubVehicleLister{vehicles: []models.Vehicle{
			{ID: uuid.New(), VehicleID: "KA-01-0001"},
			{ID: uuid.New(), VehicleID: "KA-01-0002"},
			{ID: uuid.New(), VehicleID: "KA-01-0003"},
		}},
		Entries: &stubEntryLister{},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	report, err := svc.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("sync all must not surface per-vehicle failures: %v", err)
	}
	if report.SyncedVehicles != 2 || report.FailedVehicles != 1 {
		t.Errorf("report = %+v, want 2 synced / 1 failed", report)
	}
	if strings.Join(notifier.synced, ",") != "KA-01-0001,KA-01-0003" {
		t.Errorf("unexpected synced set %v", notifier.synced)
	}
}

func TestSyncDisabledNotifier(t *testing.T) {
	svc, err := NewService(ServiceParams{
		Notifier: Noop{},
		Vehicles: &stubVehicleLister{},
		Entries:  &stubEntryLister{},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.SyncAll(context.Background())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}

	_, err = svc.SyncLeaderboard(context.Background())
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestSyncLeaderboard(t *testing.T) {
	notifier := &stubNotifier{enabled: true}
	svc, err := NewService(ServiceParams{
		Notifier: notifier,
		Vehicles: &stubVehicleLister{},
		Entries: &stubEntryLister{entries: []models.LeaderboardEntry{
			{Rank: 1}, {Rank: 2},
		}},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	result, err := svc.SyncLeaderboard(context.Background())
	if err != nil {
		t.Fatalf("sync leaderboard: %v", err)
	}
	if result.SyncedEntries != 2 || notifier.leaderboards != 2 {
		t.Errorf("synced entries = %d (notifier saw %d), want 2", result.SyncedEntries, notifier.leaderboards)
	}
}
