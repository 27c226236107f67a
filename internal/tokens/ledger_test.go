package tokens

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/drivewise/drivewise-backend/pkg/db/models"
	"github.com/drivewise/drivewise-backend/pkg/enums"
	pkgerrors "github.com/drivewise/drivewise-backend/pkg/errors"
)

func setupTokensTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS reward_tokens (
  id TEXT PRIMARY KEY,
  vehicle_id TEXT NOT NULL UNIQUE,
  tokens_earned INTEGER NOT NULL DEFAULT 0,
  tokens_spent INTEGER NOT NULL DEFAULT 0,
  last_updated DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func TestEarnCreatesAndIncrements(t *testing.T) {
	conn := setupTokensTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	vehicleID := uuid.New()

	require.NoError(t, repo.Earn(ctx, vehicleID, 5))
	ledger, err := repo.FindByVehicleID(ctx, vehicleID)
	require.NoError(t, err)
	assert.Equal(t, 5, ledger.TokensEarned)

	require.NoError(t, repo.Earn(ctx, vehicleID, 10))
	ledger, err = repo.FindByVehicleID(ctx, vehicleID)
	require.NoError(t, err)
	assert.Equal(t, 15, ledger.TokensEarned)
	assert.Equal(t, 15, ledger.TokensAvailable())

	// a zero award still materialises the ledger
	otherID := uuid.New()
	require.NoError(t, repo.Earn(ctx, otherID, 0))
	ledger, err = repo.FindByVehicleID(ctx, otherID)
	require.NoError(t, err)
	assert.Equal(t, 0, ledger.TokensEarned)
}

func TestSpendGuardsBalance(t *testing.T) {
	conn := setupTokensTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	vehicleID := uuid.New()

	require.NoError(t, repo.Earn(ctx, vehicleID, 10))

	ok, err := repo.Spend(ctx, vehicleID, 7)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Spend(ctx, vehicleID, 4)
	require.NoError(t, err)
	assert.False(t, ok, "overspend must not update the row")

	ledger, err := repo.FindByVehicleID(ctx, vehicleID)
	require.NoError(t, err)
	assert.Equal(t, 10, ledger.TokensEarned)
	assert.Equal(t, 7, ledger.TokensSpent)
	assert.Equal(t, 3, ledger.TokensAvailable())

	ok, err = repo.Spend(ctx, uuid.New(), 1)
	require.NoError(t, err)
	assert.False(t, ok, "missing ledger must not spend")
}

type fakeVehicleFinder struct {
	vehicle *models.Vehicle
	err     error
}

func (f *fakeVehicleFinder) FindByVehicleID(_ context.Context, _ string) (*models.Vehicle, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vehicle, nil
}

type fakeClaimer struct {
	enabled bool
	err     error
	claims  []claimCall
}

type claimCall struct {
	vehicleID  string
	rewardType string
	amount     int
}

func (f *fakeClaimer) Enabled() bool { return f.enabled }

func (f *fakeClaimer) ClaimReward(_ context.Context, vehicleID, rewardType string, amount int) error {
	f.claims = append(f.claims, claimCall{vehicleID: vehicleID, rewardType: rewardType, amount: amount})
	return f.err
}

func newTokensService(t *testing.T, conn *gorm.DB, vehicle *models.Vehicle) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		TokenRepo:   NewRepository(conn),
		VehicleRepo: &fakeVehicleFinder{vehicle: vehicle},
		Claimer:     &fakeClaimer{},
	})
	require.NoError(t, err)
	return svc
}

func TestServiceSpendInsufficientBalance(t *testing.T) {
	conn := setupTokensTestDB(t)
	vehicle := &models.Vehicle{ID: uuid.New(), VehicleID: "KA-02-9999", Type: enums.VehicleTypeFourWheeler}
	svc := newTokensService(t, conn, vehicle)
	ctx := context.Background()

	require.NoError(t, NewRepository(conn).Earn(ctx, vehicle.ID, 5))

	_, err := svc.Spend(ctx, vehicle.VehicleID, SpendInput{Amount: 8, RewardType: "fuel_voucher"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientBalance, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 5, details["available_tokens"])
	assert.Equal(t, 8, details["requested_tokens"])

	ledger, err := svc.Ledger(ctx, vehicle.VehicleID)
	require.NoError(t, err)
	assert.Equal(t, 5, ledger.TokensAvailable, "failed spend must leave the ledger unchanged")
}

func TestServiceSpendSuccess(t *testing.T) {
	conn := setupTokensTestDB(t)
	vehicle := &models.Vehicle{ID: uuid.New(), VehicleID: "KA-02-9999", Type: enums.VehicleTypeFourWheeler}
	svc := newTokensService(t, conn, vehicle)
	ctx := context.Background()

	require.NoError(t, NewRepository(conn).Earn(ctx, vehicle.ID, 12))

	result, err := svc.Spend(ctx, vehicle.VehicleID, SpendInput{Amount: 5, RewardType: "toll_credit"})
	require.NoError(t, err)
	assert.Equal(t, 5, result.TokensSpent)
	assert.Equal(t, 7, result.TokensRemaining)
	assert.Equal(t, "toll_credit", result.RewardType)
}

func TestServiceLedgerWithoutRow(t *testing.T) {
	conn := setupTokensTestDB(t)
	vehicle := &models.Vehicle{ID: uuid.New(), VehicleID: "KA-03-0001", Type: enums.VehicleTypeTwoWheeler}
	svc := newTokensService(t, conn, vehicle)

	ledger, err := svc.Ledger(context.Background(), vehicle.VehicleID)
	require.NoError(t, err)
	assert.Equal(t, 0, ledger.TokensEarned)
	assert.Equal(t, 0, ledger.TokensAvailable)
	assert.Equal(t, vehicle.VehicleID, ledger.VehicleID)
}

func TestServiceSpendUnknownVehicle(t *testing.T) {
	conn := setupTokensTestDB(t)
	svc, err := NewService(ServiceParams{
		TokenRepo:   NewRepository(conn),
		VehicleRepo: &fakeVehicleFinder{err: gorm.ErrRecordNotFound},
	})
	require.NoError(t, err)

	_, err = svc.Spend(context.Background(), "unknown", SpendInput{Amount: 1})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestServiceSpendWithoutLedgerRow(t *testing.T) {
	conn := setupTokensTestDB(t)
	vehicle := &models.Vehicle{ID: uuid.New(), VehicleID: "KA-04-0002", Type: enums.VehicleTypeFourWheeler}
	svc := newTokensService(t, conn, vehicle)

	// vehicle exists but never earned a token
	_, err := svc.Spend(context.Background(), vehicle.VehicleID, SpendInput{Amount: 1, RewardType: "fuel_voucher"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestServiceSpendClaimsReward(t *testing.T) {
	conn := setupTokensTestDB(t)
	vehicle := &models.Vehicle{ID: uuid.New(), VehicleID: "KA-05-0003", Type: enums.VehicleTypeFourWheeler}
	claimer := &fakeClaimer{enabled: true}
	svc, err := NewService(ServiceParams{
		TokenRepo:   NewRepository(conn),
		VehicleRepo: &fakeVehicleFinder{vehicle: vehicle},
		Claimer:     claimer,
	})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, NewRepository(conn).Earn(ctx, vehicle.ID, 10))

	_, err = svc.Spend(ctx, vehicle.VehicleID, SpendInput{Amount: 4, RewardType: "toll_credit"})
	require.NoError(t, err)
	require.Len(t, claimer.claims, 1)
	assert.Equal(t, claimCall{vehicleID: vehicle.VehicleID, rewardType: "toll_credit", amount: 4}, claimer.claims[0])
}

func TestServiceSpendSurvivesClaimFailure(t *testing.T) {
	conn := setupTokensTestDB(t)
	vehicle := &models.Vehicle{ID: uuid.New(), VehicleID: "KA-05-0004", Type: enums.VehicleTypeFourWheeler}
	claimer := &fakeClaimer{enabled: true, err: errors.New("rpc unavailable")}
	svc, err := NewService(ServiceParams{
		TokenRepo:   NewRepository(conn),
		VehicleRepo: &fakeVehicleFinder{vehicle: vehicle},
		Claimer:     claimer,
	})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, NewRepository(conn).Earn(ctx, vehicle.ID, 10))

	result, err := svc.Spend(ctx, vehicle.VehicleID, SpendInput{Amount: 4, RewardType: "toll_credit"})
	require.NoError(t, err, "a failing claim must not fail the spend")
	assert.Equal(t, 6, result.TokensRemaining)

	ledger, err := svc.Ledger(ctx, vehicle.VehicleID)
	require.NoError(t, err)
	assert.Equal(t, 6, ledger.TokensAvailable, "the deduction must still be committed")
}

func TestServiceSpendSkipsClaimWhenDisabled(t *testing.T) {
	conn := setupTokensTestDB(t)
	vehicle := &models.Vehicle{ID: uuid.New(), VehicleID: "KA-05-0005", Type: enums.VehicleTypeTwoWheeler}
	claimer := &fakeClaimer{enabled: false}
	svc, err := NewService(ServiceParams{
		TokenRepo:   NewRepository(conn),
		VehicleRepo: &fakeVehicleFinder{vehicle: vehicle},
		Claimer:     claimer,
	})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, NewRepository(conn).Earn(ctx, vehicle.ID, 3))

	_, err = svc.Spend(ctx, vehicle.VehicleID, SpendInput{Amount: 2, RewardType: "fuel_voucher"})
	require.NoError(t, err)
	assert.Empty(t, claimer.claims)
}
