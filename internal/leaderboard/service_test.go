package leaderboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/drivewise/drivewise-backend/internal/vehicles"
	"github.com/drivewise/drivewise-backend/pkg/enums"
	pkgerrors "github.com/drivewise/drivewise-backend/pkg/errors"
)

func setupLeaderboardTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS vehicles (
  id TEXT PRIMARY KEY,
  vehicle_id TEXT NOT NULL UNIQUE,
  type TEXT NOT NULL,
  registration_number TEXT,
  owner_name TEXT NOT NULL DEFAULT 'Unknown',
  created_at DATETIME
);
CREATE TABLE IF NOT EXISTS compliance_records (
  id TEXT PRIMARY KEY,
  vehicle_id TEXT NOT NULL,
  traffic_sign_id TEXT NOT NULL,
  session_id TEXT,
  speed_limit INTEGER,
  actual_speed INTEGER,
  no_horn_zone INTEGER NOT NULL DEFAULT 0,
  horn_applied INTEGER NOT NULL DEFAULT 0,
  seatbelt_required INTEGER NOT NULL DEFAULT 0,
  seatbelt_worn INTEGER NOT NULL DEFAULT 0,
  violation_type TEXT NOT NULL DEFAULT 'no_violation',
  severity TEXT NOT NULL DEFAULT 'low',
  violation_description TEXT,
  compliance_score INTEGER NOT NULL DEFAULT 100,
  recorded_at DATETIME
);
CREATE TABLE IF NOT EXISTS reward_tokens (
  id TEXT PRIMARY KEY,
  vehicle_id TEXT NOT NULL UNIQUE,
  tokens_earned INTEGER NOT NULL DEFAULT 0,
  tokens_spent INTEGER NOT NULL DEFAULT 0,
  last_updated DATETIME
);
CREATE TABLE IF NOT EXISTS leaderboard_entries (
  id TEXT PRIMARY KEY,
  vehicle_id TEXT NOT NULL UNIQUE,
  rank INTEGER NOT NULL DEFAULT 0,
  total_trips INTEGER NOT NULL DEFAULT 0,
  total_violations INTEGER NOT NULL DEFAULT 0,
  compliance_rate NUMERIC NOT NULL DEFAULT 0,
  average_compliance_score NUMERIC NOT NULL DEFAULT 0,
  total_tokens_earned INTEGER NOT NULL DEFAULT 0,
  last_updated DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

type testTxRunner struct {
	conn *gorm.DB
}

func (r *testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.conn.WithContext(ctx).Transaction(fn)
}

type fakeCache struct {
	values map[string]string
	sets   int
	dels   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	value, ok := c.values[key]
	if !ok {
		return "", fmt.Errorf("cache miss")
	}
	return value, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.values[key] = value.(string)
	c.sets++
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.values, key)
	}
	c.dels++
	return nil
}

func (c *fakeCache) LeaderboardCacheKey(limit int) string {
	return fmt.Sprintf("test:leaderboard:limit=%d", limit)
}

func seedVehicle(t *testing.T, conn *gorm.DB, externalID, owner string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	require.NoError(t, conn.Exec(
		`INSERT INTO vehicles (id, vehicle_id, type, owner_name) VALUES (?, ?, ?, ?)`,
		id, externalID, enums.VehicleTypeFourWheeler, owner,
	).Error)
	return id
}

func seedRecords(t *testing.T, conn *gorm.DB, vehicleID uuid.UUID, scores []int, violations int) {
	t.Helper()

	for i, score := range scores {
		violationType := enums.ViolationTypeNoViolation
		if i < violations {
			violationType = enums.ViolationTypeSpeed
		}
		require.NoError(t, conn.Exec(
			`INSERT INTO compliance_records (id, vehicle_id, traffic_sign_id, violation_type, compliance_score, recorded_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.New(), vehicleID, uuid.New(), violationType, score, time.Now().UTC().Add(time.Duration(i)*time.Minute),
		).Error)
	}
}

func newTestService(t *testing.T, conn *gorm.DB, cache viewCache) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		Repo:        NewRepository(conn),
		VehicleRepo: vehicles.NewRepository(conn),
		Tx:          &testTxRunner{conn: conn},
		Cache:       cache,
		MinTrips:    3,
		ViewLimit:   10,
		CacheTTL:    time.Minute,
	})
	require.NoError(t, err)
	return svc
}

func TestRebuildAssignsDenseRanks(t *testing.T) {
	conn := setupLeaderboardTestDB(t)
	svc := newTestService(t, conn, nil)
	ctx := context.Background()

	// five trips beats four regardless of rate
	busy := seedVehicle(t, conn, "KA-01-0001", "Asha")
	seedRecords(t, conn, busy, []int{80, 80, 80, 80, 80}, 5)

	// four trips, one violation
	steady := seedVehicle(t, conn, "KA-01-0002", "Ravi")
	seedRecords(t, conn, steady, []int{100, 100, 100, 80}, 1)

	// four trips, two violations
	rough := seedVehicle(t, conn, "KA-01-0003", "Meena")
	seedRecords(t, conn, rough, []int{100, 100, 80, 80}, 2)

	// two trips: below threshold, no entry
	newcomer := seedVehicle(t, conn, "KA-01-0004", "Kiran")
	seedRecords(t, conn, newcomer, []int{100, 100}, 0)

	require.NoError(t, svc.Rebuild(ctx, "test"))

	view, err := svc.View(ctx, 10)
	require.NoError(t, err)
	require.Len(t, view.Leaderboard, 3)
	assert.Equal(t, 3, view.TotalQualifiedVehicles)
	assert.Equal(t, 3, view.MinimumEntriesRequired)
	assert.Equal(t, RankingCriteria, view.RankingCriteria)
	assert.Equal(t, "Four Wheeler", view.Leaderboard[0].VehicleType)

	assert.Equal(t, []int{1, 2, 3}, []int{view.Leaderboard[0].Rank, view.Leaderboard[1].Rank, view.Leaderboard[2].Rank})
	assert.Equal(t, "KA-01-0001", view.Leaderboard[0].VehicleID)
	assert.Equal(t, "KA-01-0002", view.Leaderboard[1].VehicleID)
	assert.Equal(t, "KA-01-0003", view.Leaderboard[2].VehicleID)
}

func TestRebuildTiebreakByVehicleID(t *testing.T) {
	conn := setupLeaderboardTestDB(t)
	svc := newTestService(t, conn, nil)
	ctx := context.Background()

	// identical stats, must sort by external id ascending
	second := seedVehicle(t, conn, "KA-02-0002", "B")
	seedRecords(t, conn, second, []int{90, 90, 90}, 0)
	first := seedVehicle(t, conn, "KA-02-0001", "A")
	seedRecords(t, conn, first, []int{90, 90, 90}, 0)

	require.NoError(t, svc.Rebuild(ctx, "test"))

	view, err := svc.View(ctx, 10)
	require.NoError(t, err)
	require.Len(t, view.Leaderboard, 2)
	assert.Equal(t, "KA-02-0001", view.Leaderboard[0].VehicleID)
	assert.Equal(t, "KA-02-0002", view.Leaderboard[1].VehicleID)
}

func TestRebuildIsIdempotent(t *testing.T) {
	conn := setupLeaderboardTestDB(t)
	svc := newTestService(t, conn, nil)
	ctx := context.Background()

	a := seedVehicle(t, conn, "KA-03-0001", "A")
	seedRecords(t, conn, a, []int{100, 90, 80, 70}, 1)
	b := seedVehicle(t, conn, "KA-03-0002", "B")
	seedRecords(t, conn, b, []int{100, 100, 100}, 0)

	require.NoError(t, svc.Rebuild(ctx, "test"))
	before, err := svc.View(ctx, 10)
	require.NoError(t, err)

	require.NoError(t, svc.Rebuild(ctx, "test"))
	after, err := svc.View(ctx, 10)
	require.NoError(t, err)

	require.Equal(t, len(before.Leaderboard), len(after.Leaderboard))
	for i := range before.Leaderboard {
		assert.Equal(t, before.Leaderboard[i].Rank, after.Leaderboard[i].Rank)
		assert.Equal(t, before.Leaderboard[i].VehicleID, after.Leaderboard[i].VehicleID)
	}
}

func TestViewUsesAndInvalidatesCache(t *testing.T) {
	conn := setupLeaderboardTestDB(t)
	cache := newFakeCache()
	svc := newTestService(t, conn, cache)
	ctx := context.Background()

	v := seedVehicle(t, conn, "KA-04-0001", "A")
	seedRecords(t, conn, v, []int{100, 100, 100}, 0)
	require.NoError(t, svc.Rebuild(ctx, "test"))

	_, err := svc.View(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// second read is served from cache, no new write
	_, err = svc.View(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	require.NoError(t, svc.Rebuild(ctx, "test"))
	assert.Empty(t, cache.values, "rebuild must drop cached views")
}

func TestVehicleRankErrors(t *testing.T) {
	conn := setupLeaderboardTestDB(t)
	svc := newTestService(t, conn, nil)
	ctx := context.Background()

	_, err := svc.VehicleRank(ctx, "missing")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	below := seedVehicle(t, conn, "KA-05-0001", "A")
	seedRecords(t, conn, below, []int{100, 100}, 0)

	_, err = svc.VehicleRank(ctx, "KA-05-0001")
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotQualified, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2, details["current_trips"])
	assert.Equal(t, 1, details["entries_needed"])
}

func TestVehicleRankAfterRebuild(t *testing.T) {
	conn := setupLeaderboardTestDB(t)
	svc := newTestService(t, conn, nil)
	ctx := context.Background()

	vid := seedVehicle(t, conn, "KA-06-0001", "A")
	seedRecords(t, conn, vid, []int{100, 90, 80}, 1)
	require.NoError(t, svc.Rebuild(ctx, "test"))

	rank, err := svc.VehicleRank(ctx, "KA-06-0001")
	require.NoError(t, err)
	assert.Equal(t, 1, rank.Rank)
	assert.Equal(t, 3, rank.TotalTrips)
	assert.Equal(t, 1, rank.TotalViolations)
	assert.InDelta(t, 66.67, rank.ComplianceRate, 0.001)
	assert.InDelta(t, 90.0, rank.AverageComplianceScore, 0.001)

	current, err := svc.CurrentRank(ctx, vid)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, 1, *current)

	missing, err := svc.CurrentRank(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
