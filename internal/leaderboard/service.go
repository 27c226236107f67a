package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/drivewise/drivewise-backend/internal/vehicles"
	"github.com/drivewise/drivewise-backend/pkg/db/models"
	pkgerrors "github.com/drivewise/drivewise-backend/pkg/errors"
	"github.com/drivewise/drivewise-backend/pkg/logger"
	"github.com/drivewise/drivewise-backend/pkg/metrics"
)

const maxViewLimit = 100

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// viewCache is the slice of the redis client the leaderboard uses.
type viewCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	LeaderboardCacheKey(limit int) string
}

// ServiceParams groups dependencies for the leaderboard service.
type ServiceParams struct {
	Repo        *Repository
	VehicleRepo *vehicles.Repository
	Tx          txRunner
	Cache       viewCache
	Metrics     *metrics.RankerMetrics
	Logger      *logger.Logger
	MinTrips    int
	ViewLimit   int
	CacheTTL    time.Duration
}

// Service maintains and serves the ranked leaderboard.
type Service interface {
	Rebuild(ctx context.Context, trigger string) error
	View(ctx context.Context, limit int) (ViewDTO, error)
	VehicleRank(ctx context.Context, vehicleID string) (RankDTO, error)
	CurrentRank(ctx context.Context, vehicleUUID uuid.UUID) (*int, error)
}

type service struct {
	repo      *Repository
	vehicles  *vehicles.Repository
	tx        txRunner
	cache     viewCache
	metrics   *metrics.RankerMetrics
	logg      *logger.Logger
	minTrips  int
	viewLimit int
	cacheTTL  time.Duration

	rebuildMu sync.Mutex

	cacheMu    sync.Mutex
	cachedKeys map[string]struct{}
}

// NewService builds a leaderboard service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "leaderboard repo is required")
	}
	if params.VehicleRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	if params.MinTrips <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min trips must be positive")
	}
	if params.ViewLimit <= 0 {
		params.ViewLimit = 10
	}
	if params.CacheTTL <= 0 {
		params.CacheTTL = 30 * time.Second
	}
	return &service{
		repo:       params.Repo,
		vehicles:   params.VehicleRepo,
		tx:         params.Tx,
		cache:      params.Cache,
		metrics:    params.Metrics,
		logg:       params.Logger,
		minTrips:   params.MinTrips,
		viewLimit:  params.ViewLimit,
		cacheTTL:   params.CacheTTL,
		cachedKeys: map[string]struct{}{},
	}, nil
}

// Rebuild recomputes every qualifying vehicle's snapshot and reassigns
// dense ranks. The whole pass runs in one transaction and invocations
// are serialized, so repeated runs over unchanged data are idempotent.
func (s *service) Rebuild(ctx context.Context, trigger string) error {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	start := time.Now()
	ranked := 0

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		stats, err := repo.QualifyingStats(ctx, s.minTrips)
		if err != nil {
			return err
		}

		type scored struct {
			stats VehicleStats
			agg   vehicles.Aggregate
		}
		rows := make([]scored, 0, len(stats))
		for _, st := range stats {
			rows = append(rows, scored{stats: st, agg: st.aggregate(s.minTrips)})
		}

		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i], rows[j]
			if a.stats.TotalTrips != b.stats.TotalTrips {
				return a.stats.TotalTrips > b.stats.TotalTrips
			}
			if a.stats.TotalViolations != b.stats.TotalViolations {
				return a.stats.TotalViolations < b.stats.TotalViolations
			}
			if cmp := a.agg.ComplianceRate.Cmp(b.agg.ComplianceRate); cmp != 0 {
				return cmp > 0
			}
			return a.stats.VehicleID < b.stats.VehicleID
		})

		for i, row := range rows {
			entry := models.LeaderboardEntry{
				VehicleID:              row.stats.VehicleUUID,
				Rank:                   i + 1,
				TotalTrips:             row.stats.TotalTrips,
				TotalViolations:        row.stats.TotalViolations,
				ComplianceRate:         row.agg.ComplianceRate,
				AverageComplianceScore: row.agg.AverageComplianceScore,
				TotalTokensEarned:      row.stats.TokensEarned,
			}
			if err := repo.UpsertEntry(ctx, &entry); err != nil {
				return err
			}
		}

		ranked = len(rows)
		return nil
	})

	duration := time.Since(start)
	s.metrics.ObserveDuration(trigger, duration)
	if err != nil {
		s.metrics.IncFailure(trigger)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rebuild leaderboard")
	}

	s.metrics.IncSuccess(trigger)
	s.metrics.SetRankedVehicles(ranked)
	s.invalidateCache(ctx)

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"trigger":         trigger,
			"ranked_vehicles": ranked,
			"duration_ms":     duration.Milliseconds(),
		}), "leaderboard rebuilt")
	}
	return nil
}

// View returns the top ranked vehicles plus the qualification count and
// the fixed ranking criteria, served from cache when fresh.
func (s *service) View(ctx context.Context, limit int) (ViewDTO, error) {
	if limit <= 0 {
		limit = s.viewLimit
	}
	if limit > maxViewLimit {
		limit = maxViewLimit
	}

	if view, ok := s.cachedView(ctx, limit); ok {
		return view, nil
	}

	rows, err := s.repo.ListRanked(ctx, limit)
	if err != nil {
		return ViewDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list leaderboard")
	}
	total, err := s.repo.CountEntries(ctx)
	if err != nil {
		return ViewDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count leaderboard entries")
	}

	view := ViewDTO{
		Leaderboard:            make([]EntryDTO, 0, len(rows)),
		TotalQualifiedVehicles: int(total),
		MinimumEntriesRequired: s.minTrips,
		RankingCriteria:        RankingCriteria,
	}
	for _, row := range rows {
		view.Leaderboard = append(view.Leaderboard, EntryDTO{
			Rank:                   row.Rank,
			VehicleID:              row.ExternalVehicleID,
			VehicleType:            row.VehicleType.Display(),
			OwnerName:              row.OwnerName,
			TotalTrips:             row.TotalTrips,
			TotalViolations:        row.TotalViolations,
			ComplianceRate:         row.ComplianceRate.InexactFloat64(),
			AverageComplianceScore: row.AverageComplianceScore.InexactFloat64(),
			TotalTokensEarned:      row.TotalTokensEarned,
			LastUpdated:            row.LastUpdated,
		})
	}

	s.storeView(ctx, limit, view)
	return view, nil
}

// VehicleRank returns one vehicle's ranked snapshot.
func (s *service) VehicleRank(ctx context.Context, vehicleID string) (RankDTO, error) {
	if vehicleID == "" {
		return RankDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id is required")
	}

	vehicle, err := s.vehicles.FindByVehicleID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RankDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "vehicle not found")
		}
		return RankDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}

	entry, err := s.repo.EntryByVehicle(ctx, vehicle.ID)
	if err == nil {
		return RankDTO{
			VehicleID:              vehicle.VehicleID,
			Rank:                   entry.Rank,
			TotalTrips:             entry.TotalTrips,
			TotalViolations:        entry.TotalViolations,
			ComplianceRate:         entry.ComplianceRate.InexactFloat64(),
			AverageComplianceScore: entry.AverageComplianceScore.InexactFloat64(),
			TotalTokensEarned:      entry.TotalTokensEarned,
			LastUpdated:            entry.LastUpdated,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return RankDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load leaderboard entry")
	}

	stats, err := s.vehicles.RecordStats(ctx, vehicle.ID)
	if err != nil {
		return RankDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate compliance records")
	}
	if stats.TotalTrips < s.minTrips {
		return RankDTO{}, pkgerrors.New(pkgerrors.CodeNotQualified, "vehicle not qualified for leaderboard").
			WithDetails(map[string]any{
				"current_trips":  stats.TotalTrips,
				"required_trips": s.minTrips,
				"entries_needed": s.minTrips - stats.TotalTrips,
			})
	}
	return RankDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not ranked yet")
}

// CurrentRank returns the vehicle's rank, or nil when it has none.
func (s *service) CurrentRank(ctx context.Context, vehicleUUID uuid.UUID) (*int, error) {
	entry, err := s.repo.EntryByVehicle(ctx, vehicleUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	rank := entry.Rank
	return &rank, nil
}

func (s *service) cachedView(ctx context.Context, limit int) (ViewDTO, bool) {
	if s.cache == nil {
		return ViewDTO{}, false
	}
	raw, err := s.cache.Get(ctx, s.cache.LeaderboardCacheKey(limit))
	if err != nil {
		return ViewDTO{}, false
	}
	var view ViewDTO
	if err := json.Unmarshal([]byte(raw), &view); err != nil {
		return ViewDTO{}, false
	}
	return view, true
}

func (s *service) storeView(ctx context.Context, limit int, view ViewDTO) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(view)
	if err != nil {
		return
	}
	key := s.cache.LeaderboardCacheKey(limit)
	if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "caching leaderboard view failed: "+err.Error())
		}
		return
	}
	s.cacheMu.Lock()
	s.cachedKeys[key] = struct{}{}
	s.cacheMu.Unlock()
}

func (s *service) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cacheMu.Lock()
	keys := make([]string, 0, len(s.cachedKeys))
	for key := range s.cachedKeys {
		keys = append(keys, key)
	}
	s.cachedKeys = map[string]struct{}{}
	s.cacheMu.Unlock()

	if len(keys) == 0 {
		return
	}
	if err := s.cache.Del(ctx, keys...); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "invalidating leaderboard cache failed: "+err.Error())
	}
}

func (row VehicleStats) aggregate(minTrips int) vehicles.Aggregate {
	return vehicles.ComputeAggregate(vehicles.RecordStats{
		TotalTrips:      row.TotalTrips,
		TotalViolations: row.TotalViolations,
		ScoreSum:        row.ScoreSum,
	}, minTrips)
}
