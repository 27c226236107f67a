package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/drivewise/drivewise-backend/api/responses"
	"github.com/drivewise/drivewise-backend/api/validators"
	"github.com/drivewise/drivewise-backend/internal/leaderboard"
	pkgerrors "github.com/drivewise/drivewise-backend/pkg/errors"
	"github.com/drivewise/drivewise-backend/pkg/logger"
)

const (
	defaultLeaderboardLimit = 20
	maxLeaderboardLimit     = 100
)

// GetLeaderboard returns the current ranked standings.
func GetLeaderboard(svc leaderboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "leaderboard service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultLeaderboardLimit, 1, maxLeaderboardLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		view, err := svc.View(ctx, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// GetVehicleRank returns a single vehicle's standing, or a
// qualification hint when it has not ranked yet.
func GetVehicleRank(svc leaderboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "leaderboard service unavailable"))
			return
		}

		vehicleID := validators.SanitizeString(chi.URLParam(r, "vehicleId"), 64)
		if vehicleID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "vehicleId is required"))
			return
		}

		rank, err := svc.VehicleRank(ctx, vehicleID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, rank)
	}
}
