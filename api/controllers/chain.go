package controllers

import (
	"net/http"

	"github.com/drivewise/drivewise-backend/api/responses"
	"github.com/drivewise/drivewise-backend/internal/chain"
	pkgerrors "github.com/drivewise/drivewise-backend/pkg/errors"
	"github.com/drivewise/drivewise-backend/pkg/logger"
)

// SyncChain pushes all registered vehicles to the chain backend.
func SyncChain(svc chain.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chain service unavailable"))
			return
		}

		report, err := svc.SyncAll(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

// SyncChainLeaderboard pushes the current standings to the chain backend.
func SyncChainLeaderboard(svc chain.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chain service unavailable"))
			return
		}

		report, err := svc.SyncLeaderboard(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}
