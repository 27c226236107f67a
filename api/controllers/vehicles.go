package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/drivewise/drivewise-backend/api/responses"
	"github.com/drivewise/drivewise-backend/api/validators"
	"github.com/drivewise/drivewise-backend/internal/tokens"
	"github.com/drivewise/drivewise-backend/internal/vehicles"
	pkgerrors "github.com/drivewise/drivewise-backend/pkg/errors"
	"github.com/drivewise/drivewise-backend/pkg/logger"
)

func vehicleIDParam(r *http.Request) (string, error) {
	id := validators.SanitizeString(chi.URLParam(r, "vehicleId"), 64)
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "vehicleId is required")
	}
	return id, nil
}

// GetComplianceHistory returns a vehicle's recent compliance records.
func GetComplianceHistory(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		vehicleID, err := vehicleIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		history, err := svc.ComplianceHistory(ctx, vehicleID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, history)
	}
}

// GetVehicleDashboard returns the combined stats view for one vehicle.
func GetVehicleDashboard(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		vehicleID, err := vehicleIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dashboard, err := svc.Dashboard(ctx, vehicleID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, dashboard)
	}
}

// GetTokenLedger returns a vehicle's earned/spent token balances.
func GetTokenLedger(svc tokens.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "token service unavailable"))
			return
		}

		vehicleID, err := vehicleIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ledger, err := svc.Ledger(ctx, vehicleID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, ledger)
	}
}

// SpendTokens redeems tokens from a vehicle's balance.
func SpendTokens(svc tokens.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "token service unavailable"))
			return
		}

		vehicleID, err := vehicleIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload tokens.SpendInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Spend(ctx, vehicleID, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
