package controllers

import (
	"net/http"

	"github.com/drivewise/drivewise-backend/api/responses"
	"github.com/drivewise/drivewise-backend/api/validators"
	"github.com/drivewise/drivewise-backend/internal/events"
	pkgerrors "github.com/drivewise/drivewise-backend/pkg/errors"
	"github.com/drivewise/drivewise-backend/pkg/logger"
)

// ProcessSensorData ingests one roadside observation and returns the
// scored compliance result.
func ProcessSensorData(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "event service unavailable"))
			return
		}

		var payload events.SensorEventInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.ProcessSensorEvent(ctx, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
