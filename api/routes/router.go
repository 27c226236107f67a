package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/drivewise/drivewise-backend/api/controllers"
	"github.com/drivewise/drivewise-backend/api/middleware"
	"github.com/drivewise/drivewise-backend/internal/chain"
	"github.com/drivewise/drivewise-backend/internal/events"
	"github.com/drivewise/drivewise-backend/internal/leaderboard"
	"github.com/drivewise/drivewise-backend/internal/tokens"
	"github.com/drivewise/drivewise-backend/internal/vehicles"
	"github.com/drivewise/drivewise-backend/pkg/config"
	"github.com/drivewise/drivewise-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	cacheP controllers.Pinger,
	eventsService events.Service,
	leaderboardService leaderboard.Service,
	vehiclesService vehicles.Service,
	tokensService tokens.Service,
	chainService chain.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cacheP))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sensor-data", controllers.ProcessSensorData(eventsService, logg))

		r.Route("/leaderboard", func(r chi.Router) {
			r.Get("/", controllers.GetLeaderboard(leaderboardService, logg))
			r.Get("/vehicles/{vehicleId}", controllers.GetVehicleRank(leaderboardService, logg))
		})

		r.Route("/vehicles/{vehicleId}", func(r chi.Router) {
			r.Get("/compliance", controllers.GetComplianceHistory(vehiclesService, logg))
			r.Get("/dashboard", controllers.GetVehicleDashboard(vehiclesService, logg))
			r.Get("/tokens", controllers.GetTokenLedger(tokensService, logg))
			r.Post("/tokens/spend", controllers.SpendTokens(tokensService, logg))
		})

		r.Route("/chain", func(r chi.Router) {
			r.Post("/sync", controllers.SyncChain(chainService, logg))
			r.Post("/leaderboard", controllers.SyncChainLeaderboard(chainService, logg))
		})
	})

	return r
}
