package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"coach-server/internal/http/handlers"
	"coach-server/internal/infra"
	"coach-server/internal/middleware"
	"coach-server/internal/telemetry"
)

func NewRouter(app *handlers.App, cfg *infra.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.I18N(cfg.DefaultLocale),
		middleware.RateLimit(cfg.RateLimitPerMin, time.Minute),
	)

	// Public surface
	r.Get("/v1/healthz", app.Health)
	r.Method(http.MethodGet, "/metrics", telemetry.Handler())

	// Authenticated surface
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(cfg.JWTSecret))

		r.Route("/v1/programs", func(r chi.Router) {
			r.Post("/", app.ProgramsSubmit)
			r.Get("/{id}", app.ProgramStatus)
		})

		r.Post("/v1/recommendations", app.RecommendationsGet)

		r.Route("/v1/profile", func(r chi.Router) {
			r.Put("/", app.ProfilePut)
			r.Get("/", app.ProfileGet)
		})

		r.Route("/v1/workouts", func(r chi.Router) {
			r.Post("/", app.WorkoutsCreate)
			r.Get("/", app.WorkoutsList)
		})
	})

	return r
}
