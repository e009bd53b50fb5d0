package handlers

import (
	"CaseKeeper/internal/config"
	"CaseKeeper/internal/middleware"
	"CaseKeeper/internal/model"
	"CaseKeeper/internal/risk"
	"CaseKeeper/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров. riskFacade может быть nil: тогда прогнозы отвечают 503.
func NewHandler(
	userService *service.UserService,
	recordService *service.RecordService,
	statsService *service.StatsService,
	riskFacade *risk.Facade,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithMetrics)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	v := newValidator()
	userHandler := NewUserHandler(userService, logger, config, v)
	recordHandler := NewRecordHandler(recordService, logger, config, v)
	statsHandler := &StatsHandler{StatsService: statsService, Logger: logger}
	riskHandler := &RiskHandler{Facade: riskFacade, Logger: logger}

	adminOnly := middleware.RequireRole(model.RoleAdmin)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"riskReady": riskFacade != nil,
		})
	})
	// сжатие делает WithGzip
	r.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{DisableCompression: true}))

	// Auth routes
	r.Post("/api/auth/login", userHandler.Login)
	r.Post("/api/auth/logout", userHandler.Logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireActiveUser(userService))

		r.Get("/api/auth/me", userHandler.Me)

		// User routes
		r.Route("/api/users", func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/", userHandler.List)
			r.Post("/", userHandler.Create)
			r.Get("/{id}", userHandler.Get)
			r.Put("/{id}", userHandler.Update)
			r.Delete("/{id}", userHandler.Delete)
		})

		// Record routes: operator создаёт и читает, admin ещё меняет и удаляет
		r.Route("/api/criminals", func(r chi.Router) {
			r.Get("/", recordHandler.ListCriminals)
			r.Post("/", recordHandler.CreateCriminal)
			r.Get("/{id}", recordHandler.GetCriminal)
			r.With(adminOnly).Put("/{id}", recordHandler.UpdateCriminal)
			r.With(adminOnly).Delete("/{id}", recordHandler.DeleteCriminal)
		})
		r.Route("/api/firs", func(r chi.Router) {
			r.Get("/", recordHandler.ListFirs)
			r.Post("/", recordHandler.CreateFir)
			r.Get("/{id}", recordHandler.GetFir)
			r.With(adminOnly).Put("/{id}", recordHandler.UpdateFir)
			r.With(adminOnly).Delete("/{id}", recordHandler.DeleteFir)
		})

		r.Get("/api/stats", statsHandler.Statistics)

		// Prediction routes
		r.Route("/api/predictions", func(r chi.Router) {
			r.Get("/", riskHandler.All)
			r.Get("/top", riskHandler.Top)
			r.Get("/city/{name}", riskHandler.City)
			r.Get("/distribution", riskHandler.Distribution)
			r.Get("/statistics", riskHandler.Statistics)
		})
	})

	return &Handler{Router: r}
}
