package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/workforce-analytics-api/internal/middleware"
	"github.com/workforce-analytics-api/internal/monitoring"
)

// Router настраивает маршруты API
type Router struct {
	mux               *chi.Mux
	logger            *slog.Logger
	metrics           *monitoring.Metrics
	analyticsHandler  *AnalyticsHandler
	predictionHandler *PredictionHandler
}

// NewRouter создаёт новый роутер
func NewRouter(
	analyticsHandler *AnalyticsHandler,
	predictionHandler *PredictionHandler,
	metrics *monitoring.Metrics,
	logger *slog.Logger,
) *Router {
	return &Router{
		mux:               chi.NewRouter(),
		logger:            logger,
		metrics:           metrics,
		analyticsHandler:  analyticsHandler,
		predictionHandler: predictionHandler,
	}
}

// Setup настраивает все маршруты
func (r *Router) Setup() http.Handler {
	r.mux.Use(chimw.RequestID)
	r.mux.Use(middleware.Recoverer(r.logger))
	r.mux.Use(middleware.Logger(r.logger))
	r.mux.Use(middleware.Metrics(r.metrics))

	r.mux.Handle("/metrics", r.metrics.Handler())

	r.mux.Group(func(api chi.Router) {
		api.Use(middleware.ContentType)

		// Health check
		api.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})

		api.Route("/analytics", func(a chi.Router) {
			a.Get("/company", r.analyticsHandler.Company)
			a.Get("/departments/{id}", r.analyticsHandler.Department)
			a.Get("/employees/{id}", r.analyticsHandler.Employee)
			a.Get("/projects/{id}", r.analyticsHandler.Project)
			a.Get("/top-performers", r.analyticsHandler.TopPerformers)
			a.Get("/top-projects", r.analyticsHandler.TopProjects)
		})

		api.Route("/predictions", func(p chi.Router) {
			p.Post("/departments/{id}/train", r.predictionHandler.Train)
			p.Get("/departments/{id}", r.predictionHandler.Predict)
			p.Get("/tasks/{taskID}", r.predictionHandler.Task)
		})
	})

	r.mux.NotFound(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	})
	r.mux.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
	})

	return r.mux
}
