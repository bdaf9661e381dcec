package routes

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"adx/internal/config"
	"adx/internal/export"
	"adx/internal/metrics"
	"adx/internal/sim"
)

func SetupRoutes(db *sql.DB, cfg *config.Config, exporter *export.S3Exporter) (*chi.Mux, error) {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			metrics.HTTPInFlight.Inc()
			defer metrics.HTTPInFlight.Dec()
			next.ServeHTTP(w, r)
		})
	})
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "adx simulation service"})
	})

	r.Get("/health", healthHandler(db))
	r.Handle("/metrics", promhttp.Handler())
	RegisterSwaggerRoutes(r)

	manager := sim.NewManager()

	// API v1 routes
	var authErr error
	r.Route("/api/v1", func(api chi.Router) {
		authErr = RegisterAuthRoutes(api, cfg)
		RegisterSimulationRoutes(api, manager, db, exporter, cfg.Auth.JWTSecret)
		RegisterReportRoutes(api, db)
	})
	if authErr != nil {
		return nil, authErr
	}

	return r, nil
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	type dbStatus struct {
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		resp := struct {
			Status string   `json:"status"`
			DB     dbStatus `json:"db"`
		}{Status: "ok", DB: dbStatus{Status: "ok"}}

		code := http.StatusOK
		if err := db.PingContext(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.DB.Status = "down"
			resp.DB.Error = err.Error()
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
