package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"adx/internal/export"
	"adx/internal/handlers"
	"adx/internal/middleware"
	"adx/internal/repository"
	"adx/internal/sim"
)

func RegisterSimulationRoutes(router chi.Router, manager *sim.Manager, db *sql.DB, exporter *export.S3Exporter, jwtSecret string) {
	reportRepo := repository.NewReportRepository(db)
	simHandler := handlers.NewSimulationHandler(manager, reportRepo, exporter)

	router.Route("/simulations", func(r chi.Router) {
		r.Get("/", simHandler.ListSimulations)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(jwtSecret))
			r.Post("/", simHandler.CreateSimulation)
		})

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", simHandler.GetSimulation)
			r.Get("/days", simHandler.GetDayReports)

			r.Group(func(r chi.Router) {
				r.Use(middleware.JWTAuth(jwtSecret))
				r.Post("/step", simHandler.StepSimulation)
				r.Post("/run", simHandler.RunSimulation)
			})

			r.Route("/campaigns/{cid}", func(r chi.Router) {
				r.Get("/", simHandler.GetCampaign)
				r.Get("/stats", simHandler.GetCampaignStats)

				r.Group(func(r chi.Router) {
					r.Use(middleware.JWTAuth(jwtSecret))
					r.Post("/limits", simHandler.SetCampaignLimit)
				})
			})
		})
	})
}
