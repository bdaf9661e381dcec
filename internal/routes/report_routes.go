package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"adx/internal/handlers"
	"adx/internal/repository"
)

func RegisterReportRoutes(router chi.Router, db *sql.DB) {
	reportRepo := repository.NewReportRepository(db)
	reportHandler := handlers.NewReportHandler(reportRepo)

	router.Route("/reports", func(r chi.Router) {
		r.Get("/", reportHandler.ListReports)
		r.Get("/{runID}", reportHandler.GetReport)
	})
}
