package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"adx/internal/config"
	"adx/internal/db"
	"adx/internal/db/migrations"
	"adx/internal/export"
	"adx/internal/routes"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load(ctx)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	// Create database if it doesn't exist
	if err := db.CreateDatabaseIfNotExists(cfg.Database.DatabaseURL()); err != nil {
		logrus.Fatalf("Failed to ensure database exists: %v", err)
	}

	// Initialize database
	database, err := db.New(cfg.Database.DatabaseURL())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run database migrations
	if err := migrations.RunMigrations(database.DB); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Optional report export to S3
	var exporter *export.S3Exporter
	if cfg.S3.Enabled {
		s3cfg, err := config.NewS3Config(ctx, cfg.S3)
		if err != nil {
			logrus.Fatalf("Failed to configure S3: %v", err)
		}
		exporter = export.NewS3Exporter(s3cfg)
	}

	// Create router and setup routes
	router, err := routes.SetupRoutes(database.DB, cfg, exporter)
	if err != nil {
		logrus.Fatalf("Failed to set up routes: %v", err)
	}

	// Create server
	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		logrus.Infof("Server starting on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Give server 5 seconds to finish current requests
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exiting")
}
