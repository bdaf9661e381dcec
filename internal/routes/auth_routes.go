package routes

import (
	"github.com/go-chi/chi/v5"

	"adx/internal/config"
	"adx/internal/handlers"
)

func RegisterAuthRoutes(router chi.Router, cfg *config.Config) error {
	authHandler, err := handlers.NewAuthHandler(cfg.Auth)
	if err != nil {
		return err
	}

	router.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
	})
	return nil
}
