package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardvault/backend/internal/api"
	"github.com/cardvault/backend/internal/config"
	"github.com/cardvault/backend/internal/database"
	"github.com/cardvault/backend/internal/logger"
	"github.com/cardvault/backend/internal/services"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Env)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize database")
	}

	catalog := services.NewPokemonTCGClient(cfg.PokemonAPIBaseURL, cfg.PokemonAPIKey)

	router := api.SetupRouter(cfg, db, catalog)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}
