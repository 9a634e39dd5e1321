// Package main is the entry point for the Varuna compliance balance service.
// It tracks greenhouse-gas compliance balances for a fleet of ships, supports
// banking surplus into later years, pools ships to offset deficits, and
// exposes the whole thing over a REST API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/varuna/varuna/internal/config"
	"github.com/varuna/varuna/internal/di"
	"github.com/varuna/varuna/internal/server"
	"github.com/varuna/varuna/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting Varuna")

	container, err := di.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
		Port:      cfg.Port,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("Server started")

	if cfg.SchedulerEnabled {
		container.Scheduler.Start()
		log.Info().Strs("jobs", container.Scheduler.JobNames()).Msg("Scheduler started")
	} else {
		log.Warn().Msg("Scheduler disabled, background jobs only run via manual trigger")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	if cfg.SchedulerEnabled {
		container.Scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
