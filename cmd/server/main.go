package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"payswiftly/internal/app"
	"payswiftly/internal/config"
	"payswiftly/internal/logger"
)

func main() {
	// Load configuration.
	cfg := config.Load()
	log := logger.New(cfg.Log)

	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic first so the Redis client can be instrumented.
	nrApp := app.NewNewRelicApp(cfg.NewRelic, log)

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(startupCtx, cfg.Redis, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.WithField("addr", cfg.Redis.Addr).Info("connected to Redis")
	} else {
		log.Info("no Redis configured, keeping sessions in memory")
	}

	// Background trackers outlive any single request.
	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// Wire dependencies.
	server, closeFlows := wireServer(rootCtx, cfg, log, redisClient, nrApp)

	// Start server in goroutine.
	go func() {
		log.WithFields(logrus.Fields{
			"port":    cfg.Server.Port,
			"backend": cfg.API.BaseURL,
		}).Info("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	closeFlows()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(ctx context.Context, cfg *config.Config, log *logrus.Logger, redisClient *redis.Client, nrApp *newrelic.Application) (*http.Server, func()) {
	router, closeFlows := app.Wire(ctx, cfg, log, redisClient, nrApp)

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, closeFlows
}
