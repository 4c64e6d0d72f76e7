package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"payswiftly/internal/apiclient"
	"payswiftly/internal/config"
	"payswiftly/internal/handler"
	internalRedis "payswiftly/internal/redis"
	"payswiftly/internal/schedule"
	"payswiftly/internal/service"
	"payswiftly/internal/session"
)

// Wire builds the router and its services. Background work (status
// trackers, the idle-flow reaper) lives under ctx; the returned func stops it.
func Wire(ctx context.Context, cfg *config.Config, logger *logrus.Logger, redisClient *redis.Client, nrApp *newrelic.Application) (*gin.Engine, func()) {
	// Session and submit-lock stores.
	var sessions session.Store
	var locks internalRedis.LockStoreInterface
	var sweeper *schedule.Task
	if redisClient != nil {
		sessions = internalRedis.NewSessionStore(redisClient)
		locks = internalRedis.NewSubmitLock(redisClient)
	} else {
		memory := session.NewMemoryStore()
		sessions = memory
		// Expired tokens of sessions that never come back are swept on the idle-flow cadence.
		if cfg.Polling.FlowIdleTimeout > 0 {
			sweeper = schedule.Every(ctx, cfg.Polling.FlowIdleTimeout/2, func(context.Context) bool {
				if n := memory.Sweep(); n > 0 {
					logger.WithField("count", n).Debug("swept expired sessions")
				}
				return true
			})
		}
	}

	// Backend client.
	client := apiclient.New(cfg.API.BaseURL,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithLogger(logger),
		apiclient.WithNewRelic(nrApp),
	)

	// Initialize services.
	authService := service.NewAuthService(client, client, logger)
	paymentService := service.NewPaymentService(client, logger)
	poller := service.NewStatusPoller(client, cfg.Polling.StatusInterval, logger)
	flows := service.NewFlowRegistry(ctx, paymentService, poller, cfg.Polling.FlowIdleTimeout, logger)
	dashboards := service.NewDashboardLoader(service.SessionDriverAPI(client), logger)

	// Initialize handlers.
	authHandler := handler.NewAuthHandler(authService)
	dashboardHandler := handler.NewDashboardHandler(dashboards, cfg.Polling.DashboardRefresh, logger)
	paymentHandler := handler.NewPaymentHandler(flows, client, cfg.Polling.StatusInterval, logger)

	router := NewRouter(RouterDeps{
		AuthHandler:      authHandler,
		DashboardHandler: dashboardHandler,
		PaymentHandler:   paymentHandler,
		SessionStore:     sessions,
		SessionConfig:    cfg.Session,
		SubmitLocks:      locks,
		Logger:           logger,
		NewRelicApp:      nrApp,
	})

	return router, func() {
		flows.Close()
		if sweeper != nil {
			sweeper.Cancel()
		}
	}
}
