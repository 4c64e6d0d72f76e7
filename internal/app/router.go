package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"payswiftly/internal/config"
	"payswiftly/internal/handler"
	"payswiftly/internal/middleware"
	internalRedis "payswiftly/internal/redis"
	"payswiftly/internal/session"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	AuthHandler      *handler.AuthHandler
	DashboardHandler *handler.DashboardHandler
	PaymentHandler   *handler.PaymentHandler
	SessionStore     session.Store
	SessionConfig    config.SessionConfig
	// SubmitLocks guards payment submissions across instances. Nil disables it.
	SubmitLocks internalRedis.LockStoreInterface
	Logger      *logrus.Logger
	NewRelicApp *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.SetHTMLTemplate(handler.MustTemplates())

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.Metrics())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
		router.Use(middleware.NewRelicAttributes())
	}

	// Ops.
	router.GET("/health", handler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Browser pages.
	pages := router.Group("/")
	pages.Use(middleware.Sessions(deps.SessionStore, deps.SessionConfig))
	{
		pages.GET("/", handler.Landing)

		// Driver account.
		pages.GET("/auth/login", deps.AuthHandler.ShowLogin)
		pages.POST("/auth/login", deps.AuthHandler.Login)
		pages.GET("/auth/register", deps.AuthHandler.ShowRegister)
		pages.POST("/auth/register", deps.AuthHandler.Register)
		pages.POST("/logout", deps.AuthHandler.Logout)

		// Driver lookup.
		pages.GET("/login", deps.AuthHandler.ShowLookup)
		pages.POST("/login", deps.AuthHandler.Lookup)

		// Dashboard.
		pages.GET("/dashboard/:driver_id", deps.DashboardHandler.Show)
		pages.GET("/ws/dashboard/:driver_id", deps.DashboardHandler.Live)

		// Passenger payment.
		pay := pages.Group("/pay/:driver_id")
		{
			pay.GET("", deps.PaymentHandler.ShowForm)
			pay.POST("", middleware.SubmitGuard(deps.SubmitLocks, deps.PaymentHandler.RejectDuplicate), deps.PaymentHandler.Submit)
			pay.GET("/flows/:flow_id", deps.PaymentHandler.ShowFlow)
			pay.POST("/flows/:flow_id/reset", deps.PaymentHandler.Reset)
		}
		pages.GET("/ws/flows/:flow_id", deps.PaymentHandler.Live)
	}

	return router
}
