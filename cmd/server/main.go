package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	_ "elite-rental-funnel/docs"
	"elite-rental-funnel/internal/config"
	"elite-rental-funnel/internal/handlers"
	"elite-rental-funnel/internal/logging"
	"elite-rental-funnel/internal/middleware"
	"elite-rental-funnel/pkg/server"
)

// @title Elite Rental Funnel Functions
// @version 1.0
// @description Serverless functions behind the rental lead funnel page.

// @host localhost:8888
// @BasePath /

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logging.Setup(cfg.Log)

	// Initialize dependencies
	container, err := server.NewContainer(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize container")
	}
	defer container.Close()

	if !cfg.HookEnabled() {
		logrus.Warn("HOOK_URL is not set; lead hook calls will return 204")
	}

	router := newRouter(container)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	logrus.WithFields(logrus.Fields{
		"port":        cfg.Port,
		"environment": cfg.Environment,
		"upstream":    cfg.Listings.UpstreamURL,
	}).Info("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Fatal("Server forced to shutdown")
	}

	logrus.Info("Server exited")
}

func newRouter(container *server.Container) *gin.Engine {
	if container.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(container.Config.CORS.AllowedOrigins))
	router.Use(middleware.StructuredLogger())
	router.Use(middleware.Metrics(container.Metrics))
	router.Use(middleware.ErrorHandler())

	handlers.SetupRoutes(router, &handlers.RouterConfig{
		Proxy:     container.Proxy,
		Forwarder: container.Forwarder,
		Metrics:   container.Metrics,
		Markup:    container.Markup,
		Page:      container.Page,
	})

	return router
}
