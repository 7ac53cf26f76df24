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

	"food_routing_admin/internal/config"
	"food_routing_admin/internal/console"
	"food_routing_admin/internal/controllers"
	"food_routing_admin/internal/gateway"
	"food_routing_admin/internal/logger"
	"food_routing_admin/internal/middleware"
	"food_routing_admin/internal/routes"
	"food_routing_admin/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	// Initialize structured logging to file
	accessOut, err := logger.Setup(logger.Options{File: cfg.LogFile, Level: cfg.LogLevel, Stdout: cfg.LogStdout})
	if err != nil {
		logrus.WithError(err).Fatal("logger setup failed")
	}
	gin.SetMode(cfg.GinMode)

	gw := gateway.NewClient(gateway.Options{
		BaseURL:   cfg.BackendURL,
		Timeout:   cfg.GatewayTimeout,
		PageSize:  cfg.GatewayPageSize,
		RateLimit: cfg.GatewayRateLimit,
		Burst:     cfg.GatewayBurst,
	})
	cons := console.New(gw, store.New(), console.Options{RefetchAfterWrite: cfg.RefetchAfterWrite})

	// The console starts even when the back end is down; /api/refresh retries.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.GatewayTimeout)
	if err := cons.Refresh(loadCtx); err != nil {
		logrus.WithError(err).WithField("backend", cfg.BackendURL).Warn("initial load failed")
	}
	cancelLoad()

	hub := controllers.NewRenderHub()
	hub.Start()
	removeHub := cons.AddRenderer(hub)
	controllers.Bind(cons, hub)

	middleware.SetAllowedOrigins(cfg.CORSOrigins)
	r := routes.SetupRouter(logger.AccessLog(accessOut))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           middleware.EnableCORS(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("addr", cfg.HTTPAddr).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("web server")
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logrus.Info("shutting down")
	removeHub()
	hub.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("shutdown")
	}
	logrus.Info("stopped")
}
