package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whale_analyzer/internal/app/bootstrap"
	"whale_analyzer/internal/infrastructure/configloader"
	"whale_analyzer/internal/infrastructure/restapi"
	"whale_analyzer/internal/pkg/logger"
	"whale_analyzer/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = configloader.DefaultPath
	}
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger := logger.Init(logger.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	defer func() { _ = zapLogger.Sync() }()
	appLogger := logger.NewSlogAdapter()

	metrics.MustRegister()

	core := bootstrap.Build(cfg, zapLogger, appLogger)

	// Warm the chain metadata cache; failures fall back to the static table.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := core.ChainMeta.Refresh(ctx); err != nil {
			zapLogger.Warn("Initial chain metadata refresh failed", zap.Error(err))
		}
	}()

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := restapi.SetupRouter(
		restapi.NewWalletHandler(core.Analysis, core.ChainMeta, appLogger),
		restapi.NewDefiHandler(core.Defi, core.Summary),
		restapi.NewProviderHandler(core.Registry),
		zapLogger,
		restapi.RouterOptions{AllowOrigins: cfg.Server.CORSAllowOrigins, ExposeMetrics: true},
	)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		zapLogger.Info("Server starting", zap.String("addr", cfg.Server.Port), zap.Uint64s("chains", cfg.Analysis.Chains))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting")
}
