package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	appmarketdata "stocklens/internal/application/service/marketdata"
	"stocklens/internal/config"
	marketdata "stocklens/internal/domain/entity/marketdata"
	"stocklens/internal/infrastructure/cache"
	"stocklens/internal/infrastructure/yahoo"
	infrahttp "stocklens/internal/interfaces/http"
	"stocklens/internal/metrics"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	upstream := yahoo.NewClient(yahoo.Config{
		ProxyURL:          cfg.Upstream.ProxyURL,
		Timeout:           time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
		RequestsPerSecond: cfg.Upstream.RequestsPerSecond,
	})

	cacheTTL := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	historyCache := cache.New[marketdata.Series](cacheTTL)
	quoteCache := cache.New[marketdata.Quote](cacheTTL)

	service := appmarketdata.NewService(upstream, upstream, historyCache, quoteCache, logger, m)
	handler := infrahttp.NewHandler(service, logger, cfg.CORS.AllowedOrigins, registry)

	server := &http.Server{
		Addr:    cfg.HTTP.Addr(),
		Handler: handler,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"addr":              cfg.HTTP.Addr(),
			"cache_ttl_seconds": cfg.Cache.TTLSeconds,
		}).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown error: %v", err)
	}
	logger.Info("server stopped")
}
