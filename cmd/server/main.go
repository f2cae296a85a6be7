package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"currency-viewer/internal/adapter/cache"
	httpRouter "currency-viewer/internal/adapter/http"
	"currency-viewer/internal/adapter/repository"
	"currency-viewer/internal/config"
	"currency-viewer/internal/metrics"
	"currency-viewer/internal/service"
	"currency-viewer/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Starting currency proxy")

	if err := cfg.AlphaVantage.Validate(); err != nil {
		log.Error("Invalid Alpha Vantage configuration", "error", err)
		os.Exit(1)
	}

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)
	resultCache := cache.NewMemoryCache(cfg.Cache.Capacity, cfg.Cache.TTL, log, appMetrics)

	provider := repository.NewAlphaVantage(
		cfg.AlphaVantage.BaseURL,
		cfg.AlphaVantage.APIKey,
		cfg.AlphaVantage.OutputSize,
		cfg.AlphaVantage.Timeout,
		log,
		appMetrics,
	)

	currencyService := service.NewCurrencyService(provider, resultCache, log)
	handler := httpRouter.NewHandler(currencyService, log, appMetrics)

	router := httpRouter.NewRouter(handler, log, appMetrics, prometheus.DefaultGatherer)
	routes := router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      routes,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port, "cache_capacity", cfg.Cache.Capacity, "cache_ttl", cfg.Cache.TTL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	resultCache.Purge()
	log.Info("Server exited")
}
