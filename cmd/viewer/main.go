package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"currency-viewer/internal/adapter/store"
	"currency-viewer/internal/client"
	"currency-viewer/internal/config"
	"currency-viewer/internal/domain/model"
	"currency-viewer/internal/domain/ports"
	"currency-viewer/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	code := flag.String("code", "", "currency code to look up against USD")
	start := flag.String("start", "", "start date (YYYY-MM-DD) for a historical lookup")
	end := flag.String("end", "", "end date (YYYY-MM-DD) for a historical lookup")
	last := flag.Bool("last", false, "show the most recent result without a new lookup")
	proxyURL := flag.String("proxy", cfg.Viewer.ProxyURL, "base URL of the currency proxy")
	flag.Parse()

	log := logger.NewLoggerWithWriter(os.Stderr, cfg.LogLevel)

	kv, closeStore, err := openStore(cfg)
	if err != nil {
		log.Error("Failed to open store", "store", cfg.Viewer.Store, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orchestrator := client.NewOrchestrator(
		client.NewProxyClient(*proxyURL, cfg.Viewer.Timeout),
		kv,
		log,
		client.WithErrorTimeout(0),
	)

	switch {
	case *last:
		orchestrator.Restore(ctx)
	case *start != "" || *end != "":
		orchestrator.SearchHistorical(ctx, model.NewCurrencyQuery(*code, *start, *end))
	default:
		orchestrator.SearchLatest(ctx, *code)
	}

	state := orchestrator.State()
	if err := client.Render(os.Stdout, state); err != nil {
		log.Error("Failed to render result", "error", err)
		os.Exit(1)
	}
	if state.Error != "" {
		os.Exit(1)
	}
	if state.Result == nil {
		fmt.Println("No data to display.")
	}
}

func openStore(cfg *config.Config) (ports.KeyValueStore, func(), error) {
	if cfg.Viewer.Store == "redis" {
		s, err := store.NewRedisStore(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}

	s, err := store.NewFileStore(cfg.Viewer.StorePath)
	if err != nil {
		return nil, nil, err
	}
	return s, func() {}, nil
}
