package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/navisouza/delivery-api/internal/config"
	"github.com/navisouza/delivery-api/internal/dashboard"
	"github.com/navisouza/delivery-api/internal/syncclient"
	"github.com/navisouza/delivery-api/pkg/httpclient"
	"github.com/navisouza/delivery-api/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dashboard: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadDashboard()
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	log := logger.NewWithWriter("dashboard", cfg.LogLevel, logFile)
	log.Info("starting dashboard",
		slog.String("api_url", cfg.APIURL),
		slog.String("store_id", cfg.StoreID),
	)

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.RequestTimeout
	httpCfg.MaxRetries = cfg.MaxRetries
	httpCfg.UserAgent = "delivery-dashboard"

	cbCfg := httpclient.DefaultCircuitBreakerConfig("order-service")
	cbCfg.MaxRequests = cfg.CBMaxRequests
	cbCfg.Interval = cfg.CBInterval
	cbCfg.Timeout = cfg.CBTimeout
	cbCfg.FailureRatio = cfg.CBFailureRatio
	cbCfg.MinRequests = cfg.CBMinRequests

	client := httpclient.NewCircuitBreakerClient(httpclient.New(httpCfg), cbCfg, log)
	store := syncclient.New(syncclient.NewHTTPAPI(client, cfg.APIURL), log)
	store.SetRefreshTimeout(cfg.RequestTimeout)

	model := dashboard.New(store, dashboard.Options{
		StoreID:         cfg.StoreID,
		StoreName:       cfg.StoreName,
		RefreshInterval: cfg.RefreshInterval,
		RequestTimeout:  cfg.RequestTimeout,
	}, log)

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}

	log.Info("dashboard stopped")
	return nil
}
