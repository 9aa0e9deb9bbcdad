// Package app wires configuration, clients, storage and services into a
// running application core shared by the server binary.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/navcast/internal/clients/eastmoney"
	"github.com/bobmcallan/navcast/internal/clients/jsonbin"
	"github.com/bobmcallan/navcast/internal/clients/tencent"
	"github.com/bobmcallan/navcast/internal/common"
	"github.com/bobmcallan/navcast/internal/interfaces"
	"github.com/bobmcallan/navcast/internal/services/market"
	"github.com/bobmcallan/navcast/internal/services/valuation"
	"github.com/bobmcallan/navcast/internal/storage"
)

// App holds all initialized clients and services.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	FundStore        interfaces.FundStore
	QuoteClient      interfaces.QuoteClient
	FundDataClient   interfaces.FundDataClient
	ValuationService interfaces.ValuationService
	MarketService    interfaces.MarketService
	StartupTime      time.Time

	scheduler *scheduler
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes clients, storage and services from configuration.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Config resolution: explicit path, NAVCAST_CONFIG, binary dir, dev fallback.
	if configPath == "" {
		configPath = os.Getenv("NAVCAST_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "navcast.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/navcast.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative data path to binary directory
	if config.Storage.DataPath != "" && !filepath.IsAbs(config.Storage.DataPath) {
		config.Storage.DataPath = filepath.Join(binDir, config.Storage.DataPath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	quoteClient := tencent.NewClient(
		tencent.WithBaseURL(config.Clients.Tencent.BaseURL),
		tencent.WithLogger(logger),
		tencent.WithRateLimit(config.Clients.Tencent.RateLimit),
		tencent.WithTimeout(config.Clients.Tencent.GetTimeout()),
	)

	fundDataClient := eastmoney.NewClient(
		eastmoney.WithF10BaseURL(config.Clients.Eastmoney.F10BaseURL),
		eastmoney.WithAPIBaseURL(config.Clients.Eastmoney.APIBaseURL),
		eastmoney.WithDirBaseURL(config.Clients.Eastmoney.DirBaseURL),
		eastmoney.WithLogger(logger),
		eastmoney.WithRateLimit(config.Clients.Eastmoney.RateLimit),
		eastmoney.WithTimeout(config.Clients.Eastmoney.GetTimeout()),
	)

	// The remote fund list store is optional. Without credentials the fund
	// list lives in the local file only.
	var remote interfaces.RemoteBlobClient
	if config.Clients.JSONBin.APIKey != "" && config.Clients.JSONBin.BinID != "" {
		remote = jsonbin.NewClient(config.Clients.JSONBin.APIKey, config.Clients.JSONBin.BinID,
			jsonbin.WithBaseURL(config.Clients.JSONBin.BaseURL),
			jsonbin.WithLogger(logger),
			jsonbin.WithTimeout(config.Clients.JSONBin.GetTimeout()),
		)
	} else {
		logger.Warn().Msg("JSONBin not configured - fund list will be local only")
	}

	fundStore, err := storage.NewFundStore(remote, config.Storage.FundsFilePath(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fund store: %w", err)
	}

	valuationService := valuation.NewService(quoteClient, fundDataClient, logger)
	marketService := market.NewService(quoteClient, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		FundStore:        fundStore,
		QuoteClient:      quoteClient,
		FundDataClient:   fundDataClient,
		ValuationService: valuationService,
		MarketService:    marketService,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// StartScheduler launches the background valuation refresh and the daily
// holdings warm job.
func (a *App) StartScheduler() error {
	if a.scheduler != nil {
		return nil
	}
	s, err := newScheduler(a)
	if err != nil {
		return err
	}
	a.scheduler = s
	s.start()
	return nil
}

// Close releases background resources held by the App.
func (a *App) Close() {
	if a.scheduler != nil {
		a.scheduler.stop()
		a.scheduler = nil
	}
}
