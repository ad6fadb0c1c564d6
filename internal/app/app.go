// Package app wires configuration, storage, clients, and services into a
// single application core shared by cmd/folio-server and the tests.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tranvn/folio/internal/clients/coingecko"
	"github.com/tranvn/folio/internal/clients/doji"
	"github.com/tranvn/folio/internal/clients/fmarket"
	"github.com/tranvn/folio/internal/clients/gemini"
	"github.com/tranvn/folio/internal/clients/simplize"
	"github.com/tranvn/folio/internal/common"
	"github.com/tranvn/folio/internal/interfaces"
	"github.com/tranvn/folio/internal/services/analytics"
	"github.com/tranvn/folio/internal/services/insight"
	"github.com/tranvn/folio/internal/services/pricesync"
	"github.com/tranvn/folio/internal/storage/surrealdb"
)

// App holds all initialized services, clients, and storage.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	GeminiClient     interfaces.GeminiClient
	AnalyticsService interfaces.AnalyticsService
	PriceSyncService interfaces.PriceSyncService
	InsightService   interfaces.InsightService
	StartupTime      time.Time

	schedulerCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Load configuration - check provided path, FOLIO_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "folio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/folio.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative log file path to binary directory
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := surrealdb.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Initialize price source clients, one per asset kind
	fundClient := fmarket.NewClient(
		fmarket.WithBaseURL(config.Clients.Fmarket.BaseURL),
		fmarket.WithLogger(logger),
		fmarket.WithRateLimit(config.Clients.Fmarket.RateLimit),
		fmarket.WithTimeout(config.Clients.Fmarket.GetTimeout()),
	)
	stockClient := simplize.NewClient(
		simplize.WithBaseURL(config.Clients.Simplize.BaseURL),
		simplize.WithLogger(logger),
		simplize.WithRateLimit(config.Clients.Simplize.RateLimit),
		simplize.WithTimeout(config.Clients.Simplize.GetTimeout()),
	)
	goldClient := doji.NewClient(
		doji.WithBaseURL(config.Clients.Doji.BaseURL),
		doji.WithLogger(logger),
		doji.WithRateLimit(config.Clients.Doji.RateLimit),
		doji.WithTimeout(config.Clients.Doji.GetTimeout()),
	)
	cryptoClient := coingecko.NewClient(
		coingecko.WithBaseURL(config.Clients.CoinGecko.BaseURL),
		coingecko.WithAPIKey(config.Clients.CoinGecko.APIKey),
		coingecko.WithLogger(logger),
		coingecko.WithRateLimit(config.Clients.CoinGecko.RateLimit),
		coingecko.WithTimeout(config.Clients.CoinGecko.GetTimeout()),
	)

	var geminiClient interfaces.GeminiClient
	if config.Clients.Gemini.APIKey != "" {
		gc, err := gemini.NewClient(context.Background(), config.Clients.Gemini.APIKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			geminiClient = gc
		}
	} else {
		logger.Warn().Msg("Gemini API key not configured - portfolio insight will be unavailable")
	}

	analyticsService := analytics.NewService(storageManager, logger)
	priceSyncService := pricesync.NewService(storageManager, pricesync.Clients{
		Fund:   fundClient,
		Stock:  stockClient,
		Gold:   goldClient,
		Crypto: cryptoClient,
	}, logger)
	insightService := insight.NewService(analyticsService, geminiClient, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		GeminiClient:     geminiClient,
		AnalyticsService: analyticsService,
		PriceSyncService: priceSyncService,
		InsightService:   insightService,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: cancel scheduler, close Gemini, close storage.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		a.schedulerCancel = nil
	}
	if a.GeminiClient != nil {
		a.GeminiClient.Close()
		a.GeminiClient = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}

// StartPriceScheduler launches the background price sync goroutine.
// A zero interval disables the scheduler.
func (a *App) StartPriceScheduler() {
	interval := a.Config.Scheduler.GetPriceSyncInterval()
	if interval <= 0 {
		a.Logger.Info().Msg("Price scheduler: disabled")
		return
	}
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	a.schedulerCancel = schedulerCancel
	go startPriceScheduler(schedulerCtx, a.PriceSyncService, a.Logger, interval)
}
