package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peartrader/peartrader/internal/clients/yahoo"
	"github.com/peartrader/peartrader/internal/config"
	"github.com/peartrader/peartrader/internal/database"
	"github.com/peartrader/peartrader/internal/modules/analysis"
	"github.com/peartrader/peartrader/internal/modules/charts"
	"github.com/peartrader/peartrader/internal/modules/marketdata"
	"github.com/peartrader/peartrader/internal/modules/universe"
	"github.com/peartrader/peartrader/internal/scheduler"
	"github.com/peartrader/peartrader/internal/server"
	"github.com/peartrader/peartrader/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Msg("Starting PearTrader")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Universe of instruments, seeded on first start
	universeRepo := universe.NewRepository(db.Conn(), log)
	if err := universeRepo.SeedDefaults(); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed universe")
	}

	// Market data: Yahoo Finance with a write-through sqlite cache
	yahooClient := yahoo.NewClient(log)
	priceCache := marketdata.NewPriceCache(db.Conn(), log)
	marketDataService := marketdata.NewService(yahooClient, priceCache, log)

	// Analysis pipeline with the default modularity partitioner
	analysisService := analysis.NewService(
		marketDataService,
		analysis.NewModularityPartitioner(),
		cfg.Threshold,
		log,
	)

	chartsService := charts.NewService(analysisService, marketDataService, log)

	// Optional scheduled refresh of the analysis session
	sched := scheduler.New(log)
	if cfg.RefreshSchedule != "" {
		refreshJob := scheduler.NewRefreshJob(analysisService, universeRepo, cfg.LookbackDays, log)
		if err := sched.AddJob(cfg.RefreshSchedule, refreshJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to register refresh job")
		}
	}
	sched.Start()
	defer sched.Stop()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:             cfg.Port,
		Log:              log,
		DevMode:          cfg.DevMode,
		AnalysisHandlers: analysis.NewHandlers(analysisService, universeRepo, log),
		ChartsHandlers:   charts.NewHandlers(chartsService, log),
		UniverseHandlers: universe.NewHandlers(universeRepo, log),
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().
		Int("port", cfg.Port).
		Float64("threshold", cfg.Threshold).
		Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
