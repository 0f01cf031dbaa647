package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paperstreet/stocksim/internal/config"
	"github.com/paperstreet/stocksim/internal/engine"
	"github.com/paperstreet/stocksim/internal/handler"
	"github.com/paperstreet/stocksim/internal/persist"
	"github.com/paperstreet/stocksim/internal/quote"
	"github.com/paperstreet/stocksim/internal/service"
	"github.com/paperstreet/stocksim/internal/store"
)

// defaultSymbols are seeded into the catalog on first start.
var defaultSymbols = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "META", "TSLA", "NVDA", "JPM", "V", "WMT",
}

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Durable state: load the snapshot and restore the stores from it.
	fileStore := persist.NewFileStore(cfg.DataFile, logger)
	snap := fileStore.Load()

	catalog := store.NewCatalogStore()
	catalog.Restore(snap.Catalog)
	ledger := store.NewLedgerStore()
	ledger.Restore(snap.Accounts)

	saver := persist.NewSaver(catalog, ledger, fileStore)

	// Price sources: live provider first when configured, simulated always
	// last so a fetch never fails.
	simulated := quote.NewSimulated(time.Now().UnixNano())
	var sources []quote.Source
	var overview service.OverviewFetcher
	if cfg.LiveQuotesEnabled() {
		av := quote.NewAlphaVantage(cfg.QuoteBaseURL, cfg.QuoteAPIKey, cfg.QuoteTimeout, logger)
		sources = append(sources, av)
		overview = av
	} else {
		logger.Info("no quote API key configured, running with simulated prices only")
	}
	sources = append(sources, simulated)
	chain := quote.NewChain(logger, sources...)

	// Seed default symbols missing from the catalog.
	seeded := 0
	now := time.Now()
	for _, symbol := range defaultSymbols {
		if catalog.Exists(symbol) {
			continue
		}
		price, err := simulated.Fetch(context.Background(), symbol)
		if err != nil {
			continue
		}
		catalog.Upsert(symbol, price, now)
		seeded++
	}
	if seeded > 0 {
		logger.Info("seeded default symbols", slog.Int("count", seeded))
		if err := saver.Save(); err != nil {
			logger.Error("persist after seeding failed", slog.String("error", err.Error()))
		}
	}

	// Services.
	accountSvc := service.NewAccountService(ledger, saver, cfg.StartingBalanceCents, logger)
	marketSvc := service.NewMarketService(catalog, chain, overview, saver, logger)
	tradingSvc := service.NewTradingService(catalog, ledger, saver, logger)
	valuationSvc := service.NewValuationService(catalog, ledger)

	// Router.
	router := handler.NewRouter(accountSvc, marketSvc, tradingSvc, valuationSvc, logger)

	// Start the price refresher with cancellable context.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	refresher := engine.NewRefresher(cfg.RefreshInterval, cfg.RefreshPacing, catalog, chain, saver, logger)
	refresher.Start(ctx)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown: stop HTTP server, cancel context (stops the
	// refresher), flush a final snapshot.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	cancel()

	if err := saver.Save(); err != nil {
		logger.Error("final snapshot failed", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
