package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"

	"pricefetcher/internal/config"
	"pricefetcher/internal/fetcher"
	"pricefetcher/internal/monitor"
	"pricefetcher/internal/pricefeed"
)

func main() {
	once := pflag.Bool("once", false, "run a single tick and exit")
	pflag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	feed := pricefeed.New(pricefeed.Config{
		SahraBaseURL:  cfg.SahraBaseURL,
		MazdaxBaseURL: cfg.MazdaxBaseURL,
		RequestRetry: fetcher.RetryPolicy{
			Attempts: cfg.RequestTryNumber,
			Interval: cfg.RequestTryTime,
		},
		PriceSeriesRetry: fetcher.RetryPolicy{
			Attempts: cfg.PriceSeriesTryNumber,
			Interval: cfg.PriceSeriesTryTime,
		},
		HTTPTimeout: cfg.HTTPTimeout,
	}, pricefeed.WithLogger(logger))

	reference, err := feed.NewFetcher(pricefeed.Candle(cfg.SahraCandle), cfg.SahraSymbol, cfg.SahraResolutions...)
	if err != nil {
		log.Fatalf("Failed to create reference fetcher: %v", err)
	}
	traded, err := feed.NewFetcher(pricefeed.CandleMazdax, cfg.MazdaxSymbol)
	if err != nil {
		log.Fatalf("Failed to create traded fetcher: %v", err)
	}

	mon := monitor.New(reference, traded, cfg.Threshold, logger)

	if *once {
		snap := mon.Tick(ctx)
		if !snap.OK {
			os.Exit(1)
		}
		return
	}

	// Ticks never overlap: a run still in progress skips the next one
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(cfg.PollSchedule, func() { mon.Tick(ctx) }); err != nil {
		log.Fatalf("Invalid poll schedule %q: %v", cfg.PollSchedule, err)
	}

	logger.Info("spread monitor started",
		"reference", reference.Key(),
		"traded", traded.Key(),
		"schedule", cfg.PollSchedule)

	mon.Tick(ctx)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("spread monitor stopped")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
