// Package pricefeed dispatches price lookups to the Sahra and Mazdax clients
// based on a candle tag.
package pricefeed

import (
	"context"
	"log/slog"
	"time"

	"pricefetcher/internal/fetcher"
	"pricefetcher/internal/mazdax"
	"pricefetcher/internal/sahra"
)

// Candle selects the upstream API and response schema.
type Candle string

const (
	CandleSahra          Candle = Candle(sahra.MarketSpot)
	CandleSahraCommodity Candle = Candle(sahra.MarketCommodity)
	CandleMazdax         Candle = "mazdax"
)

// Config holds the endpoints and retry budgets of a Client.
// It is read once at construction.
type Config struct {
	SahraBaseURL  string
	MazdaxBaseURL string

	// RequestRetry is the budget for generic requests.
	RequestRetry fetcher.RetryPolicy
	// PriceSeriesRetry is the budget for price series lookups.
	PriceSeriesRetry fetcher.RetryPolicy

	HTTPTimeout time.Duration
}

type options struct {
	sleep  fetcher.SleepFunc
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*options)

// WithSleep replaces the wait between attempts.
func WithSleep(sleep fetcher.SleepFunc) Option {
	return func(o *options) {
		o.sleep = sleep
	}
}

// WithClock replaces the clock used for history windows.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Client is the price fetcher for both upstream APIs.
type Client struct {
	retrier      *fetcher.Retrier
	requestRetry fetcher.RetryPolicy
	sahra        *sahra.Client
	mazdax       *mazdax.Client
	logger       *slog.Logger
}

// New creates a Client from cfg.
func New(cfg Config, opts ...Option) *Client {
	o := options{
		sleep:  fetcher.Sleep,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	retrier := fetcher.NewRetrier(fetcher.NewHTTPClient(cfg.HTTPTimeout), o.sleep, o.logger)

	return &Client{
		retrier:      retrier,
		requestRetry: cfg.RequestRetry,
		sahra: sahra.NewClient(cfg.SahraBaseURL, retrier, cfg.PriceSeriesRetry,
			sahra.WithClock(o.now),
			sahra.WithLogger(o.logger)),
		mazdax: mazdax.NewClient(cfg.MazdaxBaseURL, retrier, cfg.PriceSeriesRetry, o.logger),
		logger: o.logger,
	}
}

// SendRequestWithRetry issues a request with the generic retry budget.
func (c *Client) SendRequestWithRetry(ctx context.Context, url, method string, expectedStatus int) fetcher.Outcome {
	return c.retrier.SendRequestWithRetry(ctx, url, method, expectedStatus, c.requestRetry)
}

// GetPriceSeries returns the most recent price for the source selected by candle.
// Sahra sources use symbol and resolution, Mazdax uses symbolName.
// An unknown candle fails without issuing a request.
func (c *Client) GetPriceSeries(ctx context.Context, candle Candle, symbol, symbolName, resolution string) fetcher.Result {
	var res fetcher.Result
	switch candle {
	case CandleSahra, CandleSahraCommodity:
		res = c.sahra.History(ctx, sahra.Market(candle), symbol, resolution)
	case CandleMazdax:
		res = c.mazdax.LastPrice(ctx, symbolName)
	default:
		err := fetcher.NewUnknownSourceError(string(candle))
		res = fetcher.Failed(err.Message, nil, err)
	}

	if !res.Success {
		c.logger.Info("price series lookup failed",
			"candle", string(candle),
			"symbol", symbol,
			"symbol_name", symbolName,
			"message", res.Message)
	}
	return res
}

// NewFetcher returns a Fetcher bound to a single symbol of candle's source.
// For Sahra sources resolutions are tried in order.
func (c *Client) NewFetcher(candle Candle, symbol string, resolutions ...string) (fetcher.Fetcher, error) {
	switch candle {
	case CandleSahra, CandleSahraCommodity:
		return sahra.NewHistoryFetcher(c.sahra, sahra.Market(candle), symbol, resolutions...), nil
	case CandleMazdax:
		return mazdax.NewRollingPriceFetcher(c.mazdax, symbol), nil
	default:
		return nil, fetcher.NewUnknownSourceError(string(candle))
	}
}
