package sahra

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"pricefetcher/internal/fetcher"
)

// Market selects which Sahra history endpoint is queried.
type Market string

const (
	// MarketSpot is the TradingView history of listed symbols
	MarketSpot Market = "sahra"
	// MarketCommodity is the history of commodity futures
	MarketCommodity Market = "sahra_commodity"
)

const (
	historyPath       = "/api/v1/TradingView/History"
	futureHistoryPath = "/api/v1/FutureTradingView/History"

	// lookback is the history window requested ending at now
	lookback = 4 * 24 * time.Hour
)

// DefaultResolutions is the order in which resolutions are tried by FetchWithFallback.
var DefaultResolutions = []string{"1", "5", "15", "60", "1D"}

// Client queries the Sahra history API.
type Client struct {
	baseURL string
	retrier *fetcher.Retrier
	policy  fetcher.RetryPolicy
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithClock overrides the clock used for the history window.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Sahra client issuing requests through retrier with policy.
func NewClient(baseURL string, retrier *fetcher.Retrier, policy fetcher.RetryPolicy, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		retrier: retrier,
		policy:  policy,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HistoryURL builds the history request for symbol covering the last four days.
// An empty resolution leaves the parameter out.
func (c *Client) HistoryURL(market Market, symbol, resolution string) (string, error) {
	var path string
	switch market {
	case MarketSpot:
		path = historyPath
	case MarketCommodity:
		path = futureHistoryPath
	default:
		return "", fetcher.NewUnknownSourceError(string(market))
	}

	to := c.now().Unix()
	from := to - int64(lookback/time.Second)

	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString(path)
	b.WriteString("?Symbol=")
	b.WriteString(url.QueryEscape(symbol))
	if resolution != "" {
		b.WriteString("&Resolution=")
		b.WriteString(url.QueryEscape(resolution))
	}
	fmt.Fprintf(&b, "&from=%d&to=%d", from, to)

	return b.String(), nil
}

// History fetches the close prices of symbol and reports the last one.
func (c *Client) History(ctx context.Context, market Market, symbol, resolution string) fetcher.Result {
	u, err := c.HistoryURL(market, symbol, resolution)
	if err != nil {
		return fetcher.Failed(err.Error(), nil, err)
	}

	out := c.retrier.SendRequestWithRetry(ctx, u, http.MethodGet, http.StatusOK, c.policy)
	if !out.Success {
		return fetcher.Failed(out.Message, nil, out.Err)
	}

	res := parseHistory(out.Response.Bytes(), resolution)
	if res.Success {
		c.logger.Debug("sahra price series fetched",
			"url", u,
			"points", len(res.Series),
			"last", res.Price.String())
	} else {
		c.logger.Debug("sahra price series unusable",
			"url", u,
			"message", res.Message)
	}
	return res
}

// FetchWithFallback tries each resolution in order and returns the first
// successful result with the resolution that produced it. When all fail the
// last result is returned with an empty resolution.
func (c *Client) FetchWithFallback(ctx context.Context, market Market, symbol string, resolutions []string) (fetcher.Result, string) {
	if len(resolutions) == 0 {
		resolutions = DefaultResolutions
	}

	var res fetcher.Result
	for _, r := range resolutions {
		res = c.History(ctx, market, symbol, r)
		if res.Success {
			return res, r
		}
		if ctx.Err() != nil {
			break
		}
	}
	return res, ""
}

func parseHistory(body []byte, resolution string) fetcher.Result {
	if !gjson.ValidBytes(body) {
		return fetcher.Failed("Sahra response is not valid JSON", nil,
			fetcher.NewMalformedResponseError("invalid JSON body"))
	}

	closes := gjson.GetBytes(body, "c")
	if !closes.Exists() {
		return fetcher.Failed("Sahra response has no close prices", nil,
			fetcher.NewMalformedResponseError(`missing key "c"`))
	}

	series, err := fetcher.SeriesFromJSON(closes)
	if err != nil {
		return fetcher.Failed("Sahra close prices are malformed", nil,
			fetcher.NewMalformedResponseError(err.Error()))
	}

	if len(series) > 1 {
		return fetcher.Succeeded(series[len(series)-1], series)
	}

	msg := fmt.Sprintf("Resolution %s Price list is empty", resolutionLabel(resolution))
	return fetcher.Failed(msg, series, fetcher.NewEmptyDataError(msg))
}

func resolutionLabel(resolution string) string {
	if resolution == "" {
		return "default"
	}
	return resolution
}

// HistoryFetcher fetches the latest close of one Sahra symbol
type HistoryFetcher struct {
	client      *Client
	market      Market
	symbol      string
	resolutions []string
}

// NewHistoryFetcher creates a fetcher for symbol. Resolutions are tried in
// order; none means DefaultResolutions.
func NewHistoryFetcher(client *Client, market Market, symbol string, resolutions ...string) *HistoryFetcher {
	return &HistoryFetcher{
		client:      client,
		market:      market,
		symbol:      symbol,
		resolutions: resolutions,
	}
}

// Fetch retrieves the latest close price
func (f *HistoryFetcher) Fetch(ctx context.Context) (decimal.Decimal, error) {
	res, resolution := f.client.FetchWithFallback(ctx, f.market, f.symbol, f.resolutions)
	price, err := res.Value()
	if err != nil {
		return decimal.Zero, fmt.Errorf("sahra %s: %w", f.symbol, err)
	}

	f.client.logger.Debug("sahra close resolved",
		"symbol", f.symbol,
		"resolution", resolution)

	return price, nil
}

// Key returns the key for this fetcher
func (f *HistoryFetcher) Key() string {
	return fmt.Sprintf("fetcher:%s:%s", f.market, f.symbol)
}
