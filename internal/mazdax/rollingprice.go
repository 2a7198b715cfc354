package mazdax

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"pricefetcher/internal/fetcher"
)

const rollingPricePath = "/market/rollingprice"

const (
	msgLastPriceMissing = "Mazdax last_price is missing"
	msgLastPriceInvalid = "Mazdax last_price is not a number"
	msgLastPriceEmpty   = "Mazdax last_price list is empty"
)

// Client queries the Mazdax market API.
type Client struct {
	baseURL string
	retrier *fetcher.Retrier
	policy  fetcher.RetryPolicy
	logger  *slog.Logger
}

// NewClient creates a Mazdax client. A nil logger uses slog.Default().
func NewClient(baseURL string, retrier *fetcher.Retrier, policy fetcher.RetryPolicy, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		retrier: retrier,
		policy:  policy,
		logger:  logger,
	}
}

// RollingPriceURL builds the rolling price request for symbolName.
func (c *Client) RollingPriceURL(symbolName string) string {
	return c.baseURL + rollingPricePath + "?from=mazdax&symbol=" + url.QueryEscape(symbolName)
}

// LastPrice fetches the rolling price of symbolName.
func (c *Client) LastPrice(ctx context.Context, symbolName string) fetcher.Result {
	u := c.RollingPriceURL(symbolName)

	out := c.retrier.SendRequestWithRetry(ctx, u, http.MethodGet, http.StatusOK, c.policy)
	if !out.Success {
		return fetcher.Failed(out.Message, nil, out.Err)
	}

	res := parseRollingPrice(out.Response.Bytes(), symbolName)
	c.logger.Debug("mazdax rolling price fetched",
		"url", u,
		"success", res.Success,
		"message", res.Message)
	return res
}

// parseRollingPrice extracts body[symbolName].lastPrice. The field is usually
// a number but some symbols report a sequence, in which case the last entry wins.
func parseRollingPrice(body []byte, symbolName string) fetcher.Result {
	if !gjson.ValidBytes(body) {
		return fetcher.Failed("Mazdax response is not valid JSON", nil,
			fetcher.NewMalformedResponseError("invalid JSON body"))
	}

	last := gjson.GetBytes(body, gjson.Escape(symbolName)+".lastPrice")
	if !last.Exists() || last.Type == gjson.Null {
		return fetcher.Failed(msgLastPriceMissing, nil,
			fetcher.NewMalformedResponseError(fmt.Sprintf("missing key %s.lastPrice", symbolName)))
	}

	if last.IsArray() {
		series, err := fetcher.SeriesFromJSON(last)
		if err != nil {
			return fetcher.Failed(msgLastPriceInvalid, nil, fetcher.NewMalformedResponseError(err.Error()))
		}
		if len(series) > 1 {
			return fetcher.Succeeded(series[len(series)-1], series)
		}
		return fetcher.Failed(msgLastPriceEmpty, series, fetcher.NewEmptyDataError(msgLastPriceEmpty))
	}

	price, err := fetcher.DecimalFromJSON(last)
	if err != nil {
		return fetcher.Failed(msgLastPriceInvalid, nil, fetcher.NewMalformedResponseError(err.Error()))
	}
	return fetcher.Succeeded(price, nil)
}

// RollingPriceFetcher fetches the last traded price of one Mazdax symbol
type RollingPriceFetcher struct {
	client     *Client
	symbolName string
}

// NewRollingPriceFetcher creates a new rolling price fetcher
func NewRollingPriceFetcher(client *Client, symbolName string) *RollingPriceFetcher {
	return &RollingPriceFetcher{
		client:     client,
		symbolName: symbolName,
	}
}

// Fetch retrieves the last traded price
func (f *RollingPriceFetcher) Fetch(ctx context.Context) (decimal.Decimal, error) {
	price, err := f.client.LastPrice(ctx, f.symbolName).Value()
	if err != nil {
		return decimal.Zero, fmt.Errorf("mazdax %s: %w", f.symbolName, err)
	}
	return price, nil
}

// Key returns the key for this fetcher
func (f *RollingPriceFetcher) Key() string {
	return fmt.Sprintf("fetcher:mazdax:%s", f.symbolName)
}
