package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pricefetcher/internal/fetcher"
	"pricefetcher/internal/monitor"
	"pricefetcher/internal/pricefeed"
)

func noSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

func newTestFeed(sahraURL, mazdaxURL string) *pricefeed.Client {
	return pricefeed.New(pricefeed.Config{
		SahraBaseURL:     sahraURL,
		MazdaxBaseURL:    mazdaxURL,
		RequestRetry:     fetcher.RetryPolicy{Attempts: 3, Interval: time.Second},
		PriceSeriesRetry: fetcher.RetryPolicy{Attempts: 3, Interval: time.Second},
		HTTPTimeout:      2 * time.Second,
	}, pricefeed.WithSleep(noSleep))
}

// TestIntegration_ShortSignal tests the full flow from both mock APIs to a spread signal
func TestIntegration_ShortSignal(t *testing.T) {
	// Sahra has no intraday bars yet, only the 60 minute resolution has data
	sahraServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/TradingView/History" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if r.URL.Query().Get("Resolution") == "60" {
			w.Write([]byte(`{"s":"ok","c":[5000000,5010000,5000000]}`))
			return
		}
		w.Write([]byte(`{"s":"no_data","c":[]}`))
	}))
	defer sahraServer.Close()

	mazdaxServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"` + symbol + `":{"lastPrice":5075000,"change":1.2}}`))
	}))
	defer mazdaxServer.Close()

	feed := newTestFeed(sahraServer.URL, mazdaxServer.URL)

	reference, err := feed.NewFetcher(pricefeed.CandleSahra, "IRT1AHRM0001:1", "1", "5", "15", "60", "1D")
	if err != nil {
		t.Fatalf("NewFetcher() failed: %v", err)
	}
	traded, err := feed.NewFetcher(pricefeed.CandleMazdax, "AHRM1IRR")
	if err != nil {
		t.Fatalf("NewFetcher() failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap := monitor.New(reference, traded, decimal.RequireFromString("0.01"), nil).Tick(ctx)

	if !snap.OK {
		t.Fatalf("Tick() not ok: sahra=%v mazdax=%v", snap.SahraErr, snap.MazdaxErr)
	}
	if !snap.Sahra.Equal(decimal.NewFromInt(5000000)) {
		t.Errorf("Sahra = %s, want 5000000", snap.Sahra)
	}
	if !snap.Mazdax.Equal(decimal.NewFromInt(5075000)) {
		t.Errorf("Mazdax = %s, want 5075000", snap.Mazdax)
	}
	if snap.Signal != monitor.SignalShort {
		t.Errorf("Signal = %q, want short", snap.Signal)
	}
}

// TestIntegration_RetriesThenSucceeds tests that transient upstream failures are retried
func TestIntegration_RetriesThenSucceeds(t *testing.T) {
	var requestCount int32

	flakyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// First two requests fail, the third succeeds
		if atomic.AddInt32(&requestCount, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"BTCIRT":{"lastPrice":"4200000000"}}`))
	}))
	defer flakyServer.Close()

	feed := newTestFeed(flakyServer.URL, flakyServer.URL)
	res := feed.GetPriceSeries(context.Background(), pricefeed.CandleMazdax, "", "BTCIRT", "")

	if !res.Success {
		t.Fatalf("GetPriceSeries() failed: %s (%v)", res.Message, res.Err)
	}
	if !res.Price.Equal(decimal.NewFromInt(4200000000)) {
		t.Errorf("Price = %s, want 4200000000", res.Price)
	}
	if got := atomic.LoadInt32(&requestCount); got != 3 {
		t.Errorf("requests = %d, want 3", got)
	}
}

// TestIntegration_PartialFailures tests that one failing market does not hide the other
func TestIntegration_PartialFailures(t *testing.T) {
	sahraServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer sahraServer.Close()

	mazdaxServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"AHRM1IRR":{"lastPrice":5075000}}`))
	}))
	defer mazdaxServer.Close()

	feed := newTestFeed(sahraServer.URL, mazdaxServer.URL)
	reference, _ := feed.NewFetcher(pricefeed.CandleSahra, "IRT1AHRM0001:1", "1D")
	traded, _ := feed.NewFetcher(pricefeed.CandleMazdax, "AHRM1IRR")

	snap := monitor.New(reference, traded, decimal.RequireFromString("0.01"), nil).Tick(context.Background())

	if snap.OK {
		t.Fatal("Tick() ok, want not ok")
	}
	if fetcher.TypeOf(snap.SahraErr) != fetcher.ErrorTypeServer {
		t.Errorf("SahraErr = %v, want server error", snap.SahraErr)
	}
	if snap.MazdaxErr != nil {
		t.Errorf("MazdaxErr = %v, want nil", snap.MazdaxErr)
	}
	if !snap.Mazdax.Equal(decimal.NewFromInt(5075000)) {
		t.Errorf("Mazdax = %s, want 5075000", snap.Mazdax)
	}
}

// TestIntegration_ContextTimeout tests that context timeout is respected
func TestIntegration_ContextTimeout(t *testing.T) {
	// Create a server that never responds
	hangingServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Wait for context cancellation
		<-r.Context().Done()
	}))
	defer hangingServer.Close()

	feed := newTestFeed(hangingServer.URL, hangingServer.URL)

	// Create context with very short timeout
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	res := feed.GetPriceSeries(ctx, pricefeed.CandleSahra, "XAUUSD", "", "D")
	duration := time.Since(start)

	if res.Success {
		t.Fatal("GetPriceSeries() succeeded against a hanging server")
	}
	if fetcher.TypeOf(res.Err) != fetcher.ErrorTypeTimeout {
		t.Errorf("Err = %v, want timeout", res.Err)
	}

	// Should complete quickly due to timeout, not hang forever
	if duration > 500*time.Millisecond {
		t.Errorf("Context timeout not respected. Duration: %v", duration)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", "DEBUG"},
		{"WARN", "WARN"},
		{"error", "ERROR"},
		{"info", "INFO"},
		{"", "INFO"},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in).String(); got != tt.want {
			t.Errorf("parseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
