package testutil

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pricefetcher/internal/fetcher"
)

// MockFetcher is a mock implementation of the Fetcher interface for testing
type MockFetcher struct {
	FetchFunc func(ctx context.Context) (decimal.Decimal, error)
	KeyFunc   func() string
	Calls     int
}

// Fetch implements the Fetcher interface
func (m *MockFetcher) Fetch(ctx context.Context) (decimal.Decimal, error) {
	m.Calls++
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx)
	}
	return decimal.Zero, nil
}

// Key implements the Fetcher interface
func (m *MockFetcher) Key() string {
	if m.KeyFunc != nil {
		return m.KeyFunc()
	}
	return "mock:key"
}

// NewMockFetcher creates a simple mock fetcher with predefined values
func NewMockFetcher(key string, value string, err error) *MockFetcher {
	return &MockFetcher{
		FetchFunc: func(ctx context.Context) (decimal.Decimal, error) {
			if err != nil {
				return decimal.Zero, err
			}
			return decimal.RequireFromString(value), nil
		},
		KeyFunc: func() string {
			return key
		},
	}
}

var _ fetcher.Fetcher = (*MockFetcher)(nil)

// SleepRecorder is a fetcher.SleepFunc that records waits instead of sleeping
type SleepRecorder struct {
	Waits []time.Duration
}

// Sleep records d and returns the context error, if any
func (s *SleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.Waits = append(s.Waits, d)
	return ctx.Err()
}
