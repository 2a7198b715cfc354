package fetcher

import (
	"context"

	"github.com/shopspring/decimal"
)

// Fetcher is the core interface implemented by every price source.
// Each fetcher knows how to retrieve the latest price of a single symbol
// and provides a Redis-compatible key identifying it.
type Fetcher interface {
	// Fetch retrieves the latest price.
	// Returns an error if the lookup did not produce a usable price.
	Fetch(ctx context.Context) (decimal.Decimal, error)

	// Key returns a hierarchical key for this fetcher.
	// Format: fetcher:{source}:{identifier}
	// Examples:
	//   - fetcher:sahra:IRT1AHRM0001:1
	//   - fetcher:sahra_commodity:IRK1K0010001:1
	//   - fetcher:mazdax:AHRM1IRR
	Key() string
}
