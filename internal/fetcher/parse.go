package fetcher

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// DecimalFromJSON converts a JSON number, or a string holding one, into a decimal
// without passing through float64.
func DecimalFromJSON(r gjson.Result) (decimal.Decimal, error) {
	switch r.Type {
	case gjson.Number:
		return decimal.NewFromString(r.Raw)
	case gjson.String:
		return decimal.NewFromString(strings.TrimSpace(r.Str))
	default:
		return decimal.Zero, fmt.Errorf("not a number: %s", r.Raw)
	}
}

// SeriesFromJSON converts a JSON array of numbers into a price series.
func SeriesFromJSON(r gjson.Result) ([]decimal.Decimal, error) {
	if !r.IsArray() {
		return nil, fmt.Errorf("not an array: %s", r.Raw)
	}

	items := r.Array()
	series := make([]decimal.Decimal, 0, len(items))
	for i, item := range items {
		d, err := DecimalFromJSON(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		series = append(series, d)
	}
	return series, nil
}
