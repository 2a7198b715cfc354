package fetcher

import "github.com/shopspring/decimal"

// MessageSucceed is the message attached to every successful Result.
const MessageSucceed = "succeed"

// Result represents the outcome of a price lookup as a
// {success, message, payload} triple. Callers must inspect Success:
// failures are reported here rather than returned as errors.
type Result struct {
	// Success is true when Price holds a usable value
	Success bool

	// Message is a human-readable description; never empty
	Message string

	// Price is the most recent price. Only meaningful when Success is true.
	Price decimal.Decimal

	// Series is the full price sequence when the upstream returned one.
	// On failure it holds whatever was parsed, or an empty slice.
	Series []decimal.Decimal

	// Err contains the classified *FetchError when Success is false.
	Err error
}

// Succeeded builds a successful Result for price, optionally carrying the series it came from.
func Succeeded(price decimal.Decimal, series []decimal.Decimal) Result {
	return Result{
		Success: true,
		Message: MessageSucceed,
		Price:   price,
		Series:  series,
	}
}

// Failed builds a failed Result. A nil series is replaced with an empty one.
func Failed(message string, series []decimal.Decimal, err error) Result {
	if series == nil {
		series = []decimal.Decimal{}
	}
	return Result{
		Success: false,
		Message: message,
		Series:  series,
		Err:     err,
	}
}

// Value returns the price when the Result succeeded, or the error explaining why not.
func (r Result) Value() (decimal.Decimal, error) {
	if !r.Success {
		if r.Err != nil {
			return decimal.Zero, r.Err
		}
		return decimal.Zero, &FetchError{Type: ErrorTypeUnknown, Message: r.Message}
	}
	return r.Price, nil
}
