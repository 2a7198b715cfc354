package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"pricefetcher/internal/fetcher"
)

// Signal is the action suggested by the spread between both markets
type Signal string

const (
	SignalNone  Signal = "none"
	SignalShort Signal = "short"
	SignalLong  Signal = "long"
)

// RelativeDiff returns |compare - base| / base. ok is false for a zero base.
func RelativeDiff(base, compare decimal.Decimal) (diff decimal.Decimal, ok bool) {
	if base.IsZero() {
		return decimal.Zero, false
	}
	return compare.Sub(base).Abs().Div(base), true
}

// Evaluate compares the Mazdax price against the Sahra reference.
// Mazdax above Sahra by at least threshold is a short, below by at least threshold is a long.
func Evaluate(mazdax, sahra, threshold decimal.Decimal) Signal {
	diff, ok := RelativeDiff(sahra, mazdax)
	if !ok || diff.LessThan(threshold) {
		return SignalNone
	}

	switch {
	case mazdax.GreaterThan(sahra):
		return SignalShort
	case mazdax.LessThan(sahra):
		return SignalLong
	default:
		return SignalNone
	}
}

// Snapshot is the outcome of one monitoring tick
type Snapshot struct {
	At time.Time

	// OK is true when both prices were fetched
	OK bool

	Sahra  decimal.Decimal
	Mazdax decimal.Decimal

	// Spread is (mazdax - sahra) / sahra, zero when Sahra is zero
	Spread decimal.Decimal
	Signal Signal

	SahraErr  error
	MazdaxErr error
}

// Monitor polls a reference and a traded market and reports the spread
type Monitor struct {
	reference fetcher.Fetcher
	traded    fetcher.Fetcher
	threshold decimal.Decimal
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a Monitor comparing traded (Mazdax) against reference (Sahra)
func New(reference, traded fetcher.Fetcher, threshold decimal.Decimal, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		reference: reference,
		traded:    traded,
		threshold: threshold,
		logger:    logger,
		now:       time.Now,
	}
}

// Tick fetches both prices one after the other and evaluates the spread.
// Fetch failures are reported in the Snapshot, never returned.
func (m *Monitor) Tick(ctx context.Context) Snapshot {
	snap := Snapshot{
		At:     m.now(),
		Signal: SignalNone,
	}

	snap.Sahra, snap.SahraErr = m.reference.Fetch(ctx)
	snap.Mazdax, snap.MazdaxErr = m.traded.Fetch(ctx)

	if snap.SahraErr != nil || snap.MazdaxErr != nil {
		m.logger.Warn("fetch not ok",
			"reference", m.reference.Key(),
			"reference_error", errString(snap.SahraErr),
			"traded", m.traded.Key(),
			"traded_error", errString(snap.MazdaxErr))
		return snap
	}

	snap.OK = true
	if !snap.Sahra.IsZero() {
		snap.Spread = snap.Mazdax.Sub(snap.Sahra).Div(snap.Sahra)
	}
	snap.Signal = Evaluate(snap.Mazdax, snap.Sahra, m.threshold)

	m.logger.Info("prices",
		"sahra", snap.Sahra.String(),
		"mazdax", snap.Mazdax.String(),
		"diff_pct", snap.Spread.Mul(decimal.NewFromInt(100)).StringFixed(3),
		"signal", string(snap.Signal))

	if snap.Signal != SignalNone {
		m.logger.Info(fmt.Sprintf("%s signal detected", snap.Signal),
			"threshold", m.threshold.String(),
			"target", TargetPrice(snap.Sahra, m.threshold, snap.Signal).String())
	}

	return snap
}

// TargetPrice is the Sahra price moved by threshold in the direction of signal:
// sahra*(1+threshold) for a short and sahra*(1-threshold) for a long.
func TargetPrice(sahra, threshold decimal.Decimal, signal Signal) decimal.Decimal {
	switch signal {
	case SignalShort:
		return sahra.Add(sahra.Mul(threshold))
	case SignalLong:
		return sahra.Sub(sahra.Mul(threshold))
	default:
		return sahra
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
