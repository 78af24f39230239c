// Package market acquires raw price and fundamentals data. It is a
// collaborator of the derivation engine: all network I/O lives here,
// and a source that cannot supply a field reports explicit absence
// rather than a guess.
package market

import (
	"context"

	"market-intel/internal/assemble"
	"market-intel/internal/types"
)

// Provider supplies the raw inputs for one symbol. Implementations wrap
// a single upstream source and surface types.ErrDataUnavailable when it
// cannot serve.
type Provider interface {
	// Quote returns the latest price and day change. Individual
	// fields may be absent.
	Quote(ctx context.Context, symbol, exchange string) (assemble.Quote, error)
	// DailyHistory returns up to `days` daily closes, oldest first.
	DailyHistory(ctx context.Context, symbol, exchange string, days int) (types.PriceSeries, error)
	// Fundamentals returns the named metrics, each with explicit
	// absence.
	Fundamentals(ctx context.Context, symbol, exchange string) (types.Fundamentals, error)
}
