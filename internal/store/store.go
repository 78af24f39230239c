// Package store persists assembled reports. The engine works the same
// with persistence disabled; the store is strictly a sink and a lookup
// for previously derived records.
package store

import (
	"context"

	"market-intel/internal/types"
)

// Store persists and retrieves assembled reports. Implementations must
// be safe for concurrent use.
type Store interface {
	SaveStockReport(ctx context.Context, report types.StockReport) error
	StockReport(ctx context.Context, symbol, exchange string) (types.StockReport, error)
	SaveNewsReport(ctx context.Context, report types.NewsReport) error
	NewsReport(ctx context.Context, id string) (types.NewsReport, error)
	Close() error
}

// Noop discards writes and reports every lookup as unavailable. Used
// when persistence is switched off.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) SaveStockReport(ctx context.Context, report types.StockReport) error { return nil }

func (n *Noop) StockReport(ctx context.Context, symbol, exchange string) (types.StockReport, error) {
	return types.StockReport{}, types.ErrDataUnavailable
}

func (n *Noop) SaveNewsReport(ctx context.Context, report types.NewsReport) error { return nil }

func (n *Noop) NewsReport(ctx context.Context, id string) (types.NewsReport, error) {
	return types.NewsReport{}, types.ErrDataUnavailable
}

func (n *Noop) Close() error { return nil }
