// Package batch runs the stock pipeline over a symbol list with rate
// limiting, collecting per-symbol results so one failure never stops
// the run.
package batch

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/time/rate"

	"market-intel/internal/engine"
	"market-intel/internal/logger"
	"market-intel/internal/types"
)

// Result is the outcome for one symbol. Either Report or Error is set.
type Result struct {
	Symbol   string             `json:"symbol"`
	Exchange string             `json:"exchange"`
	Status   string             `json:"status"`
	Report   *types.StockReport `json:"report,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// Runner drives the engine over many symbols at a bounded rate.
type Runner struct {
	engine  *engine.Engine
	limiter *rate.Limiter
}

func NewRunner(eng *engine.Engine, perSecond float64) *Runner {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Runner{
		engine:  eng,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Run analyzes every symbol in order. Per-symbol failures are captured
// in the result set; the only error returned is context cancellation.
func (r *Runner) Run(ctx context.Context, symbols []string, exchange string) ([]Result, error) {
	results := make([]Result, 0, len(symbols))
	for _, symbol := range symbols {
		if err := r.limiter.Wait(ctx); err != nil {
			return results, err
		}
		res := Result{Symbol: symbol, Exchange: exchange}
		report, err := r.engine.AnalyzeStock(ctx, symbol, exchange)
		if err != nil {
			res.Status = "failed"
			res.Error = err.Error()
			logger.Warn(ctx, "Batch symbol failed", "symbol", symbol, "error", err)
		} else {
			res.Status = "ok"
			res.Report = &report
		}
		results = append(results, res)
	}
	logger.Info(ctx, "Batch run completed", "symbols", len(symbols), "failed", countFailed(results))
	return results, nil
}

func countFailed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Status == "failed" {
			n++
		}
	}
	return n
}

// WriteJSON writes the full result set as an indented JSON array.
func WriteJSON(path string, results []Result) error {
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// WriteCSVSummary writes one line per symbol with the derived signals,
// finishing with a totals row.
func WriteCSVSummary(path string, results []Result) error {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	headers := []string{"symbol", "exchange", "status", "trend", "valuation", "risk", "momentum", "error"}
	if err := w.Write(headers); err != nil {
		return err
	}

	ok := 0
	for _, res := range results {
		rec := []string{res.Symbol, res.Exchange, res.Status, "", "", "", "", res.Error}
		if res.Report != nil {
			sig := res.Report.Signals
			rec[3] = string(sig.Trend)
			rec[4] = string(sig.Valuation)
			rec[5] = string(sig.Risk)
			rec[6] = string(sig.Momentum)
			ok++
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	_ = w.Write([]string{"TOTAL", "", fmt.Sprintf("%d ok / %d failed", ok, len(results)-ok), "", "", "", "", ""})
	w.Flush()
	return w.Error()
}
