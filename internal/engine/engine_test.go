package engine

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"market-intel/internal/assemble"
	"market-intel/internal/config"
	"market-intel/internal/logger"
	"market-intel/internal/store"
	"market-intel/internal/types"
)

func TestMain(m *testing.M) {
	_ = logger.InitWithConfig(logger.LogConfig{
		Level:          "ERROR",
		Format:         "text",
		TracingEnabled: false,
	})
	os.Exit(m.Run())
}

// stubProvider serves canned data without network access.
type stubProvider struct {
	closes  []float64
	fund    types.Fundamentals
	fundErr error
}

func (p *stubProvider) Quote(ctx context.Context, symbol, exchange string) (assemble.Quote, error) {
	last := p.closes[len(p.closes)-1]
	prev := p.closes[len(p.closes)-2]
	return assemble.Quote{
		Current:       types.Some(last),
		ChangePercent: types.Some((last - prev) / prev * 100),
	}, nil
}

func (p *stubProvider) DailyHistory(ctx context.Context, symbol, exchange string, days int) (types.PriceSeries, error) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make(types.PriceSeries, len(p.closes))
	for i, c := range p.closes {
		series[i] = types.PricePoint{Time: start.AddDate(0, 0, i), Close: decimal.NewFromFloat(c)}
	}
	return series, nil
}

func (p *stubProvider) Fundamentals(ctx context.Context, symbol, exchange string) (types.Fundamentals, error) {
	return p.fund, p.fundErr
}

func newTestEngine(p *stubProvider) *Engine {
	cfg := config.Default()
	return New(&cfg, p, store.NewNoop()).WithAudit(false)
}

func risingCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func TestAnalyzeStockBullish(t *testing.T) {
	provider := &stubProvider{
		closes: risingCloses(260),
		fund:   types.Fundamentals{PERatio: types.Some(10), Sector: "Energy"},
	}
	eng := newTestEngine(provider)

	report, err := eng.AnalyzeStock(context.Background(), "RELIANCE", "NSE")
	if err != nil {
		t.Fatal(err)
	}

	if report.Signals.Trend != types.TrendBullish {
		t.Errorf("expected Bullish trend, got %s", report.Signals.Trend)
	}
	if report.Signals.Momentum != types.MomentumStrong {
		t.Errorf("expected Strong momentum, got %s", report.Signals.Momentum)
	}
	if report.Signals.Valuation != types.ValuationUndervalued {
		t.Errorf("expected Undervalued for PE 10, got %s", report.Signals.Valuation)
	}
	if report.Signals.Risk != types.RiskLow {
		t.Errorf("expected Low risk for a steady series, got %s", report.Signals.Risk)
	}
	if report.Fundamentals.Sector != "Energy" {
		t.Errorf("expected sector Energy, got %s", report.Fundamentals.Sector)
	}
	if report.LastUpdated == "" {
		t.Error("expected last_updated to be set")
	}
}

func TestAnalyzeStockHistoryWindows(t *testing.T) {
	eng := newTestEngine(&stubProvider{closes: risingCloses(260)})
	report, err := eng.AnalyzeStock(context.Background(), "TCS", "NSE")
	if err != nil {
		t.Fatal(err)
	}

	h := report.Price.History
	if len(h["1D"]) != 1 {
		t.Errorf("expected 1 close in 1D window, got %d", len(h["1D"]))
	}
	if len(h["14D"]) != 14 {
		t.Errorf("expected 14 closes in 14D window, got %d", len(h["14D"]))
	}
	if len(h["1Y"]) != 260 {
		t.Errorf("expected 260 closes in 1Y window, got %d", len(h["1Y"]))
	}
}

func TestAnalyzeStockMissingFundamentalsDegrades(t *testing.T) {
	eng := newTestEngine(&stubProvider{
		closes:  risingCloses(260),
		fundErr: types.ErrDataUnavailable,
	})
	report, err := eng.AnalyzeStock(context.Background(), "INFY", "NSE")
	if err != nil {
		t.Fatalf("missing fundamentals must not fail the invocation: %v", err)
	}
	if report.Signals.Valuation != types.ValuationFair {
		t.Errorf("expected Fair valuation without PE, got %s", report.Signals.Valuation)
	}
	if report.Fundamentals.Sector != types.Unavailable {
		t.Errorf("expected Unavailable sector, got %s", report.Fundamentals.Sector)
	}
}

func TestAnalyzeStockEmptySymbol(t *testing.T) {
	eng := newTestEngine(&stubProvider{closes: risingCloses(30)})
	_, err := eng.AnalyzeStock(context.Background(), "", "NSE")
	if !errors.Is(err, types.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAnalyzeArticle(t *testing.T) {
	eng := newTestEngine(&stubProvider{closes: risingCloses(30)})
	article := types.Article{
		Headline:    "Acme Corp beats earnings estimates",
		Body:        "Acme Corp reported net profit growth of 25 percent for the quarter. Revenue rose 12 percent on strong demand in India.",
		Source:      "Wire",
		PublishedAt: "2026-08-20T09:00:00Z",
	}
	report, err := eng.AnalyzeArticle(context.Background(), article)
	if err != nil {
		t.Fatal(err)
	}
	if report.Scope != types.ScopeCompany {
		t.Errorf("expected Company scope, got %s", report.Scope)
	}
	if report.NewsType != types.NewsEarnings {
		t.Errorf("expected Earnings type, got %s", report.NewsType)
	}
	if report.Impact.Direction != types.ImpactPositive {
		t.Errorf("expected Positive direction, got %s", report.Impact.Direction)
	}
	if len(report.Facts) == 0 {
		t.Error("expected extracted facts")
	}
	if report.PublishedAt != article.PublishedAt {
		t.Errorf("published_at must pass through verbatim, got %s", report.PublishedAt)
	}
}

func TestAnalyzeArticleWithPreExtracted(t *testing.T) {
	eng := newTestEngine(&stubProvider{closes: risingCloses(30)})
	article := types.Article{Headline: "Sector update", Source: "Wire", PublishedAt: "2026-08-20"}
	entities := types.Entities{Sectors: []string{"Banking"}}
	facts := []string{"Lending margins rose 8 percent across the sector."}

	report, err := eng.AnalyzeArticleWith(context.Background(), article, entities, facts)
	if err != nil {
		t.Fatal(err)
	}
	if report.Scope != types.ScopeSector {
		t.Errorf("expected Sector scope from pre-extracted entities, got %s", report.Scope)
	}
	if len(report.Facts) != 1 {
		t.Errorf("expected the supplied fact to pass through, got %v", report.Facts)
	}
}

func TestAnalyzeArticleNoHeadline(t *testing.T) {
	eng := newTestEngine(&stubProvider{closes: risingCloses(30)})
	_, err := eng.AnalyzeArticle(context.Background(), types.Article{Body: "text"})
	if !errors.Is(err, types.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
