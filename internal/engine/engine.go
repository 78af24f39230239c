// Package engine orchestrates one full derivation: acquire raw inputs,
// compute indicators, derive signals, classify news, and assemble the
// output records. All computation is delegated; the engine only wires
// the collaborators together.
package engine

import (
	"context"
	"fmt"
	"time"

	"market-intel/internal/assemble"
	"market-intel/internal/auditlog"
	"market-intel/internal/config"
	"market-intel/internal/extract"
	"market-intel/internal/indicator"
	"market-intel/internal/logger"
	"market-intel/internal/market"
	"market-intel/internal/news"
	"market-intel/internal/signal"
	"market-intel/internal/store"
	"market-intel/internal/types"
)

// historyDays is the raw window fetched per symbol; it covers the
// longest moving-average window with room for market holidays.
const historyDays = 365

type Engine struct {
	cfg        *config.Config
	provider   market.Provider
	store      store.Store
	classifier *news.Classifier
	extractor  *extract.Extractor
	audit      bool
}

func New(cfg *config.Config, provider market.Provider, st store.Store) *Engine {
	return &Engine{
		cfg:        cfg,
		provider:   provider,
		store:      st,
		classifier: news.NewClassifier(cfg.Thresholds),
		extractor:  extract.NewExtractor(),
		audit:      true,
	}
}

// WithAudit toggles the derivation audit trail. Tests switch it off.
func (e *Engine) WithAudit(enabled bool) *Engine {
	e.audit = enabled
	return e
}

// AnalyzeStock runs the full pipeline for one symbol. A quote or
// history failure fails the invocation; missing fundamentals degrade to
// sentinel values because derivation stays total without them.
func (e *Engine) AnalyzeStock(ctx context.Context, symbol, exchange string) (types.StockReport, error) {
	if symbol == "" {
		return types.StockReport{}, fmt.Errorf("%w: empty symbol", types.ErrInvalidInput)
	}
	timer := logger.StartOperation(ctx, "analyze_stock", "symbol", symbol, "exchange", exchange)
	defer timer.End()

	quote, err := e.provider.Quote(ctx, symbol, exchange)
	if err != nil {
		logger.ErrorWithErr(ctx, "Quote fetch failed", err, "symbol", symbol)
		return types.StockReport{}, err
	}

	series, err := e.provider.DailyHistory(ctx, symbol, exchange, historyDays)
	if err != nil {
		logger.ErrorWithErr(ctx, "History fetch failed", err, "symbol", symbol)
		return types.StockReport{}, err
	}

	fund, err := e.provider.Fundamentals(ctx, symbol, exchange)
	if err != nil {
		// Fundamentals are optional inputs: signals degrade to their
		// documented defaults instead of failing the invocation.
		logger.Warn(ctx, "Fundamentals unavailable", "symbol", symbol, "error", err)
		fund = types.Fundamentals{}
	}

	ind, err := indicator.Compute(series, e.cfg.Thresholds)
	if err != nil {
		return types.StockReport{}, err
	}
	sig := signal.Derive(ind, fund, e.cfg.Thresholds)

	report := assemble.StockReport(symbol, exchange, quote, historyWindows(series), fund, ind, sig, time.Now())

	logger.Signal(ctx, symbol, string(sig.Trend), string(sig.Momentum),
		"valuation", string(sig.Valuation), "risk", string(sig.Risk))

	if err := e.store.SaveStockReport(ctx, report); err != nil {
		logger.ErrorWithErr(ctx, "Report persist failed", err, "symbol", symbol)
	}
	if e.audit {
		if err := auditlog.AppendDerivation(auditlog.DerivationEntry{
			Symbol:   symbol,
			Exchange: exchange,
			Indicators: map[string]string{
				"macd":       string(ind.MACD),
				"ma_20":      string(ind.MA20),
				"ma_50":      string(ind.MA50),
				"ma_200":     string(ind.MA200),
				"volatility": string(ind.Volatility),
			},
			Signals: map[string]string{
				"trend":     string(sig.Trend),
				"valuation": string(sig.Valuation),
				"risk":      string(sig.Risk),
				"momentum":  string(sig.Momentum),
			},
		}); err != nil {
			logger.Warn(ctx, "Audit append failed", "symbol", symbol, "error", err)
		}
	}
	return report, nil
}

// AnalyzeArticle classifies one article, extracting entities and facts
// from its text first.
func (e *Engine) AnalyzeArticle(ctx context.Context, article types.Article) (types.NewsReport, error) {
	if article.Headline == "" {
		return types.NewsReport{}, fmt.Errorf("%w: article has no headline", types.ErrInvalidInput)
	}
	entities := e.extractor.Entities(article.Headline, article.Body)
	facts := e.extractor.Facts(article.Headline, article.Body)
	return e.AnalyzeArticleWith(ctx, article, entities, facts)
}

// AnalyzeArticleWith classifies using caller-supplied entities and
// facts, skipping extraction.
func (e *Engine) AnalyzeArticleWith(ctx context.Context, article types.Article, entities types.Entities, facts []string) (types.NewsReport, error) {
	if article.Headline == "" {
		return types.NewsReport{}, fmt.Errorf("%w: article has no headline", types.ErrInvalidInput)
	}
	timer := logger.StartOperation(ctx, "analyze_article", "source", article.Source)
	defer timer.End()

	cls := e.classifier.Classify(article, entities, facts)
	report := assemble.NewsReport(article, cls, e.cfg.Thresholds.ConfidenceThreshold)

	logger.Classification(ctx, article.Source, string(report.Scope), string(report.NewsType),
		string(report.Impact.Direction), report.Impact.Confidence)

	if err := e.store.SaveNewsReport(ctx, report); err != nil {
		logger.ErrorWithErr(ctx, "News report persist failed", err, "headline", article.Headline)
	}
	if e.audit {
		if err := auditlog.AppendClassification(auditlog.ClassificationEntry{
			Headline:   article.Headline,
			Source:     article.Source,
			Scope:      string(report.Scope),
			NewsType:   string(report.NewsType),
			Direction:  string(report.Impact.Direction),
			Confidence: report.Impact.Confidence,
			FactCount:  len(report.Facts),
		}); err != nil {
			logger.Warn(ctx, "Audit append failed", "headline", article.Headline, "error", err)
		}
	}
	return report, nil
}

// historyWindows slices the raw series into the fixed output windows.
func historyWindows(series types.PriceSeries) map[string][]float64 {
	closes := series.Closes()
	return map[string][]float64{
		"1D":  lastN(closes, 1),
		"14D": lastN(closes, 14),
		"1Y":  closes,
	}
}

func lastN(v []float64, n int) []float64 {
	if len(v) > n {
		v = v[len(v)-n:]
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
