// Package assemble merges computed pieces into the mandatory output
// records. It substitutes sentinels for missing values and derives
// nothing itself: every schema field is always present.
package assemble

import (
	"strings"
	"time"

	"market-intel/internal/types"
)

const maxSummaryLength = 300

// Quote is the current-price slice of a stock report; either field may
// be absent when the acquisition collaborator could not supply it.
type Quote struct {
	Current       types.Metric
	ChangePercent types.Metric
}

// StockReport builds the stock output record. asOf is supplied by the
// caller so identical inputs assemble to identical bytes.
func StockReport(symbol, exchange string, quote Quote, history map[string][]float64,
	fund types.Fundamentals, ind types.IndicatorSet, sig types.SignalSet, asOf time.Time) types.StockReport {

	if history == nil {
		history = map[string][]float64{}
	}
	sector := fund.Sector
	if sector == "" {
		sector = types.Unavailable
	}
	return types.StockReport{
		Symbol:   symbol,
		Exchange: exchange,
		Price: types.PriceBlock{
			Current:       quote.Current,
			ChangePercent: quote.ChangePercent,
			History:       history,
		},
		Fundamentals: types.FundamentalsBlock{
			Revenue:   fund.Revenue,
			NetProfit: fund.NetProfit,
			Debt:      fund.Debt,
			PERatio:   fund.PERatio,
			MarketCap: fund.MarketCap,
			Sector:    sector,
		},
		Technicals:  ind,
		Signals:     sig,
		LastUpdated: asOf.UTC().Format(time.RFC3339),
	}
}

// NewsReport builds the news output record. The Unclear substitution
// for a below-threshold direction is re-applied here so the assembled
// record honors the contract even if a caller bypassed the classifier
// gate.
func NewsReport(article types.Article, cls types.NewsClassification, confidenceThreshold float64) types.NewsReport {
	impact := cls.Impact
	if len(cls.Facts) == 0 || impact.Confidence < confidenceThreshold {
		impact.Direction = types.ImpactUnclear
	}
	facts := cls.Facts
	if facts == nil {
		facts = []string{}
	}
	entities := cls.Entities
	if entities.Countries == nil {
		entities.Countries = []string{}
	}
	if entities.Sectors == nil {
		entities.Sectors = []string{}
	}
	if entities.Companies == nil {
		entities.Companies = []string{}
	}
	if entities.Indices == nil {
		entities.Indices = []string{}
	}
	return types.NewsReport{
		Headline:    article.Headline,
		Source:      article.Source,
		PublishedAt: article.PublishedAt,
		Scope:       cls.Scope,
		NewsType:    cls.NewsType,
		Entities:    entities,
		Impact:      impact,
		Facts:       facts,
		Summary:     summarize(article.Headline, facts),
	}
}

// summarize joins the headline with leading facts, truncated. Plain
// concatenation only: no inference beyond the article's own content.
func summarize(headline string, facts []string) string {
	parts := []string{strings.TrimSpace(headline)}
	length := len(headline)
	for _, f := range facts {
		if length+len(f) > maxSummaryLength {
			break
		}
		parts = append(parts, f)
		length += len(f)
	}
	summary := strings.Join(parts, " ")
	if len(summary) > maxSummaryLength {
		summary = summary[:maxSummaryLength]
	}
	return strings.TrimSpace(summary)
}
