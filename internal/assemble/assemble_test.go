package assemble

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"market-intel/internal/types"
)

func TestStockReportSentinels(t *testing.T) {
	asOf := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)
	report := StockReport("RELIANCE", "NSE", Quote{}, nil, types.Fundamentals{},
		types.IndicatorSet{
			MACD:       types.MACDUnavailable,
			MA20:       types.MAUnavailable,
			MA50:       types.MAUnavailable,
			MA200:      types.MAUnavailable,
			Volatility: types.VolatilityUnavailable,
		},
		types.SignalSet{
			Trend:     types.TrendSideways,
			Valuation: types.ValuationFair,
			Risk:      types.RiskMedium,
			Momentum:  types.MomentumModerate,
		}, asOf)

	b, err := json.Marshal(report)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)

	for _, field := range []string{`"current":"Unavailable"`, `"change_percent":"Unavailable"`,
		`"rsi":"Unavailable"`, `"macd":"Unavailable"`, `"sector":"Unavailable"`} {
		if !strings.Contains(s, field) {
			t.Errorf("expected %s in output, got %s", field, s)
		}
	}
	if !strings.Contains(s, `"last_updated":"2026-08-20T10:30:00Z"`) {
		t.Errorf("unexpected last_updated in %s", s)
	}
	if !strings.Contains(s, `"history":{}`) {
		t.Errorf("nil history should serialize as empty object, got %s", s)
	}
}

func TestStockReportAllFieldsPresent(t *testing.T) {
	report := StockReport("TCS", "NSE",
		Quote{Current: types.Some(3500), ChangePercent: types.Some(1.25)},
		map[string][]float64{"1D": {3500}, "14D": {3400, 3500}, "1Y": {3000, 3400, 3500}},
		types.Fundamentals{PERatio: types.Some(28), Sector: "Technology"},
		types.IndicatorSet{RSI: types.Some(62.5), MACD: types.MACDPositive,
			MA20: types.MAAbove, MA50: types.MAAbove, MA200: types.MAAbove,
			Volatility: types.VolatilityLow},
		types.SignalSet{Trend: types.TrendBullish, Valuation: types.ValuationFair,
			Risk: types.RiskLow, Momentum: types.MomentumStrong},
		time.Now())

	b, err := json.Marshal(report)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"symbol", "exchange", "price", "fundamentals", "technicals", "signals", "last_updated"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing top-level field %q", key)
		}
	}
}

func TestStockReportIdempotent(t *testing.T) {
	asOf := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)
	build := func() []byte {
		r := StockReport("INFY", "NSE", Quote{Current: types.Some(1500)},
			map[string][]float64{"1D": {1500}}, types.Fundamentals{},
			types.IndicatorSet{MACD: types.MACDNeutral, MA20: types.MABelow,
				MA50: types.MABelow, MA200: types.MABelow, Volatility: types.VolatilityModerate},
			types.SignalSet{Trend: types.TrendBearish, Valuation: types.ValuationFair,
				Risk: types.RiskMedium, Momentum: types.MomentumModerate}, asOf)
		b, err := json.Marshal(r)
		if err != nil {
			t.Fatal(err)
		}
		return b
	}
	if !bytes.Equal(build(), build()) {
		t.Error("identical inputs produced different serialized reports")
	}
}

func TestNewsReportForcesUnclear(t *testing.T) {
	article := types.Article{Headline: "Acme surges", Source: "Wire", PublishedAt: "2026-08-20"}
	cls := types.NewsClassification{
		Scope:    types.ScopeCompany,
		NewsType: types.NewsSentiment,
		Impact: types.Impact{
			Direction:   types.ImpactPositive,
			Confidence:  0.3,
			TimeHorizon: types.HorizonShort,
		},
		Facts: []string{"Shares surged 10 percent."},
	}
	report := NewsReport(article, cls, 0.5)
	if report.Impact.Direction != types.ImpactUnclear {
		t.Errorf("expected Unclear for confidence below threshold, got %s", report.Impact.Direction)
	}

	// No facts also forces Unclear even with high confidence.
	cls.Impact.Confidence = 0.9
	cls.Facts = nil
	report = NewsReport(article, cls, 0.5)
	if report.Impact.Direction != types.ImpactUnclear {
		t.Errorf("expected Unclear for empty facts, got %s", report.Impact.Direction)
	}
}

func TestNewsReportEmptySlices(t *testing.T) {
	article := types.Article{Headline: "Quiet day", Source: "Wire", PublishedAt: "2026-08-20"}
	report := NewsReport(article, types.NewsClassification{
		Scope:    types.ScopeGlobal,
		NewsType: types.NewsMacro,
		Impact:   types.Impact{Direction: types.ImpactUnclear, TimeHorizon: types.HorizonShort},
	}, 0.5)

	b, err := json.Marshal(report)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	if !strings.Contains(s, `"facts":[]`) {
		t.Errorf("nil facts should serialize as empty array, got %s", s)
	}
	for _, field := range []string{`"countries":[]`, `"sectors":[]`, `"companies":[]`, `"indices":[]`} {
		if !strings.Contains(s, field) {
			t.Errorf("expected %s, got %s", field, s)
		}
	}
}

func TestSummarizeTruncation(t *testing.T) {
	long := strings.Repeat("Revenue rose sharply in the quarter. ", 20)
	report := NewsReport(types.Article{Headline: "Headline"}, types.NewsClassification{
		Scope:    types.ScopeGlobal,
		NewsType: types.NewsMacro,
		Impact:   types.Impact{Direction: types.ImpactUnclear, TimeHorizon: types.HorizonShort},
		Facts:    []string{long},
	}, 0.5)
	if len(report.Summary) > 300 {
		t.Errorf("summary exceeds 300 chars: %d", len(report.Summary))
	}
	if !strings.HasPrefix(report.Summary, "Headline") {
		t.Errorf("summary should start with the headline, got %q", report.Summary)
	}
}

func TestMetricSerialization(t *testing.T) {
	b, err := json.Marshal(types.Some(12.5))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "12.5" {
		t.Errorf("expected 12.5, got %s", b)
	}
	b, err = json.Marshal(types.None())
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"Unavailable"` {
		t.Errorf("expected Unavailable sentinel, got %s", b)
	}
}
