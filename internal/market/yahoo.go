package market

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"market-intel/internal/api"
	"market-intel/internal/assemble"
	"market-intel/internal/types"
)

const (
	yahooBaseURL     = "https://query1.finance.yahoo.com"
	yahooChartPath   = "/v8/finance/chart/"
	yahooSummaryPath = "/v10/finance/quoteSummary/"

	yahooRetryWindow = 20 * time.Second
)

// yahooSuffixes maps exchange names to Yahoo symbol suffixes.
var yahooSuffixes = map[string]string{
	"NSE": ".NS",
	"BSE": ".BO",
}

// Yahoo fetches quotes, history, and fundamentals from the public
// Yahoo Finance JSON endpoints.
type Yahoo struct {
	client *api.Client
}

func NewYahoo() *Yahoo {
	opts := []api.ClientOption{
		api.WithTimeout(15 * time.Second),
		api.WithLogging(true),
		api.WithBaseURL(yahooBaseURL),
	}
	for k, v := range api.YahooFinanceHeaders() {
		opts = append(opts, api.WithHeader(k, v))
	}
	return &Yahoo{client: api.NewClient(opts...)}
}

func yahooSymbol(symbol, exchange string) string {
	if suffix, ok := yahooSuffixes[exchange]; ok {
		return symbol + suffix
	}
	return symbol
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (y *Yahoo) fetchChart(ctx context.Context, symbol, exchange, rng string) (*chartResponse, error) {
	u := yahooChartPath + url.PathEscape(yahooSymbol(symbol, exchange)) +
		"?range=" + rng + "&interval=1d"
	req := api.NewRequest("GET", u).WithContext(ctx)
	resp, err := y.client.DoWithRetry(req, yahooRetryWindow)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo chart for %s: %v", types.ErrDataUnavailable, symbol, err)
	}
	var cr chartResponse
	if err := resp.ParseJSON(&cr); err != nil {
		return nil, fmt.Errorf("%w: yahoo chart for %s: %v", types.ErrDataUnavailable, symbol, err)
	}
	if cr.Chart.Error != nil || len(cr.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: yahoo chart for %s", types.ErrDataUnavailable, symbol)
	}
	return &cr, nil
}

// Quote returns the latest price and day change percentage.
func (y *Yahoo) Quote(ctx context.Context, symbol, exchange string) (assemble.Quote, error) {
	cr, err := y.fetchChart(ctx, symbol, exchange, "5d")
	if err != nil {
		return assemble.Quote{}, err
	}
	meta := cr.Chart.Result[0].Meta
	q := assemble.Quote{}
	if meta.RegularMarketPrice != 0 {
		q.Current = types.Some(meta.RegularMarketPrice)
	}
	// Short ranges carry previousClose; longer ones only the range
	// start as chartPreviousClose.
	prev := meta.PreviousClose
	if prev == 0 {
		prev = meta.ChartPreviousClose
	}
	if meta.RegularMarketPrice != 0 && prev != 0 {
		q.ChangePercent = types.Some((meta.RegularMarketPrice - prev) / prev * 100)
	}
	return q, nil
}

// DailyHistory returns daily closes oldest-first. Bars with a null
// close (holidays, halts) are skipped.
func (y *Yahoo) DailyHistory(ctx context.Context, symbol, exchange string, days int) (types.PriceSeries, error) {
	rng := "1y"
	if days > 365 {
		rng = "2y"
	}
	cr, err := y.fetchChart(ctx, symbol, exchange, rng)
	if err != nil {
		return nil, err
	}
	result := cr.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: yahoo history for %s", types.ErrDataUnavailable, symbol)
	}
	closes := result.Indicators.Quote[0].Close

	series := make(types.PriceSeries, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		series = append(series, types.PricePoint{
			Time:  time.Unix(ts, 0).UTC(),
			Close: decimal.NewFromFloat(*closes[i]),
		})
	}
	if len(series) > days {
		series = series[len(series)-days:]
	}
	return series, nil
}

type summaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail *struct {
				TrailingPE *rawValue `json:"trailingPE"`
				MarketCap  *rawValue `json:"marketCap"`
			} `json:"summaryDetail"`
			FinancialData *struct {
				TotalRevenue *rawValue `json:"totalRevenue"`
				TotalDebt    *rawValue `json:"totalDebt"`
			} `json:"financialData"`
			DefaultKeyStatistics *struct {
				NetIncomeToCommon *rawValue `json:"netIncomeToCommon"`
			} `json:"defaultKeyStatistics"`
			AssetProfile *struct {
				Sector string `json:"sector"`
			} `json:"assetProfile"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

type rawValue struct {
	Raw *float64 `json:"raw"`
}

func (v *rawValue) metric() types.Metric {
	if v == nil || v.Raw == nil {
		return types.None()
	}
	return types.Some(*v.Raw)
}

// Fundamentals pulls the named metrics from quoteSummary. Any missing
// module or field maps to explicit absence, never zero.
func (y *Yahoo) Fundamentals(ctx context.Context, symbol, exchange string) (types.Fundamentals, error) {
	// Fundamentals are optional inputs: signals degrade to defaults
	// without them, so one attempt is enough here.
	u := yahooSummaryPath + url.PathEscape(yahooSymbol(symbol, exchange)) +
		"?modules=summaryDetail,financialData,defaultKeyStatistics,assetProfile"
	resp, err := y.client.GET(ctx, u)
	if err != nil {
		return types.Fundamentals{}, fmt.Errorf("%w: yahoo fundamentals for %s: %v", types.ErrDataUnavailable, symbol, err)
	}
	var sr summaryResponse
	if err := resp.ParseJSON(&sr); err != nil {
		return types.Fundamentals{}, fmt.Errorf("%w: yahoo fundamentals for %s: %v", types.ErrDataUnavailable, symbol, err)
	}
	if len(sr.QuoteSummary.Result) == 0 {
		return types.Fundamentals{}, fmt.Errorf("%w: yahoo fundamentals for %s", types.ErrDataUnavailable, symbol)
	}

	r := sr.QuoteSummary.Result[0]
	var f types.Fundamentals
	if r.SummaryDetail != nil {
		f.PERatio = r.SummaryDetail.TrailingPE.metric()
		f.MarketCap = r.SummaryDetail.MarketCap.metric()
	}
	if r.FinancialData != nil {
		f.Revenue = r.FinancialData.TotalRevenue.metric()
		f.Debt = r.FinancialData.TotalDebt.metric()
	}
	if r.DefaultKeyStatistics != nil {
		f.NetProfit = r.DefaultKeyStatistics.NetIncomeToCommon.metric()
	}
	if r.AssetProfile != nil {
		f.Sector = r.AssetProfile.Sector
	}
	return f, nil
}
