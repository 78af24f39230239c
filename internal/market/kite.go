package market

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"market-intel/internal/assemble"
	"market-intel/internal/types"
)

// Kite serves quotes and history from the Zerodha Kite Connect API.
// Historical candles need the numeric instrument token, so the provider
// carries a symbol->token map from configuration. Kite has no
// fundamentals endpoint; those come back fully absent.
type Kite struct {
	kc     *kiteconnect.Client
	tokens map[string]int
}

func NewKite(apiKey, accessToken string, tokens map[string]int) *Kite {
	kc := kiteconnect.New(apiKey)
	kc.SetAccessToken(accessToken)
	return &Kite{kc: kc, tokens: tokens}
}

func kiteInstrument(symbol, exchange string) string {
	if exchange == "" {
		exchange = "NSE"
	}
	return exchange + ":" + symbol
}

// Quote returns the last traded price and day change computed against
// the previous close from the OHLC snapshot.
func (k *Kite) Quote(ctx context.Context, symbol, exchange string) (assemble.Quote, error) {
	instrument := kiteInstrument(symbol, exchange)
	ohlc, err := k.kc.GetOHLC(instrument)
	if err != nil {
		return assemble.Quote{}, fmt.Errorf("%w: kite quote for %s: %v", types.ErrDataUnavailable, symbol, err)
	}
	q, ok := ohlc[instrument]
	if !ok {
		return assemble.Quote{}, fmt.Errorf("%w: kite quote for %s", types.ErrDataUnavailable, symbol)
	}

	out := assemble.Quote{}
	if q.LastPrice != 0 {
		out.Current = types.Some(q.LastPrice)
	}
	if q.LastPrice != 0 && q.OHLC.Close != 0 {
		out.ChangePercent = types.Some((q.LastPrice - q.OHLC.Close) / q.OHLC.Close * 100)
	}
	return out, nil
}

// DailyHistory fetches day candles for the configured instrument token.
// A symbol without a token mapping cannot be served.
func (k *Kite) DailyHistory(ctx context.Context, symbol, exchange string, days int) (types.PriceSeries, error) {
	token, ok := k.tokens[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: no instrument token configured for %s", types.ErrDataUnavailable, symbol)
	}

	to := time.Now()
	// Calendar padding so `days` trading sessions survive weekends and
	// holidays.
	from := to.AddDate(0, 0, -(days*3/2 + 7))
	candles, err := k.kc.GetHistoricalData(token, "day", from, to, false, false)
	if err != nil {
		return nil, fmt.Errorf("%w: kite history for %s: %v", types.ErrDataUnavailable, symbol, err)
	}

	series := make(types.PriceSeries, 0, len(candles))
	for _, c := range candles {
		series = append(series, types.PricePoint{
			Time:  c.Date.Time.UTC(),
			Close: decimal.NewFromFloat(c.Close),
		})
	}
	if len(series) > days {
		series = series[len(series)-days:]
	}
	return series, nil
}

// Fundamentals always reports full absence: Kite exposes no
// fundamentals data. Signal derivation degrades to its documented
// defaults downstream.
func (k *Kite) Fundamentals(ctx context.Context, symbol, exchange string) (types.Fundamentals, error) {
	return types.Fundamentals{}, nil
}
