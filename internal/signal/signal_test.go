package signal

import (
	"testing"

	"market-intel/internal/config"
	"market-intel/internal/types"
)

func thresholds() config.Thresholds {
	return config.Default().Thresholds
}

func TestTrend(t *testing.T) {
	cases := []struct {
		name              string
		ma20, ma50, ma200 types.MAPosition
		want              types.Trend
	}{
		{"all above", types.MAAbove, types.MAAbove, types.MAAbove, types.TrendBullish},
		{"all below", types.MABelow, types.MABelow, types.MABelow, types.TrendBearish},
		{"mixed", types.MAAbove, types.MABelow, types.MAAbove, types.TrendSideways},
		{"one unavailable", types.MAAbove, types.MAAbove, types.MAUnavailable, types.TrendSideways},
		{"all unavailable", types.MAUnavailable, types.MAUnavailable, types.MAUnavailable, types.TrendSideways},
	}
	for _, c := range cases {
		ind := types.IndicatorSet{MA20: c.ma20, MA50: c.ma50, MA200: c.ma200}
		got := Derive(ind, types.Fundamentals{}, thresholds()).Trend
		if got != c.want {
			t.Errorf("%s: expected %s, got %s", c.name, c.want, got)
		}
	}
}

func TestValuationBoundaries(t *testing.T) {
	cases := []struct {
		pe   types.Metric
		want types.Valuation
	}{
		{types.Some(14.99), types.ValuationUndervalued},
		{types.Some(15), types.ValuationFair}, // exactly on the bound
		{types.Some(22), types.ValuationFair},
		{types.Some(30), types.ValuationFair}, // exactly on the bound
		{types.Some(30.01), types.ValuationOvervalued},
		{types.None(), types.ValuationFair}, // absent PE defaults to Fair
	}
	for _, c := range cases {
		got := Derive(types.IndicatorSet{}, types.Fundamentals{PERatio: c.pe}, thresholds()).Valuation
		if got != c.want {
			t.Errorf("pe=%+v: expected %s, got %s", c.pe, c.want, got)
		}
	}
}

func TestRisk(t *testing.T) {
	cases := []struct {
		vol  types.VolatilityLevel
		want types.RiskLevel
	}{
		{types.VolatilityLow, types.RiskLow},
		{types.VolatilityModerate, types.RiskMedium},
		{types.VolatilityHigh, types.RiskHigh},
		{types.VolatilityUnavailable, types.RiskMedium},
	}
	for _, c := range cases {
		got := Derive(types.IndicatorSet{Volatility: c.vol}, types.Fundamentals{}, thresholds()).Risk
		if got != c.want {
			t.Errorf("volatility=%s: expected %s, got %s", c.vol, c.want, got)
		}
	}
}

func TestMomentum(t *testing.T) {
	cases := []struct {
		name string
		rsi  types.Metric
		macd types.MACDSignal
		want types.Momentum
	}{
		{"overbought with positive macd", types.Some(65), types.MACDPositive, types.MomentumStrong},
		{"oversold with negative macd", types.Some(35), types.MACDNegative, types.MomentumWeak},
		{"middle rsi", types.Some(50), types.MACDPositive, types.MomentumModerate},
		{"overbought but macd negative", types.Some(65), types.MACDNegative, types.MomentumModerate},
		{"exactly on overbought bound", types.Some(60), types.MACDPositive, types.MomentumModerate},
		{"absent rsi", types.None(), types.MACDPositive, types.MomentumModerate},
		{"unavailable macd", types.Some(65), types.MACDUnavailable, types.MomentumModerate},
	}
	for _, c := range cases {
		ind := types.IndicatorSet{RSI: c.rsi, MACD: c.macd}
		got := Derive(ind, types.Fundamentals{}, thresholds()).Momentum
		if got != c.want {
			t.Errorf("%s: expected %s, got %s", c.name, c.want, got)
		}
	}
}

func TestDeriveIsTotal(t *testing.T) {
	// Zero-value inputs must still yield a fully populated signal set.
	sig := Derive(types.IndicatorSet{}, types.Fundamentals{}, thresholds())
	if sig.Trend == "" || sig.Valuation == "" || sig.Risk == "" || sig.Momentum == "" {
		t.Errorf("expected every signal populated, got %+v", sig)
	}
	if sig.Trend != types.TrendSideways {
		t.Errorf("expected Sideways default, got %s", sig.Trend)
	}
	if sig.Valuation != types.ValuationFair {
		t.Errorf("expected Fair default, got %s", sig.Valuation)
	}
	if sig.Risk != types.RiskMedium {
		t.Errorf("expected Medium default, got %s", sig.Risk)
	}
	if sig.Momentum != types.MomentumModerate {
		t.Errorf("expected Moderate default, got %s", sig.Momentum)
	}
}
