package indicator

import (
	"math"

	"market-intel/internal/config"
	"market-intel/internal/types"
)

// epsilon bounds the MACD neutral band around zero.
const epsilon = 1e-9

// tradingDaysPerYear annualizes the return standard deviation.
const tradingDaysPerYear = 252

// Compute derives the full indicator set from a price series. A series
// too short for a given indicator yields an absent value for that
// indicator only; a malformed series fails the whole call.
func Compute(series types.PriceSeries, t config.Thresholds) (types.IndicatorSet, error) {
	if err := series.Validate(); err != nil {
		return types.IndicatorSet{}, err
	}
	closes := series.Closes()
	for _, c := range closes {
		if !isFinite(c) {
			return types.IndicatorSet{}, types.ErrInvalidInput
		}
	}
	return types.IndicatorSet{
		RSI:        RSI(closes, t.RSIPeriod),
		MACD:       MACD(closes, t.MACDFast, t.MACDSlow),
		MA20:       MAPosition(closes, t.MAShort),
		MA50:       MAPosition(closes, t.MAMedium),
		MA200:      MAPosition(closes, t.MALong),
		Volatility: Volatility(closes, t.VolatilityLookback, t.VolatilityLow, t.VolatilityHigh),
	}, nil
}

// RSI computes the Relative Strength Index with Wilder smoothing. The
// first `period` deltas seed the average gain/loss; the remainder of
// the series is smoothed. Needs at least period+1 closes.
func RSI(closes []float64, period int) types.Metric {
	if period < 1 || len(closes) < period+1 {
		return types.None()
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains += d
		} else {
			losses -= d
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if !isFinite(avgGain) || !isFinite(avgLoss) {
		return types.None()
	}
	if avgLoss == 0 {
		return types.Some(100)
	}
	rs := avgGain / avgLoss
	v := 100 - 100/(1+rs)
	if !isFinite(v) {
		return types.None()
	}
	return types.Some(v)
}

// MACD classifies EMA(fast)-EMA(slow) against zero. Needs at least
// `slow` closes; a difference within epsilon of zero is Neutral.
func MACD(closes []float64, fast, slow int) types.MACDSignal {
	if fast < 1 || slow <= fast || len(closes) < slow {
		return types.MACDUnavailable
	}
	diff := ema(closes, fast) - ema(closes, slow)
	switch {
	case !isFinite(diff):
		return types.MACDUnavailable
	case diff > epsilon:
		return types.MACDPositive
	case diff < -epsilon:
		return types.MACDNegative
	default:
		return types.MACDNeutral
	}
}

// MAPosition compares the latest close to the simple moving average of
// the last `window` closes. Equality counts as Below: only a close
// strictly above the average is Above.
func MAPosition(closes []float64, window int) types.MAPosition {
	if window < 1 || len(closes) < window {
		return types.MAUnavailable
	}
	sum := 0.0
	for i := len(closes) - window; i < len(closes); i++ {
		sum += closes[i]
	}
	ma := sum / float64(window)
	last := closes[len(closes)-1]
	if !isFinite(ma) {
		return types.MAUnavailable
	}
	if last > ma {
		return types.MAAbove
	}
	return types.MABelow
}

// Volatility buckets the annualized standard deviation of the last
// `lookback` percentage returns. Needs lookback+1 closes.
func Volatility(closes []float64, lookback int, low, high float64) types.VolatilityLevel {
	if lookback < 2 || len(closes) < lookback+1 {
		return types.VolatilityUnavailable
	}
	tail := closes[len(closes)-lookback-1:]
	returns := make([]float64, lookback)
	for i := 1; i < len(tail); i++ {
		returns[i-1] = (tail[i] - tail[i-1]) / tail[i-1] * 100
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(lookback)
	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(lookback)
	annualized := math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear)
	switch {
	case !isFinite(annualized):
		return types.VolatilityUnavailable
	case annualized < low:
		return types.VolatilityLow
	case annualized > high:
		return types.VolatilityHigh
	default:
		return types.VolatilityModerate
	}
}

// ema is the exponential moving average seeded with the first value,
// alpha = 2/(n+1).
func ema(values []float64, n int) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	alpha := 2.0 / (float64(n) + 1.0)
	v := values[0]
	for i := 1; i < len(values); i++ {
		v = alpha*values[i] + (1-alpha)*v
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
