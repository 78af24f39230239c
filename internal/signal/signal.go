// Package signal maps indicator outputs and fundamentals to the four
// categorical signals. Each signal is an ordered table of
// (predicate, outcome) rows; the last row of every table is an
// unconditional fallback, so derivation is total.
package signal

import (
	"market-intel/internal/config"
	"market-intel/internal/types"
)

type inputs struct {
	ind types.IndicatorSet
	fun types.Fundamentals
	t   config.Thresholds
}

type trendRule struct {
	match func(inputs) bool
	out   types.Trend
}

// Trend needs the close strictly on one side of all three averages.
// Any absent average counts as mixed.
var trendRules = []trendRule{
	{func(in inputs) bool {
		return in.ind.MA20 == types.MAAbove && in.ind.MA50 == types.MAAbove && in.ind.MA200 == types.MAAbove
	}, types.TrendBullish},
	{func(in inputs) bool {
		return in.ind.MA20 == types.MABelow && in.ind.MA50 == types.MABelow && in.ind.MA200 == types.MABelow
	}, types.TrendBearish},
	{func(inputs) bool { return true }, types.TrendSideways},
}

type valuationRule struct {
	match func(inputs) bool
	out   types.Valuation
}

// Valuation comparisons are strict: a PE exactly on a bound is Fair.
// Absent PE also lands on Fair (documented default).
var valuationRules = []valuationRule{
	{func(in inputs) bool {
		return in.fun.PERatio.Present && in.fun.PERatio.Value < in.t.PELow
	}, types.ValuationUndervalued},
	{func(in inputs) bool {
		return in.fun.PERatio.Present && in.fun.PERatio.Value > in.t.PEHigh
	}, types.ValuationOvervalued},
	{func(inputs) bool { return true }, types.ValuationFair},
}

type riskRule struct {
	match func(inputs) bool
	out   types.RiskLevel
}

var riskRules = []riskRule{
	{func(in inputs) bool { return in.ind.Volatility == types.VolatilityLow }, types.RiskLow},
	{func(in inputs) bool { return in.ind.Volatility == types.VolatilityHigh }, types.RiskHigh},
	{func(inputs) bool { return true }, types.RiskMedium},
}

type momentumRule struct {
	match func(inputs) bool
	out   types.Momentum
}

var momentumRules = []momentumRule{
	{func(in inputs) bool {
		return in.ind.RSI.Present && in.ind.RSI.Value > in.t.RSIOverbought && in.ind.MACD == types.MACDPositive
	}, types.MomentumStrong},
	{func(in inputs) bool {
		return in.ind.RSI.Present && in.ind.RSI.Value < in.t.RSIOversold && in.ind.MACD == types.MACDNegative
	}, types.MomentumWeak},
	{func(inputs) bool { return true }, types.MomentumModerate},
}

// Derive evaluates all four rule tables. It is a total function: every
// field of the result is set no matter which inputs are absent.
func Derive(ind types.IndicatorSet, fun types.Fundamentals, t config.Thresholds) types.SignalSet {
	in := inputs{ind: ind, fun: fun, t: t}
	return types.SignalSet{
		Trend:     deriveTrend(in),
		Valuation: deriveValuation(in),
		Risk:      deriveRisk(in),
		Momentum:  deriveMomentum(in),
	}
}

func deriveTrend(in inputs) types.Trend {
	for _, r := range trendRules {
		if r.match(in) {
			return r.out
		}
	}
	return types.TrendSideways
}

func deriveValuation(in inputs) types.Valuation {
	for _, r := range valuationRules {
		if r.match(in) {
			return r.out
		}
	}
	return types.ValuationFair
}

func deriveRisk(in inputs) types.RiskLevel {
	for _, r := range riskRules {
		if r.match(in) {
			return r.out
		}
	}
	return types.RiskMedium
}

func deriveMomentum(in inputs) types.Momentum {
	for _, r := range momentumRules {
		if r.match(in) {
			return r.out
		}
	}
	return types.MomentumModerate
}
