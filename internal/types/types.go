package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel strings that are part of the output contract. Absent numeric
// and categorical fields serialize to Unavailable; a low-confidence
// impact direction serializes to Unclear.
const (
	Unavailable = "Unavailable"
	Unclear     = "Unclear"
)

var (
	// ErrInvalidInput marks malformed input that fails the whole invocation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDataUnavailable marks an upstream source that could not supply data.
	ErrDataUnavailable = errors.New("data unavailable")
)

// PricePoint is a single close observation.
type PricePoint struct {
	Time  time.Time
	Close decimal.Decimal
}

// PriceSeries is a chronological sequence of closes with unique timestamps.
type PriceSeries []PricePoint

// Validate checks ordering and timestamp uniqueness. An empty series is
// valid input: indicators degrade to absent rather than erroring.
func (s PriceSeries) Validate() error {
	for i := 1; i < len(s); i++ {
		if !s[i].Time.After(s[i-1].Time) {
			return fmt.Errorf("%w: series not strictly chronological at index %d", ErrInvalidInput, i)
		}
	}
	return nil
}

// Closes returns the close prices as float64 for indicator math.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Close.InexactFloat64()
	}
	return out
}

// Metric is a numeric value with explicit absence. Absent metrics
// serialize as the Unavailable sentinel, never as zero.
type Metric struct {
	Value   float64
	Present bool
}

func Some(v float64) Metric { return Metric{Value: v, Present: true} }
func None() Metric          { return Metric{} }

// MarshalJSON emits the value rounded to two decimals, or the
// Unavailable sentinel when absent.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Present || math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
		return []byte(`"` + Unavailable + `"`), nil
	}
	return []byte(fmt.Sprintf("%g", math.Round(m.Value*100)/100)), nil
}

// UnmarshalJSON accepts a JSON number or the Unavailable sentinel, so
// serialized reports round-trip.
func (m *Metric) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == `"`+Unavailable+`"` || s == "null" {
		*m = Metric{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("metric must be a number or %q: %w", Unavailable, err)
	}
	*m = Metric{Value: v, Present: true}
	return nil
}

// Fundamentals holds the named metrics used by signal derivation.
// Every field carries explicit absence; Sector is "" when unknown.
type Fundamentals struct {
	Revenue   Metric
	NetProfit Metric
	Debt      Metric
	PERatio   Metric
	MarketCap Metric
	Sector    string
}

// MACDSignal classifies the EMA(fast)-EMA(slow) difference.
type MACDSignal string

const (
	MACDPositive    MACDSignal = "Positive"
	MACDNegative    MACDSignal = "Negative"
	MACDNeutral     MACDSignal = "Neutral"
	MACDUnavailable MACDSignal = Unavailable
)

// MAPosition places the latest close relative to a moving average.
type MAPosition string

const (
	MAAbove       MAPosition = "Above"
	MABelow       MAPosition = "Below"
	MAUnavailable MAPosition = Unavailable
)

// VolatilityLevel buckets annualized return dispersion.
type VolatilityLevel string

const (
	VolatilityLow         VolatilityLevel = "Low"
	VolatilityModerate    VolatilityLevel = "Moderate"
	VolatilityHigh        VolatilityLevel = "High"
	VolatilityUnavailable VolatilityLevel = Unavailable
)

// IndicatorSet is the full technical indicator output for one series.
type IndicatorSet struct {
	RSI        Metric          `json:"rsi"`
	MACD       MACDSignal      `json:"macd"`
	MA20       MAPosition      `json:"ma_20"`
	MA50       MAPosition      `json:"ma_50"`
	MA200      MAPosition      `json:"ma_200"`
	Volatility VolatilityLevel `json:"volatility"`
}

type Trend string

const (
	TrendBullish  Trend = "Bullish"
	TrendBearish  Trend = "Bearish"
	TrendSideways Trend = "Sideways"
)

type Valuation string

const (
	ValuationUndervalued Valuation = "Undervalued"
	ValuationFair        Valuation = "Fair"
	ValuationOvervalued  Valuation = "Overvalued"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

type Momentum string

const (
	MomentumStrong   Momentum = "Strong"
	MomentumModerate Momentum = "Moderate"
	MomentumWeak     Momentum = "Weak"
)

// SignalSet is total: every field always holds one of its enum values,
// with documented defaults when the underlying inputs are absent.
type SignalSet struct {
	Trend     Trend     `json:"trend"`
	Valuation Valuation `json:"valuation"`
	Risk      RiskLevel `json:"risk"`
	Momentum  Momentum  `json:"momentum"`
}

// Article is raw news input: metadata plus text. PublishedAt passes
// through verbatim to the output record.
type Article struct {
	Headline    string `json:"headline"`
	Body        string `json:"body"`
	Source      string `json:"source"`
	URL         string `json:"url,omitempty"`
	PublishedAt string `json:"published_at"`
}

// Entities are the pre-extracted named entities an article mentions.
type Entities struct {
	Countries []string `json:"countries"`
	Sectors   []string `json:"sectors"`
	Companies []string `json:"companies"`
	Indices   []string `json:"indices"`
}

// Empty reports whether no entity of any kind was found.
func (e Entities) Empty() bool {
	return len(e.Countries) == 0 && len(e.Sectors) == 0 && len(e.Companies) == 0 && len(e.Indices) == 0
}

type Scope string

const (
	ScopeCompany Scope = "Company"
	ScopeSector  Scope = "Sector"
	ScopeCountry Scope = "Country"
	ScopeGlobal  Scope = "Global"
)

type NewsType string

const (
	NewsMacro        NewsType = "Macro"
	NewsEarnings     NewsType = "Earnings"
	NewsPolicy       NewsType = "Policy"
	NewsGeopolitical NewsType = "Geopolitical"
	NewsCorporate    NewsType = "Corporate"
	NewsSentiment    NewsType = "Sentiment"
)

type ImpactDirection string

const (
	ImpactPositive ImpactDirection = "Positive"
	ImpactNegative ImpactDirection = "Negative"
	ImpactNeutral  ImpactDirection = "Neutral"
	ImpactUnclear  ImpactDirection = Unclear
)

type Horizon string

const (
	HorizonShort  Horizon = "Short"
	HorizonMedium Horizon = "Medium"
	HorizonLong   Horizon = "Long"
)

// Impact describes the factual categorization of an article's stated
// content. It is never a recommendation.
type Impact struct {
	Direction   ImpactDirection `json:"direction"`
	Confidence  float64         `json:"confidence"`
	TimeHorizon Horizon         `json:"time_horizon"`
}

// NewsClassification is the classifier output before assembly.
type NewsClassification struct {
	Scope    Scope
	NewsType NewsType
	Impact   Impact
	Facts    []string
	Entities Entities
}
