package types

// PriceBlock is the price section of a stock report.
type PriceBlock struct {
	Current       Metric               `json:"current"`
	ChangePercent Metric               `json:"change_percent"`
	History       map[string][]float64 `json:"history"`
}

// FundamentalsBlock is the serialized form of Fundamentals. Sector is a
// plain string so the Unavailable sentinel substitutes for "".
type FundamentalsBlock struct {
	Revenue   Metric `json:"revenue"`
	NetProfit Metric `json:"net_profit"`
	Debt      Metric `json:"debt"`
	PERatio   Metric `json:"pe_ratio"`
	MarketCap Metric `json:"market_cap"`
	Sector    string `json:"sector"`
}

// StockReport is the mandatory stock output record. Field names and
// sentinel spellings are part of the external contract.
type StockReport struct {
	Symbol       string            `json:"symbol"`
	Exchange     string            `json:"exchange"`
	Price        PriceBlock        `json:"price"`
	Fundamentals FundamentalsBlock `json:"fundamentals"`
	Technicals   IndicatorSet      `json:"technicals"`
	Signals      SignalSet         `json:"signals"`
	LastUpdated  string            `json:"last_updated"`
}

// NewsReport is the mandatory news output record.
type NewsReport struct {
	Headline    string   `json:"headline"`
	Source      string   `json:"source"`
	PublishedAt string   `json:"published_at"`
	Scope       Scope    `json:"scope"`
	NewsType    NewsType `json:"news_type"`
	Entities    Entities `json:"entities"`
	Impact      Impact   `json:"impact"`
	Facts       []string `json:"facts"`
	Summary     string   `json:"summary"`
}
