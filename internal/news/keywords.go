package news

import "market-intel/internal/types"

// newsTypePriority fixes the match order: the first type with a keyword
// hit wins. Macro is the default when nothing matches.
var newsTypePriority = []types.NewsType{
	types.NewsEarnings,
	types.NewsPolicy,
	types.NewsGeopolitical,
	types.NewsCorporate,
	types.NewsSentiment,
}

var newsTypeKeywords = map[types.NewsType][]string{
	types.NewsEarnings: {
		"earnings", "quarterly results", "q1 results", "q2 results", "q3 results", "q4 results",
		"revenue", "net profit", "eps", "beat estimates", "missed estimates", "guidance",
	},
	types.NewsPolicy: {
		"interest rate", "rate hike", "rate cut", "federal reserve", "central bank", "rbi",
		"monetary policy", "fiscal policy", "regulation", "tax", "budget", "tariff", "subsidy",
	},
	types.NewsGeopolitical: {
		"war", "conflict", "sanctions", "invasion", "military", "ceasefire",
		"trade war", "election", "diplomatic", "border",
	},
	types.NewsCorporate: {
		"merger", "acquisition", "buyback", "ipo", "stake", "ceo", "cfo", "resignation",
		"layoffs", "restructuring", "dividend", "product launch", "partnership", "joint venture",
	},
	types.NewsSentiment: {
		"investor sentiment", "rally", "selloff", "sell-off", "panic", "euphoria",
		"record high", "record low", "fear", "optimism", "bearish", "bullish",
	},
}

// Polarity keywords drive impact.direction over the extracted facts.
var positiveKeywords = []string{
	"growth", "profit", "surge", "surged", "gain", "gained", "beat", "record", "strong",
	"upgrade", "upgraded", "expansion", "rally", "rallied", "rise", "rose", "jump", "jumped",
	"approval", "approved", "wins", "won", "exceeds", "exceeded",
}

var negativeKeywords = []string{
	"loss", "losses", "decline", "declined", "fall", "fell", "drop", "dropped", "plunge",
	"plunged", "miss", "missed", "downgrade", "downgraded", "layoffs", "default", "fraud",
	"probe", "lawsuit", "recall", "bankruptcy", "warning", "cuts", "slump", "slumped",
}

var horizonKeywords = map[types.Horizon][]string{
	types.HorizonShort: {
		"today", "immediate", "immediately", "intraday", "overnight", "this week", "session",
	},
	types.HorizonMedium: {
		"quarter", "quarterly", "next quarter", "coming months", "this year", "fiscal year",
	},
	types.HorizonLong: {
		"decade", "long-term", "long term", "structural", "multi-year", "by 2030", "over the next five years",
	},
}
