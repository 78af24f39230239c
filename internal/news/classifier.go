// Package news classifies an article into scope, news_type, and impact
// using fixed keyword rules over pre-extracted entities and facts. It
// never predicts and never recommends: impact is a categorization of
// what the article itself states.
package news

import (
	"math"
	"strings"
	"unicode"

	"market-intel/internal/config"
	"market-intel/internal/types"
)

// Classifier evaluates the classification rule tables. It is stateless
// beyond the immutable threshold configuration.
type Classifier struct {
	t config.Thresholds
}

func NewClassifier(t config.Thresholds) *Classifier {
	return &Classifier{t: t}
}

// Classify produces the full classification for one article. Entities
// and facts come from the extraction collaborator; the classifier never
// re-reads the body for entities it was not given.
func (c *Classifier) Classify(article types.Article, entities types.Entities, facts []string) types.NewsClassification {
	confidence := c.confidence(entities, facts)
	return types.NewsClassification{
		Scope:    classifyScope(entities),
		NewsType: classifyNewsType(article),
		Impact: types.Impact{
			Direction:   c.direction(facts, confidence),
			Confidence:  confidence,
			TimeHorizon: classifyHorizon(article, facts),
		},
		Facts:    facts,
		Entities: entities,
	}
}

type scopeRule struct {
	match func(types.Entities) bool
	out   types.Scope
}

// Scope priority: Company > Sector > Country > Global.
var scopeRules = []scopeRule{
	{func(e types.Entities) bool { return len(e.Companies) > 0 }, types.ScopeCompany},
	{func(e types.Entities) bool { return len(e.Sectors) > 0 }, types.ScopeSector},
	{func(e types.Entities) bool { return len(e.Countries) > 0 }, types.ScopeCountry},
	{func(types.Entities) bool { return true }, types.ScopeGlobal},
}

func classifyScope(e types.Entities) types.Scope {
	for _, r := range scopeRules {
		if r.match(e) {
			return r.out
		}
	}
	return types.ScopeGlobal
}

func classifyNewsType(article types.Article) types.NewsType {
	text := strings.ToLower(article.Headline + " " + article.Body)
	for _, nt := range newsTypePriority {
		for _, kw := range newsTypeKeywords[nt] {
			if strings.Contains(text, kw) {
				return nt
			}
		}
	}
	return types.NewsMacro
}

// direction tallies polarity keywords across the facts. Empty facts or
// confidence below the threshold force Unclear regardless of the tally.
func (c *Classifier) direction(facts []string, confidence float64) types.ImpactDirection {
	if len(facts) == 0 || confidence < c.t.ConfidenceThreshold {
		return types.ImpactUnclear
	}
	var pos, neg int
	for _, fact := range facts {
		f := strings.ToLower(fact)
		for _, kw := range positiveKeywords {
			if strings.Contains(f, kw) {
				pos++
			}
		}
		for _, kw := range negativeKeywords {
			if strings.Contains(f, kw) {
				neg++
			}
		}
	}
	switch {
	case pos > neg:
		return types.ImpactPositive
	case neg > pos:
		return types.ImpactNegative
	default:
		return types.ImpactNeutral
	}
}

// confidence is a capped sum of non-negative per-fact contributions, so
// adding a corroborating fact can never lower it. Facts that match a
// polarity keyword count 0.15, facts carrying numbers count 0.10, and
// any extracted entity adds 0.10.
func (c *Classifier) confidence(entities types.Entities, facts []string) float64 {
	conf := 0.0
	for _, fact := range facts {
		f := strings.ToLower(fact)
		if hasPolarity(f) {
			conf += 0.15
		}
		if hasDigit(f) {
			conf += 0.10
		}
	}
	if !entities.Empty() {
		conf += 0.10
	}
	if conf > 1 {
		conf = 1
	}
	return math.Round(conf*100) / 100
}

func classifyHorizon(article types.Article, facts []string) types.Horizon {
	text := strings.ToLower(article.Headline)
	for _, f := range facts {
		text += " " + strings.ToLower(f)
	}
	counts := map[types.Horizon]int{}
	for horizon, kws := range horizonKeywords {
		for _, kw := range kws {
			if strings.Contains(text, kw) {
				counts[horizon]++
			}
		}
	}
	switch {
	case counts[types.HorizonLong] > counts[types.HorizonMedium] && counts[types.HorizonLong] > counts[types.HorizonShort]:
		return types.HorizonLong
	case counts[types.HorizonMedium] > counts[types.HorizonShort]:
		return types.HorizonMedium
	default:
		return types.HorizonShort
	}
}

func hasPolarity(lower string) bool {
	for _, kw := range positiveKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, kw := range negativeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
