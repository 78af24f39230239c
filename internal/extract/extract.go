// Package extract is the text-extraction collaborator: it turns raw
// article text into the entity sets and candidate facts the classifier
// consumes. The derivation engine itself never extracts inline.
package extract

import (
	"regexp"
	"sort"
	"strings"

	"market-intel/internal/types"
)

const (
	maxEntitiesPerKind = 5
	maxFacts           = 10
	minFactLength      = 20
)

var countries = []string{
	"United States", "USA", "US", "China", "PRC", "India", "Japan", "Germany",
	"United Kingdom", "UK", "France", "Italy", "Canada", "Brazil", "Russia",
	"South Korea", "Australia", "Mexico", "Indonesia", "Saudi Arabia",
	"Switzerland", "Netherlands", "Turkey", "Taiwan", "Argentina", "Israel",
	"Singapore", "Hong Kong", "Vietnam", "Egypt", "Pakistan", "Bangladesh",
}

// countryAliases normalizes abbreviations onto the full name.
var countryAliases = map[string]string{
	"USA": "United States",
	"US":  "United States",
	"UK":  "United Kingdom",
	"PRC": "China",
}

var sectorKeywords = map[string]string{
	"bank":           "Banking",
	"banking":        "Banking",
	"lender":         "Banking",
	"pharma":         "Pharmaceuticals",
	"pharmaceutical": "Pharmaceuticals",
	"drugmaker":      "Pharmaceuticals",
	"automobile":     "Automotive",
	"automaker":      "Automotive",
	"carmaker":       "Automotive",
	"software":       "Technology",
	"semiconductor":  "Technology",
	"chipmaker":      "Technology",
	"oil":            "Energy",
	"gas":            "Energy",
	"renewable":      "Energy",
	"airline":        "Aviation",
	"aviation":       "Aviation",
	"retail":         "Retail",
	"retailer":       "Retail",
	"telecom":        "Telecom",
	"insurance":      "Insurance",
	"insurer":        "Insurance",
	"real estate":    "Real Estate",
	"steel":          "Metals",
	"mining":         "Metals",
}

var indices = []string{
	"S&P 500", "NASDAQ", "Dow Jones", "FTSE 100", "DAX", "Nikkei 225", "Nikkei",
	"Hang Seng", "Nifty 50", "Nifty", "Sensex", "CAC 40", "Russell 2000",
}

var factIndicators = []string{
	"announced", "reported", "confirmed", "stated", "said",
	"revealed", "disclosed", "showed", "indicated", "declared",
}

var speculationWords = []string{
	"may", "might", "could", "possibly", "perhaps", "likely", "expected to", "predicted",
}

var (
	digitRe       = regexp.MustCompile(`\d`)
	companyRe     = regexp.MustCompile(`([A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+)*)\s+(Inc|Corp|Ltd|LLC|Plc|AG|SE|NV)\b`)
	sentenceSplit = regexp.MustCompile(`[.!?]+\s+`)
	boundRes      = map[string]*regexp.Regexp{}
)

func init() {
	terms := append([]string{}, countries...)
	terms = append(terms, indices...)
	terms = append(terms, speculationWords...)
	for _, t := range terms {
		boundRes[t] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(t) + `\b`)
	}
}

// Extractor is stateless; all reference tables are package-level and
// read-only after init, so concurrent use is safe.
type Extractor struct{}

func NewExtractor() *Extractor { return &Extractor{} }

// Entities scans headline and body for known countries, sector
// keywords, market indices, and suffix-style company names. Matches are
// deduplicated and capped per kind.
func (e *Extractor) Entities(headline, body string) types.Entities {
	text := headline + " " + body
	lower := strings.ToLower(text)

	var ents types.Entities
	seen := map[string]bool{}
	for _, country := range countries {
		if !boundRes[country].MatchString(text) {
			continue
		}
		name := country
		if alias, ok := countryAliases[country]; ok {
			name = alias
		}
		if !seen[name] && len(ents.Countries) < maxEntitiesPerKind {
			seen[name] = true
			ents.Countries = append(ents.Countries, name)
		}
	}

	seenSector := map[string]bool{}
	for kw, sector := range sectorKeywords {
		if strings.Contains(lower, kw) && !seenSector[sector] {
			seenSector[sector] = true
			ents.Sectors = append(ents.Sectors, sector)
		}
	}
	// Map iteration order is random; keep the output deterministic.
	sort.Strings(ents.Sectors)
	if len(ents.Sectors) > maxEntitiesPerKind {
		ents.Sectors = ents.Sectors[:maxEntitiesPerKind]
	}

	for _, index := range indices {
		if len(ents.Indices) == maxEntitiesPerKind {
			break
		}
		if boundRes[index].MatchString(text) && !prefixCovered(ents.Indices, index) {
			ents.Indices = append(ents.Indices, index)
		}
	}

	for _, m := range companyRe.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1]) + " " + m[2]
		if !containsString(ents.Companies, name) && len(ents.Companies) < maxEntitiesPerKind {
			ents.Companies = append(ents.Companies, name)
		}
	}
	return ents
}

// Facts keeps sentences that report something concrete: they carry a
// report verb or a number, and no speculation or question marks.
func (e *Extractor) Facts(headline, body string) []string {
	var facts []string
	for _, sentence := range sentenceSplit.Split(body, -1) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) < minFactLength || strings.HasSuffix(sentence, "?") {
			continue
		}
		if !isFactual(sentence) {
			continue
		}
		facts = append(facts, cleanFact(sentence))
		if len(facts) == maxFacts {
			break
		}
	}
	return facts
}

func isFactual(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, w := range speculationWords {
		if boundRes[w].MatchString(lower) {
			return false
		}
	}
	for _, ind := range factIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return digitRe.MatchString(sentence)
}

func cleanFact(sentence string) string {
	fact := strings.Join(strings.Fields(sentence), " ")
	if !strings.HasSuffix(fact, ".") {
		fact += "."
	}
	return fact
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// prefixCovered drops "Nifty" when "Nifty 50" already matched.
func prefixCovered(list []string, s string) bool {
	for _, v := range list {
		if v == s || strings.HasPrefix(v, s+" ") {
			return true
		}
	}
	return false
}
