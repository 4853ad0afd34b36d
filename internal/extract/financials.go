package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/idea-research/internal/model"
)

var (
	sentenceRe = regexp.MustCompile(`[.!?](?:\s+|$)`)
	moneyRe    = regexp.MustCompile(`(?i)\$\s?(\d+(?:[.,]\d+)*)\s?(thousand|million|billion|bn|k|m|b)?\b`)
	percentRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s?%`)
)

// category keywords checked against a lower-cased sentence.
var (
	costWords    = []string{"cost", "expense", "investment", "budget"}
	revenueWords = []string{"revenue", "income", "earnings"}
	fundingWords = []string{"funding", "raised", "seed", "series"}
	marketWords  = []string{"market size", "valuation", "worth", "valued at"}
	growthWords  = []string{"growth", "cagr", "increase", "expansion", "grew"}
	marginWords  = []string{"margin", "profit"}
)

// ParseMoney converts "$2.5M", "$50k", "$1B" or "$3 billion" to dollars.
// ok is false when s holds no amount.
func ParseMoney(s string) (float64, bool) {
	m := moneyRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToLower(m[2]) {
	case "b", "bn", "billion":
		v *= 1e9
	case "m", "million":
		v *= 1e6
	case "k", "thousand":
		v *= 1e3
	}
	return v, true
}

// Financials categorises every money and percent value in text by the
// words of the sentence it appears in. A value can land in several
// categories.
func Financials(text string) model.FinancialSignals {
	var out model.FinancialSignals
	for _, sentence := range sentenceRe.Split(text, -1) {
		lower := strings.ToLower(sentence)

		var money []float64
		for _, m := range moneyRe.FindAllString(sentence, -1) {
			if v, ok := ParseMoney(m); ok && v > 0 {
				money = append(money, v)
			}
		}
		var pct []float64
		for _, m := range percentRe.FindAllStringSubmatch(sentence, -1) {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				pct = append(pct, v)
			}
		}

		if containsAny(lower, costWords) {
			out.StartupCosts = append(out.StartupCosts, money...)
		}
		if containsAny(lower, revenueWords) {
			out.RevenueFigures = append(out.RevenueFigures, money...)
		}
		if containsAny(lower, fundingWords) {
			out.FundingAmounts = append(out.FundingAmounts, money...)
		}
		if containsAny(lower, marketWords) {
			out.MarketSizes = append(out.MarketSizes, money...)
		}
		if containsAny(lower, growthWords) {
			out.GrowthRates = append(out.GrowthRates, pct...)
		}
		if containsAny(lower, marginWords) {
			out.ProfitMargins = append(out.ProfitMargins, pct...)
		}
	}
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// signalSet accumulates signals across pages with per-category dedupe.
type signalSet struct {
	cats [6]*floatSet
}

func newSignalSet() *signalSet {
	s := &signalSet{}
	for i := range s.cats {
		s.cats[i] = &floatSet{seen: make(map[float64]bool), values: []float64{}}
	}
	return s
}

func (s *signalSet) addAll(f model.FinancialSignals) {
	for i, vals := range [][]float64{f.StartupCosts, f.RevenueFigures, f.FundingAmounts, f.MarketSizes, f.GrowthRates, f.ProfitMargins} {
		for _, v := range vals {
			s.cats[i].add(v)
		}
	}
}

func (s *signalSet) signals() model.FinancialSignals {
	return model.FinancialSignals{
		StartupCosts:   s.cats[0].values,
		RevenueFigures: s.cats[1].values,
		FundingAmounts: s.cats[2].values,
		MarketSizes:    s.cats[3].values,
		GrowthRates:    s.cats[4].values,
		ProfitMargins:  s.cats[5].values,
	}
}

type floatSet struct {
	seen   map[float64]bool
	values []float64
}

func (f *floatSet) add(v float64) {
	if !f.seen[v] {
		f.seen[v] = true
		f.values = append(f.values, v)
	}
}
