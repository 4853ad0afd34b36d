package model

// Entities holds named entities found across all pages.
type Entities struct {
	Organizations []string `json:"organizations"`
}

// FinancialSignals groups numeric values by the context they appeared in.
// Money values are in USD; percentages are plain rates (8.5 means 8.5%).
type FinancialSignals struct {
	StartupCosts   []float64 `json:"startup_costs"`
	RevenueFigures []float64 `json:"revenue_figures"`
	FundingAmounts []float64 `json:"funding_amounts"`
	MarketSizes    []float64 `json:"market_sizes"`
	GrowthRates    []float64 `json:"growth_rates"`
	ProfitMargins  []float64 `json:"profit_margins"`
}

// IsEmpty reports whether no financial signal was found.
func (f FinancialSignals) IsEmpty() bool {
	return len(f.StartupCosts) == 0 && len(f.RevenueFigures) == 0 &&
		len(f.FundingAmounts) == 0 && len(f.MarketSizes) == 0 &&
		len(f.GrowthRates) == 0 && len(f.ProfitMargins) == 0
}

// Keyword is a retained term with its frequency across the corpus.
type Keyword struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Extraction is the structured output of the extraction stage.
type Extraction struct {
	Entities      Entities         `json:"entities"`
	Financials    FinancialSignals `json:"financial_metrics"`
	Keywords      []Keyword        `json:"keywords"`
	KeywordCutoff int              `json:"keyword_cutoff"`
	PagesUsed     int              `json:"pages_used"`
}

// Terms returns the retained keyword terms in rank order.
func (e Extraction) Terms() []string {
	terms := make([]string, 0, len(e.Keywords))
	for _, k := range e.Keywords {
		terms = append(terms, k.Term)
	}
	return terms
}

// EmptyExtraction is the minimal valid extraction used when nothing usable
// could be extracted.
func EmptyExtraction() Extraction {
	return Extraction{
		Entities: Entities{Organizations: []string{}},
		Financials: FinancialSignals{
			StartupCosts:   []float64{},
			RevenueFigures: []float64{},
			FundingAmounts: []float64{},
			MarketSizes:    []float64{},
			GrowthRates:    []float64{},
			ProfitMargins:  []float64{},
		},
		Keywords: []Keyword{},
	}
}
