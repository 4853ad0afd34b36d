package model

// AnalysisDomain is one of the independent analysis passes.
type AnalysisDomain string

const (
	DomainFinancial   AnalysisDomain = "financial"
	DomainMarket      AnalysisDomain = "market"
	DomainCompetitive AnalysisDomain = "competitive"
)

// AllDomains returns every analysis domain in report order.
func AllDomains() []AnalysisDomain {
	return []AnalysisDomain{DomainFinancial, DomainMarket, DomainCompetitive}
}

// Idea is a normalized business idea ready for research.
type Idea struct {
	Name             string           `json:"name" yaml:"name"`
	Industry         string           `json:"industry" yaml:"industry"`
	IndustryCategory string           `json:"industry_category" yaml:"industry_category"`
	Geography        string           `json:"geography" yaml:"geography"`
	HorizonYears     int              `json:"horizon_years" yaml:"horizon_years"`
	Budget           float64          `json:"budget" yaml:"budget"`
	Domains          []AnalysisDomain `json:"domains" yaml:"domains"`
	Queries          []string         `json:"queries,omitempty" yaml:"queries,omitempty"`
	Sources          []string         `json:"sources,omitempty" yaml:"sources,omitempty"` // explicit URLs skip discovery
}
