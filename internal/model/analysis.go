package model

// Intensity is the competitive intensity class derived from competitor count.
type Intensity string

const (
	IntensityLow    Intensity = "Low"
	IntensityMedium Intensity = "Medium"
	IntensityHigh   Intensity = "High"
)

// FinancialMetrics are the raw numbers behind the financial analysis.
type FinancialMetrics struct {
	TotalEstimatedCost float64 `json:"total_estimated_cost" yaml:"total_estimated_cost"`
	MonthlyBurn        float64 `json:"monthly_burn" yaml:"monthly_burn"`
	EstimatedRevenue   float64 `json:"estimated_revenue" yaml:"estimated_revenue"`
	GrowthRate         float64 `json:"growth_rate" yaml:"growth_rate"`
	ProfitMargin       float64 `json:"profit_margin" yaml:"profit_margin"`
}

// FinancialAnalysis is the output of the financial sub-analysis.
type FinancialAnalysis struct {
	Metrics         FinancialMetrics `json:"metrics" yaml:"metrics"`
	RunwayMonths    float64          `json:"runway_months" yaml:"runway_months"`
	ViabilityScore  float64          `json:"viability_score" yaml:"viability_score"`
	Risks           []string         `json:"risks" yaml:"risks"`
	Recommendations []string         `json:"recommendations" yaml:"recommendations"`
	Summary         string           `json:"summary" yaml:"summary"`
}

// SWOT is a strengths/weaknesses/opportunities/threats breakdown.
type SWOT struct {
	Strengths     []string `json:"strengths" yaml:"strengths"`
	Weaknesses    []string `json:"weaknesses" yaml:"weaknesses"`
	Opportunities []string `json:"opportunities" yaml:"opportunities"`
	Threats       []string `json:"threats" yaml:"threats"`
}

// CompetitiveAnalysis is the output of the competitive sub-analysis.
type CompetitiveAnalysis struct {
	CompetitorsFound int       `json:"competitors_found" yaml:"competitors_found"`
	TopCompetitors   []string  `json:"top_competitors" yaml:"top_competitors"`
	Intensity        Intensity `json:"competitive_intensity" yaml:"competitive_intensity"`
	SWOT             SWOT      `json:"swot_analysis" yaml:"swot_analysis"`
	MarketGaps       []string  `json:"market_gaps" yaml:"market_gaps"`
	Summary          string    `json:"summary" yaml:"summary"`
}

// MarketSize is the estimated global market size.
type MarketSize struct {
	Global   float64 `json:"global" yaml:"global"`
	Currency string  `json:"currency" yaml:"currency"`
}

// TAMSAMSOM breaks the market into addressable slices.
type TAMSAMSOM struct {
	TAM         float64 `json:"tam" yaml:"tam"`
	SAM         float64 `json:"sam" yaml:"sam"`
	SOM         float64 `json:"som" yaml:"som"`
	Assumptions string  `json:"assumptions" yaml:"assumptions"`
}

// Sentiment is the keyword-based industry sentiment.
type Sentiment struct {
	Score           float64 `json:"score" yaml:"score"`
	Label           string  `json:"label" yaml:"label"`
	PositiveSignals int     `json:"positive_signals" yaml:"positive_signals"`
	NegativeSignals int     `json:"negative_signals" yaml:"negative_signals"`
}

// Sentiment labels.
const (
	SentimentPositive = "Positive"
	SentimentNeutral  = "Neutral"
	SentimentNegative = "Negative"
)

// MarketAnalysis is the output of the market sub-analysis.
type MarketAnalysis struct {
	MarketSize       MarketSize `json:"market_size" yaml:"market_size"`
	TAMSAMSOM        TAMSAMSOM  `json:"tam_sam_som" yaml:"tam_sam_som"`
	GrowthRate       float64    `json:"growth_rate" yaml:"growth_rate"`
	Sentiment        Sentiment  `json:"sentiment" yaml:"sentiment"`
	OpportunityScore float64    `json:"opportunity_score" yaml:"opportunity_score"`
	KeyInsights      []string   `json:"key_insights" yaml:"key_insights"`
	Summary          string     `json:"summary" yaml:"summary"`
}

// Analyses bundles the three sub-analysis outcomes. Every field is always
// populated, with a default when its sub-analysis failed.
type Analyses struct {
	Financial   Outcome[FinancialAnalysis]   `json:"financial" yaml:"financial"`
	Competitive Outcome[CompetitiveAnalysis] `json:"competitive" yaml:"competitive"`
	Market      Outcome[MarketAnalysis]      `json:"market" yaml:"market"`
}

// DefaultFinancialAnalysis is the zeroed financial result.
func DefaultFinancialAnalysis() FinancialAnalysis {
	return FinancialAnalysis{
		Risks:           []string{"Financial analysis unavailable."},
		Recommendations: []string{},
		Summary:         "Financial analysis could not be completed.",
	}
}

// DefaultCompetitiveAnalysis is the empty competitive result. It carries no
// intensity so it cannot be mistaken for a measured Low.
func DefaultCompetitiveAnalysis() CompetitiveAnalysis {
	return CompetitiveAnalysis{
		TopCompetitors: []string{},
		SWOT: SWOT{
			Strengths:     []string{},
			Weaknesses:    []string{},
			Opportunities: []string{},
			Threats:       []string{},
		},
		MarketGaps: []string{},
		Summary:    "Competitive analysis could not be completed.",
	}
}

// DefaultMarketAnalysis is the zeroed market result.
func DefaultMarketAnalysis() MarketAnalysis {
	return MarketAnalysis{
		MarketSize:  MarketSize{Currency: "USD"},
		Sentiment:   Sentiment{Label: SentimentNeutral},
		KeyInsights: []string{},
		Summary:     "Market analysis could not be completed.",
	}
}
