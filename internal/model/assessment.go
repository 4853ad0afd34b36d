package model

import "time"

// Severity grades a risk flag.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// RiskFlag is a single aggregated risk.
type RiskFlag struct {
	Category string   `json:"category" yaml:"category"`
	Severity Severity `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
}

// Degradation discloses one section of the assessment built on partial or
// defaulted data.
type Degradation struct {
	Stage  Stage  `json:"stage" yaml:"stage"`
	Reason string `json:"reason" yaml:"reason"`
}

// AssessmentMetadata records how the overall score was produced.
type AssessmentMetadata struct {
	GeneratedAt        time.Time          `json:"generated_at" yaml:"generated_at"`
	Weights            map[string]float64 `json:"weights" yaml:"weights"`
	RiskPenaltyApplied float64            `json:"risk_penalty_applied" yaml:"risk_penalty_applied"`
}

// Assessment is the consolidated, scored view of a business idea.
type Assessment struct {
	IdeaName         string             `json:"idea_name" yaml:"idea_name"`
	FinancialScore   float64            `json:"financial_score" yaml:"financial_score"`
	MarketScore      float64            `json:"market_score" yaml:"market_score"`
	CompetitiveScore float64            `json:"competitive_score" yaml:"competitive_score"`
	OverallScore     float64            `json:"overall_viability_score" yaml:"overall_viability_score"`
	Rating           string             `json:"overall_rating" yaml:"overall_rating"`
	Risks            []RiskFlag         `json:"aggregated_risks" yaml:"aggregated_risks"`
	Recommendations  []string           `json:"final_recommendations" yaml:"final_recommendations"`
	ExecutiveSummary string             `json:"executive_summary" yaml:"executive_summary"`
	Decision         string             `json:"decision" yaml:"decision"`
	Partial          bool               `json:"partial" yaml:"partial"`
	Degradations     []Degradation      `json:"degradations,omitempty" yaml:"degradations,omitempty"`
	Metadata         AssessmentMetadata `json:"metadata" yaml:"metadata"`
}
