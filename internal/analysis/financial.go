package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/idea-research/internal/config"
	"github.com/sells-group/idea-research/internal/model"
)

// Financial derives burn, runway and a viability score from the idea's
// budget and the extracted cost, revenue, growth and margin figures.
type Financial struct {
	cfg config.FinancialConfig
}

// NewFinancial creates a Financial analyzer.
func NewFinancial(cfg config.FinancialConfig) *Financial {
	return &Financial{cfg: cfg}
}

// Analyze implements FinancialAnalyzer.
func (f *Financial) Analyze(ctx context.Context, in Input) (model.FinancialAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return model.FinancialAnalysis{}, eris.Wrap(err, "analysis: financial")
	}
	sig := in.Extraction.Financials

	var m model.FinancialMetrics
	for _, c := range sig.StartupCosts {
		m.TotalEstimatedCost += c
	}
	if m.TotalEstimatedCost > 0 {
		m.MonthlyBurn = m.TotalEstimatedCost / 12
	}
	m.EstimatedRevenue = mean(sig.RevenueFigures)
	m.GrowthRate = mean(sig.GrowthRates)
	m.ProfitMargin = mean(sig.ProfitMargins)

	var runway float64
	if m.MonthlyBurn > 0 {
		runway = in.Idea.Budget / m.MonthlyBurn
	}
	score := f.viability(runway, m)

	return model.FinancialAnalysis{
		Metrics:         m,
		RunwayMonths:    round2(runway),
		ViabilityScore:  score,
		Risks:           f.risks(runway, m.GrowthRate),
		Recommendations: f.recommendations(runway, score),
		Summary:         f.summary(score),
	}, nil
}

func (f *Financial) viability(runway float64, m model.FinancialMetrics) float64 {
	var score float64
	switch {
	case runway > f.cfg.StrongRunwayMonths:
		score += 0.3
	case runway > f.cfg.HealthyRunwayMonths:
		score += 0.2
	}
	if m.GrowthRate > f.cfg.StrongGrowthRate {
		score += 0.3
	}
	if m.ProfitMargin > f.cfg.StrongProfitMargin {
		score += 0.2
	}
	return round2(math.Min(score, 1))
}

func (f *Financial) risks(runway, growth float64) []string {
	var risks []string
	if runway < f.cfg.HealthyRunwayMonths {
		risks = append(risks, fmt.Sprintf("Runway below healthy threshold (%g months).", f.cfg.HealthyRunwayMonths))
	}
	if growth < f.cfg.WeakGrowthRate {
		risks = append(risks, "Low projected growth rate.")
	}
	if len(risks) == 0 {
		risks = append(risks, "No major financial risks detected.")
	}
	return risks
}

func (f *Financial) recommendations(runway, score float64) []string {
	var recs []string
	if runway < f.cfg.HealthyRunwayMonths {
		recs = append(recs, "Seek additional funding to extend runway.")
	}
	if score < f.cfg.LowViability {
		recs = append(recs, "Reduce operational costs and prioritize MVP.")
	}
	if score >= f.cfg.HighViability {
		recs = append(recs, "Financial outlook strong. Proceed with expansion strategy.")
	}
	if len(recs) == 0 {
		recs = append(recs, "Monitor financial metrics regularly.")
	}
	return recs
}

func (f *Financial) summary(score float64) string {
	switch {
	case score >= f.cfg.HighViability:
		return "Strong financial viability with sufficient runway and growth."
	case score >= f.cfg.LowViability:
		return "Moderate financial outlook. Some improvements needed."
	default:
		return "Financial viability is weak. High caution recommended."
	}
}
