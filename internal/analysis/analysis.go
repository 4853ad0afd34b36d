// Package analysis scores an idea from its extracted signals along three
// independent axes: financial viability, competition and market
// opportunity.
package analysis

import (
	"context"
	"math"

	"github.com/sells-group/idea-research/internal/model"
)

// Input is what every analyzer reads.
type Input struct {
	Idea       model.Idea
	Extraction model.Extraction
}

// FinancialAnalyzer computes the financial sub-analysis.
type FinancialAnalyzer interface {
	Analyze(ctx context.Context, in Input) (model.FinancialAnalysis, error)
}

// CompetitiveAnalyzer computes the competitive sub-analysis.
type CompetitiveAnalyzer interface {
	Analyze(ctx context.Context, in Input) (model.CompetitiveAnalysis, error)
}

// MarketAnalyzer computes the market sub-analysis.
type MarketAnalyzer interface {
	Analyze(ctx context.Context, in Input) (model.MarketAnalysis, error)
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
