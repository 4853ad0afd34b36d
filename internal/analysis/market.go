package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/idea-research/internal/config"
	"github.com/sells-group/idea-research/internal/model"
)

var (
	positiveTerms = []string{"growth", "expanding", "rising", "demand", "opportunity", "adoption", "increase"}
	negativeTerms = []string{"decline", "falling", "crisis", "saturation", "risk", "challenging"}
)

// Market sizes the addressable market, reads sentiment from keywords and
// scores the opportunity.
type Market struct {
	cfg config.MarketConfig
}

// NewMarket creates a Market analyzer.
func NewMarket(cfg config.MarketConfig) *Market {
	return &Market{cfg: cfg}
}

// Analyze implements MarketAnalyzer.
func (m *Market) Analyze(ctx context.Context, in Input) (model.MarketAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return model.MarketAnalysis{}, eris.Wrap(err, "analysis: market")
	}
	sig := in.Extraction.Financials

	tam := mean(sig.MarketSizes)
	sam := tam * m.cfg.SAMRatio
	growth := mean(sig.GrowthRates)
	sentiment := ScoreSentiment(in.Extraction.Keywords)
	score := opportunity(tam, growth, sentiment.Score)

	return model.MarketAnalysis{
		MarketSize: model.MarketSize{Global: tam, Currency: "USD"},
		TAMSAMSOM: model.TAMSAMSOM{
			TAM: tam,
			SAM: sam,
			SOM: sam * m.cfg.SOMRatio,
			Assumptions: fmt.Sprintf("SAM = %.4g%% of TAM, SOM = %.4g%% of SAM",
				m.cfg.SAMRatio*100, m.cfg.SOMRatio*100),
		},
		GrowthRate:       growth,
		Sentiment:        sentiment,
		OpportunityScore: score,
		KeyInsights:      insights(tam, growth, sentiment.Label),
		Summary:          marketSummary(score),
	}, nil
}

// ScoreSentiment counts keywords carrying a positive or negative term. The
// score is (positive-negative)/total, labelled Positive above 0.2 and
// Negative below -0.2.
func ScoreSentiment(keywords []model.Keyword) model.Sentiment {
	var pos, neg int
	for _, k := range keywords {
		if containsTerm(k.Term, positiveTerms) {
			pos++
		}
		if containsTerm(k.Term, negativeTerms) {
			neg++
		}
	}
	total := pos + neg
	if total == 0 {
		total = 1
	}
	score := round2(float64(pos-neg) / float64(total))

	label := model.SentimentNeutral
	switch {
	case score > 0.2:
		label = model.SentimentPositive
	case score < -0.2:
		label = model.SentimentNegative
	}
	return model.Sentiment{Score: score, Label: label, PositiveSignals: pos, NegativeSignals: neg}
}

func containsTerm(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func opportunity(tam, growth, sentiment float64) float64 {
	var score float64
	switch {
	case tam > 10e9:
		score += 0.4
	case tam > 1e9:
		score += 0.3
	}
	switch {
	case growth > 10:
		score += 0.3
	case growth > 5:
		score += 0.2
	}
	switch {
	case sentiment > 0.2:
		score += 0.3
	case sentiment > 0:
		score += 0.2
	}
	return round2(math.Min(score, 1))
}

func insights(tam, growth float64, label string) []string {
	var out []string
	if tam > 0 {
		out = append(out, "Large addressable market identified.")
	}
	if growth > 5 {
		out = append(out, "Market shows strong growth trends.")
	}
	if label == model.SentimentPositive {
		out = append(out, "Industry sentiment is favorable.")
	}
	if len(out) == 0 {
		out = append(out, "Limited market signals detected.")
	}
	return out
}

func marketSummary(score float64) string {
	switch {
	case score >= 0.7:
		return "Strong market opportunity with favorable growth and sentiment."
	case score >= 0.5:
		return "Moderate market opportunity. Further validation required."
	default:
		return "Limited market opportunity. High caution advised."
	}
}
