// Package consolidate merges the three sub-analyses into a single scored
// assessment with aggregated risks, recommendations and a decision.
package consolidate

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sells-group/idea-research/internal/config"
	"github.com/sells-group/idea-research/internal/model"
)

// competitiveScores maps intensity to a score: less competition is better.
var competitiveScores = map[model.Intensity]float64{
	model.IntensityLow:    0.9,
	model.IntensityMedium: 0.6,
	model.IntensityHigh:   0.3,
}

// penalties per risk severity, subtracted from the weighted score.
var penalties = map[model.Severity]float64{
	model.SeverityHigh:   0.05,
	model.SeverityMedium: 0.02,
	model.SeverityLow:    0.01,
}

// Input carries everything consolidation reads.
type Input struct {
	Idea         model.Idea
	Analyses     model.Analyses
	Partial      bool
	Degradations []model.Degradation
}

// Consolidator builds assessments. It is safe for concurrent use.
type Consolidator struct {
	cfg config.ConsolidationConfig
	now func() time.Time
}

// Option configures a Consolidator.
type Option func(*Consolidator)

// WithClock overrides the clock used for metadata timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Consolidator) { c.now = now }
}

// New creates a Consolidator.
func New(cfg config.ConsolidationConfig, opts ...Option) *Consolidator {
	c := &Consolidator{cfg: cfg, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Consolidate scores the analyses. A defaulted analysis contributes zero
// to the weighted score and adds no risk.
func (c *Consolidator) Consolidate(in Input) model.Assessment {
	a := in.Analyses
	var fin, mkt, comp float64
	if !a.Financial.Defaulted {
		fin = a.Financial.Value.ViabilityScore
	}
	if !a.Market.Defaulted {
		mkt = a.Market.Value.OpportunityScore
	}
	if !a.Competitive.Defaulted {
		comp = competitiveScores[a.Competitive.Value.Intensity]
	}

	w := c.cfg.Weights
	base := w.Financial*fin + w.Market*mkt + w.Competitive*comp

	risks := AggregateRisks(a)
	var penalty float64
	for _, r := range risks {
		penalty += penalties[r.Severity]
	}
	score := clamp(base - penalty)
	rating := c.Rating(score)

	return model.Assessment{
		IdeaName:         in.Idea.Name,
		FinancialScore:   round(fin, 2),
		MarketScore:      round(mkt, 2),
		CompetitiveScore: round(comp, 2),
		OverallScore:     round(score, 2),
		Rating:           rating,
		Risks:            risks,
		Recommendations:  c.recommendations(score, risks),
		ExecutiveSummary: summary(rating, a, in.Partial, in.Degradations),
		Decision:         c.decision(score),
		Partial:          in.Partial,
		Degradations:     in.Degradations,
		Metadata: model.AssessmentMetadata{
			GeneratedAt:        c.now().UTC(),
			Weights:            w.AsMap(),
			RiskPenaltyApplied: round(penalty, 3),
		},
	}
}

// AggregateRisks flags short runway, high competition and negative
// sentiment from the analyses that were actually computed.
func AggregateRisks(a model.Analyses) []model.RiskFlag {
	risks := []model.RiskFlag{}
	if !a.Financial.Defaulted {
		switch runway := a.Financial.Value.RunwayMonths; {
		case runway > 0 && runway < 6:
			risks = append(risks, model.RiskFlag{Category: "Financial", Severity: model.SeverityHigh, Message: "Runway below 6 months."})
		case runway > 0 && runway < 12:
			risks = append(risks, model.RiskFlag{Category: "Financial", Severity: model.SeverityMedium, Message: "Runway below 12 months."})
		}
	}
	if !a.Competitive.Defaulted && a.Competitive.Value.Intensity == model.IntensityHigh {
		risks = append(risks, model.RiskFlag{Category: "Competitive", Severity: model.SeverityHigh, Message: "Highly competitive market."})
	}
	if !a.Market.Defaulted && a.Market.Value.Sentiment.Label == model.SentimentNegative {
		risks = append(risks, model.RiskFlag{Category: "Market", Severity: model.SeverityMedium, Message: "Negative industry sentiment detected."})
	}
	return risks
}

// Rating bands a score into Strong, Moderate or Weak.
func (c *Consolidator) Rating(score float64) string {
	switch {
	case score >= c.cfg.StrongRating:
		return "Strong"
	case score >= c.cfg.ModerateRating:
		return "Moderate"
	default:
		return "Weak"
	}
}

func (c *Consolidator) decision(score float64) string {
	switch {
	case score >= c.cfg.StrongRating:
		return "Proceed"
	case score >= c.cfg.ModerateRating:
		return "Proceed with Caution"
	default:
		return "Re-evaluate"
	}
}

func (c *Consolidator) recommendations(score float64, risks []model.RiskFlag) []string {
	var recs []string
	switch {
	case score >= c.cfg.StrongRating:
		recs = append(recs, "Proceed aggressively with expansion strategy.")
	case score >= c.cfg.ModerateRating:
		recs = append(recs, "Proceed with phased investment and controlled scaling.")
	default:
		recs = append(recs, "Re-evaluate business model before major investment.")
	}
	for _, r := range risks {
		if r.Severity == model.SeverityHigh {
			recs = append(recs, fmt.Sprintf("Immediate mitigation required in %s domain.", strings.ToLower(r.Category)))
		}
	}
	return recs
}

func summary(rating string, a model.Analyses, partial bool, degradations []model.Degradation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The business opportunity demonstrates %s viability. ", strings.ToLower(rating))
	if !a.Financial.Defaulted && a.Financial.Value.RunwayMonths > 0 {
		fmt.Fprintf(&b, "Financial runway is approximately %g months. ", a.Financial.Value.RunwayMonths)
	}
	if !a.Market.Defaulted {
		if g := FormatPercent(a.Market.Value.GrowthRate); g != "" {
			fmt.Fprintf(&b, "Market growth is estimated at %s annually. ", g)
		}
	}
	if !a.Competitive.Defaulted && a.Competitive.Value.Intensity != "" {
		fmt.Fprintf(&b, "Competitive intensity is %s. ", strings.ToLower(string(a.Competitive.Value.Intensity)))
	}
	b.WriteString("Overall evaluation is based on weighted financial, market, and competitive analysis.")
	if partial {
		b.WriteString(" Note: this assessment is based on partial data")
		if len(degradations) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(degradedStages(degradations), ", "))
		}
		b.WriteString(" and should be validated further.")
	}
	return b.String()
}

// degradedStages lists each degraded stage once, in first-seen order.
func degradedStages(degradations []model.Degradation) []string {
	seen := make(map[model.Stage]bool, len(degradations))
	stages := make([]string, 0, len(degradations))
	for _, d := range degradations {
		if seen[d.Stage] {
			continue
		}
		seen[d.Stage] = true
		stages = append(stages, string(d.Stage))
	}
	return stages
}

// FormatPercent renders a rate with one decimal and a percent sign. Rates
// that round to 0.0 and non-finite rates render as the empty string so
// callers can omit the clause.
func FormatPercent(rate float64) string {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return ""
	}
	r := round(rate, 1)
	if r == 0 {
		return ""
	}
	return fmt.Sprintf("%.1f%%", r)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
