package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/idea-research/internal/config"
	"github.com/sells-group/idea-research/internal/extract"
	"github.com/sells-group/idea-research/internal/model"
)

// featureStems mark a keyword as a product feature.
var featureStems = []string{"api", "mobile", "automat", "integrat", "analytic", "dashboard", "artificial", "machine"}

// aiStems mark a feature as AI-related.
var aiStems = []string{"automat", "artificial", "machine"}

// Competitive clusters competitor names, classifies intensity and derives a
// SWOT view and feature gaps.
type Competitive struct {
	cfg config.CompetitiveConfig
}

// NewCompetitive creates a Competitive analyzer.
func NewCompetitive(cfg config.CompetitiveConfig) *Competitive {
	return &Competitive{cfg: cfg}
}

// Analyze implements CompetitiveAnalyzer.
func (c *Competitive) Analyze(ctx context.Context, in Input) (model.CompetitiveAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return model.CompetitiveAnalysis{}, eris.Wrap(err, "analysis: competitive")
	}

	competitors := c.Cluster(in.Extraction.Entities.Organizations, extract.NormalizeOrg(in.Idea.Name))
	intensity := c.cfg.Intensity.Classify(len(competitors))
	features := Features(in.Extraction.Keywords)

	top := competitors
	if len(top) > c.cfg.MaxTopCompetitors {
		top = top[:c.cfg.MaxTopCompetitors]
	}
	title := cases.Title(language.English)
	display := make([]string, 0, len(top))
	for _, name := range top {
		display = append(display, title.String(name))
	}

	return model.CompetitiveAnalysis{
		CompetitorsFound: len(competitors),
		TopCompetitors:   display,
		Intensity:        intensity,
		SWOT:             c.swot(intensity, competitors, features),
		MarketGaps:       c.gaps(features, len(competitors)),
		Summary:          competitiveSummary(intensity),
	}, nil
}

// Cluster drops the idea's own name and any name too similar to one
// already kept. Order of first appearance is preserved.
func (c *Competitive) Cluster(orgs []string, self string) []string {
	kept := make([]string, 0, len(orgs))
	for _, o := range orgs {
		if o == "" || o == self {
			continue
		}
		dup := false
		for _, k := range kept {
			if levenshtein.Similarity(o, k, nil) > c.cfg.SimilarityThreshold {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, o)
		}
	}
	return kept
}

// Features returns the keywords that name a product feature.
func Features(keywords []model.Keyword) []model.Keyword {
	var out []model.Keyword
	for _, k := range keywords {
		if hasStem(k.Term, featureStems) {
			out = append(out, k)
		}
	}
	return out
}

func hasStem(term string, stems []string) bool {
	for _, s := range stems {
		if strings.HasPrefix(term, s) {
			return true
		}
	}
	return false
}

func (c *Competitive) swot(intensity model.Intensity, competitors []string, features []model.Keyword) model.SWOT {
	s := model.SWOT{
		Strengths:     []string{},
		Weaknesses:    []string{},
		Opportunities: []string{},
		Threats:       []string{},
	}
	if len(competitors) >= c.cfg.Intensity.LowMax {
		s.Strengths = append(s.Strengths, "Market validated by multiple competitors.")
	}
	if intensity == model.IntensityHigh {
		s.Weaknesses = append(s.Weaknesses, "Highly saturated market.")
		s.Threats = append(s.Threats, "Strong established competitors with market dominance.")
	}

	ai := false
	for _, f := range features {
		if hasStem(f.Term, aiStems) {
			ai = true
			break
		}
	}
	if ai {
		s.Opportunities = append(s.Opportunities, "Explore niche positioning strategies.")
	} else {
		s.Opportunities = append(s.Opportunities, "AI features underutilized in competitors.")
	}
	return s
}

// gaps lists features mentioned rarely relative to the number of
// competitors.
func (c *Competitive) gaps(features []model.Keyword, competitors int) []string {
	var gaps []string
	if competitors > 0 {
		for _, f := range features {
			if float64(f.Count)/float64(competitors) < c.cfg.GapShare {
				gaps = append(gaps, fmt.Sprintf("%s present in few competitors.", f.Term))
			}
		}
	}
	if len(gaps) == 0 {
		return []string{"No obvious feature gaps identified."}
	}
	if len(gaps) > c.cfg.MaxGaps {
		gaps = gaps[:c.cfg.MaxGaps]
	}
	return gaps
}

func competitiveSummary(intensity model.Intensity) string {
	switch intensity {
	case model.IntensityHigh:
		return "Market is highly competitive with significant rivalry."
	case model.IntensityMedium:
		return "Moderate competition with room for differentiation."
	default:
		return "Low competition environment. Opportunity to capture early market share."
	}
}
