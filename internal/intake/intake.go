// Package intake turns a raw research request into a normalized idea with
// its analysis domains and search queries.
package intake

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/idea-research/internal/model"
)

// AnalysisAll selects every analysis domain.
const AnalysisAll = "all"

const (
	defaultGeography    = "global"
	defaultHorizonYears = 5
	maxHorizonYears     = 30
)

// Request is the raw research request as submitted by the CLI or API.
type Request struct {
	Name         string   `json:"name" yaml:"name"`
	Industry     string   `json:"industry" yaml:"industry"`
	AnalysisType string   `json:"analysis_type" yaml:"analysis_type"`
	Geography    string   `json:"geography" yaml:"geography"`
	HorizonYears int      `json:"horizon_years" yaml:"horizon_years"`
	Budget       float64  `json:"budget" yaml:"budget"`
	Sources      []string `json:"sources" yaml:"sources"`
}

// industryKeywords is checked in order; the first keyword contained in the
// industry text wins.
var industryKeywords = []struct {
	keyword  string
	category string
}{
	{"saas", "SaaS"},
	{"software", "SaaS"},
	{"fintech", "FinTech"},
	{"bank", "FinTech"},
	{"health", "HealthTech"},
	{"medical", "HealthTech"},
	{"education", "EdTech"},
	{"ecommerce", "E-Commerce"},
	{"e-commerce", "E-Commerce"},
	{"retail", "E-Commerce"},
}

// ClassifyIndustry maps free-text industry to a category, "Other" when
// nothing matches.
func ClassifyIndustry(industry string) string {
	lower := strings.ToLower(industry)
	for _, k := range industryKeywords {
		if strings.Contains(lower, k.keyword) {
			return k.category
		}
	}
	return "Other"
}

// ExpandDomains resolves an analysis type to the domains it covers.
func ExpandDomains(analysisType string) ([]model.AnalysisDomain, error) {
	t := strings.ToLower(strings.TrimSpace(analysisType))
	if t == "" || t == AnalysisAll {
		return model.AllDomains(), nil
	}
	for _, d := range model.AllDomains() {
		if string(d) == t {
			return []model.AnalysisDomain{d}, nil
		}
	}
	return nil, eris.Errorf("intake: unknown analysis type %q", analysisType)
}

// Queries builds search queries for each requested domain.
func Queries(idea model.Idea) []string {
	var out []string
	for _, d := range idea.Domains {
		switch d {
		case model.DomainFinancial:
			out = append(out,
				fmt.Sprintf("%s financial performance last %d years", idea.Name, idea.HorizonYears),
				fmt.Sprintf("%s revenue profit trends %s", idea.Name, idea.Geography),
			)
		case model.DomainCompetitive:
			out = append(out,
				fmt.Sprintf("%s competitors in %s", idea.Name, idea.Industry),
				fmt.Sprintf("%s top companies %s", idea.Industry, idea.Geography),
			)
		case model.DomainMarket:
			out = append(out,
				fmt.Sprintf("%s market size %s", idea.Industry, idea.Geography),
				fmt.Sprintf("%s industry trends %d year forecast", idea.Industry, idea.HorizonYears),
			)
		}
	}
	return out
}

// Normalize validates req and returns the idea to research.
func Normalize(req Request) (model.Idea, error) {
	name := strings.TrimSpace(req.Name)
	industry := strings.TrimSpace(req.Industry)
	if name == "" {
		return model.Idea{}, eris.New("intake: name is required")
	}
	if industry == "" {
		return model.Idea{}, eris.New("intake: industry is required")
	}
	if req.Budget < 0 {
		return model.Idea{}, eris.Errorf("intake: budget must be non-negative, got %.2f", req.Budget)
	}

	horizon := req.HorizonYears
	if horizon == 0 {
		horizon = defaultHorizonYears
	}
	if horizon < 1 || horizon > maxHorizonYears {
		return model.Idea{}, eris.Errorf("intake: horizon_years must be between 1 and %d, got %d", maxHorizonYears, horizon)
	}

	geography := strings.TrimSpace(req.Geography)
	if geography == "" {
		geography = defaultGeography
	}

	domains, err := ExpandDomains(req.AnalysisType)
	if err != nil {
		return model.Idea{}, err
	}

	sources, err := normalizeSources(req.Sources)
	if err != nil {
		return model.Idea{}, err
	}

	idea := model.Idea{
		Name:             name,
		Industry:         industry,
		IndustryCategory: ClassifyIndustry(industry),
		Geography:        geography,
		HorizonYears:     horizon,
		Budget:           req.Budget,
		Domains:          domains,
		Sources:          sources,
	}
	idea.Queries = Queries(idea)
	return idea, nil
}

func normalizeSources(raw []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		u, err := url.Parse(s)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, eris.Errorf("intake: invalid source url %q", s)
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, nil
}
