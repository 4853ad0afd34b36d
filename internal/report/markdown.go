package report

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/idea-research/internal/model"
)

// Markdown renders a human-readable report.
type Markdown struct {
	dir string
}

// NewMarkdown creates a Markdown renderer writing into dir.
func NewMarkdown(dir string) *Markdown {
	return &Markdown{dir: dir}
}

// Format implements Renderer.
func (m *Markdown) Format() string { return FormatMarkdown }

// Render implements Renderer.
func (m *Markdown) Render(_ context.Context, doc Document) (Artifact, error) {
	path, err := writeFile(m.dir, doc.RunID, "md", []byte(RenderMarkdown(doc)))
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Format: FormatMarkdown, Path: path}, nil
}

// RenderMarkdown builds the markdown body.
func RenderMarkdown(doc Document) string {
	a := doc.Assessment
	var b strings.Builder

	fmt.Fprintf(&b, "# Business Idea Assessment: %s\n\n", a.IdeaName)
	if doc.Idea.Industry != "" {
		fmt.Fprintf(&b, "_Industry: %s · Geography: %s · Horizon: %d years_\n\n",
			doc.Idea.Industry, doc.Idea.Geography, doc.Idea.HorizonYears)
	}

	b.WriteString("## Executive Summary\n\n")
	b.WriteString(a.ExecutiveSummary + "\n\n")

	b.WriteString("## Scores\n\n")
	b.WriteString("| Dimension | Score |\n| --- | --- |\n")
	fmt.Fprintf(&b, "| Financial | %.2f |\n", a.FinancialScore)
	fmt.Fprintf(&b, "| Market | %.2f |\n", a.MarketScore)
	fmt.Fprintf(&b, "| Competitive | %.2f |\n", a.CompetitiveScore)
	fmt.Fprintf(&b, "| **Overall** | **%.2f** (%s) |\n\n", a.OverallScore, a.Rating)

	writeAnalyses(&b, doc.Analyses)

	b.WriteString("## Risks\n\n")
	if len(a.Risks) == 0 {
		b.WriteString("No aggregated risks.\n\n")
	} else {
		for _, r := range a.Risks {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", r.Category, r.Severity, r.Message)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Recommendations\n\n")
	for _, r := range a.Recommendations {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Decision\n\n**%s**\n", a.Decision)

	if a.Partial {
		b.WriteString("\n## Data Quality\n\n")
		b.WriteString("This report was produced from partial data. The following sections are degraded:\n\n")
		for _, d := range a.Degradations {
			fmt.Fprintf(&b, "- **%s**: %s\n", d.Stage, d.Reason)
		}
		if flags := sortedFlags(doc.PartialFlags); len(flags) > 0 {
			fmt.Fprintf(&b, "\nPartial flags: %s\n", strings.Join(flags, ", "))
		}
		if len(doc.Errors) > 0 {
			b.WriteString("\nRun warnings:\n\n")
			for _, e := range doc.Errors {
				fmt.Fprintf(&b, "- %s\n", e)
			}
		}
	}
	return b.String()
}

func writeAnalyses(b *strings.Builder, a model.Analyses) {
	b.WriteString("## Financial Analysis\n\n")
	if a.Financial.Defaulted {
		fmt.Fprintf(b, "_Unavailable: %s_\n\n", a.Financial.Reason)
	} else {
		f := a.Financial.Value
		fmt.Fprintf(b, "%s\n\n- Runway: %.2f months\n- Monthly burn: $%.0f\n- Viability score: %.2f\n\n",
			f.Summary, f.RunwayMonths, f.Metrics.MonthlyBurn, f.ViabilityScore)
	}

	b.WriteString("## Market Analysis\n\n")
	if a.Market.Defaulted {
		fmt.Fprintf(b, "_Unavailable: %s_\n\n", a.Market.Reason)
	} else {
		m := a.Market.Value
		fmt.Fprintf(b, "%s\n\n- TAM: $%.0f\n- SAM: $%.0f\n- SOM: $%.0f\n- Sentiment: %s (%.2f)\n\n",
			m.Summary, m.TAMSAMSOM.TAM, m.TAMSAMSOM.SAM, m.TAMSAMSOM.SOM, m.Sentiment.Label, m.Sentiment.Score)
	}

	b.WriteString("## Competitive Analysis\n\n")
	if a.Competitive.Defaulted {
		fmt.Fprintf(b, "_Unavailable: %s_\n\n", a.Competitive.Reason)
	} else {
		c := a.Competitive.Value
		fmt.Fprintf(b, "%s\n\n- Competitors found: %d\n- Intensity: %s\n", c.Summary, c.CompetitorsFound, c.Intensity)
		if len(c.TopCompetitors) > 0 {
			fmt.Fprintf(b, "- Top competitors: %s\n", strings.Join(c.TopCompetitors, ", "))
		}
		b.WriteString("\n")
	}
}

func sortedFlags(flags map[string]bool) []string {
	var out []string
	for k, v := range flags {
		if v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
