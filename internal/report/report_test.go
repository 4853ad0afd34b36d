package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/idea-research/internal/config"
	"github.com/sells-group/idea-research/internal/model"
)

func validAssessment() model.Assessment {
	return model.Assessment{
		IdeaName:         "Ledgerly",
		FinancialScore:   0.5,
		MarketScore:      0.3,
		CompetitiveScore: 0.6,
		OverallScore:     0.47,
		Rating:           "Weak",
		Risks:            []model.RiskFlag{{Category: "Financial", Severity: model.SeverityMedium, Message: "Runway below 12 months."}},
		Recommendations:  []string{"Re-evaluate business model before major investment."},
		ExecutiveSummary: "The business opportunity demonstrates weak viability.",
		Decision:         "Re-evaluate",
	}
}

func testDocument() Document {
	return Document{
		RunID:      "run-1",
		Idea:       model.Idea{Name: "Ledgerly", Industry: "fintech", Geography: "global", HorizonYears: 5},
		Assessment: validAssessment(),
		Analyses: model.Analyses{
			Financial:   model.Computed(model.FinancialAnalysis{Summary: "Moderate financial outlook.", RunwayMonths: 10}),
			Market:      model.Computed(model.DefaultMarketAnalysis()),
			Competitive: model.Defaulted(model.DefaultCompetitiveAnalysis(), "competitive: panic: boom"),
		},
		GeneratedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func partialDocument() Document {
	doc := testDocument()
	doc.Assessment.Partial = true
	doc.Assessment.Degradations = []model.Degradation{
		{Stage: model.StageScraping, Reason: "only 2 of 3 pages"},
		{Stage: model.StageCompetitive, Reason: "panic: boom"},
	}
	doc.PartialFlags = map[string]bool{"scraping_partial": true, "analysis_partial": true, "market_partial": false}
	doc.Errors = []string{"[PARTIAL] scraping: only 2 of 3 pages"}
	return doc
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(validAssessment()))

	tests := []struct {
		name   string
		mutate func(*model.Assessment)
	}{
		{"score above one", func(a *model.Assessment) { a.OverallScore = 1.2 }},
		{"negative score", func(a *model.Assessment) { a.MarketScore = -0.1 }},
		{"no rating", func(a *model.Assessment) { a.Rating = "" }},
		{"no decision", func(a *model.Assessment) { a.Decision = "" }},
		{"no summary", func(a *model.Assessment) { a.ExecutiveSummary = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAssessment()
			tt.mutate(&a)
			err := Validate(a)
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrInvalidAssessment))
		})
	}
}

func TestRenderMarkdown_Sections(t *testing.T) {
	md := RenderMarkdown(testDocument())

	assert.Contains(t, md, "# Business Idea Assessment: Ledgerly")
	assert.Contains(t, md, "## Executive Summary")
	assert.Contains(t, md, "| **Overall** | **0.47** (Weak) |")
	assert.Contains(t, md, "- **Financial** (Medium): Runway below 12 months.")
	assert.Contains(t, md, "## Decision\n\n**Re-evaluate**")
	assert.Contains(t, md, "_Unavailable: competitive: panic: boom_")
	assert.NotContains(t, md, "## Data Quality")
}

func TestRenderMarkdown_DisclosesPartialData(t *testing.T) {
	md := RenderMarkdown(partialDocument())

	assert.Contains(t, md, "## Data Quality")
	assert.Contains(t, md, "- **scraping**: only 2 of 3 pages")
	assert.Contains(t, md, "- **competitive**: panic: boom")
	assert.Contains(t, md, "Partial flags: analysis_partial, scraping_partial\n")
	assert.Contains(t, md, "- [PARTIAL] scraping: only 2 of 3 pages")
}

func TestMulti_RendersAllFormats(t *testing.T) {
	dir := t.TempDir()
	m, err := New(config.ReportConfig{OutputDir: dir, Formats: []string{"markdown", "json", "xlsx"}})
	require.NoError(t, err)

	artifacts, err := m.Render(context.Background(), partialDocument())
	require.NoError(t, err)
	require.Len(t, artifacts, 3)

	assert.Equal(t, Artifact{Format: FormatMarkdown, Path: filepath.Join(dir, "run-1.md")}, artifacts[0])
	assert.Equal(t, Artifact{Format: FormatJSON, Path: filepath.Join(dir, "run-1.json")}, artifacts[1])
	assert.Equal(t, Artifact{Format: FormatXLSX, Path: filepath.Join(dir, "run-1.xlsx")}, artifacts[2])

	raw, err := os.ReadFile(artifacts[1].Path)
	require.NoError(t, err)
	var decoded Document
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	assert.True(t, decoded.Assessment.Partial)
	assert.True(t, decoded.Analyses.Competitive.Defaulted)

	wb, err := xlsx.OpenFile(artifacts[2].Path)
	require.NoError(t, err)
	require.Contains(t, wb.Sheet, "Summary")
	require.Contains(t, wb.Sheet, "Data Quality")
	assert.Equal(t, "Ledgerly", wb.Sheet["Summary"].Rows[0].Cells[1].String())
	assert.Equal(t, "scraping", wb.Sheet["Data Quality"].Rows[1].Cells[0].String())
}

func TestMulti_RejectsInvalidAssessment(t *testing.T) {
	dir := t.TempDir()
	m, err := New(config.ReportConfig{OutputDir: dir, Formats: []string{"markdown"}})
	require.NoError(t, err)

	doc := testDocument()
	doc.Assessment.Rating = ""
	_, err = m.Render(context.Background(), doc)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidAssessment))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New(config.ReportConfig{Formats: []string{"pdf"}})
	assert.Error(t, err)
}
