// Package report renders a consolidated assessment into durable artifacts
// (markdown, JSON and XLSX files).
package report

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/idea-research/internal/config"
	"github.com/sells-group/idea-research/internal/model"
)

// ErrInvalidAssessment is returned when an assessment is missing required
// fields or holds out-of-range scores.
var ErrInvalidAssessment = eris.New("report: invalid assessment")

// Report formats.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatXLSX     = "xlsx"
)

// Document is everything a renderer needs for one run.
type Document struct {
	RunID        string           `json:"run_id"`
	Idea         model.Idea       `json:"idea"`
	Assessment   model.Assessment `json:"assessment"`
	Analyses     model.Analyses   `json:"analyses"`
	PartialFlags map[string]bool  `json:"partial_flags,omitempty"`
	Errors       []string         `json:"errors,omitempty"`
	GeneratedAt  time.Time        `json:"generated_at"`
}

// Artifact is a rendered report on disk.
type Artifact struct {
	Format string `json:"format"`
	Path   string `json:"path"`
}

// Renderer writes one report format.
type Renderer interface {
	Format() string
	Render(ctx context.Context, doc Document) (Artifact, error)
}

// Validate checks that the assessment can be rendered.
func Validate(a model.Assessment) error {
	scores := map[string]float64{
		"financial_score":         a.FinancialScore,
		"market_score":            a.MarketScore,
		"competitive_score":       a.CompetitiveScore,
		"overall_viability_score": a.OverallScore,
	}
	for name, s := range scores {
		if s < 0 || s > 1 {
			return eris.Wrapf(ErrInvalidAssessment, "%s %.2f outside [0, 1]", name, s)
		}
	}
	switch {
	case a.Rating == "":
		return eris.Wrap(ErrInvalidAssessment, "missing overall_rating")
	case a.Decision == "":
		return eris.Wrap(ErrInvalidAssessment, "missing decision")
	case a.ExecutiveSummary == "":
		return eris.Wrap(ErrInvalidAssessment, "missing executive_summary")
	}
	return nil
}

// Multi renders a document in several formats.
type Multi []Renderer

// New builds the renderers named in cfg.Formats, all writing to
// cfg.OutputDir.
func New(cfg config.ReportConfig) (Multi, error) {
	var m Multi
	for _, f := range cfg.Formats {
		switch f {
		case FormatMarkdown:
			m = append(m, NewMarkdown(cfg.OutputDir))
		case FormatJSON:
			m = append(m, NewJSON(cfg.OutputDir))
		case FormatXLSX:
			m = append(m, NewXLSX(cfg.OutputDir))
		default:
			return nil, eris.Errorf("report: unknown format %q", f)
		}
	}
	return m, nil
}

// Render validates the assessment once, then runs every renderer in order.
// It stops at the first renderer error.
func (m Multi) Render(ctx context.Context, doc Document) ([]Artifact, error) {
	if err := Validate(doc.Assessment); err != nil {
		return nil, err
	}
	artifacts := make([]Artifact, 0, len(m))
	for _, r := range m {
		if err := ctx.Err(); err != nil {
			return artifacts, eris.Wrap(err, "report: render")
		}
		a, err := r.Render(ctx, doc)
		if err != nil {
			return artifacts, eris.Wrapf(err, "report: render %s", r.Format())
		}
		zap.L().Debug("report: artifact written",
			zap.String("run_id", doc.RunID),
			zap.String("format", a.Format),
			zap.String("path", a.Path),
		)
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}

// writeFile writes data to dir/<runID>.<ext>, creating dir if needed.
func writeFile(dir, runID, ext string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "report: create output dir")
	}
	path := filepath.Join(dir, runID+"."+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", eris.Wrapf(err, "report: write %s", path)
	}
	return path, nil
}
