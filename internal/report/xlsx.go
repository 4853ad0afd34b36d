package report

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSX renders a workbook with one sheet per report section.
type XLSX struct {
	dir string
}

// NewXLSX creates an XLSX renderer writing into dir.
func NewXLSX(dir string) *XLSX {
	return &XLSX{dir: dir}
}

// Format implements Renderer.
func (x *XLSX) Format() string { return FormatXLSX }

// Render implements Renderer.
func (x *XLSX) Render(_ context.Context, doc Document) (Artifact, error) {
	a := doc.Assessment
	f := xlsx.NewFile()

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return Artifact{}, eris.Wrap(err, "report: add summary sheet")
	}
	addStringRow(summary, "Idea", a.IdeaName)
	addFloatRow(summary, "Financial score", a.FinancialScore)
	addFloatRow(summary, "Market score", a.MarketScore)
	addFloatRow(summary, "Competitive score", a.CompetitiveScore)
	addFloatRow(summary, "Overall score", a.OverallScore)
	addStringRow(summary, "Rating", a.Rating)
	addStringRow(summary, "Decision", a.Decision)
	addStringRow(summary, "Executive summary", a.ExecutiveSummary)

	risks, err := f.AddSheet("Risks")
	if err != nil {
		return Artifact{}, eris.Wrap(err, "report: add risks sheet")
	}
	addStringRow(risks, "Category", "Severity", "Message")
	for _, r := range a.Risks {
		addStringRow(risks, r.Category, string(r.Severity), r.Message)
	}

	recs, err := f.AddSheet("Recommendations")
	if err != nil {
		return Artifact{}, eris.Wrap(err, "report: add recommendations sheet")
	}
	for _, r := range a.Recommendations {
		addStringRow(recs, r)
	}

	if a.Partial {
		dq, err := f.AddSheet("Data Quality")
		if err != nil {
			return Artifact{}, eris.Wrap(err, "report: add data quality sheet")
		}
		addStringRow(dq, "Stage", "Reason")
		for _, d := range a.Degradations {
			addStringRow(dq, string(d.Stage), d.Reason)
		}
	}

	if err := os.MkdirAll(x.dir, 0o755); err != nil {
		return Artifact{}, eris.Wrap(err, "report: create output dir")
	}
	path := filepath.Join(x.dir, doc.RunID+".xlsx")
	if err := f.Save(path); err != nil {
		return Artifact{}, eris.Wrapf(err, "report: save %s", path)
	}
	return Artifact{Format: FormatXLSX, Path: path}, nil
}

func addStringRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

func addFloatRow(sheet *xlsx.Sheet, label string, v float64) {
	row := sheet.AddRow()
	row.AddCell().SetString(label)
	row.AddCell().SetFloat(v)
}
