package report

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// JSON renders the full document as indented JSON.
type JSON struct {
	dir string
}

// NewJSON creates a JSON renderer writing into dir.
func NewJSON(dir string) *JSON {
	return &JSON{dir: dir}
}

// Format implements Renderer.
func (j *JSON) Format() string { return FormatJSON }

// Render implements Renderer.
func (j *JSON) Render(_ context.Context, doc Document) (Artifact, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Artifact{}, eris.Wrap(err, "report: marshal json")
	}
	path, err := writeFile(j.dir, doc.RunID, "json", data)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Format: FormatJSON, Path: path}, nil
}
