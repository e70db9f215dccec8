// Package json serializes review reports for piping into other tools.
package json

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/phabreview/phabreview/internal/ansi"
	"github.com/phabreview/phabreview/internal/domain"
)

// Writer emits a report as indented JSON with a stable field order.
type Writer struct {
	out io.Writer
}

// NewWriter constructs a writer targeting out, typically stdout or a
// file opened by the CLI.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// reportPayload pins the serialized shape. Null slices are normalized
// to empty arrays so consumers can index without checking.
type reportPayload struct {
	Revision      revisionPayload `json:"revision"`
	Source        string          `json:"source"`
	Model         string          `json:"model"`
	GeneratedAt   time.Time       `json:"generated_at"`
	ChangeSummary string          `json:"change_summary"`
	Summary       []string        `json:"summary"`
	Changes       []changePayload `json:"requested_changes"`
}

type revisionPayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Title   string `json:"title"`
	Status  string `json:"status,omitempty"`
	URI     string `json:"uri,omitempty"`
	Summary string `json:"summary,omitempty"`
}

type changePayload struct {
	Path    string `json:"path"`
	Line    string `json:"line"`
	Change  string `json:"change"`
	Snippet string `json:"snippet,omitempty"`
}

// Write encodes the report.
func (w *Writer) Write(report domain.Report) error {
	encoder := json.NewEncoder(w.out)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(toPayload(report)); err != nil {
		return fmt.Errorf("encode report to json: %w", err)
	}
	return nil
}

func toPayload(report domain.Report) reportPayload {
	payload := reportPayload{
		Revision: revisionPayload{
			ID:      report.Revision.ID,
			Name:    report.Revision.Name(),
			Title:   report.Revision.Title,
			Status:  report.Revision.Status,
			URI:     report.Revision.URI,
			Summary: report.Revision.Summary,
		},
		Source:        report.Source,
		Model:         report.Model,
		GeneratedAt:   report.GeneratedAt,
		ChangeSummary: ansi.Strip(report.DiffSummary),
		Summary:       report.Result.Summary,
		Changes:       make([]changePayload, 0, len(report.Annotated)),
	}
	if payload.Summary == nil {
		payload.Summary = []string{}
	}

	for _, change := range report.Annotated {
		payload.Changes = append(payload.Changes, changePayload{
			Path:    change.Path,
			Line:    change.Line,
			Change:  change.Change,
			Snippet: change.Snippet,
		})
	}
	return payload
}
