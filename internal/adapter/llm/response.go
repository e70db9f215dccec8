// Package llm provides the model-facing adapters shared by providers:
// tolerant response parsing and token estimation. The OpenRouter client
// lives in the openrouter subpackage, transport plumbing in http.
package llm

import (
	"encoding/json"
	"strings"

	llmhttp "github.com/phabreview/phabreview/internal/adapter/llm/http"
	"github.com/phabreview/phabreview/internal/domain"
)

const emptyResponseNote = "(model returned empty response)"

// reviewPayload mirrors the JSON contract from the system prompt. Models
// are sloppy about types: summary may be a string or an array, line a
// number or a "15-20" range, so both are captured raw and normalized.
type reviewPayload struct {
	Summary          json.RawMessage          `json:"summary"`
	RequestedChanges []requestedChangePayload `json:"requested_changes"`
}

type requestedChangePayload struct {
	Path   string          `json:"path"`
	Line   json.RawMessage `json:"line"`
	Change string          `json:"change"`
}

// ParseReviewResult interprets raw model output as a structured review.
// It never fails: markdown fences are stripped, almost-JSON gets one
// repair pass, and anything still unparseable becomes the summary
// verbatim. RawResponse always carries the untouched model output.
func ParseReviewResult(content string) domain.ReviewResult {
	text := strings.TrimSpace(content)
	jsonText := llmhttp.ExtractJSONFromMarkdown(text)

	payload, err := decodeReview(jsonText)
	if err != nil {
		payload, err = decodeReview(llmhttp.RepairJSON(jsonText))
	}
	if err != nil {
		summary := []string{content}
		if content == "" {
			summary = []string{emptyResponseNote}
		}
		return domain.ReviewResult{
			Summary:     summary,
			RawResponse: content,
		}
	}

	return domain.ReviewResult{
		Summary:          summaryLines(payload.Summary),
		RequestedChanges: requestedChanges(payload.RequestedChanges),
		RawResponse:      content,
	}
}

func decodeReview(text string) (reviewPayload, error) {
	var payload reviewPayload
	err := json.Unmarshal([]byte(text), &payload)
	return payload, err
}

// summaryLines accepts both the documented array form and the bare
// string some models return instead.
func summaryLines(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}
	}
	return nil
}

func requestedChanges(items []requestedChangePayload) []domain.RequestedChange {
	if len(items) == 0 {
		return nil
	}
	changes := make([]domain.RequestedChange, 0, len(items))
	for _, item := range items {
		changes = append(changes, domain.RequestedChange{
			Path:   item.Path,
			Line:   lineRefString(item.Line),
			Change: item.Change,
		})
	}
	return changes
}

// lineRefString normalizes a line reference: JSON numbers become their
// decimal form, strings are kept verbatim.
func lineRefString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return strings.TrimSpace(string(raw))
}
