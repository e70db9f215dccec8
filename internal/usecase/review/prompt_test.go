package review_test

import (
	"strings"
	"testing"

	"github.com/phabreview/phabreview/internal/usecase/review"
)

func TestSystemPromptPinsResponseContract(t *testing.T) {
	if !strings.Contains(review.SystemPrompt, "```json") {
		t.Fatalf("system prompt must show the JSON response example")
	}
	for _, key := range []string{`"summary"`, `"requested_changes"`, `"path"`, `"line"`, `"change"`} {
		if !strings.Contains(review.SystemPrompt, key) {
			t.Fatalf("system prompt is missing the %s key in its contract", key)
		}
	}
	if !strings.HasSuffix(review.SystemPrompt, "Prioritize: bugs > security > maintainability > style") {
		t.Fatalf("system prompt must end on the priority rule with no trailing newline")
	}
}

func TestSystemPromptSectionOrder(t *testing.T) {
	sections := []string{
		"**Backend:**",
		"**Frontend:**",
		"**Critical Review Rules (MUST enforce):**",
		"**Python 2.7 Review Points:**",
		"**AngularJS Review Points:**",
		"**jQuery Review Points:**",
		"**Jinja2 Template Review Points:**",
		"**General Code Quality:**",
		"**Response Format:**",
	}

	last := -1
	for _, section := range sections {
		idx := strings.Index(review.SystemPrompt, section)
		if idx < 0 {
			t.Fatalf("system prompt is missing section %s", section)
		}
		if idx <= last {
			t.Fatalf("section %s is out of order", section)
		}
		last = idx
	}
}

func TestBuildUserPromptWithFullContext(t *testing.T) {
	got := review.BuildUserPrompt("DIFF", "SUMMARY", "DESC")

	want := "**Revision Description:**\nDESC\n\n" +
		"**Change Summary:**\nSUMMARY\n\n" +
		"**Full Diff:**\n```diff\nDIFF\n```\n\n" +
		"\nPlease review this code change and provide your feedback in the specified JSON format."
	if got != want {
		t.Fatalf("unexpected prompt:\n%s", got)
	}
}

func TestBuildUserPromptOmitsEmptyParts(t *testing.T) {
	got := review.BuildUserPrompt("DIFF", "SUMMARY", "")
	if strings.Contains(got, "**Revision Description:**") {
		t.Fatalf("empty revision summary must be omitted:\n%s", got)
	}
	if !strings.HasPrefix(got, "**Change Summary:**") {
		t.Fatalf("prompt should open with the change summary:\n%s", got)
	}

	got = review.BuildUserPrompt("DIFF", "", "")
	if strings.Contains(got, "**Change Summary:**") {
		t.Fatalf("empty change summary must be omitted:\n%s", got)
	}
	if !strings.HasPrefix(got, "**Full Diff:**") {
		t.Fatalf("prompt should open with the diff:\n%s", got)
	}
}

func TestBuildUserPromptKeepsTerminalColors(t *testing.T) {
	summary := "\x1b[96mapp/views.py\x1b[0m\n\x1b[32mAdded\x1b[0m line 42"
	got := review.BuildUserPrompt("DIFF", summary, "")
	if !strings.Contains(got, summary) {
		t.Fatalf("change summary must be embedded verbatim:\n%q", got)
	}
}
