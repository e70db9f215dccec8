package json_test

import (
	"bytes"
	stdjson "encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phabreview/phabreview/internal/adapter/output/json"
	"github.com/phabreview/phabreview/internal/ansi"
	"github.com/phabreview/phabreview/internal/domain"
)

func TestWriter_Write(t *testing.T) {
	// Given
	var buf bytes.Buffer
	writer := json.NewWriter(&buf)

	report := domain.Report{
		Revision: domain.Revision{
			ID:     "123",
			Title:  "Fix login redirect",
			Status: "Needs Review",
			URI:    "https://phab.example.com/D123",
		},
		Source:      domain.SourcePhabricator,
		Model:       "xiaomi/mimo-v2-flash:free",
		DiffSummary: ansi.Wrap(ansi.Title, "app/views.py") + "\n  Added line 42",
		Result: domain.ReviewResult{
			Summary: []string{"Adds a redirect after login"},
		},
		Annotated: []domain.AnnotatedChange{
			{
				RequestedChange: domain.RequestedChange{
					Path:   "app/views.py",
					Line:   "42",
					Change: "Use is None instead of == None.",
				},
				Snippet:    "> 42:     return render(request)",
				HasSnippet: true,
			},
		},
		GeneratedAt: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
	}

	// When
	err := writer.Write(report)

	// Then
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, stdjson.Unmarshal(buf.Bytes(), &decoded))

	revision, ok := decoded["revision"].(map[string]any)
	require.True(t, ok, "revision object missing")
	assert.Equal(t, "123", revision["id"])
	assert.Equal(t, "D123", revision["name"])
	assert.Equal(t, "Fix login redirect", revision["title"])

	assert.Equal(t, "phabricator", decoded["source"])
	assert.Equal(t, "xiaomi/mimo-v2-flash:free", decoded["model"])
	assert.NotContains(t, decoded["change_summary"], "\x1b[")
	assert.Contains(t, decoded["change_summary"], "app/views.py")

	changes, ok := decoded["requested_changes"].([]any)
	require.True(t, ok, "requested_changes array missing")
	require.Len(t, changes, 1)
	change := changes[0].(map[string]any)
	assert.Equal(t, "app/views.py", change["path"])
	assert.Equal(t, "42", change["line"])
	assert.Equal(t, "> 42:     return render(request)", change["snippet"])
}

func TestWriter_NullSlicesBecomeEmptyArrays(t *testing.T) {
	var buf bytes.Buffer
	writer := json.NewWriter(&buf)

	err := writer.Write(domain.Report{Source: domain.SourceLocal})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"summary": []`)
	assert.Contains(t, out, `"requested_changes": []`)
}

func TestWriter_OutputIsIndented(t *testing.T) {
	var buf bytes.Buffer
	writer := json.NewWriter(&buf)

	require.NoError(t, writer.Write(domain.Report{Source: domain.SourceLocal}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Greater(t, len(lines), 3, "expected multi-line indented output")
	assert.True(t, strings.HasPrefix(lines[1], "  "), "expected two-space indent, got %q", lines[1])
}

func TestWriter_SnippetOmittedWhenAbsent(t *testing.T) {
	var buf bytes.Buffer
	writer := json.NewWriter(&buf)

	report := domain.Report{
		Source: domain.SourceLocal,
		Annotated: []domain.AnnotatedChange{
			{RequestedChange: domain.RequestedChange{Path: "a.py", Line: "3", Change: "Check for nil."}},
		},
	}
	require.NoError(t, writer.Write(report))

	assert.NotContains(t, buf.String(), `"snippet"`)
}
