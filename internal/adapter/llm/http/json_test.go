package http_test

import (
	"encoding/json"
	"testing"

	llmhttp "github.com/phabreview/phabreview/internal/adapter/llm/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONFromMarkdown_JSONCodeBlock(t *testing.T) {
	markdown := "```json\n{\"summary\": \"test\", \"requested_changes\": []}\n```"
	result := llmhttp.ExtractJSONFromMarkdown(markdown)

	expected := `{"summary": "test", "requested_changes": []}`
	assert.Equal(t, expected, result)
}

func TestExtractJSONFromMarkdown_PlainCodeBlock(t *testing.T) {
	markdown := "```\n{\"summary\": \"test\", \"requested_changes\": []}\n```"
	result := llmhttp.ExtractJSONFromMarkdown(markdown)

	expected := `{"summary": "test", "requested_changes": []}`
	assert.Equal(t, expected, result)
}

func TestExtractJSONFromMarkdown_RawJSON(t *testing.T) {
	rawJSON := `{"summary": "test", "requested_changes": []}`
	result := llmhttp.ExtractJSONFromMarkdown(rawJSON)

	// Should return trimmed input when no code block
	assert.Equal(t, rawJSON, result)
}

func TestExtractJSONFromMarkdown_EmptyString(t *testing.T) {
	result := llmhttp.ExtractJSONFromMarkdown("")
	assert.Equal(t, "", result)
}

func TestExtractJSONFromMarkdown_ProseAroundFence(t *testing.T) {
	markdown := "Here is my review:\n\n```json\n{\"summary\": \"ok\"}\n```\n\nLet me know if you need more."
	result := llmhttp.ExtractJSONFromMarkdown(markdown)

	assert.Equal(t, `{"summary": "ok"}`, result)
}

func TestExtractJSONFromMarkdown_NoJSON(t *testing.T) {
	plainText := "This is just plain text without JSON"
	result := llmhttp.ExtractJSONFromMarkdown(plainText)

	// Should return trimmed input
	assert.Equal(t, plainText, result)
}

func TestExtractJSONFromMarkdown_WithWhitespace(t *testing.T) {
	markdown := "```json\n\n  {\"summary\": \"test\"}  \n\n```"
	result := llmhttp.ExtractJSONFromMarkdown(markdown)

	expected := `{"summary": "test"}`
	assert.Equal(t, expected, result)
}

func TestExtractJSONFromMarkdown_NestedCodeBlocks(t *testing.T) {
	// JSON containing a change suggestion with its own fenced snippet:
	// greedy matching must run to the final fence, not stop at the
	// nested one.
	markdown := "```json\n{\n  \"summary\": [\"test\"],\n  \"requested_changes\": [\n    {\n      \"change\": \"Use:\\n\\n```python\\nreturn x\\n```\"\n    }\n  ]\n}\n```"
	result := llmhttp.ExtractJSONFromMarkdown(markdown)

	var parsed struct {
		Summary []string `json:"summary"`
		Changes []struct {
			Change string `json:"change"`
		} `json:"requested_changes"`
	}
	require.NoError(t, json.Unmarshal([]byte(result), &parsed))
	assert.Equal(t, []string{"test"}, parsed.Summary)
	require.Len(t, parsed.Changes, 1)
	assert.Contains(t, parsed.Changes[0].Change, "```python")
}

func TestRepairJSON_TrailingComma(t *testing.T) {
	broken := `{"summary": ["a", "b",], "requested_changes": [],}`
	repaired := llmhttp.RepairJSON(broken)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(repaired), &parsed))
	assert.Contains(t, parsed, "summary")
}

func TestRepairJSON_SingleQuotes(t *testing.T) {
	broken := `{'summary': 'fine'}`
	repaired := llmhttp.RepairJSON(broken)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(repaired), &parsed))
	assert.Equal(t, "fine", parsed["summary"])
}

func TestRepairJSON_ValidInputUnchangedInMeaning(t *testing.T) {
	valid := `{"summary": ["looks good"]}`
	repaired := llmhttp.RepairJSON(valid)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(repaired), &parsed))
	assert.Equal(t, []any{"looks good"}, parsed["summary"])
}

func TestRepairJSON_UnrepairableReturnsInput(t *testing.T) {
	hopeless := "not json at all, just prose"
	repaired := llmhttp.RepairJSON(hopeless)

	// Repair may coerce prose into a JSON string; the guarantee is only
	// that we never lose the original content entirely.
	assert.NotEmpty(t, repaired)
}
