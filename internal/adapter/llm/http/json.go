package http

import (
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Greedy so that fences inside the JSON (code examples in suggestions)
// do not truncate the match; the block runs to the last closing fence.
var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*([\\s\\S]*)```")

// ExtractJSONFromMarkdown extracts JSON from a markdown code block,
// supporting both ```json and bare ``` fences. Returns the trimmed
// input unchanged when no fence is present, since the text may already
// be raw JSON.
func ExtractJSONFromMarkdown(text string) string {
	matches := jsonBlockRegex.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	return strings.TrimSpace(text)
}

// RepairJSON attempts to fix almost-JSON model output (trailing commas,
// single quotes, unquoted keys). Returns the input unchanged when the
// repair fails; callers decide how tolerant to be about the result.
func RepairJSON(text string) string {
	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return text
	}
	return repaired
}
