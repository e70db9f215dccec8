package http

import (
	"fmt"
	"regexp"
)

// MaxLoggedResponseLength caps how much raw model output may appear in
// logs. Full responses can contain whole source files.
const MaxLoggedResponseLength = 200

// RedactAPIKey shows only the last 4 characters of a credential with
// explicit redaction markers. Short keys are fully masked.
func RedactAPIKey(key string) string {
	if len(key) <= 4 {
		return "[REDACTED]"
	}
	return fmt.Sprintf("[REDACTED-%s]", key[len(key)-4:])
}

// TruncateForLogging shortens a response body for log output, keeping
// the first MaxLoggedResponseLength bytes plus a truncation indicator.
func TruncateForLogging(response string) string {
	if len(response) <= MaxLoggedResponseLength {
		return response
	}
	return response[:MaxLoggedResponseLength] + fmt.Sprintf("... [truncated, total length=%d bytes]", len(response))
}

var secretParamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`key=([^&"\s]+)`),
	regexp.MustCompile(`apiKey=([^&"\s]+)`),
	regexp.MustCompile(`api_key=([^&"\s]+)`),
	regexp.MustCompile(`token=([^&"\s]+)`),
	regexp.MustCompile(`access_token=([^&"\s]+)`),
}

// RedactURLSecrets masks credential parameters embedded in text, such
// as error messages that echo a request URL or form body.
func RedactURLSecrets(text string) string {
	if text == "" {
		return text
	}
	result := text
	for _, re := range secretParamPatterns {
		prefix := re.String()[:len(re.String())-len(`=([^&"\s]+)`)]
		result = re.ReplaceAllString(result, prefix+"=[REDACTED]")
	}
	return result
}
