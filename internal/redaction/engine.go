// Package redaction masks credentials in diff text before it is sent
// to the review model. Rendering and snippet extraction always use the
// original diff; only the model sees the redacted copy.
package redaction

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// Engine performs regex-based secret detection and redaction.
type Engine struct {
	patterns []*regexp.Regexp
}

// NewEngine creates a redaction engine with the default secret
// patterns.
func NewEngine() *Engine {
	return &Engine{patterns: defaultPatterns()}
}

// Redact scans input for secrets and replaces each with a stable
// placeholder derived from the secret's hash, so repeated occurrences
// redact identically. It returns the redacted text and the number of
// distinct secrets masked.
func (e *Engine) Redact(input string) (string, int) {
	seen := make(map[string]string) // secret -> placeholder

	for _, pattern := range e.patterns {
		for _, match := range pattern.FindAllString(input, -1) {
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = placeholder(match)
		}
	}

	result := input
	for secret, repl := range seen {
		result = strings.ReplaceAll(result, secret, repl)
	}
	return result, len(seen)
}

// IsRedacted reports whether content already carries redaction
// placeholders.
func (e *Engine) IsRedacted(content string) bool {
	return strings.Contains(content, "<REDACTED:")
}

func placeholder(secret string) string {
	hash := sha256.Sum256([]byte(secret))
	return fmt.Sprintf("<REDACTED:%s>", hex.EncodeToString(hash[:])[:8])
}

// defaultPatterns covers the credential shapes most likely to appear
// in application diffs, including the tokens this tool itself uses.
func defaultPatterns() []*regexp.Regexp {
	patterns := []string{
		// Phabricator Conduit API tokens
		`api-[a-z0-9]{28}`,
		// OpenRouter API keys
		`sk-or-v1-[a-f0-9]{40,}`,
		// OpenAI-style API keys
		`sk-[a-zA-Z0-9]{20,}`,
		// AWS Access Key ID
		`AKIA[0-9A-Z]{16}`,
		// AWS Secret Access Key (quoted high-entropy value near "aws")
		`aws.{0,20}?['\"][0-9a-zA-Z/+]{40}['\"]`,
		// GitHub tokens
		`gh[posr]_[a-zA-Z0-9]{20,}`,
		// Google API keys
		`AIza[0-9A-Za-z\-_]{35}`,
		// JWT tokens
		`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`,
		// Private keys (PEM format)
		`-----BEGIN\s+(?:RSA|EC|OPENSSH|DSA|ENCRYPTED)\s+PRIVATE\s+KEY-----[\s\S]*?-----END\s+(?:RSA|EC|OPENSSH|DSA|ENCRYPTED)\s+PRIVATE\s+KEY-----`,
		// Slack tokens
		`xox[baprs]-[a-zA-Z0-9\-]{10,}`,
		// Bearer tokens in headers
		`Bearer\s+[a-zA-Z0-9_\-\.]+`,
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		compiled = append(compiled, regexp.MustCompile(pattern))
	}
	return compiled
}
