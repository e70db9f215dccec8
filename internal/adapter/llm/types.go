package llm

import "github.com/phabreview/phabreview/internal/domain"

// UsageMetadata captures token usage reported by the provider for one
// review call.
type UsageMetadata struct {
	TokensIn  int // Input tokens consumed
	TokensOut int // Output tokens generated
}

// ProviderResponse is the standardized response from a review provider:
// the model that actually served the call, the parsed review, and usage
// numbers for logging.
type ProviderResponse struct {
	Model  string
	Result domain.ReviewResult
	Usage  UsageMetadata
}
