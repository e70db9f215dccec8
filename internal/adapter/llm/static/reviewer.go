package static

import (
	"context"
	"fmt"

	"github.com/phabreview/phabreview/internal/adapter/llm"
	"github.com/phabreview/phabreview/internal/domain"
	"github.com/phabreview/phabreview/internal/usecase/review"
)

const modelName = "dry-run"

// Reviewer implements the usecase Reviewer port without any network
// calls. The outcome reports the prompt size, so a dry run still tells
// the user what a live review would send.
type Reviewer struct{}

// NewReviewer constructs the offline reviewer.
func NewReviewer() *Reviewer {
	return &Reviewer{}
}

// Review sizes the prompt and returns a canned result with no
// requested changes.
func (r *Reviewer) Review(ctx context.Context, req review.ReviewRequest) (review.ReviewOutcome, error) {
	estimate := llm.EstimateTokens(req.System) + llm.EstimateTokens(req.Prompt)

	return review.ReviewOutcome{
		Model: modelName,
		Result: domain.ReviewResult{
			Summary: []string{
				fmt.Sprintf("Dry run: prompt estimated at %d tokens.", estimate),
				"No review model was called.",
			},
		},
		TokensIn: estimate,
	}, nil
}
