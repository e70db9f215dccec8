package git

import (
	"context"

	"github.com/phabreview/phabreview/internal/domain"
)

// Source adapts the git engine to the review pipeline's revision
// source port. The report is titled with the checked-out branch.
type Source struct {
	engine             *Engine
	baseRef            string
	targetRef          string
	includeUncommitted bool
}

// NewSource binds the engine to one ref pair.
func NewSource(engine *Engine, baseRef, targetRef string, includeUncommitted bool) *Source {
	return &Source{
		engine:             engine,
		baseRef:            baseRef,
		targetRef:          targetRef,
		includeUncommitted: includeUncommitted,
	}
}

// Fetch computes the diff and labels it with the current branch. A
// branch lookup failure, detached HEAD included, falls back to a
// generic title rather than failing the review.
func (s *Source) Fetch(ctx context.Context) (domain.Revision, string, error) {
	rawDiff, err := s.engine.Diff(ctx, s.baseRef, s.targetRef, s.includeUncommitted)
	if err != nil {
		return domain.Revision{}, "", err
	}

	title, err := s.engine.CurrentBranch(ctx)
	if err != nil || title == "" {
		title = "local changes"
	}
	return domain.Revision{Title: title}, rawDiff, nil
}
