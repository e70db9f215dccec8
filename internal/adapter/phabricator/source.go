package phabricator

import (
	"context"

	"github.com/phabreview/phabreview/internal/domain"
)

// Source adapts the Conduit client to the review pipeline's revision
// source port, bound to a single revision ID.
type Source struct {
	client     *Client
	revisionID string
}

// NewSource binds the client to one revision ID, accepted with or
// without the leading D.
func NewSource(client *Client, revisionID string) *Source {
	return &Source{client: client, revisionID: revisionID}
}

// Fetch loads the revision metadata and its raw unified diff.
func (s *Source) Fetch(ctx context.Context) (domain.Revision, string, error) {
	revision, rawDiff, err := s.client.GetRevisionDiff(ctx, s.revisionID)
	if err != nil {
		return domain.Revision{}, "", err
	}
	return *revision, rawDiff, nil
}
