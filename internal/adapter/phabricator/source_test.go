package phabricator_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phabreview/phabreview/internal/adapter/phabricator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sourceRawDiff = "diff --git a/app.py b/app.py\n" +
	"--- a/app.py\n" +
	"+++ b/app.py\n" +
	"@@ -1,1 +1,1 @@\n" +
	"-old\n" +
	"+new\n"

func newConduitStub(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/differential.revision.search":
			writeJSON(t, w, conduitOK(revisionSearchData(map[string]any{
				"title":    "Fix login redirect",
				"uri":      "https://phab.example.com/D123",
				"summary":  "Redirect users back after login.",
				"diffPHID": "PHID-DIFF-xyz",
				"status":   map[string]any{"name": "Needs Review"},
			})))
		case "/api/differential.diff.search":
			writeJSON(t, w, conduitOK(map[string]any{
				"data": []any{map[string]any{"id": 999}},
			}))
		case "/api/differential.getrawdiff":
			writeJSON(t, w, conduitOK(sourceRawDiff))
		default:
			t.Errorf("unexpected conduit call: %s", r.URL.Path)
		}
	}))
}

func TestSourceFetch(t *testing.T) {
	server := newConduitStub(t)
	defer server.Close()

	client := phabricator.NewClient(server.URL, "tok")
	client.SetRetryConfig(fastRetry())
	source := phabricator.NewSource(client, "D123")

	revision, raw, err := source.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "D123", revision.Name())
	assert.Equal(t, "Fix login redirect", revision.Title)
	assert.Equal(t, "PHID-DIFF-xyz", revision.DiffPHID)
	assert.Equal(t, sourceRawDiff, raw)
}

func TestSourceFetchInvalidID(t *testing.T) {
	server := newConduitStub(t)
	defer server.Close()

	client := phabricator.NewClient(server.URL, "tok")
	source := phabricator.NewSource(client, "not-a-revision")

	_, _, err := source.Fetch(context.Background())
	assert.ErrorIs(t, err, phabricator.ErrInvalidRevisionID)
}
