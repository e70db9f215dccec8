package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phabreview/phabreview/internal/adapter/store/sqlite"
	"github.com/phabreview/phabreview/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err, "failed to create test store")

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func sampleRecord(revisionID string, createdAt time.Time) domain.ReviewRecord {
	return domain.ReviewRecord{
		RevisionID:  revisionID,
		Title:       "Fix login redirect",
		Source:      "phabricator",
		Model:       "xiaomi/mimo-v2-flash:free",
		Summary:     "- Adds a redirect after login\n- No security concerns",
		RawResponse: `{"summary": ["ok"]}`,
		ReportPath:  "/tmp/D123-20240101-120000.md",
		CreatedAt:   createdAt,
	}
}

func TestSaveReviewAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	id, err := store.SaveReview(ctx, sampleRecord("123", created))
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	got, err := store.GetReview(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, got.ID)
	assert.Equal(t, "123", got.RevisionID)
	assert.Equal(t, "Fix login redirect", got.Title)
	assert.Equal(t, "phabricator", got.Source)
	assert.Equal(t, "xiaomi/mimo-v2-flash:free", got.Model)
	assert.Equal(t, "- Adds a redirect after login\n- No security concerns", got.Summary)
	assert.Equal(t, `{"summary": ["ok"]}`, got.RawResponse)
	assert.Equal(t, "/tmp/D123-20240101-120000.md", got.ReportPath)
	assert.Equal(t, created.Unix(), got.CreatedAt.Unix())
}

func TestGetReview_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetReview(context.Background(), 9999)

	assert.ErrorIs(t, err, sqlite.ErrNotFound)
}

func TestListRecent_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, revision := range []string{"100", "200", "300"} {
		_, err := store.SaveReview(ctx, sampleRecord(revision, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	records, err := store.ListRecent(ctx, 2)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "300", records[0].RevisionID)
	assert.Equal(t, "200", records[1].RevisionID)
}

func TestListRecent_Empty(t *testing.T) {
	store := newTestStore(t)

	records, err := store.ListRecent(context.Background(), 10)

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNewStore_CreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")

	store, err := sqlite.NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.SaveReview(context.Background(), sampleRecord("1", time.Now()))
	require.NoError(t, err)

	info, err := os.Stat(dbPath)
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}
