package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/replybot/internal/models"
)

func TestSQLiteTracker_AppendList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "tracked_comments.db")
	tr, err := NewSQLiteTracker(path)
	require.NoError(t, err)
	defer tr.Close()

	ctx := context.Background()
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, tr.Append(ctx, models.TrackedComment{CommentID: "c1", PostID: "p1", ReplyText: "a", PostDate: ts}))
	require.NoError(t, tr.Append(ctx, models.TrackedComment{CommentID: "c2", PostDate: ts.Add(time.Hour)}))

	got, err := tr.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].CommentID)
	assert.Equal(t, "p1", got[0].PostID)
	assert.True(t, ts.Equal(got[0].PostDate))
	assert.Equal(t, "c2", got[1].CommentID)
}

func TestSQLiteTracker_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracked_comments.db")
	tr, err := NewSQLiteTracker(path)
	require.NoError(t, err)
	require.NoError(t, tr.Append(context.Background(), models.TrackedComment{CommentID: "c1", PostDate: time.Now()}))
	require.NoError(t, tr.Close())

	tr, err = NewSQLiteTracker(path)
	require.NoError(t, err)
	defer tr.Close()
	got, err := tr.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
