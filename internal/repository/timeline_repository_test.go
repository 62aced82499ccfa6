package repository_test

import (
	"context"
	"testing"

	"island-timeline/internal/domain/timeline"
	"island-timeline/internal/repository"
	"island-timeline/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(userID, feedID, islandID, eventID string, createdAt int64) timeline.Timeline {
	return timeline.Timeline{
		ID:            uuid.New(),
		FeedID:        feedID,
		IslandID:      islandID,
		UserID:        userID,
		FeedCreatedAt: createdAt,
		DuplicateTag:  feedID,
		EventID:       eventID,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func TestInsertAllSkipsExistingUserFeedPairs(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTimelineRepository(testutil.NewSQLiteDB(t), 2)

	first := []timeline.Timeline{
		entry("u1", "f1", "i1", "e1", 100),
		entry("u2", "f1", "i1", "e1", 100),
		entry("u3", "f1", "i1", "e1", 100),
	}
	require.NoError(t, repo.InsertAll(ctx, first))

	// Redelivery builds fresh ids for the same (user, feed) pairs.
	again := []timeline.Timeline{
		entry("u1", "f1", "i1", "e1", 100),
		entry("u2", "f1", "i1", "e1", 100),
		entry("u4", "f1", "i1", "e1", 100),
	}
	require.NoError(t, repo.InsertAll(ctx, again))

	for _, user := range []string{"u1", "u2", "u3", "u4"} {
		rows, err := repo.FindByUserIDBefore(ctx, user, 1000, 10)
		require.NoError(t, err)
		assert.Len(t, rows, 1, user)
	}
}

func TestInsertAllEmptyIsNoop(t *testing.T) {
	repo := repository.NewTimelineRepository(testutil.NewSQLiteDB(t), 0)
	assert.NoError(t, repo.InsertAll(context.Background(), nil))
}

func TestExistsByEventIDCountsDeletedRows(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTimelineRepository(testutil.NewSQLiteDB(t), 10)

	exists, err := repo.ExistsByEventID(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, exists)

	e := entry("u1", "f1", "i1", "e1", 100)
	require.NoError(t, repo.Insert(ctx, &e))
	_, err = repo.SoftDeleteByFeedID(ctx, "f1", 200)
	require.NoError(t, err)

	exists, err = repo.ExistsByEventID(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFindBeforeAndAfterOrdering(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTimelineRepository(testutil.NewSQLiteDB(t), 10)

	var rows []timeline.Timeline
	for i, ts := range []int64{10, 20, 30, 40, 50} {
		rows = append(rows, entry("u1", string(rune('a'+i)), "i1", "e", ts))
	}
	rows = append(rows, entry("u2", "z", "i1", "e", 35))
	require.NoError(t, repo.InsertAll(ctx, rows))

	before, err := repo.FindByUserIDBefore(ctx, "u1", 40, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{30, 20, 10}, timestamps(before))

	after, err := repo.FindByUserIDAfter(ctx, "u1", 20, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{30, 40}, timestamps(after))
}

func TestFindLastFeedTimestampIgnoresDeleted(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTimelineRepository(testutil.NewSQLiteDB(t), 10)

	_, ok, err := repo.FindLastFeedTimestampByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.InsertAll(ctx, []timeline.Timeline{
		entry("u1", "f1", "i1", "e1", 100),
		entry("u1", "f2", "i1", "e2", 300),
	}))
	_, err = repo.SoftDeleteByFeedID(ctx, "f2", 400)
	require.NoError(t, err)

	last, ok, err := repo.FindLastFeedTimestampByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(100), last)
}

func TestSoftDeleteByFeedIDIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTimelineRepository(testutil.NewSQLiteDB(t), 10)
	require.NoError(t, repo.InsertAll(ctx, []timeline.Timeline{
		entry("u1", "f1", "i1", "e1", 100),
		entry("u2", "f1", "i1", "e1", 100),
		entry("u2", "f2", "i1", "e2", 200),
	}))

	n, err := repo.SoftDeleteByFeedID(ctx, "f1", 500)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.SoftDeleteByFeedID(ctx, "f1", 600)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	rows, err := repo.FindByUserIDBefore(ctx, "u2", 1000, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{200}, timestamps(rows))
}

func TestSoftDeleteByUserIDAndIslandID(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTimelineRepository(testutil.NewSQLiteDB(t), 10)
	require.NoError(t, repo.InsertAll(ctx, []timeline.Timeline{
		entry("u1", "f1", "i1", "e1", 100),
		entry("u1", "f2", "i2", "e2", 200),
		entry("u2", "f1", "i1", "e1", 100),
	}))

	n, err := repo.SoftDeleteByUserIDAndIslandID(ctx, "u1", "i1", 300)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rows, err := repo.FindByUserIDAfter(ctx, "u1", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{200}, timestamps(rows))

	rows, err = repo.FindByUserIDAfter(ctx, "u2", 0, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func timestamps(rows []timeline.Timeline) []int64 {
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.FeedCreatedAt)
	}
	return out
}
