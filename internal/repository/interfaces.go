package repository

import (
	"context"

	"island-timeline/internal/domain/timeline"
)

type TimelineRepository interface {
	// InsertAll writes entries in one transaction. Rows whose (user_id, feed_id)
	// already exists are skipped.
	InsertAll(ctx context.Context, entries []timeline.Timeline) error
	Insert(ctx context.Context, entry *timeline.Timeline) error

	ExistsByEventID(ctx context.Context, eventID string) (bool, error)
	FindByUserIDBefore(ctx context.Context, userID string, before int64, limit int) ([]timeline.Timeline, error)
	FindByUserIDAfter(ctx context.Context, userID string, after int64, limit int) ([]timeline.Timeline, error)
	FindLastFeedTimestampByUserID(ctx context.Context, userID string) (int64, bool, error)

	SoftDeleteByFeedID(ctx context.Context, feedID string, now int64) (int64, error)
	SoftDeleteByUserIDAndIslandID(ctx context.Context, userID, islandID string, now int64) (int64, error)
}
