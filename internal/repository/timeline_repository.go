package repository

import (
	"context"
	"database/sql"

	"island-timeline/internal/domain/timeline"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormTimelineRepository struct {
	db        *gorm.DB
	batchSize int
}

func NewTimelineRepository(db *gorm.DB, batchSize int) TimelineRepository {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &GormTimelineRepository{db: db, batchSize: batchSize}
}

func (r *GormTimelineRepository) InsertAll(ctx context.Context, entries []timeline.Timeline) error {
	if len(entries) == 0 {
		return nil
	}
	err := WithTx(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			CreateInBatches(&entries, r.batchSize).Error
	})
	return classify("insert timelines", err)
}

func (r *GormTimelineRepository) Insert(ctx context.Context, entry *timeline.Timeline) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(entry).Error
	return classify("insert timeline", err)
}

// ExistsByEventID counts soft-deleted rows too: a consumed event stays consumed.
func (r *GormTimelineRepository) ExistsByEventID(ctx context.Context, eventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&timeline.Timeline{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return false, classify("look up event id", err)
	}
	return count > 0, nil
}

func (r *GormTimelineRepository) FindByUserIDBefore(ctx context.Context, userID string, before int64, limit int) ([]timeline.Timeline, error) {
	var rows []timeline.Timeline
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ? AND feed_created_at < ?", userID, false, before).
		Order("feed_created_at DESC").
		Order("feed_id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, classify("find timelines before", err)
	}
	return rows, nil
}

func (r *GormTimelineRepository) FindByUserIDAfter(ctx context.Context, userID string, after int64, limit int) ([]timeline.Timeline, error) {
	var rows []timeline.Timeline
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ? AND feed_created_at > ?", userID, false, after).
		Order("feed_created_at ASC").
		Order("feed_id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, classify("find timelines after", err)
	}
	return rows, nil
}

func (r *GormTimelineRepository) FindLastFeedTimestampByUserID(ctx context.Context, userID string) (int64, bool, error) {
	var last sql.NullInt64
	err := r.db.WithContext(ctx).
		Model(&timeline.Timeline{}).
		Select("MAX(feed_created_at)").
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Row().
		Scan(&last)
	if err != nil {
		return 0, false, classify("find last feed timestamp", err)
	}
	if !last.Valid {
		return 0, false, nil
	}
	return last.Int64, true, nil
}

func (r *GormTimelineRepository) SoftDeleteByFeedID(ctx context.Context, feedID string, now int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&timeline.Timeline{}).
		Where("feed_id = ? AND is_deleted = ?", feedID, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"updated_at": now,
		})
	if res.Error != nil {
		return 0, classify("delete timelines by feed", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GormTimelineRepository) SoftDeleteByUserIDAndIslandID(ctx context.Context, userID, islandID string, now int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&timeline.Timeline{}).
		Where("user_id = ? AND island_id = ? AND is_deleted = ?", userID, islandID, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"updated_at": now,
		})
	if res.Error != nil {
		return 0, classify("delete timelines by user and island", res.Error)
	}
	return res.RowsAffected, nil
}
