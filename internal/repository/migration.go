package repository

import (
	"fmt"

	"island-timeline/internal/domain/timeline"

	"gorm.io/gorm"
)

// InitSchema creates the timelines table and its indexes.
func InitSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(&timeline.Timeline{}); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	// Live rows only; the query API and backfill never read deleted rows.
	if db.Dialector.Name() == "postgres" {
		liveIndex := `
		CREATE INDEX IF NOT EXISTS idx_timelines_user_live
		ON timelines (user_id, feed_created_at DESC)
		WHERE is_deleted = false;`
		if err := db.Exec(liveIndex).Error; err != nil {
			return fmt.Errorf("failed to create index idx_timelines_user_live: %w", err)
		}
	}

	return nil
}
