package timeline

import (
	"github.com/google/uuid"
)

// Timeline is one row of a user's inbox: a pointer to a feed item that
// landed on the user's chronological timeline. Timestamps are epoch millis.
type Timeline struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FeedID        string    `gorm:"type:varchar(64);not null;uniqueIndex:uk_timelines_user_feed,priority:2;index:idx_timelines_feed" json:"feed_id"`
	IslandID      string    `gorm:"type:varchar(64);not null;index:idx_timelines_user_island,priority:2" json:"island_id"`
	UserID        string    `gorm:"type:varchar(64);not null;uniqueIndex:uk_timelines_user_feed,priority:1;index:idx_timelines_user_created,priority:1;index:idx_timelines_user_island,priority:1" json:"user_id"`
	FeedCreatedAt int64     `gorm:"not null;index:idx_timelines_user_created,priority:2" json:"feed_created_at"`
	DuplicateTag  string    `gorm:"type:varchar(64);not null" json:"duplicate_tag"`
	EventID       string    `gorm:"type:varchar(64);not null;index:idx_timelines_event" json:"event_id"`
	CreatedAt     int64     `gorm:"autoCreateTime:false;not null" json:"created_at"`
	UpdatedAt     int64     `gorm:"autoUpdateTime:false;not null" json:"updated_at"`
	IsDeleted     bool      `gorm:"not null;default:false" json:"is_deleted"`
}

// TableName returns the database table name
func (Timeline) TableName() string {
	return "timelines"
}

// Page is a keyset-paginated slice of a user's timeline.
type Page struct {
	Timelines []Timeline
	HasMore   bool
}
