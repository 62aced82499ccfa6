package feed

// CreatedEvent is the payload of a CREATE feed event.
type CreatedEvent struct {
	FeedID       string `json:"feed_id"`
	IslandID     string `json:"island_id"`
	AuthorID     string `json:"author_id"`
	CreatedAt    int64  `json:"created_at"`
	DuplicateTag string `json:"duplicate_tag"`
}

func (e CreatedEvent) Valid() bool {
	return e.FeedID != "" && e.IslandID != "" && e.AuthorID != ""
}

// UpdatedEvent is the payload of an UPDATE feed event. Timeline rows only
// reference feeds by id so updates carry nothing the timeline stores.
type UpdatedEvent struct {
	FeedID   string `json:"feed_id"`
	IslandID string `json:"island_id"`
}

// DeletedEvent is the payload of a DELETE feed event.
type DeletedEvent struct {
	FeedID   string `json:"feed_id"`
	IslandID string `json:"island_id"`
}

// Summary is a historical feed item as returned by the feed service.
type Summary struct {
	FeedID    string `json:"feed_id"`
	IslandID  string `json:"island_id"`
	AuthorID  string `json:"author_id"`
	CreatedAt int64  `json:"created_at"`
}
