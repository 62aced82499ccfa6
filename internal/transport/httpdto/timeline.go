package httpdto

import "island-timeline/internal/domain/timeline"

type TimelineEntryResponse struct {
	ID            string `json:"id"`
	FeedID        string `json:"feed_id"`
	IslandID      string `json:"island_id"`
	UserID        string `json:"user_id"`
	FeedCreatedAt int64  `json:"feed_created_at"`
	DuplicateTag  string `json:"duplicate_tag"`
}

type TimelinesResponse struct {
	Timelines []TimelineEntryResponse `json:"timelines"`
	HasMore   bool                    `json:"has_more"`
}

func FromTimelinePage(page timeline.Page) TimelinesResponse {
	resp := TimelinesResponse{
		Timelines: make([]TimelineEntryResponse, 0, len(page.Timelines)),
		HasMore:   page.HasMore,
	}
	for _, t := range page.Timelines {
		resp.Timelines = append(resp.Timelines, TimelineEntryResponse{
			ID:            t.ID.String(),
			FeedID:        t.FeedID,
			IslandID:      t.IslandID,
			UserID:        t.UserID,
			FeedCreatedAt: t.FeedCreatedAt,
			DuplicateTag:  t.DuplicateTag,
		})
	}
	return resp
}
