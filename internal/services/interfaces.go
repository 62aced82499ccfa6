package services

import (
	"context"

	"island-timeline/internal/domain/feed"
)

// MembershipClient answers who is subscribed to an island and whether it is public.
type MembershipClient interface {
	RetrieveSubscriberIDsByIslandID(ctx context.Context, islandID string) ([]string, error)
	CheckIslandAccessTypeIsPublic(ctx context.Context, islandID string) (bool, error)
}

// FeedHistoryClient pages an island's feeds in ascending creation order.
type FeedHistoryClient interface {
	RetrieveFeedsByIslandIDAfter(ctx context.Context, islandID string, after int64, pageSize int) ([]feed.Summary, error)
}
