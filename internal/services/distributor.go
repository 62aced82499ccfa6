package services

import (
	"context"
	"fmt"

	"island-timeline/internal/domain/feed"
	"island-timeline/internal/domain/timeline"
	"island-timeline/internal/metrics"

	"github.com/google/uuid"
)

const DefaultPublicInboxUserID = "public-inbox"

// FeedDistributor turns one created feed into the timeline entries it fans out to.
type FeedDistributor interface {
	Distribute(ctx context.Context, event feed.CreatedEvent, eventID string) ([]timeline.Timeline, error)
}

// DefaultFeedDistributor delivers to every current subscriber of the island
// and, for public islands, to the public inbox.
type DefaultFeedDistributor struct {
	membership        MembershipClient
	publicInboxUserID string
	newTag            func() string
}

func NewDefaultFeedDistributor(membership MembershipClient, publicInboxUserID string) *DefaultFeedDistributor {
	if publicInboxUserID == "" {
		publicInboxUserID = DefaultPublicInboxUserID
	}
	return &DefaultFeedDistributor{
		membership:        membership,
		publicInboxUserID: publicInboxUserID,
		newTag:            func() string { return uuid.NewString() },
	}
}

func (d *DefaultFeedDistributor) Distribute(ctx context.Context, event feed.CreatedEvent, eventID string) ([]timeline.Timeline, error) {
	subscribers, err := d.membership.RetrieveSubscriberIDsByIslandID(ctx, event.IslandID)
	if err != nil {
		return nil, fmt.Errorf("distribute feed %s: %w", event.FeedID, err)
	}

	seen := make(map[string]struct{}, len(subscribers)+1)
	entries := make([]timeline.Timeline, 0, len(subscribers)+1)
	for _, userID := range subscribers {
		if userID == "" {
			continue
		}
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}

		tag := event.DuplicateTag
		if userID == event.AuthorID {
			// The author's own echo must never collapse with anyone else's copy.
			tag = d.newTag()
		}
		entries = append(entries, d.entry(event, eventID, userID, tag))
	}

	public, err := d.membership.CheckIslandAccessTypeIsPublic(ctx, event.IslandID)
	if err != nil {
		return nil, fmt.Errorf("distribute feed %s: %w", event.FeedID, err)
	}
	if public {
		if _, dup := seen[d.publicInboxUserID]; !dup {
			entries = append(entries, d.entry(event, eventID, d.publicInboxUserID, event.DuplicateTag))
		}
	}

	metrics.FanoutSize.Observe(float64(len(entries)))
	return entries, nil
}

func (d *DefaultFeedDistributor) entry(event feed.CreatedEvent, eventID, userID, tag string) timeline.Timeline {
	return timeline.Timeline{
		FeedID:        event.FeedID,
		IslandID:      event.IslandID,
		UserID:        userID,
		FeedCreatedAt: event.CreatedAt,
		DuplicateTag:  tag,
		EventID:       eventID,
	}
}
