package services

import (
	"context"
	"fmt"
	"time"

	"island-timeline/internal/domain/subscription"
	"island-timeline/internal/domain/timeline"
	"island-timeline/internal/metrics"
	"island-timeline/pkg/logger"
)

const (
	DefaultBackfillPageSize = 1000
	DefaultBackfillTimeout  = 2 * time.Minute
)

// BackfillService copies an island's history onto a new subscriber's timeline.
type BackfillService struct {
	timelines *TimelineService
	history   FeedHistoryClient
	pageSize  int
	timeout   time.Duration
	log       *logger.Logger
}

func NewBackfillService(timelines *TimelineService, history FeedHistoryClient, pageSize int, timeout time.Duration, l *logger.Logger) *BackfillService {
	if pageSize <= 0 {
		pageSize = DefaultBackfillPageSize
	}
	if timeout <= 0 {
		timeout = DefaultBackfillTimeout
	}
	if l == nil {
		l = logger.GetGlobalLogger()
	}
	return &BackfillService{
		timelines: timelines,
		history:   history,
		pageSize:  pageSize,
		timeout:   timeout,
		log:       l,
	}
}

// maxTieWidening bounds how many times a page is doubled to fit feeds that
// share one timestamp.
const maxTieWidening = 6

// Backfill inserts every island feed newer than the user's high-water mark.
// Each history page is inserted as it arrives. The run is safe to repeat:
// inserts skip (user, feed) pairs already present.
// Returns the number of entries handed to the store.
func (s *BackfillService) Backfill(ctx context.Context, event subscription.SubscribeEvent, eventID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	start := time.Now()

	since, err := s.timelines.RetrieveLastFeedTimestampByUserID(ctx, event.UserID)
	if err != nil {
		return 0, fmt.Errorf("backfill %s/%s: high-water mark: %w", event.UserID, event.IslandID, err)
	}

	// History pages on createdAt alone. Every page after the first restarts
	// one millisecond before the previous page's last timestamp, so feeds
	// tied on it are read again; seen drops the repeats.
	seen := make(map[string]struct{})
	inserted := 0
	cursor, size, widened := since, s.pageSize, 0
	for {
		page, err := s.history.RetrieveFeedsByIslandIDAfter(ctx, event.IslandID, cursor, size)
		if err != nil {
			return inserted, fmt.Errorf("backfill %s/%s: %w", event.UserID, event.IslandID, err)
		}

		entries := make([]timeline.Timeline, 0, len(page))
		for _, f := range page {
			if f.CreatedAt <= since {
				continue
			}
			if _, dup := seen[f.FeedID]; dup {
				continue
			}
			seen[f.FeedID] = struct{}{}
			entries = append(entries, timeline.Timeline{
				FeedID:        f.FeedID,
				IslandID:      event.IslandID,
				UserID:        event.UserID,
				FeedCreatedAt: f.CreatedAt,
				DuplicateTag:  f.FeedID,
				EventID:       eventID,
			})
		}
		if len(entries) > 0 {
			if err := s.timelines.InsertAll(ctx, entries); err != nil {
				return inserted, fmt.Errorf("backfill %s/%s: insert: %w", event.UserID, event.IslandID, err)
			}
			inserted += len(entries)
		}

		if len(page) < size {
			break
		}
		last := page[len(page)-1].CreatedAt
		if last-1 > cursor {
			cursor, size, widened = last-1, s.pageSize, 0
			continue
		}
		// The whole page shares one timestamp; only a wider page gets past it.
		if widened == maxTieWidening {
			return inserted, fmt.Errorf("backfill %s/%s: more than %d feeds share timestamp %d", event.UserID, event.IslandID, size, last)
		}
		size *= 2
		widened++
	}

	if inserted == 0 {
		s.log.InfoCtx(ctx, "backfill %s/%s: nothing newer than %d", event.UserID, event.IslandID, since)
		return 0, nil
	}

	metrics.BackfillEntries.Observe(float64(inserted))
	metrics.BackfillDuration.Observe(time.Since(start).Seconds())
	s.log.InfoCtx(ctx, "backfill %s/%s: inserted %d entries after %d", event.UserID, event.IslandID, inserted, since)
	return inserted, nil
}
