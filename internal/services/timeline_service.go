package services

import (
	"context"
	"fmt"
	"time"

	"island-timeline/internal/domain/timeline"
	"island-timeline/internal/repository"
	timeline_errors "island-timeline/pkg/errors"

	"github.com/google/uuid"
)

const DefaultMaxPageSize = 100

type TimelineService struct {
	repo        repository.TimelineRepository
	clock       func() time.Time
	maxPageSize int
}

func NewTimelineService(repo repository.TimelineRepository, maxPageSize int) *TimelineService {
	if maxPageSize <= 0 {
		maxPageSize = DefaultMaxPageSize
	}
	return &TimelineService{
		repo:        repo,
		clock:       time.Now,
		maxPageSize: maxPageSize,
	}
}

func (s *TimelineService) now() int64 {
	return s.clock().UnixMilli()
}

// prepare assigns ids and stamps rows the way every writer expects:
// createdAt mirrors the feed's creation time.
func (s *TimelineService) prepare(entries []timeline.Timeline) {
	now := s.now()
	for i := range entries {
		if entries[i].ID == uuid.Nil {
			entries[i].ID = uuid.New()
		}
		entries[i].CreatedAt = entries[i].FeedCreatedAt
		entries[i].UpdatedAt = now
		entries[i].IsDeleted = false
	}
}

// InsertAll persists entries atomically. Already present (user, feed) pairs are skipped.
func (s *TimelineService) InsertAll(ctx context.Context, entries []timeline.Timeline) error {
	if len(entries) == 0 {
		return nil
	}
	s.prepare(entries)
	return s.repo.InsertAll(ctx, entries)
}

func (s *TimelineService) Insert(ctx context.Context, entry timeline.Timeline) error {
	entries := []timeline.Timeline{entry}
	s.prepare(entries)
	return s.repo.Insert(ctx, &entries[0])
}

// HasConsumed reports whether an event already produced committed rows.
func (s *TimelineService) HasConsumed(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, fmt.Errorf("empty event id: %w", timeline_errors.ErrInvalidInput)
	}
	return s.repo.ExistsByEventID(ctx, eventID)
}

func (s *TimelineService) DeleteByFeedID(ctx context.Context, feedID string) (int64, error) {
	return s.repo.SoftDeleteByFeedID(ctx, feedID, s.now())
}

func (s *TimelineService) DeleteByUserIDAndIslandID(ctx context.Context, userID, islandID string) (int64, error) {
	return s.repo.SoftDeleteByUserIDAndIslandID(ctx, userID, islandID, s.now())
}

// RetrieveLastFeedTimestampByUserID returns the newest live feed timestamp on
// the user's timeline, or 0 when the timeline is empty.
func (s *TimelineService) RetrieveLastFeedTimestampByUserID(ctx context.Context, userID string) (int64, error) {
	last, ok, err := s.repo.FindLastFeedTimestampByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return last, nil
}

// RetrieveByUserIDAndCreatedTimestamp reads one page relative to exactly one
// cursor. It fetches limit+1 rows to learn whether another page exists.
func (s *TimelineService) RetrieveByUserIDAndCreatedTimestamp(ctx context.Context, userID string, after *int64, limit int, before *int64) (timeline.Page, error) {
	if (after == nil) == (before == nil) {
		return timeline.Page{}, fmt.Errorf("exactly one of before and after is required: %w", timeline_errors.ErrInvalidInput)
	}
	if limit <= 0 {
		return timeline.Page{}, fmt.Errorf("page size must be positive: %w", timeline_errors.ErrInvalidInput)
	}

	var (
		rows []timeline.Timeline
		err  error
	)
	if before != nil {
		rows, err = s.repo.FindByUserIDBefore(ctx, userID, *before, limit+1)
	} else {
		rows, err = s.repo.FindByUserIDAfter(ctx, userID, *after, limit+1)
	}
	if err != nil {
		return timeline.Page{}, err
	}

	page := timeline.Page{Timelines: rows, HasMore: len(rows) > limit}
	if page.HasMore {
		page.Timelines = rows[:limit]
	}
	if page.Timelines == nil {
		page.Timelines = []timeline.Timeline{}
	}
	return page, nil
}

// RetrieveMultipleTimelines is the query entry point. Page size is capped.
func (s *TimelineService) RetrieveMultipleTimelines(ctx context.Context, userID string, pageSize int, before, after *int64) (timeline.Page, error) {
	if userID == "" {
		return timeline.Page{}, fmt.Errorf("user id is required: %w", timeline_errors.ErrInvalidInput)
	}
	if pageSize <= 0 {
		return timeline.Page{}, fmt.Errorf("page size must be positive: %w", timeline_errors.ErrInvalidInput)
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}
	return s.RetrieveByUserIDAndCreatedTimestamp(ctx, userID, after, pageSize, before)
}
