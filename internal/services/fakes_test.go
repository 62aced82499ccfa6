package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"island-timeline/internal/domain/feed"
	"island-timeline/internal/repository"
	"island-timeline/internal/testutil"
	timeline_errors "island-timeline/pkg/errors"
)

type fakeMembership struct {
	mu          sync.Mutex
	subscribers map[string][]string
	public      map[string]bool
	err         error
	calls       int
}

func newFakeMembership() *fakeMembership {
	return &fakeMembership{subscribers: map[string][]string{}, public: map[string]bool{}}
}

func (f *fakeMembership) RetrieveSubscriberIDsByIslandID(ctx context.Context, islandID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]string(nil), f.subscribers[islandID]...), nil
}

func (f *fakeMembership) CheckIslandAccessTypeIsPublic(ctx context.Context, islandID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.public[islandID], nil
}

type historyCall struct {
	after    int64
	pageSize int
}

type fakeHistory struct {
	feeds map[string][]feed.Summary
	calls []historyCall
	err   error
	// failAfter makes every call past the first failAfter calls fail.
	failAfter int
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{feeds: map[string][]feed.Summary{}}
}

func (f *fakeHistory) add(islandID string, feeds ...feed.Summary) {
	f.feeds[islandID] = append(f.feeds[islandID], feeds...)
	feeds = f.feeds[islandID]
	sort.Slice(feeds, func(i, j int) bool {
		if feeds[i].CreatedAt != feeds[j].CreatedAt {
			return feeds[i].CreatedAt < feeds[j].CreatedAt
		}
		return feeds[i].FeedID < feeds[j].FeedID
	})
}

func (f *fakeHistory) RetrieveFeedsByIslandIDAfter(ctx context.Context, islandID string, after int64, pageSize int) ([]feed.Summary, error) {
	f.calls = append(f.calls, historyCall{after: after, pageSize: pageSize})
	if f.err != nil {
		return nil, f.err
	}
	if f.failAfter > 0 && len(f.calls) > f.failAfter {
		return nil, fmt.Errorf("feed service: %w", timeline_errors.ErrTransient)
	}
	var out []feed.Summary
	for _, s := range f.feeds[islandID] {
		if s.CreatedAt > after {
			out = append(out, s)
		}
		if len(out) == pageSize {
			break
		}
	}
	return out, nil
}

func newTestTimelineService(t *testing.T) *TimelineService {
	t.Helper()
	return NewTimelineService(repository.NewTimelineRepository(testutil.NewSQLiteDB(t), 50), 100)
}
