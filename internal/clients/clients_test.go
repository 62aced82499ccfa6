package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"island-timeline/internal/domain/feed"
	timeline_errors "island-timeline/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembershipClientPagesSubscribers(t *testing.T) {
	pages := map[string]subscribersResponse{
		"0": {UserIDs: []string{"u1", "u2"}, HasMore: true},
		"1": {UserIDs: []string{"u3"}, HasMore: false},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/islands/island-1/subscribers", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page_size"))
		_ = json.NewEncoder(w).Encode(pages[r.URL.Query().Get("page")])
	}))
	defer srv.Close()

	c := NewMembershipClient(srv.URL, 2, time.Second)
	ids, err := c.RetrieveSubscriberIDsByIslandID(context.Background(), "island-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2", "u3"}, ids)
}

func TestMembershipClientAccessType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/islands/open":
			_ = json.NewEncoder(w).Encode(islandResponse{AccessType: "PUBLIC"})
		case "/api/v1/islands/closed":
			_ = json.NewEncoder(w).Encode(islandResponse{AccessType: "PRIVATE"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewMembershipClient(srv.URL, 0, time.Second)
	public, err := c.CheckIslandAccessTypeIsPublic(context.Background(), "open")
	require.NoError(t, err)
	assert.True(t, public)

	public, err = c.CheckIslandAccessTypeIsPublic(context.Background(), "closed")
	require.NoError(t, err)
	assert.False(t, public)

	_, err = c.CheckIslandAccessTypeIsPublic(context.Background(), "missing")
	assert.ErrorIs(t, err, timeline_errors.ErrNotFound)
}

func TestServerErrorsAreTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewMembershipClient(srv.URL, 10, time.Second).RetrieveSubscriberIDsByIslandID(context.Background(), "i")
	assert.ErrorIs(t, err, timeline_errors.ErrTransient)

	_, err = NewFeedClient(srv.URL, time.Second).RetrieveFeedsByIslandIDAfter(context.Background(), "i", 0, 10)
	assert.ErrorIs(t, err, timeline_errors.ErrTransient)
}

func TestStatusCodesMapToQueueOutcomes(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, timeline_errors.ErrDecode},
		{http.StatusUnprocessableEntity, timeline_errors.ErrDecode},
		{http.StatusNotFound, timeline_errors.ErrNotFound},
		{http.StatusUnauthorized, timeline_errors.ErrTransient},
		{http.StatusTooManyRequests, timeline_errors.ErrTransient},
		{http.StatusBadGateway, timeline_errors.ErrTransient},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			_, err := NewFeedClient(srv.URL, time.Second).RetrieveFeedsByIslandIDAfter(context.Background(), "i", 0, 10)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestFeedClientPassesCursor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/islands/island-1/feeds", r.URL.Path)
		assert.Equal(t, "1500", r.URL.Query().Get("timestamp_after"))
		assert.Equal(t, "1000", r.URL.Query().Get("page_size"))
		_ = json.NewEncoder(w).Encode(feedsResponse{Feeds: []feed.Summary{
			{FeedID: "f1", AuthorID: "a", CreatedAt: 1600},
		}})
	}))
	defer srv.Close()

	feeds, err := NewFeedClient(srv.URL+"/", time.Second).RetrieveFeedsByIslandIDAfter(context.Background(), "island-1", 1500, 1000)
	require.NoError(t, err)
	require.Len(t, feeds, 1)
	assert.Equal(t, "island-1", feeds[0].IslandID)
	assert.Equal(t, int64(1600), feeds[0].CreatedAt)
}
