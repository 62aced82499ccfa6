package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"island-timeline/internal/domain/feed"
)

type feedsResponse struct {
	Feeds []feed.Summary `json:"feeds"`
}

// FeedClient reads island feed history from the feed service.
type FeedClient struct {
	baseURL string
	http    *http.Client
}

func NewFeedClient(baseURL string, timeout time.Duration) *FeedClient {
	return &FeedClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPClient(timeout),
	}
}

// RetrieveFeedsByIslandIDAfter returns up to pageSize feeds created strictly
// after the given timestamp, oldest first.
func (c *FeedClient) RetrieveFeedsByIslandIDAfter(ctx context.Context, islandID string, after int64, pageSize int) ([]feed.Summary, error) {
	endpoint := fmt.Sprintf("%s/api/v1/islands/%s/feeds?timestamp_after=%d&page_size=%d",
		c.baseURL, url.PathEscape(islandID), after, pageSize)

	var resp feedsResponse
	if err := getJSON(ctx, c.http, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("retrieve feeds of %s: %w", islandID, err)
	}
	for i := range resp.Feeds {
		if resp.Feeds[i].IslandID == "" {
			resp.Feeds[i].IslandID = islandID
		}
	}
	return resp.Feeds, nil
}
