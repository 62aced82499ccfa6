package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const AccessTypePublic = "PUBLIC"

type subscribersResponse struct {
	UserIDs []string `json:"user_ids"`
	HasMore bool     `json:"has_more"`
}

type islandResponse struct {
	AccessType string `json:"access_type"`
}

// MembershipClient talks to the island membership service.
type MembershipClient struct {
	baseURL  string
	pageSize int
	http     *http.Client
}

func NewMembershipClient(baseURL string, pageSize int, timeout time.Duration) *MembershipClient {
	if pageSize <= 0 {
		pageSize = 1000
	}
	return &MembershipClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		pageSize: pageSize,
		http:     newHTTPClient(timeout),
	}
}

// RetrieveSubscriberIDsByIslandID pages through the subscriber list until
// the service reports no more pages.
func (c *MembershipClient) RetrieveSubscriberIDsByIslandID(ctx context.Context, islandID string) ([]string, error) {
	var ids []string
	for page := 0; ; page++ {
		endpoint := fmt.Sprintf("%s/api/v1/islands/%s/subscribers?page=%d&page_size=%d",
			c.baseURL, url.PathEscape(islandID), page, c.pageSize)

		var resp subscribersResponse
		if err := getJSON(ctx, c.http, endpoint, &resp); err != nil {
			return nil, fmt.Errorf("retrieve subscribers of %s: %w", islandID, err)
		}
		ids = append(ids, resp.UserIDs...)
		if !resp.HasMore || len(resp.UserIDs) == 0 {
			return ids, nil
		}
	}
}

func (c *MembershipClient) CheckIslandAccessTypeIsPublic(ctx context.Context, islandID string) (bool, error) {
	endpoint := fmt.Sprintf("%s/api/v1/islands/%s", c.baseURL, url.PathEscape(islandID))

	var resp islandResponse
	if err := getJSON(ctx, c.http, endpoint, &resp); err != nil {
		return false, fmt.Errorf("retrieve access type of %s: %w", islandID, err)
	}
	return strings.EqualFold(resp.AccessType, AccessTypePublic), nil
}
