package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	timeline_errors "island-timeline/pkg/errors"
)

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// getJSON issues a GET and decodes a JSON body into out.
// 404 maps to ErrNotFound. Other 4xx mean the request built from the event
// can never succeed and map to ErrDecode, except auth failures, timeouts and
// throttling, which an operator or time can fix and so map to ErrTransient
// along with network failures, redirects and 5xx.
func getJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("GET %s: %w", url, ctx.Err())
		}
		return fmt.Errorf("GET %s: %v: %w", url, err, timeline_errors.ErrTransient)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("GET %s: status %d: %w", url, resp.StatusCode, statusError(resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %v: %w", url, err, timeline_errors.ErrTransient)
	}
	return nil
}

func statusError(code int) error {
	switch {
	case code == http.StatusNotFound:
		return timeline_errors.ErrNotFound
	case code == http.StatusUnauthorized,
		code == http.StatusForbidden,
		code == http.StatusRequestTimeout,
		code == http.StatusTooManyRequests:
		return timeline_errors.ErrTransient
	case code >= 400 && code < 500:
		return timeline_errors.ErrDecode
	default:
		return timeline_errors.ErrTransient
	}
}
