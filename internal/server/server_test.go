package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"island-timeline/config"
	"island-timeline/internal/domain/timeline"
	"island-timeline/internal/handler"
	"island-timeline/internal/redis"
	"island-timeline/internal/repository"
	"island-timeline/internal/services"
	"island-timeline/internal/testutil"
	"island-timeline/internal/transport/httpdto"
	"island-timeline/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	srv     *Server
	service *services.TimelineService
}

func newTestServer(t *testing.T, queries int, checks map[string]HealthCheck) *testServer {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	client, _ := testutil.NewRedis(t)

	service := services.NewTimelineService(repository.NewTimelineRepository(db, 100), 50)
	limiter := redis.NewRateLimiter(client, redis.RateLimitConfig{QueryLimit: queries, QueryWindow: time.Minute})

	srv := New(&config.Config{AppPort: "0", AppMode: TestMode}, logger.NewNop())
	srv.SetupRoutes(&Handlers{Timeline: handler.NewTimelineHandler(service)}, limiter, checks)
	return &testServer{srv: srv, service: service}
}

func (s *testServer) seed(t *testing.T, userID string, createdAt ...int64) {
	t.Helper()
	entries := make([]timeline.Timeline, 0, len(createdAt))
	for _, ts := range createdAt {
		entries = append(entries, timeline.Timeline{
			FeedID:        uuid.NewString(),
			IslandID:      "i1",
			UserID:        userID,
			FeedCreatedAt: ts,
			DuplicateTag:  uuid.NewString(),
			EventID:       uuid.NewString(),
		})
	}
	require.NoError(t, s.service.InsertAll(context.Background(), entries))
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeTimelines(t *testing.T, rec *httptest.ResponseRecorder) httpdto.TimelinesResponse {
	t.Helper()
	var body httpdto.Response[httpdto.TimelinesResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	return body.Data
}

func TestListTimelinesPagesNewestFirst(t *testing.T) {
	s := newTestServer(t, 100, nil)
	s.seed(t, "u1", 100, 200, 300, 400, 500)

	rec := s.get("/api/v1/users/u1/timelines?page_size=2&timestamp_before=450")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeTimelines(t, rec)
	require.Len(t, page.Timelines, 2)
	assert.Equal(t, int64(400), page.Timelines[0].FeedCreatedAt)
	assert.Equal(t, int64(300), page.Timelines[1].FeedCreatedAt)
	assert.True(t, page.HasMore)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "99", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestListTimelinesAfterIsAscending(t *testing.T) {
	s := newTestServer(t, 100, nil)
	s.seed(t, "u1", 100, 200, 300)

	rec := s.get("/api/v1/users/u1/timelines?page_size=10&timestamp_after=100")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeTimelines(t, rec)
	require.Len(t, page.Timelines, 2)
	assert.Equal(t, int64(200), page.Timelines[0].FeedCreatedAt)
	assert.Equal(t, int64(300), page.Timelines[1].FeedCreatedAt)
	assert.False(t, page.HasMore)
}

func TestListTimelinesRejectsBadInput(t *testing.T) {
	s := newTestServer(t, 100, nil)

	for _, path := range []string{
		"/api/v1/users/u1/timelines?page_size=abc",
		"/api/v1/users/u1/timelines?timestamp_before=yesterday",
		"/api/v1/users/u1/timelines?timestamp_before=1&timestamp_after=2",
		"/api/v1/users/u1/timelines?page_size=0&timestamp_before=1",
		"/api/v1/users/u1/timelines?page_size=5",
	} {
		rec := s.get(path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestListTimelinesIsRateLimited(t *testing.T) {
	s := newTestServer(t, 2, nil)

	assert.Equal(t, http.StatusOK, s.get("/api/v1/users/u1/timelines?timestamp_before=1000").Code)
	assert.Equal(t, http.StatusOK, s.get("/api/v1/users/u1/timelines?timestamp_before=1000").Code)
	rec := s.get("/api/v1/users/u1/timelines?timestamp_before=1000")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestHealthReportsFailingDependency(t *testing.T) {
	healthy := newTestServer(t, 10, map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
	})
	assert.Equal(t, http.StatusOK, healthy.get("/health").Code)

	broken := newTestServer(t, 10, map[string]HealthCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	rec := broken.get("/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis")
	assert.Contains(t, rec.Body.String(), "UNHEALTHY")
}

func TestMetricsEndpointIsExposed(t *testing.T) {
	s := newTestServer(t, 10, nil)
	rec := s.get("/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
