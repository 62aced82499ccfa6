package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("BACKFILL_PAGE_SIZE", "")
	t.Setenv("PUBLIC_INBOX_USER_ID", "public-inbox")

	cfg := LoadConfig()

	assert.Equal(t, 1000, cfg.BackfillPageSize)
	assert.Equal(t, "public-inbox", cfg.PublicInboxUserID)
	assert.Equal(t, "feed-events", cfg.FeedEventTopic)
	assert.Equal(t, 20, cfg.QueuePartitions)
	assert.Equal(t, 15*time.Second, cfg.QueueLeaseTTL)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("QUEUE_PARTITIONS", "4")
	t.Setenv("MEMBERSHIP_CACHE_TTL", "0")
	t.Setenv("BACKFILL_TIMEOUT", "45s")

	cfg := LoadConfig()

	assert.Equal(t, 4, cfg.QueuePartitions)
	assert.Equal(t, time.Duration(0), cfg.MembershipCacheTTL)
	assert.Equal(t, 45*time.Second, cfg.BackfillTimeout)
}

func TestGetEnvAsDurationFallsBackOnGarbage(t *testing.T) {
	t.Setenv("QUEUE_BLOCK", "soon")
	assert.Equal(t, 3*time.Second, getEnvAsDuration("QUEUE_BLOCK", 3*time.Second))
}
