package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Cache key patterns:
// - island:{island_id}:subscribers - subscriber id list
// - island:{island_id}:public - "1" or "0"

// MembershipCache stores island membership snapshots with a TTL.
type MembershipCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewMembershipCache(client *goredis.Client, ttl time.Duration) *MembershipCache {
	return &MembershipCache{
		client: client,
		ttl:    ttl,
	}
}

func subscribersKey(islandID string) string {
	return fmt.Sprintf("island:%s:subscribers", islandID)
}

func publicKey(islandID string) string {
	return fmt.Sprintf("island:%s:public", islandID)
}

// GetSubscribers returns the cached subscriber ids. ok is false on a miss.
func (c *MembershipCache) GetSubscribers(ctx context.Context, islandID string) ([]string, bool, error) {
	data, err := c.client.Get(ctx, subscribersKey(islandID)).Result()
	if err == goredis.Nil {
		return nil, false, nil // Cache miss
	}
	if err != nil {
		return nil, false, err
	}

	var ids []string
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return nil, false, err
	}
	return ids, true, nil
}

func (c *MembershipCache) SetSubscribers(ctx context.Context, islandID string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, subscribersKey(islandID), data, c.ttl).Err()
}

func (c *MembershipCache) GetIsPublic(ctx context.Context, islandID string) (bool, bool, error) {
	data, err := c.client.Get(ctx, publicKey(islandID)).Result()
	if err == goredis.Nil {
		return false, false, nil // Cache miss
	}
	if err != nil {
		return false, false, err
	}
	return data == "1", true, nil
}

func (c *MembershipCache) SetIsPublic(ctx context.Context, islandID string, public bool) error {
	value := "0"
	if public {
		value = "1"
	}
	return c.client.Set(ctx, publicKey(islandID), value, c.ttl).Err()
}

// InvalidateIsland drops both cached facts about an island.
func (c *MembershipCache) InvalidateIsland(ctx context.Context, islandID string) error {
	return c.client.Del(ctx, subscribersKey(islandID), publicKey(islandID)).Err()
}
