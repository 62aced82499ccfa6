package services

import (
	"context"

	"island-timeline/internal/metrics"
	"island-timeline/pkg/logger"
)

// MembershipStore is the TTL cache behind CachedMembership.
type MembershipStore interface {
	GetSubscribers(ctx context.Context, islandID string) ([]string, bool, error)
	SetSubscribers(ctx context.Context, islandID string, ids []string) error
	GetIsPublic(ctx context.Context, islandID string) (bool, bool, error)
	SetIsPublic(ctx context.Context, islandID string, public bool) error
	InvalidateIsland(ctx context.Context, islandID string) error
}

// CachedMembership decorates a MembershipClient with a TTL-scoped cache.
// Cache errors degrade to a direct call; they never fail a fan-out.
type CachedMembership struct {
	next  MembershipClient
	store MembershipStore
	log   *logger.Logger
}

func NewCachedMembership(next MembershipClient, store MembershipStore, l *logger.Logger) *CachedMembership {
	if l == nil {
		l = logger.GetGlobalLogger()
	}
	return &CachedMembership{next: next, store: store, log: l}
}

func (c *CachedMembership) RetrieveSubscriberIDsByIslandID(ctx context.Context, islandID string) ([]string, error) {
	ids, ok, err := c.store.GetSubscribers(ctx, islandID)
	switch {
	case err != nil:
		metrics.MembershipCacheLookups.WithLabelValues("subscribers", "error").Inc()
		c.log.WarnCtx(ctx, "membership cache read failed for %s: %v", islandID, err)
	case ok:
		metrics.MembershipCacheLookups.WithLabelValues("subscribers", "hit").Inc()
		return ids, nil
	default:
		metrics.MembershipCacheLookups.WithLabelValues("subscribers", "miss").Inc()
	}

	ids, err = c.next.RetrieveSubscriberIDsByIslandID(ctx, islandID)
	if err != nil {
		return nil, err
	}
	if err := c.store.SetSubscribers(ctx, islandID, ids); err != nil {
		c.log.WarnCtx(ctx, "membership cache write failed for %s: %v", islandID, err)
	}
	return ids, nil
}

func (c *CachedMembership) CheckIslandAccessTypeIsPublic(ctx context.Context, islandID string) (bool, error) {
	public, ok, err := c.store.GetIsPublic(ctx, islandID)
	switch {
	case err != nil:
		metrics.MembershipCacheLookups.WithLabelValues("access_type", "error").Inc()
		c.log.WarnCtx(ctx, "membership cache read failed for %s: %v", islandID, err)
	case ok:
		metrics.MembershipCacheLookups.WithLabelValues("access_type", "hit").Inc()
		return public, nil
	default:
		metrics.MembershipCacheLookups.WithLabelValues("access_type", "miss").Inc()
	}

	public, err = c.next.CheckIslandAccessTypeIsPublic(ctx, islandID)
	if err != nil {
		return false, err
	}
	if err := c.store.SetIsPublic(ctx, islandID, public); err != nil {
		c.log.WarnCtx(ctx, "membership cache write failed for %s: %v", islandID, err)
	}
	return public, nil
}

// Invalidate drops the cached snapshot so the next fan-out sees a membership change.
func (c *CachedMembership) Invalidate(ctx context.Context, islandID string) error {
	return c.store.InvalidateIsland(ctx, islandID)
}
