package consumer

import (
	"context"
	"fmt"

	"island-timeline/internal/domain/subscription"
	"island-timeline/internal/events"
	timeline_errors "island-timeline/pkg/errors"
	"island-timeline/pkg/logger"
)

// NotificationEventListener reacts to users joining and leaving islands.
type NotificationEventListener struct {
	timelines   TimelineWriter
	backfill    Backfiller
	membership  MembershipInvalidator
	deadLetters DeadLetterSink
	log         *logger.Logger
}

// NewNotificationEventListener wires the listener. membership may be nil when
// no membership cache is in use.
func NewNotificationEventListener(timelines TimelineWriter, backfill Backfiller, membership MembershipInvalidator, deadLetters DeadLetterSink, l *logger.Logger) *NotificationEventListener {
	if l == nil {
		l = logger.GetGlobalLogger()
	}
	return &NotificationEventListener{
		timelines:   timelines,
		backfill:    backfill,
		membership:  membership,
		deadLetters: deadLetters,
		log:         l,
	}
}

func (l *NotificationEventListener) Consume(ctx context.Context, msg events.Message) events.Outcome {
	env, err := events.DecodeEnvelope(msg.Raw)
	if err != nil {
		return settle(ctx, l.log, l.deadLetters, msg, "", err)
	}
	ctx = logger.WithEvent(ctx, env.EventID, env.IslandID)
	return settle(ctx, l.log, l.deadLetters, msg, env.EventType, l.handle(ctx, env))
}

func (l *NotificationEventListener) handle(ctx context.Context, env events.Envelope) error {
	switch env.EventType {
	case events.EventTypeNewSubscribe:
		var event subscription.SubscribeEvent
		if err := env.DecodePayload(&event); err != nil {
			return err
		}
		if !event.Valid() {
			return fmt.Errorf("subscribe %s lacks user or island: %w", env.EventID, timeline_errors.ErrDecode)
		}
		l.invalidate(ctx, event.IslandID)
		n, err := l.backfill.Backfill(ctx, event, env.EventID)
		if err != nil {
			return err
		}
		l.log.InfoCtx(ctx, "user %s subscribed to %s, backfilled %d", event.UserID, event.IslandID, n)
		return nil

	case events.EventTypeNewUnsubscribe:
		var event subscription.UnsubscribeEvent
		if err := env.DecodePayload(&event); err != nil {
			return err
		}
		if !event.Valid() {
			return fmt.Errorf("unsubscribe %s lacks user or island: %w", env.EventID, timeline_errors.ErrDecode)
		}
		l.invalidate(ctx, event.IslandID)
		n, err := l.timelines.DeleteByUserIDAndIslandID(ctx, event.UserID, event.IslandID)
		if err != nil {
			return err
		}
		l.log.InfoCtx(ctx, "user %s left %s, removed %d entries", event.UserID, event.IslandID, n)
		return nil

	default:
		return fmt.Errorf("%q: %w", env.EventType, timeline_errors.ErrUnknownEventType)
	}
}

func (l *NotificationEventListener) invalidate(ctx context.Context, islandID string) {
	if l.membership == nil {
		return
	}
	if err := l.membership.Invalidate(ctx, islandID); err != nil {
		l.log.WarnCtx(ctx, "failed to invalidate membership cache for %s: %v", islandID, err)
	}
}
