package consumer

import (
	"context"
	"fmt"

	"island-timeline/internal/domain/feed"
	"island-timeline/internal/events"
	"island-timeline/internal/services"
	timeline_errors "island-timeline/pkg/errors"
	"island-timeline/pkg/logger"
)

// FeedEventListener applies feed lifecycle events to subscriber timelines.
type FeedEventListener struct {
	timelines   TimelineWriter
	distributor services.FeedDistributor
	deadLetters DeadLetterSink
	log         *logger.Logger
}

func NewFeedEventListener(timelines TimelineWriter, distributor services.FeedDistributor, deadLetters DeadLetterSink, l *logger.Logger) *FeedEventListener {
	if l == nil {
		l = logger.GetGlobalLogger()
	}
	return &FeedEventListener{
		timelines:   timelines,
		distributor: distributor,
		deadLetters: deadLetters,
		log:         l,
	}
}

func (l *FeedEventListener) Consume(ctx context.Context, msg events.Message) events.Outcome {
	env, err := events.DecodeEnvelope(msg.Raw)
	if err != nil {
		return settle(ctx, l.log, l.deadLetters, msg, "", err)
	}
	ctx = logger.WithEvent(ctx, env.EventID, env.IslandID)
	return settle(ctx, l.log, l.deadLetters, msg, env.EventType, l.handle(ctx, env))
}

func (l *FeedEventListener) handle(ctx context.Context, env events.Envelope) error {
	switch env.EventType {
	case events.EventTypeFeedCreate:
		return l.onCreate(ctx, env)
	case events.EventTypeFeedUpdate:
		// Rows point at feeds by id; nothing on the timeline changes.
		return nil
	case events.EventTypeFeedDelete:
		return l.onDelete(ctx, env)
	default:
		return fmt.Errorf("%q: %w", env.EventType, timeline_errors.ErrUnknownEventType)
	}
}

func (l *FeedEventListener) onCreate(ctx context.Context, env events.Envelope) error {
	consumed, err := l.timelines.HasConsumed(ctx, env.EventID)
	if err != nil {
		return fmt.Errorf("idempotency lookup: %w", err)
	}
	if consumed {
		l.log.InfoCtx(ctx, "event already consumed")
		return nil
	}

	var created feed.CreatedEvent
	if err := env.DecodePayload(&created); err != nil {
		return err
	}
	if created.IslandID == "" {
		created.IslandID = env.IslandID
	}
	if !created.Valid() {
		return fmt.Errorf("create %s lacks feed, island or author: %w", env.EventID, timeline_errors.ErrDecode)
	}

	entries, err := l.distributor.Distribute(ctx, created, env.EventID)
	if err != nil {
		return err
	}
	if err := l.timelines.InsertAll(ctx, entries); err != nil {
		return err
	}
	l.log.InfoCtx(ctx, "feed %s distributed to %d timelines", created.FeedID, len(entries))
	return nil
}

func (l *FeedEventListener) onDelete(ctx context.Context, env events.Envelope) error {
	var deleted feed.DeletedEvent
	if err := env.DecodePayload(&deleted); err != nil {
		return err
	}
	if deleted.FeedID == "" {
		return fmt.Errorf("delete %s lacks feed id: %w", env.EventID, timeline_errors.ErrDecode)
	}

	n, err := l.timelines.DeleteByFeedID(ctx, deleted.FeedID)
	if err != nil {
		return err
	}
	l.log.InfoCtx(ctx, "feed %s removed from %d timelines", deleted.FeedID, n)
	return nil
}
