package consumer

import (
	"context"
	"errors"
	"time"

	"island-timeline/internal/domain/subscription"
	"island-timeline/internal/domain/timeline"
	"island-timeline/internal/events"
	"island-timeline/internal/metrics"
	"island-timeline/internal/storage"
	timeline_errors "island-timeline/pkg/errors"
	"island-timeline/pkg/logger"
)

// TimelineWriter is the timeline store as seen by the listeners.
type TimelineWriter interface {
	HasConsumed(ctx context.Context, eventID string) (bool, error)
	InsertAll(ctx context.Context, entries []timeline.Timeline) error
	DeleteByFeedID(ctx context.Context, feedID string) (int64, error)
	DeleteByUserIDAndIslandID(ctx context.Context, userID, islandID string) (int64, error)
}

type Backfiller interface {
	Backfill(ctx context.Context, event subscription.SubscribeEvent, eventID string) (int, error)
}

type DeadLetterSink interface {
	Archive(ctx context.Context, letter storage.DeadLetter) error
}

// MembershipInvalidator drops cached membership after a subscription change.
type MembershipInvalidator interface {
	Invalidate(ctx context.Context, islandID string) error
}

// settle turns a handler result into the queue outcome and records it.
//
//	nil, duplicate insert, unknown type, missing island -> Ack
//	decode error                                        -> Ack after dead-lettering
//	anything else                                       -> Suspend
func settle(ctx context.Context, log *logger.Logger, deadLetters DeadLetterSink, msg events.Message, eventType string, err error) events.Outcome {
	outcome := events.Ack
	if timeline_errors.IsRetryable(err) {
		outcome = events.Suspend
	}

	switch {
	case err == nil:
	case outcome == events.Suspend:
		log.ErrorCtx(ctx, "suspending message %s on %s: %v", msg.ID, msg.Stream, err)
	case errors.Is(err, timeline_errors.ErrDecode):
		log.ErrorCtx(ctx, "dropping undecodable message %s on %s: %v", msg.ID, msg.Stream, err)
		archive(ctx, log, deadLetters, msg, err)
	case errors.Is(err, timeline_errors.ErrDuplicateInsert):
		log.InfoCtx(ctx, "duplicate timeline insert treated as success: %v", err)
	case errors.Is(err, timeline_errors.ErrUnknownEventType):
		log.WarnCtx(ctx, "skipping message %s: %v", msg.ID, err)
	case errors.Is(err, timeline_errors.ErrNotFound):
		log.WarnCtx(ctx, "skipping message %s, referenced island is gone: %v", msg.ID, err)
	}

	if eventType == "" {
		eventType = "undecodable"
	}
	metrics.EventsHandled.WithLabelValues(msg.Topic, eventType, outcome.String()).Inc()
	return outcome
}

func archive(ctx context.Context, log *logger.Logger, deadLetters DeadLetterSink, msg events.Message, cause error) {
	if deadLetters == nil {
		return
	}
	metrics.DeadLetters.WithLabelValues(msg.Topic).Inc()
	letter := storage.DeadLetter{
		Topic:      msg.Topic,
		Partition:  msg.Partition,
		MessageID:  msg.ID,
		Reason:     cause.Error(),
		Raw:        msg.Raw,
		ReceivedAt: time.Now().UTC(),
	}
	if err := deadLetters.Archive(ctx, letter); err != nil {
		log.ErrorCtx(ctx, "failed to archive dead letter %s: %v", msg.ID, err)
	}
}
