package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"island-timeline/internal/metrics"
	"island-timeline/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// Message is one delivery handed to a Handler.
type Message struct {
	Topic     string
	Stream    string
	Partition int
	ID        string
	Raw       []byte
}

// Handler decides the fate of a message. It must not block past ctx.
type Handler interface {
	Consume(ctx context.Context, msg Message) Outcome
}

type HandlerFunc func(ctx context.Context, msg Message) Outcome

func (f HandlerFunc) Consume(ctx context.Context, msg Message) Outcome {
	return f(ctx, msg)
}

// StreamProducer appends envelopes to the partition stream chosen by the partition key.
type StreamProducer struct {
	client     *redis.Client
	partitions int
}

func NewStreamProducer(client *redis.Client, partitions int) *StreamProducer {
	if partitions <= 0 {
		partitions = 1
	}
	return &StreamProducer{client: client, partitions: partitions}
}

func (p *StreamProducer) Publish(ctx context.Context, topic, partitionKey string, env Envelope) (string, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return p.PublishRaw(ctx, topic, partitionKey, data)
}

// PublishRaw appends already encoded bytes. Producers in other services use this shape.
func (p *StreamProducer) PublishRaw(ctx context.Context, topic, partitionKey string, data []byte) (string, error) {
	stream := StreamName(topic, Partition(partitionKey, p.partitions))
	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{StreamFieldEnvelope: data},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd %s: %w", stream, err)
	}
	return id, nil
}

type ConsumerConfig struct {
	Topic      string
	Group      string
	Consumer   string
	Partitions int
	// Block bounds one XREADGROUP wait. Zero means 2s.
	Block time.Duration
	// Count is the read batch size per partition.
	Count int64
	// Backoff is the first wait after Suspend. It doubles up to MaxBackoff.
	Backoff    time.Duration
	MaxBackoff time.Duration
	// LeaseTTL bounds how long a dead owner keeps a partition. Zero means 15s.
	LeaseTTL time.Duration
}

// StreamConsumer delivers every partition of a topic to one Handler.
// Partitions run concurrently; within a partition messages are handled one
// at a time and a suspended message blocks the partition until it is acked.
// Across processes a partition is read only by the holder of its lease, so
// replicas sharing a group split partitions, never a partition's entries.
type StreamConsumer struct {
	client  *redis.Client
	cfg     ConsumerConfig
	handler Handler
	log     *logger.Logger
	token   string
	sleep   func(ctx context.Context, d time.Duration) bool
}

func NewStreamConsumer(client *redis.Client, cfg ConsumerConfig, handler Handler, l *logger.Logger) *StreamConsumer {
	if cfg.Partitions <= 0 {
		cfg.Partitions = 1
	}
	if cfg.Block <= 0 {
		cfg.Block = 2 * time.Second
	}
	if cfg.Count <= 0 {
		cfg.Count = 16
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	if cfg.MaxBackoff < cfg.Backoff {
		cfg.MaxBackoff = cfg.Backoff
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = 15 * time.Second
	}
	if l == nil {
		l = logger.GetGlobalLogger()
	}
	return &StreamConsumer{
		client:  client,
		cfg:     cfg,
		handler: handler,
		log:     l,
		token:   cfg.Consumer + ":" + uuid.NewString(),
		sleep:   sleepCtx,
	}
}

// Run blocks until ctx is cancelled or a partition fails to set up.
func (c *StreamConsumer) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for p := 0; p < c.cfg.Partitions; p++ {
		partition := p
		g.Go(func() error {
			return c.runPartition(ctx, partition)
		})
	}
	return g.Wait()
}

func (c *StreamConsumer) ensureGroup(ctx context.Context, stream string) error {
	err := c.client.XGroupCreateMkStream(ctx, stream, c.cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create group %s on %s: %w", c.cfg.Group, stream, err)
	}
	return nil
}

func (c *StreamConsumer) runPartition(ctx context.Context, partition int) error {
	stream := StreamName(c.cfg.Topic, partition)
	if err := c.ensureGroup(ctx, stream); err != nil {
		return err
	}

	lease := newPartitionLease(c.client, c.cfg.Group, stream, c.token, c.cfg.LeaseTTL)
	for {
		owned, err := lease.acquire(ctx)
		if err != nil && ctx.Err() == nil {
			c.log.Errorf("%v", err)
		}
		if owned {
			c.own(ctx, stream, partition, lease)
		}
		if !c.sleep(ctx, c.leaseInterval()) {
			return nil
		}
	}
}

func (c *StreamConsumer) leaseInterval() time.Duration {
	return c.cfg.LeaseTTL / 3
}

// own consumes the partition while the lease holds. It returns when ctx ends
// or the lease is lost; the caller then competes for the lease again.
func (c *StreamConsumer) own(ctx context.Context, stream string, partition int, lease *partitionLease) {
	ownCtx, cancel := context.WithCancel(ctx)
	renewed := make(chan struct{})
	go func() {
		defer close(renewed)
		c.keepLease(ownCtx, cancel, lease)
	}()
	defer func() {
		cancel()
		<-renewed
		releaseCtx, done := context.WithTimeout(context.Background(), time.Second)
		defer done()
		if err := lease.release(releaseCtx); err != nil {
			c.log.Warnf("%v", err)
		}
	}()

	c.log.Infof("consumer %s owns %s", c.cfg.Consumer, stream)
	if err := c.claimOrphans(ownCtx, stream); err != nil {
		if ownCtx.Err() == nil {
			c.log.Errorf("%v", err)
		}
		return
	}
	c.consume(ownCtx, stream, partition)
}

func (c *StreamConsumer) keepLease(ctx context.Context, cancel context.CancelFunc, lease *partitionLease) {
	ticker := time.NewTicker(c.leaseInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		held, err := lease.renew(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil || !held {
			c.log.Warnf("consumer %s lost lease %s: %v", c.cfg.Consumer, lease.key, err)
			cancel()
			return
		}
	}
}

// claimOrphans moves every pending entry of the stream to this consumer.
// Under the lease nobody else may be working on them, whatever consumer
// name they were delivered to.
func (c *StreamConsumer) claimOrphans(ctx context.Context, stream string) error {
	start := "0-0"
	for {
		ids, next, err := c.client.XAutoClaimJustID(ctx, &redis.XAutoClaimArgs{
			Stream:   stream,
			Group:    c.cfg.Group,
			Consumer: c.cfg.Consumer,
			MinIdle:  0,
			Start:    start,
			Count:    100,
		}).Result()
		if err != nil {
			return fmt.Errorf("xautoclaim %s: %w", stream, err)
		}
		if len(ids) > 0 {
			c.log.Infof("claimed %d pending entries on %s", len(ids), stream)
		}
		if next == "" || next == "0-0" {
			return nil
		}
		start = next
	}
}

func (c *StreamConsumer) consume(ctx context.Context, stream string, partition int) {
	// "0" re-reads this consumer's unacked entries, including claimed ones.
	// Once they are drained switch to ">" for new entries.
	cursor := "0"
	for {
		if ctx.Err() != nil {
			return
		}

		args := &redis.XReadGroupArgs{
			Group:    c.cfg.Group,
			Consumer: c.cfg.Consumer,
			Streams:  []string{stream, cursor},
			Count:    c.cfg.Count,
			Block:    c.cfg.Block,
		}
		if cursor == "0" {
			args.Block = -1
		}

		res, err := c.client.XReadGroup(ctx, args).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				cursor = ">"
				continue
			}
			if ctx.Err() != nil {
				return
			}
			c.log.Errorf("xreadgroup %s failed: %v", stream, err)
			if !c.sleep(ctx, c.cfg.Backoff) {
				return
			}
			continue
		}

		var entries []redis.XMessage
		for _, s := range res {
			entries = append(entries, s.Messages...)
		}
		if len(entries) == 0 {
			if cursor == "0" {
				cursor = ">"
			}
			continue
		}

		for _, entry := range entries {
			if !c.deliver(ctx, stream, partition, entry) {
				return
			}
		}
	}
}

// deliver hands one entry to the handler until it is acked.
// It returns false only when ctx ends first.
func (c *StreamConsumer) deliver(ctx context.Context, stream string, partition int, entry redis.XMessage) bool {
	msg := Message{
		Topic:     c.cfg.Topic,
		Stream:    stream,
		Partition: partition,
		ID:        entry.ID,
		Raw:       rawField(entry.Values[StreamFieldEnvelope]),
	}

	backoff := c.cfg.Backoff
	for {
		if c.handler.Consume(ctx, msg) == Ack {
			if err := c.client.XAck(ctx, stream, c.cfg.Group, entry.ID).Err(); err != nil {
				// Left pending; the next run re-reads it and the handler's idempotency absorbs it.
				c.log.Errorf("xack %s %s failed: %v", stream, entry.ID, err)
			}
			return true
		}

		metrics.Redeliveries.WithLabelValues(c.cfg.Topic).Inc()
		if !c.sleep(ctx, backoff) {
			return false
		}
		backoff *= 2
		if backoff > c.cfg.MaxBackoff {
			backoff = c.cfg.MaxBackoff
		}
	}
}

func rawField(v interface{}) []byte {
	switch val := v.(type) {
	case string:
		return []byte(val)
	case []byte:
		return val
	default:
		return nil
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
