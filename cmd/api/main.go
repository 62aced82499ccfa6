package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"island-timeline/config"
	"island-timeline/internal/clients"
	"island-timeline/internal/consumer"
	"island-timeline/internal/events"
	"island-timeline/internal/handler"
	"island-timeline/internal/redis"
	"island-timeline/internal/repository"
	"island-timeline/internal/server"
	"island-timeline/internal/services"
	"island-timeline/internal/storage"
	"island-timeline/pkg/database"
	"island-timeline/pkg/logger"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.LogMode)
	logger.SetGlobalLogger(l)
	defer l.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, l); err != nil {
		l.Errorf("timeline service stopped: %v", err)
		l.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, l *logger.Logger) error {
	// Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := repository.InitSchema(db); err != nil {
		return err
	}

	redisClient, err := redis.Connect(ctx, redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// Collaborators
	var membership services.MembershipClient = clients.NewMembershipClient(cfg.MembershipBaseURL, cfg.MembershipPageSize, cfg.HTTPClientTimeout)
	var invalidator consumer.MembershipInvalidator
	if cfg.MembershipCacheTTL > 0 {
		cached := services.NewCachedMembership(membership, redis.NewMembershipCache(redisClient, cfg.MembershipCacheTTL), l)
		membership = cached
		invalidator = cached
	}
	feeds := clients.NewFeedClient(cfg.FeedBaseURL, cfg.HTTPClientTimeout)

	// Timeline core
	timelines := services.NewTimelineService(repository.NewTimelineRepository(db, cfg.TimelineInsertBatch), cfg.MaxPageSize)
	distributor := services.NewDefaultFeedDistributor(membership, cfg.PublicInboxUserID)
	backfill := services.NewBackfillService(timelines, feeds, cfg.BackfillPageSize, cfg.BackfillTimeout, l)

	var deadLetters consumer.DeadLetterSink = storage.NewLogArchive(l)
	if cfg.S3Bucket != "" {
		archive, err := storage.NewS3Archive(ctx, storage.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
		if err != nil {
			return err
		}
		deadLetters = archive
	}

	feedListener := consumer.NewFeedEventListener(timelines, distributor, deadLetters, l)
	notificationListener := consumer.NewNotificationEventListener(timelines, backfill, invalidator, deadLetters, l)

	consumerConfig := func(topic string) events.ConsumerConfig {
		return events.ConsumerConfig{
			Topic:      topic,
			Group:      cfg.QueueConsumerGroup,
			Consumer:   cfg.QueueConsumerName,
			Partitions: cfg.QueuePartitions,
			Block:      cfg.QueueBlock,
			Backoff:    cfg.QueueSuspendBackoff,
			MaxBackoff: cfg.QueueSuspendMaxBackoff,
			LeaseTTL:   cfg.QueueLeaseTTL,
		}
	}
	feedConsumer := events.NewStreamConsumer(redisClient, consumerConfig(cfg.FeedEventTopic), feedListener, l)
	notificationConsumer := events.NewStreamConsumer(redisClient, consumerConfig(cfg.NotificationEventTopic), notificationListener, l)

	// Query API
	srv := server.New(cfg, l)
	srv.SetupRoutes(
		&server.Handlers{Timeline: handler.NewTimelineHandler(timelines)},
		redis.NewRateLimiter(redisClient, redis.RateLimitConfig{QueryLimit: cfg.RateLimitQueries, QueryWindow: cfg.RateLimitWindow}),
		map[string]server.HealthCheck{
			"database": database.PingContext,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
	)

	l.Infof("Consuming %s and %s across %d partitions", cfg.FeedEventTopic, cfg.NotificationEventTopic, cfg.QueuePartitions)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return feedConsumer.Run(gctx) })
	g.Go(func() error { return notificationConsumer.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx) })
	return g.Wait()
}
