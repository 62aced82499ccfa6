package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	AppMode       string
	LogMode       string
	DBHost        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPort        string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Queue
	QueuePartitions        int
	QueueConsumerGroup     string
	QueueConsumerName      string
	QueueBlock             time.Duration
	QueueSuspendBackoff    time.Duration
	QueueSuspendMaxBackoff time.Duration
	QueueLeaseTTL          time.Duration
	FeedEventTopic         string
	NotificationEventTopic string

	// Collaborators
	MembershipBaseURL  string
	MembershipPageSize int
	MembershipCacheTTL time.Duration
	FeedBaseURL        string
	HTTPClientTimeout  time.Duration

	// Timeline
	BackfillPageSize    int
	BackfillTimeout     time.Duration
	TimelineInsertBatch int
	MaxPageSize         int
	PublicInboxUserID   string
	RateLimitQueries    int
	RateLimitWindow     time.Duration

	// Dead letters
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "timeline-1"
	}

	return &Config{
		AppPort:       getEnv("APP_PORT", "8080"),
		AppMode:       getEnv("APP_MODE", "debug"),
		LogMode:       getEnv("LOG_MODE", "development"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "island_timeline"),
		DBPort:        getEnv("DB_PORT", "5432"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		QueuePartitions:        getEnvAsInt("QUEUE_PARTITIONS", 20),
		QueueConsumerGroup:     getEnv("QUEUE_CONSUMER_GROUP", "timeline"),
		QueueConsumerName:      getEnv("QUEUE_CONSUMER_NAME", hostname),
		QueueBlock:             getEnvAsDuration("QUEUE_BLOCK", 2*time.Second),
		QueueSuspendBackoff:    getEnvAsDuration("QUEUE_SUSPEND_BACKOFF", time.Second),
		QueueSuspendMaxBackoff: getEnvAsDuration("QUEUE_SUSPEND_MAX_BACKOFF", time.Minute),
		QueueLeaseTTL:          getEnvAsDuration("QUEUE_LEASE_TTL", 15*time.Second),
		FeedEventTopic:         getEnv("FEED_EVENT_TOPIC", "feed-events"),
		NotificationEventTopic: getEnv("NOTIFICATION_EVENT_TOPIC", "notification-events"),

		MembershipBaseURL:  getEnv("MEMBERSHIP_BASE_URL", "http://localhost:8081"),
		MembershipPageSize: getEnvAsInt("MEMBERSHIP_PAGE_SIZE", 1000),
		MembershipCacheTTL: getEnvAsDuration("MEMBERSHIP_CACHE_TTL", 30*time.Second),
		FeedBaseURL:        getEnv("FEED_BASE_URL", "http://localhost:8082"),
		HTTPClientTimeout:  getEnvAsDuration("HTTP_CLIENT_TIMEOUT", 5*time.Second),

		BackfillPageSize:    getEnvAsInt("BACKFILL_PAGE_SIZE", 1000),
		BackfillTimeout:     getEnvAsDuration("BACKFILL_TIMEOUT", 2*time.Minute),
		TimelineInsertBatch: getEnvAsInt("TIMELINE_INSERT_BATCH", 500),
		MaxPageSize:         getEnvAsInt("MAX_PAGE_SIZE", 100),
		PublicInboxUserID:   getEnv("PUBLIC_INBOX_USER_ID", "public-inbox"),
		RateLimitQueries:    getEnvAsInt("RATE_LIMIT_QUERIES", 120),
		RateLimitWindow:     getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),

		S3Region:    getEnv("S3_REGION", ""),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go duration strings ("30s", "2m"); "0" disables.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "0" {
		return 0
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return fallback
}
