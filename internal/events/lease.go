package events

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// partitionLease makes one process the only reader of a partition stream.
// The key holds the owner's token; only the owner may renew or release it.
type partitionLease struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration
}

var renewLeaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('PEXPIRE', KEYS[1], ARGV[2])
	end
	return 0
`)

var releaseLeaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

func leaseKey(group, stream string) string {
	return fmt.Sprintf("lease:%s:%s", group, stream)
}

func newPartitionLease(client *redis.Client, group, stream, token string, ttl time.Duration) *partitionLease {
	return &partitionLease{
		client: client,
		key:    leaseKey(group, stream),
		token:  token,
		ttl:    ttl,
	}
}

func (l *partitionLease) acquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lease %s: %w", l.key, err)
	}
	return ok, nil
}

// renew extends the lease. false means another owner has it now.
func (l *partitionLease) renew(ctx context.Context) (bool, error) {
	n, err := renewLeaseScript.Run(ctx, l.client, []string{l.key}, l.token, l.ttl.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("renew lease %s: %w", l.key, err)
	}
	return n == 1, nil
}

func (l *partitionLease) release(ctx context.Context) error {
	if err := releaseLeaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("release lease %s: %w", l.key, err)
	}
	return nil
}
