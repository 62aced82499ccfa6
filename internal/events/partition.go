package events

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Partition maps a partition key onto one of n partitions.
func Partition(key string, n int) int {
	if n <= 1 {
		return 0
	}
	return int(xxhash.Sum64String(key) % uint64(n))
}

// StreamName is the Redis stream backing one partition of a topic.
func StreamName(topic string, partition int) string {
	return fmt.Sprintf("%s:%d", topic, partition)
}
