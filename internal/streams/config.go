// Package streams carries thumbnail jobs over Redis Streams.
package streams

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds stream configuration.
type Config struct {
	// StreamKey is the Redis Stream key jobs are published to.
	StreamKey string
	// GroupName is the consumer group name.
	GroupName string
	// ConsumerName is this consumer's name within the group.
	ConsumerName string
	// BatchSize is the number of messages to read at once.
	BatchSize int64
	// BlockTimeout is how long to block waiting for messages. Zero or less
	// returns immediately when the stream is empty.
	BlockTimeout time.Duration
	// ClaimIdleTime is how long a delivered message may stay unacknowledged
	// before another consumer claims it. Zero disables claiming.
	ClaimIdleTime time.Duration
	// MaxLen caps the stream length on publish (approximate trimming).
	// Zero keeps every entry.
	MaxLen int64
}

// DefaultConfig returns a default stream configuration.
func DefaultConfig() Config {
	return Config{
		StreamKey:     "media:thumbnails",
		GroupName:     "thumbnail-workers",
		ConsumerName:  "thumbnail-worker-1",
		BatchSize:     10,
		BlockTimeout:  5 * time.Second,
		ClaimIdleTime: 5 * time.Minute,
		MaxLen:        100000,
	}
}

// Validate checks that the configuration can be used by a consumer.
func (c Config) Validate() error {
	if c.StreamKey == "" {
		return fmt.Errorf("stream key is required")
	}
	if c.GroupName == "" {
		return fmt.Errorf("consumer group is required")
	}
	if c.ConsumerName == "" {
		return fmt.Errorf("consumer name is required")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1, got %d", c.BatchSize)
	}
	return nil
}

// block converts BlockTimeout to the XREADGROUP argument. go-redis omits
// BLOCK for negative values.
func (c Config) block() time.Duration {
	if c.BlockTimeout <= 0 {
		return -1
	}
	return c.BlockTimeout
}

// NewClient creates a Redis client from a URL such as redis://localhost:6379/0.
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}
