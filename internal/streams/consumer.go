package streams

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/metrics"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/thumbnail"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/worker"
)

// Handler processes thumbnail messages read from the stream.
type Handler interface {
	HandleMessage(ctx context.Context, msg thumbnail.Message) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg thumbnail.Message) error

func (f HandlerFunc) HandleMessage(ctx context.Context, msg thumbnail.Message) error {
	return f(ctx, msg)
}

// Consumer reads thumbnail messages with a consumer group.
//
// Successfully handled messages are acknowledged. Messages that fail with a
// worker.PermanentError, or cannot be decoded, are acknowledged and dropped.
// Other failures stay pending and are claimed again after ClaimIdleTime.
type Consumer struct {
	client       *redis.Client
	config       Config
	handler      Handler
	logger       *slog.Logger
	shutdownChan chan struct{}
	stopOnce     sync.Once
	done         chan struct{}
	started      bool
}

// NewConsumer creates a consumer. Call Start to begin reading.
func NewConsumer(client *redis.Client, config Config, handler Handler, logger *slog.Logger) (*Consumer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid stream config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Consumer{
		client:       client,
		config:       config,
		handler:      handler,
		logger:       logger.With("stream", config.StreamKey, "group", config.GroupName),
		shutdownChan: make(chan struct{}),
		done:         make(chan struct{}),
	}, nil
}

// Start creates the consumer group if needed and starts the read loop.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.EnsureGroup(ctx); err != nil {
		return err
	}

	c.logger.Info("starting consumer", "consumer", c.config.ConsumerName)

	c.started = true
	go c.consumeLoop(ctx)
	return nil
}

// Stop signals the read loop to exit and waits for the current batch. It is
// safe to call more than once.
func (c *Consumer) Stop() {
	c.stopOnce.Do(func() { close(c.shutdownChan) })
	if c.started {
		<-c.done
	}
}

// EnsureGroup creates the consumer group and the stream if they don't exist.
func (c *Consumer) EnsureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.config.StreamKey, c.config.GroupName, "0").Err()
	if err != nil {
		// BUSYGROUP means the group already exists
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			return nil
		}
		return fmt.Errorf("create consumer group: %w", err)
	}
	return nil
}

// Pending returns the number of messages delivered to the group but not yet
// acknowledged.
func (c *Consumer) Pending(ctx context.Context) (int64, error) {
	p, err := c.client.XPending(ctx, c.config.StreamKey, c.config.GroupName).Result()
	if err != nil {
		return 0, fmt.Errorf("xpending: %w", err)
	}
	return p.Count, nil
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer context cancelled, stopping")
			return
		case <-c.shutdownChan:
			c.logger.Info("consumer shutdown requested, stopping")
			return
		default:
		}

		n, err := c.ReadOnce(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			c.logger.Error("error processing messages", "error", err)
			if !c.wait(ctx, time.Second) {
				return
			}
		case n == 0 && c.config.BlockTimeout <= 0:
			// XREADGROUP returned immediately; avoid spinning on an empty stream
			if !c.wait(ctx, idlePollInterval) {
				return
			}
		}
	}
}

// idlePollInterval is the pause between reads when blocking is disabled.
const idlePollInterval = 100 * time.Millisecond

// wait sleeps for d and reports false if the consumer was stopped meanwhile.
func (c *Consumer) wait(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-c.shutdownChan:
		return false
	case <-ctx.Done():
		return false
	}
}

// ReadOnce claims idle pending messages, reads one batch of new messages
// and processes them. It returns how many messages were handled.
func (c *Consumer) ReadOnce(ctx context.Context) (int, error) {
	claimed, err := c.claimIdle(ctx)
	if err != nil {
		return 0, err
	}

	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.config.GroupName,
		Consumer: c.config.ConsumerName,
		Streams:  []string{c.config.StreamKey, ">"},
		Count:    c.config.BatchSize,
		Block:    c.config.block(),
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("xreadgroup: %w", err)
	}

	messages := claimed
	for _, stream := range streams {
		messages = append(messages, stream.Messages...)
	}

	for _, message := range messages {
		c.process(ctx, message)
	}
	return len(messages), nil
}

// claimIdle takes over messages another consumer received but never
// acknowledged.
func (c *Consumer) claimIdle(ctx context.Context) ([]redis.XMessage, error) {
	if c.config.ClaimIdleTime <= 0 {
		return nil, nil
	}

	messages, _, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   c.config.StreamKey,
		Group:    c.config.GroupName,
		Consumer: c.config.ConsumerName,
		MinIdle:  c.config.ClaimIdleTime,
		Start:    "0-0",
		Count:    c.config.BatchSize,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("xautoclaim: %w", err)
	}
	return messages, nil
}

func (c *Consumer) process(ctx context.Context, message redis.XMessage) {
	logger := c.logger.With("message_id", message.ID)

	msg, err := parseMessage(message)
	if err != nil {
		logger.Error("dropping malformed message", "error", err)
		metrics.StreamMessage(c.config.StreamKey, "consume", err)
		c.ack(ctx, logger, message.ID)
		return
	}

	logger = logger.With("media_id", msg.MediaID)
	err = c.handler.HandleMessage(ctx, msg)
	metrics.StreamMessage(c.config.StreamKey, "consume", err)

	switch {
	case err == nil:
		c.ack(ctx, logger, message.ID)
	case worker.IsPermanent(err):
		logger.Warn("message failed permanently, dropping", "error", err)
		c.ack(ctx, logger, message.ID)
	default:
		// Left pending so it is claimed and retried later
		logger.Error("failed to process message", "error", err)
	}
}

func (c *Consumer) ack(ctx context.Context, logger *slog.Logger, id string) {
	if err := c.client.XAck(ctx, c.config.StreamKey, c.config.GroupName, id).Err(); err != nil {
		logger.Error("failed to acknowledge message", "error", err)
	}
}

// parseMessage decodes the payload field of a stream entry.
func parseMessage(message redis.XMessage) (thumbnail.Message, error) {
	if v, ok := message.Values["event_type"].(string); ok && v != EventTypeGenerateThumbnails {
		return thumbnail.Message{}, fmt.Errorf("unexpected event type %q", v)
	}

	raw, ok := message.Values["payload"].(string)
	if !ok {
		return thumbnail.Message{}, errors.New("message has no payload")
	}

	var msg thumbnail.Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return thumbnail.Message{}, fmt.Errorf("decode payload: %w", err)
	}
	if err := msg.Validate(); err != nil {
		return thumbnail.Message{}, err
	}
	return msg, nil
}
