package streams

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/metrics"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/thumbnail"
)

// EventTypeGenerateThumbnails is the event_type field of thumbnail messages.
const EventTypeGenerateThumbnails = "generate_thumbnails"

// Publisher implements thumbnail.Publisher with XADD.
type Publisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewPublisher creates a publisher for cfg.StreamKey.
func NewPublisher(client *redis.Client, cfg Config) *Publisher {
	return &Publisher{client: client, stream: cfg.StreamKey, maxLen: cfg.MaxLen}
}

// Publish adds msg to the stream.
func (p *Publisher) Publish(ctx context.Context, msg thumbnail.Message) error {
	_, err := p.publish(ctx, msg)
	metrics.StreamMessage(p.stream, "publish", err)
	return err
}

func (p *Publisher) publish(ctx context.Context, msg thumbnail.Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal message: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"event_type": EventTypeGenerateThumbnails,
			"media_id":   msg.MediaID,
			"payload":    string(payload),
			"created_at": time.Now().UTC().Format(time.RFC3339),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	id, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return id, nil
}
