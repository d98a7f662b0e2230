package thumbnail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/metrics"
)

// Message asks a consumer to generate the derivatives of one media.
//
// ProviderReference is captured when the message is published. The consumer
// restores it on the re-loaded media so a reference replaced in the meantime
// does not change which file the derivatives are cut from.
type Message struct {
	ThumbnailID       string `json:"thumbnail_id"`
	MediaID           string `json:"media_id"`
	ProviderName      string `json:"provider_name"`
	ProviderReference string `json:"provider_reference"`
}

// Validate checks the fields a consumer needs.
func (m Message) Validate() error {
	switch {
	case m.ThumbnailID == "":
		return domain.Invalid("thumbnail.message", "thumbnail id is required")
	case m.MediaID == "":
		return domain.MissingMediaID("thumbnail.message")
	case m.ProviderName == "":
		return domain.Invalid("thumbnail.message", "provider name is required")
	}
	return nil
}

// Publisher hands messages to a queue transport.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, msg Message) error

func (f PublisherFunc) Publish(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// Queued publishes a message instead of generating. The consumer runs the
// thumbnail registered under targetID.
type Queued struct {
	inner     Thumbnail
	targetID  string
	publisher Publisher
	logger    *slog.Logger
}

// NewQueued creates a queued thumbnail. inner resolves URLs and handles
// deletes; targetID names the thumbnail the consumer generates with.
func NewQueued(inner Thumbnail, targetID string, publisher Publisher, logger *slog.Logger) *Queued {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queued{
		inner:     inner,
		targetID:  targetID,
		publisher: publisher,
		logger:    logger,
	}
}

func (t *Queued) GeneratePublicURL(p Provider, media domain.Media, format string) (string, error) {
	return t.inner.GeneratePublicURL(p, media, format)
}

func (t *Queued) GeneratePrivateURL(p Provider, media domain.Media, format string) (string, error) {
	return t.inner.GeneratePrivateURL(p, media, format)
}

func (t *Queued) Generate(ctx context.Context, p Provider, media domain.Media) error {
	if !media.HasID() {
		return domain.MissingMediaID("thumbnail.queued.generate")
	}

	msg := Message{
		ThumbnailID:       t.targetID,
		MediaID:           media.ID,
		ProviderName:      p.Name(),
		ProviderReference: media.ProviderReference,
	}

	err := t.publisher.Publish(ctx, msg)
	metrics.Generation(DeliveryQueue, err)
	if err != nil {
		return fmt.Errorf("publish thumbnail job for media %s: %w", media.ID, err)
	}

	t.logger.Debug("thumbnail job published",
		"media_id", media.ID,
		"provider", p.Name(),
		"thumbnail", t.targetID,
	)
	return nil
}

func (t *Queued) Delete(ctx context.Context, p Provider, media domain.Media, formats ...string) error {
	if !t.inner.CanGenerate() {
		return nil
	}
	return t.inner.Delete(ctx, p, media, formats...)
}

func (t *Queued) CanGenerate() bool {
	return t.inner.CanGenerate()
}
