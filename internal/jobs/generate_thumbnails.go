package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/provider"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/thumbnail"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/worker"
)

// MediaFinder loads media records by id.
type MediaFinder interface {
	FindMedia(ctx context.Context, id string) (domain.Media, error)
}

// GenerateThumbnailsHandler runs queued thumbnail generations. It serves
// both the Postgres job worker (Handle) and the Redis Streams consumer
// (HandleMessage).
type GenerateThumbnailsHandler struct {
	media      MediaFinder
	providers  *provider.Pool
	thumbnails *thumbnail.Registry
	logger     *slog.Logger
}

// NewGenerateThumbnailsHandler creates a new handler for thumbnail jobs.
func NewGenerateThumbnailsHandler(
	media MediaFinder,
	providers *provider.Pool,
	thumbnails *thumbnail.Registry,
	logger *slog.Logger,
) *GenerateThumbnailsHandler {
	return &GenerateThumbnailsHandler{
		media:      media,
		providers:  providers,
		thumbnails: thumbnails,
		logger:     logger,
	}
}

// Type returns the job type identifier.
func (h *GenerateThumbnailsHandler) Type() string {
	return worker.JobTypeGenerateThumbnails
}

// Handle executes a thumbnail job from the jobs table.
func (h *GenerateThumbnailsHandler) Handle(ctx context.Context, payload []byte) error {
	var msg thumbnail.Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return worker.NewPermanentError(fmt.Errorf("invalid payload: %w", err))
	}
	return h.HandleMessage(ctx, msg)
}

// HandleMessage generates the derivatives described by msg. Unknown media,
// providers and thumbnails are permanent failures; everything else may be
// retried.
func (h *GenerateThumbnailsHandler) HandleMessage(ctx context.Context, msg thumbnail.Message) error {
	if err := msg.Validate(); err != nil {
		return worker.NewPermanentError(err)
	}

	logger := h.logger.With(
		"media_id", msg.MediaID,
		"provider", msg.ProviderName,
		"thumbnail", msg.ThumbnailID,
	)

	// 1. Load the media
	media, err := h.media.FindMedia(ctx, msg.MediaID)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			return worker.NewPermanentError(err)
		}
		return fmt.Errorf("load media: %w", err)
	}

	// 2. Generate from the reference the job was published for, even if the
	// media has been given a new one since
	if msg.ProviderReference != "" && msg.ProviderReference != media.ProviderReference {
		logger.Info("Restoring published provider reference",
			"current_reference", media.ProviderReference,
			"published_reference", msg.ProviderReference,
		)
		media.ProviderReference = msg.ProviderReference
	}

	// 3. Resolve the provider and the target thumbnail
	p, err := h.providers.Get(msg.ProviderName)
	if err != nil {
		return worker.NewPermanentError(err)
	}
	target, err := h.thumbnails.Get(msg.ThumbnailID)
	if err != nil {
		return worker.NewPermanentError(err)
	}

	// 4. Generate
	start := time.Now()
	if err := target.Generate(ctx, p, media); err != nil {
		if isPermanentGenerationError(err) {
			return worker.NewPermanentError(err)
		}
		return fmt.Errorf("generate thumbnails: %w", err)
	}

	logger.Info("Thumbnails generated", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// isPermanentGenerationError reports errors that a retry cannot fix:
// configuration errors in the formats.
func isPermanentGenerationError(err error) bool {
	return domain.IsMissingDimensions(err) ||
		domain.IsInvalidMode(err) ||
		domain.IsResizerNotFound(err) ||
		domain.IsMissingMediaID(err)
}
