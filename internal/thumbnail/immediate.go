package thumbnail

import (
	"context"
	"log/slog"
	"time"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/metrics"
)

// Delivery names used in logs and metrics.
const (
	DeliveryImmediate = "immediate"
	DeliveryQueue     = "queue"
	DeliveryDeferred  = "deferred"
	DeliveryOnDemand  = "ondemand"
	DeliveryStatic    = "static"
)

// Immediate generates derivatives in the caller's goroutine.
type Immediate struct {
	inner  Thumbnail
	logger *slog.Logger
}

func NewImmediate(inner Thumbnail, logger *slog.Logger) *Immediate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Immediate{inner: inner, logger: logger}
}

func (t *Immediate) GeneratePublicURL(p Provider, media domain.Media, format string) (string, error) {
	return t.inner.GeneratePublicURL(p, media, format)
}

func (t *Immediate) GeneratePrivateURL(p Provider, media domain.Media, format string) (string, error) {
	return t.inner.GeneratePrivateURL(p, media, format)
}

func (t *Immediate) Generate(ctx context.Context, p Provider, media domain.Media) error {
	start := time.Now()
	err := t.inner.Generate(ctx, p, media)
	metrics.Generation(DeliveryImmediate, err)

	if err != nil {
		t.logger.Error("thumbnail generation failed",
			"media_id", media.ID,
			"provider", p.Name(),
			"error", err,
		)
		return err
	}

	t.logger.Info("thumbnails generated",
		"media_id", media.ID,
		"provider", p.Name(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (t *Immediate) Delete(ctx context.Context, p Provider, media domain.Media, formats ...string) error {
	if !t.inner.CanGenerate() {
		return nil
	}
	return t.inner.Delete(ctx, p, media, formats...)
}

func (t *Immediate) CanGenerate() bool {
	return t.inner.CanGenerate()
}
