package thumbnail

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/metrics"
)

type pendingGeneration struct {
	provider Provider
	media    domain.Media
}

// UnitOfWork collects generations to run later, typically when a request or
// the process ends. It is safe for concurrent use.
type UnitOfWork struct {
	mu      sync.Mutex
	target  Thumbnail
	pending []pendingGeneration
	logger  *slog.Logger
}

// NewUnitOfWork creates a unit of work that generates through target.
func NewUnitOfWork(target Thumbnail, logger *slog.Logger) *UnitOfWork {
	if logger == nil {
		logger = slog.Default()
	}
	return &UnitOfWork{target: target, logger: logger}
}

// Defer records a generation. The media is copied.
func (u *UnitOfWork) Defer(p Provider, media domain.Media) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.pending = append(u.pending, pendingGeneration{provider: p, media: media})
}

// Pending returns the number of recorded generations.
func (u *UnitOfWork) Pending() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.pending)
}

// Flush runs the recorded generations in order. It stops at the first
// failure; the failed generation is dropped and the ones after it stay
// pending for the next Flush.
func (u *UnitOfWork) Flush(ctx context.Context) error {
	for {
		u.mu.Lock()
		if len(u.pending) == 0 {
			u.mu.Unlock()
			return nil
		}
		next := u.pending[0]
		u.pending = u.pending[1:]
		u.mu.Unlock()

		if err := ctx.Err(); err != nil {
			u.requeue(next)
			return err
		}

		err := u.target.Generate(ctx, next.provider, next.media)
		metrics.Generation(DeliveryDeferred, err)
		if err != nil {
			u.logger.Error("deferred thumbnail generation failed",
				"media_id", next.media.ID,
				"provider", next.provider.Name(),
				"remaining", u.Pending(),
				"error", err,
			)
			return fmt.Errorf("deferred generation for media %s: %w", next.media.ID, err)
		}
	}
}

func (u *UnitOfWork) requeue(g pendingGeneration) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.pending = append([]pendingGeneration{g}, u.pending...)
}

// Discard drops every recorded generation and returns how many there were.
func (u *UnitOfWork) Discard() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := len(u.pending)
	u.pending = nil
	return n
}

// Deferred records generations in a UnitOfWork instead of running them.
type Deferred struct {
	inner Thumbnail
	work  *UnitOfWork
}

// NewDeferred creates a deferred thumbnail. URLs and deletes go to inner.
func NewDeferred(inner Thumbnail, work *UnitOfWork) *Deferred {
	return &Deferred{inner: inner, work: work}
}

func (t *Deferred) GeneratePublicURL(p Provider, media domain.Media, format string) (string, error) {
	return t.inner.GeneratePublicURL(p, media, format)
}

func (t *Deferred) GeneratePrivateURL(p Provider, media domain.Media, format string) (string, error) {
	return t.inner.GeneratePrivateURL(p, media, format)
}

func (t *Deferred) Generate(_ context.Context, p Provider, media domain.Media) error {
	t.work.Defer(p, media)
	return nil
}

func (t *Deferred) Delete(ctx context.Context, p Provider, media domain.Media, formats ...string) error {
	if !t.inner.CanGenerate() {
		return nil
	}
	return t.inner.Delete(ctx, p, media, formats...)
}

func (t *Deferred) CanGenerate() bool {
	return t.inner.CanGenerate()
}

// Work returns the unit of work generations are recorded in.
func (t *Deferred) Work() *UnitOfWork {
	return t.work
}
