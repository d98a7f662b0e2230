// Package thumbnail names, generates and deletes media derivatives.
//
// FormatThumbnail does the work: it walks the provider's formats and runs
// a resizer for each one. The other implementations decide when that work
// happens:
// - Immediate: inline, in the caller's goroutine
// - Queued: a job is published and a consumer runs it later
// - Deferred: recorded in a UnitOfWork and run when it is flushed
// - OnDemand: never; an external image cache renders on first request
// - Static: never; non-image files are shown with a fixed icon
package thumbnail

import (
	"context"
	"sort"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/resizer"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/storage"
)

// Provider is the media provider a thumbnail works for.
type Provider interface {
	Name() string

	// RequireThumbnails reports whether derivatives are generated at all.
	RequireThumbnails() bool

	// Formats returns the formats of this provider in registration order.
	Formats() *domain.Registry

	// Resizer returns the default resizer. May be nil.
	Resizer() resizer.Resizer

	// Filesystem is where references and derivatives are stored.
	Filesystem() storage.Storage

	// GeneratePath returns the directory of the media's files.
	GeneratePath(media domain.Media) (string, error)

	// ReferenceFile returns the original file of the media.
	ReferenceFile(media domain.Media) (*storage.Object, error)
}

// Thumbnail resolves derivative URLs and controls when they are produced.
type Thumbnail interface {
	// GeneratePublicURL returns the path or URL clients use for format.
	GeneratePublicURL(p Provider, media domain.Media, format string) (string, error)

	// GeneratePrivateURL returns the storage key of format.
	GeneratePrivateURL(p Provider, media domain.Media, format string) (string, error)

	// Generate produces, or schedules, every derivative of media.
	Generate(ctx context.Context, p Provider, media domain.Media) error

	// Delete removes the derivatives of the named formats. No names, or
	// "all", means every registered format.
	Delete(ctx context.Context, p Provider, media domain.Media, formats ...string) error

	// CanGenerate reports whether Generate and Delete do any work.
	CanGenerate() bool
}

// =============================================================================
// Registry
// =============================================================================

// Registry maps thumbnail ids to implementations. Queue consumers use it to
// find the thumbnail a job was published for.
type Registry struct {
	thumbnails map[string]Thumbnail
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{thumbnails: make(map[string]Thumbnail)}
}

// Register adds or replaces the thumbnail under id.
func (r *Registry) Register(id string, t Thumbnail) {
	r.thumbnails[id] = t
}

// Get returns the thumbnail registered under id.
func (r *Registry) Get(id string) (Thumbnail, error) {
	t, ok := r.thumbnails[id]
	if !ok {
		return nil, domain.NotFound("thumbnail.registry.get", "thumbnail", id)
	}
	return t, nil
}

// IDs returns the registered ids in lexical order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.thumbnails))
	for id := range r.thumbnails {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
