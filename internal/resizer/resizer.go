// Package resizer computes derivative geometry and writes resized images.
//
// Three strategies are provided:
// - Simple: inset or outbound thumbnail, never upscaling by default
// - Square: crops the longer side to a square before resizing
// - Crop: always produces exactly the requested box (cover + crop)
//
// GetBox predicts the dimensions Resize will produce for the same media and
// format, so callers can size markup without touching the image.
package resizer

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/raster"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/storage"
)

// Registered resizer ids.
const (
	IDSimple = "simple"
	IDSquare = "square"
	IDCrop   = "crop"
)

// Resizer writes one derivative of a reference image.
type Resizer interface {
	// Resize decodes in, transforms it according to format and writes the
	// result encoded as ext to out.
	Resize(ctx context.Context, media domain.Media, in []byte, out *storage.Object, ext string, format domain.Format) error

	// GetBox returns the dimensions Resize produces for media and format.
	GetBox(media domain.Media, format domain.Format) (domain.Box, error)
}

// =============================================================================
// Registry
// =============================================================================

// Registry maps resizer ids to implementations.
type Registry struct {
	resizers map[string]Resizer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{resizers: make(map[string]Resizer)}
}

// NewDefaultRegistry registers the simple, square and crop resizers.
func NewDefaultRegistry(engine raster.Engine, metadata MetadataBuilder) *Registry {
	r := NewRegistry()
	r.Register(IDSimple, NewSimple(engine, domain.ResizeModeInset, metadata))
	r.Register(IDSquare, NewSquare(engine, metadata))
	r.Register(IDCrop, NewCrop(engine, metadata))
	return r
}

// Register adds or replaces the resizer under id.
func (r *Registry) Register(id string, resizer Resizer) {
	r.resizers[id] = resizer
}

// Get returns the resizer registered under id.
func (r *Registry) Get(id string) (Resizer, error) {
	resizer, ok := r.resizers[id]
	if !ok {
		return nil, domain.ResizerNotFound("resizer.registry.get", id)
	}
	return resizer, nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.resizers[id]
	return ok
}

// IDs returns the registered ids in lexical order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.resizers))
	for id := range r.resizers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// =============================================================================
// Shared Helpers
// =============================================================================

type base struct {
	engine   raster.Engine
	metadata MetadataBuilder
}

func newBase(engine raster.Engine, metadata MetadataBuilder) base {
	if metadata == nil {
		metadata = DefaultMetadata{}
	}
	return base{engine: engine, metadata: metadata}
}

func (b base) write(ctx context.Context, media domain.Media, img raster.Image, out *storage.Object, ext string, quality int) error {
	var buf bytes.Buffer
	if err := img.Encode(&buf, ext, quality); err != nil {
		return err
	}
	if err := out.Write(ctx, buf.Bytes(), b.metadata.Build(media, out.Key())); err != nil {
		return fmt.Errorf("write %s: %w", out.Key(), err)
	}
	return nil
}

// sourceBox returns the stored media dimensions, rejecting empty ones.
func sourceBox(op string, media domain.Media) (domain.Box, error) {
	src := media.Box()
	if src.IsZero() {
		return domain.Box{}, domain.Invalid(op, fmt.Sprintf("media %q has no dimensions", media.ID))
	}
	return src, nil
}

// deriveHeight keeps the source aspect ratio, truncating like integer division.
func deriveHeight(width int, src domain.Box) int {
	return width * src.Height / src.Width
}

func deriveWidth(height int, src domain.Box) int {
	return height * src.Width / src.Height
}
