// Package provider implements the media providers thumbnails work for.
//
// An ImageProvider keeps images and generates derivatives through its
// configured thumbnail. A FileProvider keeps any other file and shows static
// icons. Both satisfy thumbnail.Provider.
package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/pathgen"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/resizer"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/storage"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/thumbnail"
)

// Provider names.
const (
	NameImage = "image"
	NameFile  = "file"
)

// originURLExpiry is the lifetime of presigned origin URLs handed out while
// a CDN flush is pending.
const originURLExpiry = time.Hour

// MediaProvider is a provider the rest of the application talks to.
type MediaProvider interface {
	thumbnail.Provider

	// Accepts reports whether the provider stores files of contentType.
	Accepts(contentType string) bool

	GenerateThumbnails(ctx context.Context, media domain.Media) error
	RemoveThumbnails(ctx context.Context, media domain.Media, formats ...string) error

	// ThumbnailURL returns the URL clients load format from.
	ThumbnailURL(ctx context.Context, media domain.Media, format string) (string, error)

	// FormatBox returns the dimensions of format for media.
	FormatBox(media domain.Media, format string) (domain.Box, error)
}

// Config holds the collaborators of a provider.
type Config struct {
	// Name overrides the provider name. Defaults to NameImage or NameFile.
	Name string

	Formats    *domain.Registry
	Filesystem storage.Storage
	Paths      pathgen.Generator
	Thumbnail  thumbnail.Thumbnail

	// Resizer is the default resizer. Required by image providers.
	Resizer resizer.Resizer

	// Resizers resolves format resizer overrides in FormatBox. Formats that
	// name a resizer fail with ResizerNotFound without it.
	Resizers *resizer.Registry

	// CDN serves public files. Optional; storage URLs are used without it.
	CDN CDN
}

func (c Config) validate(name string) error {
	const op = "provider.config"
	switch {
	case c.Formats == nil:
		return domain.Invalid(op, fmt.Sprintf("%s provider requires formats", name))
	case c.Filesystem == nil:
		return domain.Invalid(op, fmt.Sprintf("%s provider requires a filesystem", name))
	case c.Paths == nil:
		return domain.Invalid(op, fmt.Sprintf("%s provider requires a path generator", name))
	case c.Thumbnail == nil:
		return domain.Invalid(op, fmt.Sprintf("%s provider requires a thumbnail", name))
	}
	return nil
}

// =============================================================================
// Shared Implementation
// =============================================================================

type base struct {
	name string
	cfg  Config
}

func (p *base) Name() string { return p.name }
func (p *base) Formats() *domain.Registry { return p.cfg.Formats }
func (p *base) Resizer() resizer.Resizer { return p.cfg.Resizer }
func (p *base) Filesystem() storage.Storage { return p.cfg.Filesystem }
func (p *base) Thumbnail() thumbnail.Thumbnail { return p.cfg.Thumbnail }

func (p *base) GeneratePath(media domain.Media) (string, error) {
	return p.cfg.Paths.GeneratePath(media)
}

// ReferenceFile returns the original file, stored as
// <path>/<provider reference>.
func (p *base) ReferenceFile(media domain.Media) (*storage.Object, error) {
	if media.ProviderReference == "" {
		return nil, domain.Invalid("provider.reference_file", fmt.Sprintf("media %q has no provider reference", media.ID))
	}
	dir, err := p.GeneratePath(media)
	if err != nil {
		return nil, err
	}
	return storage.NewObject(p.cfg.Filesystem, dir+"/"+media.ProviderReference), nil
}

// url resolves a thumbnail public path to a client URL. Absolute URLs are
// returned unchanged. Files of media whose CDN flush is pending are served
// from storage so clients never see a stale CDN copy.
func (p *base) url(ctx context.Context, media domain.Media, path string, stored bool) (string, error) {
	if strings.Contains(path, "://") {
		return path, nil
	}
	if stored && (p.cfg.CDN == nil || media.CDNStatus.IsPending()) {
		return p.cfg.Filesystem.URL(ctx, path, originURLExpiry)
	}
	if p.cfg.CDN == nil {
		return path, nil
	}
	return p.cfg.CDN.Path(path), nil
}

// =============================================================================
// Image Provider
// =============================================================================

// ImageProvider stores images and generates resized derivatives.
type ImageProvider struct {
	base
}

// NewImageProvider creates an image provider.
func NewImageProvider(cfg Config) (*ImageProvider, error) {
	name := cfg.Name
	if name == "" {
		name = NameImage
	}
	if err := cfg.validate(name); err != nil {
		return nil, err
	}
	if cfg.Resizer == nil {
		return nil, domain.Invalid("provider.config", fmt.Sprintf("%s provider requires a resizer", name))
	}
	return &ImageProvider{base{name: name, cfg: cfg}}, nil
}

func (p *ImageProvider) RequireThumbnails() bool { return true }

func (p *ImageProvider) Accepts(contentType string) bool {
	return storage.IsImage(contentType)
}

func (p *ImageProvider) GenerateThumbnails(ctx context.Context, media domain.Media) error {
	return p.cfg.Thumbnail.Generate(ctx, p, media)
}

func (p *ImageProvider) RemoveThumbnails(ctx context.Context, media domain.Media, formats ...string) error {
	return p.cfg.Thumbnail.Delete(ctx, p, media, formats...)
}

func (p *ImageProvider) ThumbnailURL(ctx context.Context, media domain.Media, format string) (string, error) {
	path, err := p.cfg.Thumbnail.GeneratePublicURL(p, media, format)
	if err != nil {
		return "", err
	}
	stored := format == domain.FormatReference || p.cfg.Thumbnail.CanGenerate()
	return p.url(ctx, media, path, stored)
}

// FormatBox asks the format's resizer for the derivative dimensions. The
// reference format reports the stored media dimensions.
func (p *ImageProvider) FormatBox(media domain.Media, format string) (domain.Box, error) {
	if format == domain.FormatReference {
		return media.Box(), nil
	}
	f, ok := p.cfg.Formats.Get(format)
	if !ok {
		return domain.Box{}, domain.NotFound("provider.format_box", "format", format)
	}
	r := p.cfg.Resizer
	if id := f.Resizer(); id != "" {
		if p.cfg.Resizers == nil {
			return domain.Box{}, domain.ResizerNotFound("provider.format_box", id)
		}
		override, err := p.cfg.Resizers.Get(id)
		if err != nil {
			return domain.Box{}, err
		}
		r = override
	}
	return r.GetBox(media, f)
}

// =============================================================================
// File Provider
// =============================================================================

// FileProvider stores arbitrary files. It never generates derivatives.
type FileProvider struct {
	base
}

// NewFileProvider creates a file provider.
func NewFileProvider(cfg Config) (*FileProvider, error) {
	name := cfg.Name
	if name == "" {
		name = NameFile
	}
	if err := cfg.validate(name); err != nil {
		return nil, err
	}
	return &FileProvider{base{name: name, cfg: cfg}}, nil
}

func (p *FileProvider) RequireThumbnails() bool { return false }

// Accepts returns true for every content type.
func (p *FileProvider) Accepts(string) bool { return true }

func (p *FileProvider) GenerateThumbnails(ctx context.Context, media domain.Media) error {
	return p.cfg.Thumbnail.Generate(ctx, p, media)
}

func (p *FileProvider) RemoveThumbnails(ctx context.Context, media domain.Media, formats ...string) error {
	return p.cfg.Thumbnail.Delete(ctx, p, media, formats...)
}

func (p *FileProvider) ThumbnailURL(ctx context.Context, media domain.Media, format string) (string, error) {
	path, err := p.cfg.Thumbnail.GeneratePublicURL(p, media, format)
	if err != nil {
		return "", err
	}
	return p.url(ctx, media, path, format == domain.FormatReference)
}

// FormatBox returns the format box as configured; files have no dimensions
// to derive from.
func (p *FileProvider) FormatBox(media domain.Media, format string) (domain.Box, error) {
	if format == domain.FormatReference {
		return media.Box(), nil
	}
	f, ok := p.cfg.Formats.Get(format)
	if !ok {
		return domain.Box{}, domain.NotFound("provider.format_box", "format", format)
	}
	w, _ := f.Width()
	h, _ := f.Height()
	return domain.NewBox(w, h), nil
}
