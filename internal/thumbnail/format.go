package thumbnail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/metrics"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/raster"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/resizer"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/storage"
)

// DefaultExtension is used when neither the format nor the media name one.
const DefaultExtension = "jpg"

// FormatThumbnail writes one file per format next to the reference image,
// named thumb_<media id>_<format>.<extension>.
type FormatThumbnail struct {
	defaultExtension string
	resizers         *resizer.Registry
	logger           *slog.Logger
}

// NewFormatThumbnail creates the orchestrator. resizers resolves format
// overrides and may be nil when no format names a resizer.
func NewFormatThumbnail(defaultExtension string, resizers *resizer.Registry, logger *slog.Logger) *FormatThumbnail {
	if defaultExtension == "" {
		defaultExtension = DefaultExtension
	}
	if resizers == nil {
		resizers = resizer.NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FormatThumbnail{
		defaultExtension: defaultExtension,
		resizers:         resizers,
		logger:           logger,
	}
}

func (t *FormatThumbnail) GeneratePublicURL(p Provider, media domain.Media, format string) (string, error) {
	return t.path(p, media, format)
}

func (t *FormatThumbnail) GeneratePrivateURL(p Provider, media domain.Media, format string) (string, error) {
	return t.path(p, media, format)
}

func (t *FormatThumbnail) path(p Provider, media domain.Media, format string) (string, error) {
	if format == domain.FormatReference {
		ref, err := p.ReferenceFile(media)
		if err != nil {
			return "", err
		}
		return ref.Key(), nil
	}

	if !media.HasID() {
		return "", domain.MissingMediaID("thumbnail.format.path")
	}

	dir, err := p.GeneratePath(media)
	if err != nil {
		return "", err
	}

	f, _ := p.Formats().Get(format)
	return fmt.Sprintf("%s/thumb_%s_%s.%s", dir, media.ID, format, t.extension(media, f)), nil
}

// extension picks the format's output extension, then the media's own when
// derivatives can be encoded with it, then the default.
func (t *FormatThumbnail) extension(media domain.Media, f domain.Format) string {
	if ext := f.Extension(); ext != "" {
		return ext
	}
	if ext := media.Extension(); len(ext) >= 3 && raster.CanEncode(ext) {
		return ext
	}
	return t.defaultExtension
}

// Generate resizes the reference image into every format of the media
// context plus the admin format, in registration order. The first failing
// format aborts the rest; files written before it are kept.
func (t *FormatThumbnail) Generate(ctx context.Context, p Provider, media domain.Media) error {
	if !p.RequireThumbnails() {
		return nil
	}
	if !media.HasID() {
		return domain.MissingMediaID("thumbnail.format.generate")
	}

	ref, err := p.ReferenceFile(media)
	if err != nil {
		return err
	}
	exists, err := ref.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		t.logger.Debug("reference file missing, skipping thumbnails",
			"media_id", media.ID,
			"key", ref.Key(),
		)
		return nil
	}

	data, err := ref.Read(ctx)
	if err != nil {
		return err
	}

	if media.Box().IsZero() {
		if box, _, err := raster.Dimensions(data); err == nil {
			media.Width, media.Height = box.Width, box.Height
		}
	}

	for _, f := range p.Formats().All() {
		if f.Name() != domain.FormatAdmin && !f.HasContext(media.Context) {
			continue
		}

		r, err := t.resizerFor(p, f)
		if err != nil {
			metrics.ThumbnailFailed(f.Name())
			return err
		}
		if r == nil {
			continue
		}

		key, err := t.GeneratePrivateURL(p, media, f.Name())
		if err != nil {
			return err
		}

		start := time.Now()
		out := storage.NewObject(p.Filesystem(), key)
		if err := r.Resize(ctx, media, data, out, t.extension(media, f), f); err != nil {
			metrics.ThumbnailFailed(f.Name())
			return fmt.Errorf("format %s: %w", f.Name(), err)
		}
		metrics.ThumbnailGenerated(f.Name(), time.Since(start))

		t.logger.Debug("generated thumbnail",
			"media_id", media.ID,
			"format", f.Name(),
			"key", key,
		)
	}

	return nil
}

// resizerFor returns the format's resizer override, or the provider
// default. A nil resizer means the format is skipped.
func (t *FormatThumbnail) resizerFor(p Provider, f domain.Format) (resizer.Resizer, error) {
	if id := f.Resizer(); id != "" {
		return t.resizers.Get(id)
	}
	return p.Resizer(), nil
}

// Delete removes the derivative files of the named formats. Missing files
// are ignored, so deleting twice is not an error.
func (t *FormatThumbnail) Delete(ctx context.Context, p Provider, media domain.Media, formats ...string) error {
	names := formats
	if len(names) == 0 || (len(names) == 1 && names[0] == domain.FormatAll) {
		names = p.Formats().Names()
	}

	for _, name := range names {
		if name == domain.FormatReference {
			continue
		}

		key, err := t.GeneratePrivateURL(p, media, name)
		if err != nil {
			return err
		}

		out := storage.NewObject(p.Filesystem(), key)
		exists, err := out.Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			continue
		}
		if err := out.Delete(ctx); err != nil {
			return err
		}
		metrics.ThumbnailDeleted()
	}

	return nil
}

func (t *FormatThumbnail) CanGenerate() bool {
	return true
}
