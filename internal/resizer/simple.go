package resizer

import (
	"context"
	"math"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/raster"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/storage"
)

// Simple scales the image into the format box, preserving the aspect ratio.
// Inset fits the whole image inside the box; outbound covers the box and
// crops the overflow.
type Simple struct {
	base
	mode domain.ResizeMode
}

// NewSimple creates a simple resizer. mode is used for formats that do not
// set their own.
func NewSimple(engine raster.Engine, mode domain.ResizeMode, metadata MetadataBuilder) *Simple {
	return &Simple{base: newBase(engine, metadata), mode: mode}
}

func (r *Simple) modeFor(format domain.Format) (domain.ResizeMode, error) {
	mode := r.mode
	if format.Mode() != "" {
		mode = format.Mode()
	}
	if !mode.IsValid() {
		return "", domain.InvalidMode("resizer.simple", mode)
	}
	return mode, nil
}

// ComputeRatio returns the scale factor applied to src.
func (r *Simple) ComputeRatio(src domain.Box, format domain.Format) (float64, error) {
	mode, err := r.modeFor(format)
	if err != nil {
		return 0, err
	}

	width, hasWidth := format.Width()
	height, hasHeight := format.Height()
	switch {
	case !hasWidth && !hasHeight:
		return 0, domain.MissingDimensions("resizer.simple")
	case !hasHeight:
		height = deriveHeight(width, src)
	case !hasWidth:
		width = deriveWidth(height, src)
	}

	widthRatio := float64(width) / float64(src.Width)
	heightRatio := float64(height) / float64(src.Height)

	if mode == domain.ResizeModeInset {
		return math.Min(widthRatio, heightRatio), nil
	}
	return math.Max(widthRatio, heightRatio), nil
}

// targetBox scales src by the computed ratio.
func (r *Simple) targetBox(src domain.Box, format domain.Format) (domain.Box, error) {
	ratio, err := r.ComputeRatio(src, format)
	if err != nil {
		return domain.Box{}, err
	}
	return src.Scale(ratio), nil
}

func (r *Simple) GetBox(media domain.Media, format domain.Format) (domain.Box, error) {
	src, err := sourceBox("resizer.simple.get_box", media)
	if err != nil {
		return domain.Box{}, err
	}
	return r.targetBox(src, format)
}

func (r *Simple) Resize(ctx context.Context, media domain.Media, in []byte, out *storage.Object, ext string, format domain.Format) error {
	mode, err := r.modeFor(format)
	if err != nil {
		return err
	}

	img, err := r.engine.Load(in)
	if err != nil {
		return err
	}

	if img.Size().IsZero() {
		return domain.Invalid("resizer.simple.resize", "reference image is empty")
	}
	box, err := r.targetBox(img.Size(), format)
	if err != nil {
		return err
	}

	img = raster.Thumbnail(img, box, mode, !format.Constraint())
	return r.write(ctx, media, img, out, ext, format.Quality())
}
