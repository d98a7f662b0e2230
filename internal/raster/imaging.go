package raster

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP reference images

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
)

// ImagingEngine decodes images with the imaging library.
type ImagingEngine struct {
	filter imaging.ResampleFilter
}

// NewImagingEngine creates an engine using Lanczos resampling.
func NewImagingEngine() *ImagingEngine {
	return &ImagingEngine{filter: imaging.Lanczos}
}

// Load decodes data, honouring the EXIF orientation tag.
func (e *ImagingEngine) Load(data []byte) (Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return &imagingImage{img: img, filter: e.filter}, nil
}

// FromImage wraps an already decoded image.
func (e *ImagingEngine) FromImage(img image.Image) Image {
	return &imagingImage{img: img, filter: e.filter}
}

type imagingImage struct {
	img    image.Image
	filter imaging.ResampleFilter
}

func (i *imagingImage) Size() domain.Box {
	b := i.img.Bounds()
	return domain.NewBox(b.Dx(), b.Dy())
}

func (i *imagingImage) Resize(box domain.Box) Image {
	return &imagingImage{
		img:    imaging.Resize(i.img, box.Width, box.Height, i.filter),
		filter: i.filter,
	}
}

func (i *imagingImage) Crop(at domain.Point, box domain.Box) Image {
	rect := image.Rect(at.X, at.Y, at.X+box.Width, at.Y+box.Height).Add(i.img.Bounds().Min)
	return &imagingImage{
		img:    imaging.Crop(i.img, rect),
		filter: i.filter,
	}
}

func (i *imagingImage) Encode(w io.Writer, ext string, quality int) error {
	format, err := imaging.FormatFromExtension(strings.TrimPrefix(ext, "."))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err := imaging.Encode(w, i.img, format, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

// CanEncode reports whether derivatives can be written with extension ext.
// WebP decodes but has no encoder.
func CanEncode(ext string) bool {
	_, err := imaging.FormatFromExtension(strings.TrimPrefix(ext, "."))
	return err == nil
}

// Dimensions reads the size and format name of encoded image data without
// decoding the pixels.
func Dimensions(data []byte) (domain.Box, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return domain.Box{}, "", fmt.Errorf("failed to decode image config: %w", err)
	}
	return domain.NewBox(cfg.Width, cfg.Height), format, nil
}
