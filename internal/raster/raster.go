// Package raster is the boundary to the image manipulation library.
//
// Resizers work against the Image interface so the geometry can be tested
// without decoding real pictures. The production Engine is backed by
// github.com/disintegration/imaging.
package raster

import (
	"errors"
	"io"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
)

// ErrUnsupportedFormat is returned when an output extension has no encoder.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Engine decodes raw bytes into an Image.
type Engine interface {
	Load(data []byte) (Image, error)
}

// Image is a decoded raster. Operations return a new Image and leave the
// receiver untouched.
type Image interface {
	// Size returns the current dimensions.
	Size() domain.Box

	// Resize scales the image to exactly box.
	Resize(box domain.Box) Image

	// Crop cuts box out of the image starting at the given point.
	Crop(at domain.Point, box domain.Box) Image

	// Encode writes the image in the format named by ext (e.g. "jpg", "png").
	Encode(w io.Writer, ext string, quality int) error
}
