// Package domain contains core business types and interfaces.
//
// This file defines the geometry value types shared by the resizers and
// the raster adapter.
package domain

import (
	"fmt"
	"math"
)

// =============================================================================
// Box
// =============================================================================

// Box is an immutable width x height pair in pixels.
type Box struct {
	Width  int
	Height int
}

// NewBox returns a Box, clamping negative dimensions to zero.
func NewBox(width, height int) Box {
	return Box{Width: max(width, 0), Height: max(height, 0)}
}

// Scale multiplies both dimensions by ratio and rounds to the nearest integer.
func (b Box) Scale(ratio float64) Box {
	return NewBox(
		int(math.Round(float64(b.Width)*ratio)),
		int(math.Round(float64(b.Height)*ratio)),
	)
}

// Contains reports whether both dimensions of b are at least those of other.
func (b Box) Contains(other Box) bool {
	return b.Width >= other.Width && b.Height >= other.Height
}

// IsZero returns true when either dimension is zero.
func (b Box) IsZero() bool {
	return b.Width == 0 || b.Height == 0
}

func (b Box) String() string {
	return fmt.Sprintf("%dx%d", b.Width, b.Height)
}

// Point is a pixel offset from the top-left corner of an image.
type Point struct {
	X int
	Y int
}
