package raster

import (
	"math"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
)

// Plan describes the operations a thumbnail applies to an image of a given
// size. A zero Scale or Crop box means the step is skipped.
type Plan struct {
	Scale  domain.Box
	CropAt domain.Point
	Crop   domain.Box
	Result domain.Box
}

// PlanThumbnail computes how an image of size is fitted into box.
//
// Unless upscale is set, an image that already fits inside box is returned
// as is. Inset scales by the smaller ratio and never crops. Outbound scales
// by the larger ratio and crops the centre; when the source is smaller than
// box on an axis the crop is clamped to the source on that axis.
func PlanThumbnail(size, box domain.Box, mode domain.ResizeMode, upscale bool) Plan {
	if size.IsZero() || box.IsZero() {
		return Plan{Result: size}
	}
	if !upscale && box.Contains(size) {
		return Plan{Result: size}
	}

	widthRatio := float64(box.Width) / float64(size.Width)
	heightRatio := float64(box.Height) / float64(size.Height)

	if mode != domain.ResizeModeOutbound {
		scaled := size.Scale(math.Min(widthRatio, heightRatio))
		return newPlan(size, scaled, domain.Point{}, scaled)
	}

	working := size
	crop := box
	if !upscale && !size.Contains(box) {
		crop = domain.NewBox(min(size.Width, box.Width), min(size.Height, box.Height))
	} else {
		working = size.Scale(math.Max(widthRatio, heightRatio))
	}

	at := domain.Point{
		X: max(0, int(math.Round(float64(working.Width-box.Width)/2))),
		Y: max(0, int(math.Round(float64(working.Height-box.Height)/2))),
	}
	return newPlan(size, working, at, crop)
}

func newPlan(size, working domain.Box, at domain.Point, crop domain.Box) Plan {
	p := Plan{Result: crop}
	if working != size {
		p.Scale = working
	}
	if crop != working {
		p.CropAt = at
		p.Crop = crop
	}
	return p
}

// Thumbnail applies PlanThumbnail to img.
func Thumbnail(img Image, box domain.Box, mode domain.ResizeMode, upscale bool) Image {
	return Apply(img, PlanThumbnail(img.Size(), box, mode, upscale))
}

// Apply runs the steps of p on img.
func Apply(img Image, p Plan) Image {
	if !p.Scale.IsZero() {
		img = img.Resize(p.Scale)
	}
	if !p.Crop.IsZero() {
		img = img.Crop(p.CropAt, p.Crop)
	}
	return img
}
