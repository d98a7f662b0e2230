package resizer

import (
	"context"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/raster"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/storage"
)

// Square crops the longer side of the image to a centred square when the
// format sets a height, then scales it down to the format width.
type Square struct {
	base
}

// NewSquare creates a square resizer.
func NewSquare(engine raster.Engine, metadata MetadataBuilder) *Square {
	return &Square{base: newBase(engine, metadata)}
}

// squarePlan is shared by GetBox and Resize so both agree on the result.
type squarePlan struct {
	cropAt  domain.Point
	crop    domain.Box // zero when the source is used as is
	scaleTo domain.Box // zero when no scaling happens
	result  domain.Box
}

func planSquare(src domain.Box, format domain.Format) (squarePlan, error) {
	width, ok := format.Width()
	if !ok {
		return squarePlan{}, domain.MissingDimensions("resizer.square")
	}

	var p squarePlan
	working := src

	if _, ok := format.Height(); ok {
		higher := max(src.Width, src.Height)
		lower := min(src.Width, src.Height)
		if diff := higher - lower; diff > 0 {
			if src.Width > src.Height {
				p.cropAt = domain.Point{X: diff / 2}
			} else {
				p.cropAt = domain.Point{Y: diff / 2}
			}
			p.crop = domain.NewBox(lower, lower)
			working = p.crop
		}
	}

	height := width * working.Height / working.Width
	if width < working.Width && height < working.Height {
		p.scaleTo = domain.NewBox(width, height)
		p.result = p.scaleTo
	} else {
		p.result = working
	}

	return p, nil
}

func (r *Square) GetBox(media domain.Media, format domain.Format) (domain.Box, error) {
	src, err := sourceBox("resizer.square.get_box", media)
	if err != nil {
		return domain.Box{}, err
	}
	p, err := planSquare(src, format)
	if err != nil {
		return domain.Box{}, err
	}
	return p.result, nil
}

func (r *Square) Resize(ctx context.Context, media domain.Media, in []byte, out *storage.Object, ext string, format domain.Format) error {
	img, err := r.engine.Load(in)
	if err != nil {
		return err
	}
	if img.Size().IsZero() {
		return domain.Invalid("resizer.square.resize", "reference image is empty")
	}

	p, err := planSquare(img.Size(), format)
	if err != nil {
		return err
	}

	if !p.crop.IsZero() {
		img = img.Crop(p.cropAt, p.crop)
	}
	if !p.scaleTo.IsZero() {
		// The working image strictly contains the target, so outbound
		// yields exactly scaleTo.
		img = raster.Thumbnail(img, p.scaleTo, domain.ResizeModeOutbound, false)
	}

	return r.write(ctx, media, img, out, ext, format.Quality())
}
