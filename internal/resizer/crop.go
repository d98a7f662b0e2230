package resizer

import (
	"context"
	"math"
	"strconv"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/raster"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/storage"
)

// OptionLegacyCropOffset swaps the x and y offsets when the scaled image
// exceeds the target on both axes. Set it to "true" to reproduce crops made
// by older installations.
const OptionLegacyCropOffset = "legacy_crop_offset"

// Crop always produces exactly the format box by scaling the image to cover
// it and cropping the centre. Without a height it falls back to an inset
// thumbnail. Images smaller than the box are never enlarged; the crop is
// clamped to the image instead.
type Crop struct {
	base
}

// NewCrop creates a crop resizer.
func NewCrop(engine raster.Engine, metadata MetadataBuilder) *Crop {
	return &Crop{base: newBase(engine, metadata)}
}

type cropPlan struct {
	thumbnail *raster.Plan // inset fallback when no height is set

	scaleTo domain.Box // zero when the source already has the covering size
	cropAt  domain.Point
	crop    domain.Box
	result  domain.Box
}

func planCrop(src domain.Box, format domain.Format) (cropPlan, error) {
	width, ok := format.Width()
	if !ok {
		return cropPlan{}, domain.MissingDimensions("resizer.crop")
	}

	height, ok := format.Height()
	if !ok {
		box := domain.NewBox(width, deriveHeight(width, src))
		tp := raster.PlanThumbnail(src, box, domain.ResizeModeInset, false)
		return cropPlan{thumbnail: &tp, result: tp.Result}, nil
	}

	target := domain.NewBox(width, height)
	ratio := math.Min(
		float64(src.Height)/float64(target.Height),
		float64(src.Width)/float64(target.Width),
	)

	var p cropPlan
	covering := src
	if ratio < 1 {
		target = domain.NewBox(min(src.Width, target.Width), min(src.Height, target.Height))
	} else {
		covering = domain.NewBox(
			max(target.Width, int(math.Round(float64(src.Width)/ratio))),
			max(target.Height, int(math.Round(float64(src.Height)/ratio))),
		)
		if covering != src {
			p.scaleTo = covering
		}
	}

	p.cropAt = cropPoint(covering, target, legacyOffset(format))
	p.crop = target
	p.result = target
	return p, nil
}

// cropPoint centres target inside covering.
func cropPoint(covering, target domain.Box, legacy bool) domain.Point {
	dw := covering.Width - target.Width
	dh := covering.Height - target.Height

	switch {
	case dh == 0:
		return domain.Point{X: dw / 2}
	case dw == 0:
		return domain.Point{Y: dh / 2}
	case dw > 0 && dh > 0:
		if legacy {
			return domain.Point{X: dh / 2, Y: dw / 2}
		}
		return domain.Point{X: dw / 2, Y: dh / 2}
	default:
		return domain.Point{}
	}
}

func legacyOffset(format domain.Format) bool {
	v, ok := format.Option(OptionLegacyCropOffset)
	if !ok {
		return false
	}
	b, _ := strconv.ParseBool(v)
	return b
}

func (r *Crop) GetBox(media domain.Media, format domain.Format) (domain.Box, error) {
	src, err := sourceBox("resizer.crop.get_box", media)
	if err != nil {
		return domain.Box{}, err
	}
	p, err := planCrop(src, format)
	if err != nil {
		return domain.Box{}, err
	}
	return p.result, nil
}

func (r *Crop) Resize(ctx context.Context, media domain.Media, in []byte, out *storage.Object, ext string, format domain.Format) error {
	img, err := r.engine.Load(in)
	if err != nil {
		return err
	}
	if img.Size().IsZero() {
		return domain.Invalid("resizer.crop.resize", "reference image is empty")
	}

	p, err := planCrop(img.Size(), format)
	if err != nil {
		return err
	}

	if p.thumbnail != nil {
		img = raster.Apply(img, *p.thumbnail)
	} else {
		if !p.scaleTo.IsZero() {
			img = img.Resize(p.scaleTo)
		}
		img = img.Crop(p.cropAt, p.crop)
	}

	return r.write(ctx, media, img, out, ext, format.Quality())
}
