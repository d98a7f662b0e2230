package raster

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
)

func encodedImage(t *testing.T, width, height int, format imaging.Format) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(width, height, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
	require.NoError(t, imaging.Encode(&buf, img, format))
	return buf.Bytes()
}

func TestImagingEngine_Thumbnail(t *testing.T) {
	tests := []struct {
		name string
		size domain.Box
		box  domain.Box
		mode domain.ResizeMode
		want domain.Box
	}{
		{name: "inset", size: domain.NewBox(800, 200), box: domain.NewBox(400, 100), mode: domain.ResizeModeInset, want: domain.NewBox(400, 100)},
		{name: "outbound", size: domain.NewBox(567, 50), box: domain.NewBox(90, 8), mode: domain.ResizeModeOutbound, want: domain.NewBox(90, 8)},
		{name: "no upscale", size: domain.NewBox(50, 50), box: domain.NewBox(90, 90), mode: domain.ResizeModeOutbound, want: domain.NewBox(50, 50)},
	}

	engine := NewImagingEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := engine.Load(encodedImage(t, tt.size.Width, tt.size.Height, imaging.PNG))
			require.NoError(t, err)
			assert.Equal(t, tt.size, img.Size())

			out := Thumbnail(img, tt.box, tt.mode, false)
			assert.Equal(t, tt.want, out.Size())

			var buf bytes.Buffer
			require.NoError(t, out.Encode(&buf, "jpg", 70))

			got, format, err := Dimensions(buf.Bytes())
			require.NoError(t, err)
			assert.Equal(t, "jpeg", format)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImagingEngine_Crop(t *testing.T) {
	engine := NewImagingEngine()
	img, err := engine.Load(encodedImage(t, 120, 100, imaging.PNG))
	require.NoError(t, err)

	out := img.Crop(domain.Point{X: 10, Y: 0}, domain.NewBox(100, 100))
	assert.Equal(t, domain.NewBox(100, 100), out.Size())
	assert.Equal(t, domain.NewBox(120, 100), img.Size(), "source must be left untouched")
}

func TestImagingEngine_Errors(t *testing.T) {
	engine := NewImagingEngine()

	_, err := engine.Load([]byte("not an image"))
	assert.Error(t, err)

	img, err := engine.Load(encodedImage(t, 10, 10, imaging.GIF))
	require.NoError(t, err)

	var buf bytes.Buffer
	err = img.Encode(&buf, "webp", 80)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	require.NoError(t, img.Encode(&buf, ".png", 80))
}

func TestCanEncode(t *testing.T) {
	tests := []struct {
		ext  string
		want bool
	}{
		{ext: "jpg", want: true},
		{ext: "jpeg", want: true},
		{ext: ".png", want: true},
		{ext: "gif", want: true},
		{ext: "tiff", want: true},
		{ext: "webp", want: false},
		{ext: "svg", want: false},
		{ext: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			assert.Equal(t, tt.want, CanEncode(tt.ext))
		})
	}
}
