package resizer

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/raster/mock"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/storage"
)

// =============================================================================
// Helpers
// =============================================================================

func newOutput(t *testing.T) *storage.Object {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir()}, logger)
	require.NoError(t, err)
	return storage.NewObject(s, "default/0001/01/thumb_1_default_small.jpg")
}

// written returns the size the mock engine encoded into out.
func written(t *testing.T, out *storage.Object) string {
	t.Helper()
	data, err := out.Read(context.Background())
	require.NoError(t, err)
	return string(data)
}

func format(t *testing.T, opts domain.FormatOptions) domain.Format {
	t.Helper()
	f, err := domain.NewFormat("default_small", opts)
	require.NoError(t, err)
	return f
}

func media(width, height int) domain.Media {
	return domain.Media{ID: "1", Context: "default", ProviderReference: "ref.jpg", Width: width, Height: height}
}

// =============================================================================
// Simple
// =============================================================================

func TestSimple_Resize(t *testing.T) {
	tests := []struct {
		name    string
		src     [2]int
		mode    domain.ResizeMode
		opts    domain.FormatOptions
		wantBox domain.Box
		wantOut string
		wantOps []string
	}{
		{
			name:    "inset fit",
			src:     [2]int{800, 200},
			mode:    domain.ResizeModeInset,
			opts:    domain.FormatOptions{Width: 400},
			wantBox: domain.NewBox(400, 100),
			wantOut: "400x100",
			wantOps: []string{"load 800x200", "resize 400x100", "encode jpg q80"},
		},
		{
			name:    "outbound cover",
			src:     [2]int{567, 50},
			mode:    domain.ResizeModeOutbound,
			opts:    domain.FormatOptions{Width: 90},
			wantBox: domain.NewBox(90, 8),
			wantOut: "90x8",
			wantOps: []string{"load 567x50", "resize 91x8", "crop 1,0 90x8", "encode jpg q80"},
		},
		{
			name:    "height only",
			src:     [2]int{800, 200},
			mode:    domain.ResizeModeInset,
			opts:    domain.FormatOptions{Height: 50, Quality: 60},
			wantBox: domain.NewBox(200, 50),
			wantOut: "200x50",
			wantOps: []string{"load 800x200", "resize 200x50", "encode jpg q60"},
		},
		{
			name:    "format mode overrides resizer mode",
			src:     [2]int{567, 50},
			mode:    domain.ResizeModeInset,
			opts:    domain.FormatOptions{Width: 90, Mode: "outbound"},
			wantBox: domain.NewBox(90, 8),
			wantOut: "90x8",
			wantOps: []string{"load 567x50", "resize 91x8", "crop 1,0 90x8", "encode jpg q80"},
		},
		{
			name:    "no upscale",
			src:     [2]int{50, 50},
			mode:    domain.ResizeModeOutbound,
			opts:    domain.FormatOptions{Width: 90, Height: 90},
			wantBox: domain.NewBox(90, 90),
			wantOut: "50x50",
			wantOps: []string{"load 50x50", "encode jpg q80"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := mock.New(tt.src[0], tt.src[1])
			r := NewSimple(engine, tt.mode, nil)
			f := format(t, tt.opts)
			m := media(tt.src[0], tt.src[1])

			box, err := r.GetBox(m, f)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBox, box)

			out := newOutput(t)
			require.NoError(t, r.Resize(context.Background(), m, []byte("ref"), out, "jpg", f))
			assert.Equal(t, tt.wantOut, written(t, out))
			assert.Equal(t, tt.wantOps, engine.Ops())
		})
	}
}

func TestSimple_UpscaleWhenUnconstrained(t *testing.T) {
	engine := mock.New(50, 50)
	r := NewSimple(engine, domain.ResizeModeInset, nil)
	unconstrained := false
	f := format(t, domain.FormatOptions{Width: 90, Height: 90, Constraint: &unconstrained})

	out := newOutput(t)
	require.NoError(t, r.Resize(context.Background(), media(50, 50), []byte("ref"), out, "png", f))
	assert.Equal(t, "90x90", written(t, out))
}

func TestSimple_Errors(t *testing.T) {
	f := format(t, domain.FormatOptions{Width: 100})

	t.Run("invalid mode", func(t *testing.T) {
		r := NewSimple(mock.New(10, 10), domain.ResizeMode("stretch"), nil)
		_, err := r.GetBox(media(10, 10), f)
		assert.True(t, domain.IsInvalidMode(err))

		err = r.Resize(context.Background(), media(10, 10), []byte("ref"), newOutput(t), "jpg", f)
		assert.True(t, domain.IsInvalidMode(err))
	})

	t.Run("missing dimensions", func(t *testing.T) {
		r := NewSimple(mock.New(10, 10), domain.ResizeModeInset, nil)
		_, err := r.GetBox(media(10, 10), f.WithSize(0, 0))
		assert.True(t, domain.IsMissingDimensions(err))
	})

	t.Run("media without dimensions", func(t *testing.T) {
		r := NewSimple(mock.New(10, 10), domain.ResizeModeInset, nil)
		_, err := r.GetBox(media(0, 0), f)
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	})

	t.Run("decode failure propagates", func(t *testing.T) {
		engine := mock.New(10, 10)
		engine.LoadError = io.ErrUnexpectedEOF
		r := NewSimple(engine, domain.ResizeModeInset, nil)
		err := r.Resize(context.Background(), media(10, 10), []byte("ref"), newOutput(t), "jpg", f)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}

// =============================================================================
// Square
// =============================================================================

func TestSquare_Resize(t *testing.T) {
	tests := []struct {
		name    string
		src     [2]int
		opts    domain.FormatOptions
		want    string
		wantOps []string
	}{
		{
			name:    "portrait is cropped to a centred square",
			src:     [2]int{100, 120},
			opts:    domain.FormatOptions{Width: 90, Height: 90},
			want:    "90x90",
			wantOps: []string{"load 100x120", "crop 0,10 100x100", "resize 90x90", "encode jpg q80"},
		},
		{
			name:    "landscape is cropped to a centred square",
			src:     [2]int{160, 100},
			opts:    domain.FormatOptions{Width: 50, Height: 50},
			want:    "50x50",
			wantOps: []string{"load 160x100", "crop 30,0 100x100", "resize 50x50", "encode jpg q80"},
		},
		{
			name:    "no upscale",
			src:     [2]int{50, 50},
			opts:    domain.FormatOptions{Width: 90, Height: 90},
			want:    "50x50",
			wantOps: []string{"load 50x50", "encode jpg q80"},
		},
		{
			name:    "without height the aspect ratio is kept",
			src:     [2]int{100, 120},
			opts:    domain.FormatOptions{Width: 50},
			want:    "50x60",
			wantOps: []string{"load 100x120", "resize 50x60", "encode jpg q80"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := mock.New(tt.src[0], tt.src[1])
			r := NewSquare(engine, nil)
			f := format(t, tt.opts)
			m := media(tt.src[0], tt.src[1])

			out := newOutput(t)
			require.NoError(t, r.Resize(context.Background(), m, []byte("ref"), out, "jpg", f))
			assert.Equal(t, tt.want, written(t, out))
			assert.Equal(t, tt.wantOps, engine.Ops())

			box, err := r.GetBox(m, f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, box.String())
		})
	}
}

func TestSquare_RequiresWidth(t *testing.T) {
	r := NewSquare(mock.New(10, 10), nil)
	_, err := r.GetBox(media(10, 10), format(t, domain.FormatOptions{Height: 10}))
	assert.True(t, domain.IsMissingDimensions(err))
}

// =============================================================================
// Crop
// =============================================================================

func TestCrop_Resize(t *testing.T) {
	tests := []struct {
		name    string
		src     [2]int
		opts    domain.FormatOptions
		want    string
		wantOps []string
	}{
		{
			name:    "scales then crops to the exact box",
			src:     [2]int{800, 200},
			opts:    domain.FormatOptions{Width: 600, Height: 100},
			want:    "600x100",
			wantOps: []string{"load 800x200", "resize 600x150", "crop 0,25 600x100", "encode jpg q80"},
		},
		{
			name:    "scale is skipped when the width already matches",
			src:     [2]int{800, 200},
			opts:    domain.FormatOptions{Width: 800, Height: 100},
			want:    "800x100",
			wantOps: []string{"load 800x200", "crop 0,50 800x100", "encode jpg q80"},
		},
		{
			name:    "tall source is centred vertically",
			src:     [2]int{200, 800},
			opts:    domain.FormatOptions{Width: 100, Height: 100},
			want:    "100x100",
			wantOps: []string{"load 200x800", "resize 100x400", "crop 0,150 100x100", "encode jpg q80"},
		},
		{
			name:    "small source is clamped, not enlarged",
			src:     [2]int{50, 200},
			opts:    domain.FormatOptions{Width: 100, Height: 100},
			want:    "50x100",
			wantOps: []string{"load 50x200", "crop 0,50 50x100", "encode jpg q80"},
		},
		{
			name:    "without height an inset thumbnail is made",
			src:     [2]int{800, 200},
			opts:    domain.FormatOptions{Width: 400},
			want:    "400x100",
			wantOps: []string{"load 800x200", "resize 400x100", "encode jpg q80"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := mock.New(tt.src[0], tt.src[1])
			r := NewCrop(engine, nil)
			f := format(t, tt.opts)
			m := media(tt.src[0], tt.src[1])

			out := newOutput(t)
			require.NoError(t, r.Resize(context.Background(), m, []byte("ref"), out, "jpg", f))
			assert.Equal(t, tt.want, written(t, out))
			assert.Equal(t, tt.wantOps, engine.Ops())

			box, err := r.GetBox(m, f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, box.String())
		})
	}
}

func TestCrop_RequiresWidth(t *testing.T) {
	r := NewCrop(mock.New(10, 10), nil)
	_, err := r.GetBox(media(10, 10), format(t, domain.FormatOptions{Height: 10}))
	assert.True(t, domain.IsMissingDimensions(err))
}

func TestCropPoint(t *testing.T) {
	tests := []struct {
		name     string
		covering domain.Box
		target   domain.Box
		legacy   bool
		want     domain.Point
	}{
		{name: "same height", covering: domain.NewBox(700, 100), target: domain.NewBox(600, 100), want: domain.Point{X: 50}},
		{name: "same width", covering: domain.NewBox(600, 150), target: domain.NewBox(600, 100), want: domain.Point{Y: 25}},
		{name: "both larger", covering: domain.NewBox(610, 120), target: domain.NewBox(600, 100), want: domain.Point{X: 5, Y: 10}},
		{name: "both larger legacy", covering: domain.NewBox(610, 120), target: domain.NewBox(600, 100), legacy: true, want: domain.Point{X: 10, Y: 5}},
		{name: "same height legacy is unaffected", covering: domain.NewBox(700, 100), target: domain.NewBox(600, 100), legacy: true, want: domain.Point{X: 50}},
		{name: "identical", covering: domain.NewBox(600, 100), target: domain.NewBox(600, 100), want: domain.Point{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cropPoint(tt.covering, tt.target, tt.legacy))
		})
	}
}

func TestCrop_LegacyOffsetOption(t *testing.T) {
	on := format(t, domain.FormatOptions{Width: 10, Height: 10, ResizerOptions: map[string]string{OptionLegacyCropOffset: "true"}})
	off := format(t, domain.FormatOptions{Width: 10, Height: 10, ResizerOptions: map[string]string{OptionLegacyCropOffset: "nope"}})

	assert.True(t, legacyOffset(on))
	assert.False(t, legacyOffset(off))
	assert.False(t, legacyOffset(format(t, domain.FormatOptions{Width: 10})))
}

// =============================================================================
// getBox/resize agreement
// =============================================================================

func TestGetBoxMatchesResize(t *testing.T) {
	sources := [][2]int{{800, 200}, {200, 800}, {100, 120}, {50, 50}, {1001, 333}, {567, 50}, {640, 480}}
	formats := []domain.FormatOptions{
		{Width: 90, Height: 90},
		{Width: 600, Height: 100},
		{Width: 100},
		{Width: 300, Height: 200},
		{Width: 2000, Height: 1000},
	}
	resizers := map[string]func(*mock.Engine) Resizer{
		IDSquare: func(e *mock.Engine) Resizer { return NewSquare(e, nil) },
		IDCrop:   func(e *mock.Engine) Resizer { return NewCrop(e, nil) },
	}

	for id, build := range resizers {
		for _, src := range sources {
			for _, opts := range formats {
				engine := mock.New(src[0], src[1])
				r := build(engine)
				f := format(t, opts)
				m := media(src[0], src[1])

				box, err := r.GetBox(m, f)
				require.NoError(t, err)

				out := newOutput(t)
				require.NoError(t, r.Resize(context.Background(), m, []byte("ref"), out, "jpg", f))
				assert.Equal(t, box.String(), written(t, out), "%s %v %+v", id, src, opts)
			}
		}
	}
}

// =============================================================================
// Registry and metadata
// =============================================================================

func TestRegistry(t *testing.T) {
	r := NewDefaultRegistry(mock.New(10, 10), nil)

	assert.Equal(t, []string{IDCrop, IDSimple, IDSquare}, r.IDs())
	assert.True(t, r.Has(IDSquare))

	got, err := r.Get(IDCrop)
	require.NoError(t, err)
	assert.IsType(t, &Crop{}, got)

	_, err = r.Get("sonata.media.resizer.unknown")
	assert.True(t, domain.IsResizerNotFound(err))
}

func TestS3Metadata(t *testing.T) {
	b := S3Metadata{
		Public:       true,
		CacheControl: "max-age=604800",
		StorageClass: "STANDARD_IA",
		Meta:         map[string]string{"owner": "media"},
	}

	opts := b.Build(media(10, 10), "default/0001/01/thumb_1_default_small.png")
	assert.Equal(t, "image/png", opts.ContentType)
	assert.Equal(t, "max-age=604800", opts.CacheControl)
	assert.Equal(t, "STANDARD_IA", opts.StorageClass)
	assert.True(t, opts.Public)
	assert.Equal(t, map[string]string{"owner": "media", "media-id": "1"}, opts.Metadata)
	assert.NotContains(t, b.Meta, "media-id")

	plain := DefaultMetadata{}.Build(media(10, 10), "a.jpg")
	assert.Equal(t, "image/jpeg", plain.ContentType)
}
