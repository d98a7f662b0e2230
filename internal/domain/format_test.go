package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormat(t *testing.T) {
	noConstraint := false

	tests := []struct {
		name    string
		format  string
		opts    FormatOptions
		wantErr error
		check   func(t *testing.T, f Format)
	}{
		{
			name:   "defaults",
			format: "default_small",
			opts:   FormatOptions{Width: 100},
			check: func(t *testing.T, f Format) {
				w, ok := f.Width()
				assert.True(t, ok)
				assert.Equal(t, 100, w)
				_, ok = f.Height()
				assert.False(t, ok)
				assert.Equal(t, DefaultQuality, f.Quality())
				assert.True(t, f.Constraint())
				assert.Equal(t, ResizeMode(""), f.Mode())
			},
		},
		{
			name:   "explicit settings",
			format: "news_big",
			opts: FormatOptions{
				Width: 500, Height: 300, Quality: 90, Format: ".PNG",
				Mode: "Outbound", Resizer: "crop", Constraint: &noConstraint,
				ResizerOptions: map[string]string{"legacy_crop_offset": "true"},
			},
			check: func(t *testing.T, f Format) {
				assert.Equal(t, "png", f.Extension())
				assert.Equal(t, ResizeModeOutbound, f.Mode())
				assert.Equal(t, "crop", f.Resizer())
				assert.False(t, f.Constraint())
				v, ok := f.Option("legacy_crop_offset")
				assert.True(t, ok)
				assert.Equal(t, "true", v)
			},
		},
		{
			name:    "missing dimensions",
			format:  "default_small",
			opts:    FormatOptions{Quality: 70},
			wantErr: ErrMissingDimensions,
		},
		{
			name:    "invalid mode",
			format:  "default_small",
			opts:    FormatOptions{Width: 10, Mode: "stretch"},
			wantErr: ErrInvalidMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFormat(tt.format, tt.opts)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, EINVALID, ErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.format, f.Name())
			tt.check(t, f)
		})
	}
}

func TestFormat_IsImmutable(t *testing.T) {
	opts := map[string]string{"k": "v"}
	f, err := NewFormat("default_small", FormatOptions{Width: 100, ResizerOptions: opts})
	require.NoError(t, err)

	opts["k"] = "changed"
	v, _ := f.Option("k")
	assert.Equal(t, "v", v)

	g := f.WithSize(50, 0)
	w, _ := f.Width()
	assert.Equal(t, 100, w)
	w, _ = g.Width()
	assert.Equal(t, 50, w)
}

func TestRegistry_KeepsRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"default_small", FormatAdmin, "default_big"} {
		f, err := NewFormat(name, FormatOptions{Width: 10})
		require.NoError(t, err)
		r.Add(f)
	}

	replaced, err := NewFormat("default_small", FormatOptions{Width: 20})
	require.NoError(t, err)
	r.Add(replaced)

	assert.Equal(t, []string{"default_small", FormatAdmin, "default_big"}, r.Names())
	assert.Equal(t, 3, r.Len())

	got, ok := r.Get("default_small")
	require.True(t, ok)
	w, _ := got.Width()
	assert.Equal(t, 20, w)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestParseResizeMode(t *testing.T) {
	m, err := ParseResizeMode(" inset ")
	require.NoError(t, err)
	assert.Equal(t, ResizeModeInset, m)

	_, err = ParseResizeMode("fill")
	assert.True(t, IsInvalidMode(err))
}
