// Package domain contains core business types and interfaces.
//
// This file defines thumbnail formats: the immutable settings a resizer
// consumes and the ordered registry they are looked up in.
package domain

import (
	"fmt"
	"maps"
	"strings"
)

// =============================================================================
// Resize Mode
// =============================================================================

// ResizeMode selects how an image is fitted into a target box.
type ResizeMode string

const (
	// ResizeModeInset fits the whole image inside the box. The result may be
	// smaller than the box in one dimension.
	ResizeModeInset ResizeMode = "inset"

	// ResizeModeOutbound covers the whole box and crops the overflow.
	ResizeModeOutbound ResizeMode = "outbound"
)

// String returns the string representation of the mode.
func (m ResizeMode) String() string {
	return string(m)
}

// IsValid returns true if the mode is a recognized value.
func (m ResizeMode) IsValid() bool {
	switch m {
	case ResizeModeInset, ResizeModeOutbound:
		return true
	}
	return false
}

// ParseResizeMode converts a configuration string into a ResizeMode.
func ParseResizeMode(s string) (ResizeMode, error) {
	m := ResizeMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", InvalidMode("domain.parse_resize_mode", ResizeMode(s))
	}
	return m, nil
}

// =============================================================================
// Format
// =============================================================================

const (
	// FormatReference names the original, unmodified media file.
	FormatReference = "reference"

	// FormatAdmin is generated for every media regardless of its context.
	FormatAdmin = "admin"

	// FormatAll selects every registered format on delete.
	FormatAll = "all"

	// DefaultQuality is used when a format does not set a quality.
	DefaultQuality = 80
)

// FormatOptions is the mutable input used to build a Format.
type FormatOptions struct {
	Width          int // 0 means unset
	Height         int // 0 means unset
	Quality        int
	Format         string // output extension, empty keeps the media extension
	Mode           string
	Resizer        string
	ResizerOptions map[string]string
	Constraint     *bool
}

// Format is the immutable settings value of one named thumbnail format.
// Build it with NewFormat; copies are safe to share.
type Format struct {
	name           string
	width          int
	height         int
	quality        int
	extension      string
	mode           ResizeMode
	resizer        string
	resizerOptions map[string]string
	constraint     bool
}

// NewFormat validates opts and returns the Format registered under name.
func NewFormat(name string, opts FormatOptions) (Format, error) {
	const op = "domain.new_format"

	if name == "" {
		return Format{}, Invalid(op, "format name is required")
	}
	if opts.Width < 0 || opts.Height < 0 {
		return Format{}, Invalid(op, fmt.Sprintf("format %q has negative dimensions", name))
	}
	if opts.Width == 0 && opts.Height == 0 {
		return Format{}, MissingDimensions(op)
	}
	if opts.Quality < 0 || opts.Quality > 100 {
		return Format{}, Invalid(op, fmt.Sprintf("format %q quality must be between 0 and 100", name))
	}

	f := Format{
		name:           name,
		width:          opts.Width,
		height:         opts.Height,
		quality:        opts.Quality,
		extension:      strings.TrimPrefix(strings.ToLower(opts.Format), "."),
		resizer:        opts.Resizer,
		resizerOptions: maps.Clone(opts.ResizerOptions),
		constraint:     true,
	}
	if f.quality == 0 {
		f.quality = DefaultQuality
	}
	if opts.Constraint != nil {
		f.constraint = *opts.Constraint
	}
	if opts.Mode != "" {
		mode, err := ParseResizeMode(opts.Mode)
		if err != nil {
			return Format{}, err
		}
		f.mode = mode
	}

	return f, nil
}

// Name returns the registry name, including the context prefix.
func (f Format) Name() string { return f.name }

// Width returns the requested width and whether it was set.
func (f Format) Width() (int, bool) { return f.width, f.width > 0 }

// Height returns the requested height and whether it was set.
func (f Format) Height() (int, bool) { return f.height, f.height > 0 }

// Quality returns the encoder quality in the range 1..100.
func (f Format) Quality() int { return f.quality }

// Extension returns the output extension, or "" to keep the media's own.
func (f Format) Extension() string { return f.extension }

// Mode returns the resize mode override, or "" for the resizer default.
func (f Format) Mode() ResizeMode { return f.mode }

// Resizer returns the resizer id override, or "" for the provider default.
func (f Format) Resizer() string { return f.resizer }

// Constraint reports whether the no-upscale guard applies.
func (f Format) Constraint() bool { return f.constraint }

// Option returns a resizer option.
func (f Format) Option(key string) (string, bool) {
	v, ok := f.resizerOptions[key]
	return v, ok
}

// WithSize returns a copy of f with the given dimensions. A zero value
// clears that dimension.
func (f Format) WithSize(width, height int) Format {
	f.width = max(width, 0)
	f.height = max(height, 0)
	return f
}

// WithMode returns a copy of f with the given resize mode.
func (f Format) WithMode(mode ResizeMode) Format {
	f.mode = mode
	return f
}

// HasContext reports whether the format belongs to the media context.
func (f Format) HasContext(context string) bool {
	return strings.HasPrefix(f.name, context)
}

// =============================================================================
// Registry
// =============================================================================

// Registry is an ordered set of formats. Iteration follows registration order.
type Registry struct {
	order   []string
	formats map[string]Format
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{formats: make(map[string]Format)}
}

// Add registers f. Registering an existing name replaces the settings but
// keeps the original position.
func (r *Registry) Add(f Format) {
	if _, exists := r.formats[f.name]; !exists {
		r.order = append(r.order, f.name)
	}
	r.formats[f.name] = f
}

// Get returns the named format.
func (r *Registry) Get(name string) (Format, bool) {
	f, ok := r.formats[name]
	return f, ok
}

// Names returns all format names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// All returns all formats in registration order.
func (r *Registry) All() []Format {
	out := make([]Format, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.formats[name])
	}
	return out
}

// Len returns the number of registered formats.
func (r *Registry) Len() int {
	return len(r.order)
}
