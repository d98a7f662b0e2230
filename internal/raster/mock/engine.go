package mock

import (
	"fmt"
	"io"
	"sync"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/raster"
)

// Engine is a raster engine that tracks geometry without pixels.
type Engine struct {
	// Size is the size of every loaded image. When zero, the size is parsed
	// from the loaded bytes in the form "WxH".
	Size domain.Box

	// Configurable failures for testing
	LoadError   error
	EncodeError error

	mu  sync.Mutex
	ops []string
}

// New creates a mock engine returning images of the given size.
func New(width, height int) *Engine {
	return &Engine{Size: domain.NewBox(width, height)}
}

// Load returns an Image of the configured size.
func (e *Engine) Load(data []byte) (raster.Image, error) {
	if e.LoadError != nil {
		return nil, e.LoadError
	}
	size := e.Size
	if size.IsZero() {
		if _, err := fmt.Sscanf(string(data), "%dx%d", &size.Width, &size.Height); err != nil {
			return nil, fmt.Errorf("mock: cannot parse size from %q", data)
		}
	}
	e.record("load " + size.String())
	return &Image{engine: e, size: size}, nil
}

// Ops returns the recorded operations in call order.
func (e *Engine) Ops() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.ops...)
}

// Reset clears the recorded operations.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ops = nil
}

func (e *Engine) record(op string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ops = append(e.ops, op)
}

// Image is a pixel-less image. Encode writes its size as "WxH".
type Image struct {
	engine *Engine
	size   domain.Box
}

func (i *Image) Size() domain.Box { return i.size }

func (i *Image) Resize(box domain.Box) raster.Image {
	i.engine.record("resize " + box.String())
	return &Image{engine: i.engine, size: box}
}

func (i *Image) Crop(at domain.Point, box domain.Box) raster.Image {
	i.engine.record(fmt.Sprintf("crop %d,%d %s", at.X, at.Y, box))
	size := domain.NewBox(
		min(box.Width, i.size.Width-at.X),
		min(box.Height, i.size.Height-at.Y),
	)
	return &Image{engine: i.engine, size: size}
}

func (i *Image) Encode(w io.Writer, ext string, quality int) error {
	if i.engine.EncodeError != nil {
		return i.engine.EncodeError
	}
	i.engine.record(fmt.Sprintf("encode %s q%d", ext, quality))
	_, err := io.WriteString(w, i.size.String())
	return err
}
