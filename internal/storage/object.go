package storage

import (
	"bytes"
	"context"
	"io"
)

// Object is a handle on a single key of a Storage. Resizers receive one as
// their output sink and providers hand one out for the reference image.
type Object struct {
	store Storage
	key   string
}

// NewObject returns a handle on key. No I/O is performed.
func NewObject(store Storage, key string) *Object {
	return &Object{store: store, key: key}
}

// Key returns the storage key.
func (o *Object) Key() string {
	return o.key
}

// Exists reports whether the object is present.
func (o *Object) Exists(ctx context.Context) (bool, error) {
	return o.store.Exists(ctx, o.key)
}

// Read returns the full content of the object.
func (o *Object) Read(ctx context.Context) ([]byte, error) {
	rc, _, err := o.store.Get(ctx, o.key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &StorageError{Op: "Read", Key: o.key, Err: err}
	}
	return data, nil
}

// Write replaces the content of the object.
func (o *Object) Write(ctx context.Context, data []byte, opts PutOptions) error {
	opts.Overwrite = true
	return o.store.Put(ctx, o.key, bytes.NewReader(data), opts)
}

// Delete removes the object. Deleting a missing object is not an error.
func (o *Object) Delete(ctx context.Context) error {
	return o.store.Delete(ctx, o.key)
}
