package resizer

import (
	"maps"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/storage"
)

// MetadataBuilder supplies the storage options a derivative is written with.
type MetadataBuilder interface {
	Build(media domain.Media, filename string) storage.PutOptions
}

// DefaultMetadata only sets the content type.
type DefaultMetadata struct{}

func (DefaultMetadata) Build(media domain.Media, filename string) storage.PutOptions {
	return storage.PutOptions{ContentType: storage.DetectContentType("", filename)}
}

// S3Metadata adds the object settings used on S3-compatible buckets.
type S3Metadata struct {
	Public       bool
	CacheControl string // e.g. "max-age=604800"
	StorageClass string // e.g. "STANDARD_IA"
	Meta         map[string]string
}

func (m S3Metadata) Build(media domain.Media, filename string) storage.PutOptions {
	meta := maps.Clone(m.Meta)
	if media.HasID() {
		if meta == nil {
			meta = make(map[string]string, 1)
		}
		meta["media-id"] = media.ID
	}
	return storage.PutOptions{
		ContentType:  storage.DetectContentType("", filename),
		CacheControl: m.CacheControl,
		StorageClass: m.StorageClass,
		Metadata:     meta,
		Public:       m.Public,
	}
}
