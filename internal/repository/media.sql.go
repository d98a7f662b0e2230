package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
)

const getMedia = `
SELECT id, context, provider_name, provider_reference, width, height,
       content_type, cdn_status, created_at, updated_at
FROM media
WHERE id = $1`

func (q *Queries) GetMedia(ctx context.Context, id string) (Media, error) {
	row := q.db.QueryRowContext(ctx, getMedia, id)
	var i Media
	err := row.Scan(
		&i.ID,
		&i.Context,
		&i.ProviderName,
		&i.ProviderReference,
		&i.Width,
		&i.Height,
		&i.ContentType,
		&i.CdnStatus,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

// FindMedia returns the media as the thumbnail engine sees it.
func (q *Queries) FindMedia(ctx context.Context, id string) (domain.Media, error) {
	row, err := q.GetMedia(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Media{}, domain.NotFound("repository.find_media", "media", id)
		}
		return domain.Media{}, domain.Internal(err, "repository.find_media", "failed to load media")
	}
	return row.ToDomain(), nil
}

// ToDomain converts the row into a domain.Media.
func (m Media) ToDomain() domain.Media {
	return domain.Media{
		ID:                m.ID,
		Context:           m.Context,
		ProviderName:      m.ProviderName,
		ProviderReference: m.ProviderReference,
		Width:             int(m.Width.Int32),
		Height:            int(m.Height.Int32),
		ContentType:       m.ContentType.String,
		CDNStatus:         domain.CDNStatus(m.CdnStatus.String),
	}
}
