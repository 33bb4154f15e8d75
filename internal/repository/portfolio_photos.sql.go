package repository

import (
	"context"

	"github.com/google/uuid"
)

const portfolioPhotoColumns = `id, professional_id, storage_key, thumbnail_key, content_type, size_bytes, width, height, position, created_at`

func scanPortfolioPhoto(row interface{ Scan(...interface{}) error }) (PortfolioPhoto, error) {
	var i PortfolioPhoto
	err := row.Scan(
		&i.ID,
		&i.ProfessionalID,
		&i.StorageKey,
		&i.ThumbnailKey,
		&i.ContentType,
		&i.SizeBytes,
		&i.Width,
		&i.Height,
		&i.Position,
		&i.CreatedAt,
	)
	return i, err
}

const countPortfolioPhotos = `-- name: CountPortfolioPhotos :one
SELECT COUNT(*) FROM portfolio_photos
WHERE professional_id = $1
`

func (q *Queries) CountPortfolioPhotos(ctx context.Context, professionalID uuid.UUID) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPortfolioPhotos, professionalID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createPortfolioPhoto = `-- name: CreatePortfolioPhoto :one
INSERT INTO portfolio_photos (id, professional_id, storage_key, thumbnail_key, content_type, size_bytes, width, height, position)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
    (SELECT COALESCE(MAX(position) + 1, 0) FROM portfolio_photos WHERE professional_id = $2))
RETURNING ` + portfolioPhotoColumns + `
`

type CreatePortfolioPhotoParams struct {
	ID             uuid.UUID
	ProfessionalID uuid.UUID
	StorageKey     string
	ThumbnailKey   string
	ContentType    string
	SizeBytes      int64
	Width          int32
	Height         int32
}

func (q *Queries) CreatePortfolioPhoto(ctx context.Context, arg CreatePortfolioPhotoParams) (PortfolioPhoto, error) {
	row := q.db.QueryRowContext(ctx, createPortfolioPhoto,
		arg.ID,
		arg.ProfessionalID,
		arg.StorageKey,
		arg.ThumbnailKey,
		arg.ContentType,
		arg.SizeBytes,
		arg.Width,
		arg.Height,
	)
	return scanPortfolioPhoto(row)
}

const deletePortfolioPhoto = `-- name: DeletePortfolioPhoto :exec
DELETE FROM portfolio_photos
WHERE id = $1
`

func (q *Queries) DeletePortfolioPhoto(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, deletePortfolioPhoto, id)
	return err
}

const getPortfolioPhoto = `-- name: GetPortfolioPhoto :one
SELECT ` + portfolioPhotoColumns + ` FROM portfolio_photos
WHERE id = $1
`

func (q *Queries) GetPortfolioPhoto(ctx context.Context, id uuid.UUID) (PortfolioPhoto, error) {
	return scanPortfolioPhoto(q.db.QueryRowContext(ctx, getPortfolioPhoto, id))
}

const listPortfolioPhotos = `-- name: ListPortfolioPhotos :many
SELECT ` + portfolioPhotoColumns + ` FROM portfolio_photos
WHERE professional_id = $1
ORDER BY position ASC
`

func (q *Queries) ListPortfolioPhotos(ctx context.Context, professionalID uuid.UUID) ([]PortfolioPhoto, error) {
	rows, err := q.db.QueryContext(ctx, listPortfolioPhotos, professionalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PortfolioPhoto
	for rows.Next() {
		i, err := scanPortfolioPhoto(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
