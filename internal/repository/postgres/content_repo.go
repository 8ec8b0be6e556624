package postgres

import (
	"context"

	"marketplace-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type contentRepository struct {
	base
}

func NewContentRepository(pool *pgxpool.Pool) domain.ContentRepository {
	return &contentRepository{base{pool: pool}}
}

func (r *contentRepository) GetPage(ctx context.Context, key string) (*domain.ContentPage, error) {
	var p domain.ContentPage
	err := r.db(ctx).QueryRow(ctx,
		`SELECT key, title, body, is_active, updated_at FROM content_pages WHERE key = $1`, key,
	).Scan(&p.Key, &p.Title, &p.Body, &p.IsActive, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *contentRepository) UpsertPage(ctx context.Context, p *domain.ContentPage) error {
	return r.db(ctx).QueryRow(ctx, `
		INSERT INTO content_pages (key, title, body, is_active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET title = EXCLUDED.title, body = EXCLUDED.body,
			is_active = EXCLUDED.is_active, updated_at = now()
		RETURNING updated_at`,
		p.Key, p.Title, p.Body, p.IsActive,
	).Scan(&p.UpdatedAt)
}
