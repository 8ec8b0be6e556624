package postgres

import (
	"context"

	"marketplace-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type historyRepository struct {
	base
}

func NewHistoryRepository(pool *pgxpool.Pool) domain.HistoryRepository {
	return &historyRepository{base{pool: pool}}
}

func (r *historyRepository) Create(ctx context.Context, h *domain.StatusHistory) error {
	return r.db(ctx).QueryRow(ctx, `
		INSERT INTO status_history (id, entity, entity_id, from_status, to_status, action, reason, actor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		h.ID, h.Entity, h.EntityID, h.FromStatus, h.ToStatus, h.Action, h.Reason, h.ActorID,
	).Scan(&h.CreatedAt)
}

func (r *historyRepository) List(ctx context.Context, entity, entityID string) ([]domain.StatusHistory, error) {
	rows, err := r.db(ctx).Query(ctx, `
		SELECT id, entity, entity_id, from_status, to_status, action, reason, actor_id, created_at
		FROM status_history WHERE entity = $1 AND entity_id = $2 ORDER BY created_at`, entity, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.StatusHistory{}
	for rows.Next() {
		var h domain.StatusHistory
		if err := rows.Scan(&h.ID, &h.Entity, &h.EntityID, &h.FromStatus, &h.ToStatus, &h.Action,
			&h.Reason, &h.ActorID, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
