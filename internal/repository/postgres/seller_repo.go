package postgres

import (
	"context"
	"errors"
	"fmt"

	"marketplace-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type sellerRepository struct {
	base
}

func NewSellerRepository(pool *pgxpool.Pool) domain.SellerRepository {
	return &sellerRepository{base{pool: pool}}
}

const sellerColumns = `id, user_id, shop_name, email, phone, address, identity_status, id_card_front_key, id_card_back_key,
	verified, banned, reject_reason, version, created_at, updated_at`

func scanSeller(row pgx.Row) (*domain.SellerProfile, error) {
	var s domain.SellerProfile
	var identity string
	if err := row.Scan(&s.ID, &s.UserID, &s.ShopName, &s.Email, &s.Phone, &s.Address, &identity,
		&s.IDCardFrontKey, &s.IDCardBackKey, &s.Verified, &s.Banned, &s.RejectReason,
		&s.Version, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.IdentityStatus = domain.IdentityStatus(identity)
	return &s, nil
}

func (r *sellerRepository) Create(ctx context.Context, s *domain.SellerProfile) error {
	if s.IdentityStatus == "" {
		s.IdentityStatus = domain.IdentityInit
	}
	return r.db(ctx).QueryRow(ctx, `
		INSERT INTO sellers (id, user_id, shop_name, email, phone, address, identity_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING version, created_at, updated_at`,
		s.ID, s.UserID, s.ShopName, s.Email, s.Phone, s.Address, string(s.IdentityStatus),
	).Scan(&s.Version, &s.CreatedAt, &s.UpdatedAt)
}

func (r *sellerRepository) GetByID(ctx context.Context, id string) (*domain.SellerProfile, error) {
	s, err := scanSeller(r.db(ctx).QueryRow(ctx, `SELECT `+sellerColumns+` FROM sellers WHERE id = $1`, id))
	return s, notFound(err)
}

func (r *sellerRepository) GetByUserID(ctx context.Context, userID string) (*domain.SellerProfile, error) {
	s, err := scanSeller(r.db(ctx).QueryRow(ctx, `SELECT `+sellerColumns+` FROM sellers WHERE user_id = $1`, userID))
	return s, notFound(err)
}

var badgeConds = map[string]string{
	domain.BadgeBanned:   `banned`,
	domain.BadgeVerified: `NOT banned AND verified`,
	domain.BadgeRejected: `NOT banned AND NOT verified AND reject_reason IS NOT NULL`,
	domain.BadgePending:  `NOT banned AND NOT verified AND reject_reason IS NULL`,
}

func (r *sellerRepository) GetAll(ctx context.Context, f domain.SellerFilter) ([]domain.SellerProfile, int64, error) {
	w := &where{}
	if f.Search != "" {
		w.add(`(shop_name ILIKE ? OR email ILIKE ? OR phone ILIKE ?)`, likePattern(f.Search))
	}
	if cond, ok := badgeConds[f.Badge]; ok {
		w.addRaw(cond)
	}

	var total int64
	if err := r.db(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM sellers`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sellers: %w", err)
	}

	p := domain.NewPagination(f.Page, f.Limit, total)
	limit, offset := w.next(p.Limit), w.next(p.Offset())
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+sellerColumns+` FROM sellers`+w.String()+` ORDER BY created_at DESC, id LIMIT `+limit+` OFFSET `+offset,
		w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sellers: %w", err)
	}
	defer rows.Close()

	var out []domain.SellerProfile
	for rows.Next() {
		s, err := scanSeller(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *s)
	}
	return out, total, rows.Err()
}

func (r *sellerRepository) Update(ctx context.Context, id string, expectedVersion int64, u domain.SellerUpdate) (int64, error) {
	var v int64
	err := r.db(ctx).QueryRow(ctx, `
		UPDATE sellers SET
			identity_status = $3, id_card_front_key = $4, id_card_back_key = $5,
			verified = $6, banned = $7, reject_reason = $8,
			version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING version`,
		id, expectedVersion, string(u.IdentityStatus), u.IDCardFrontKey, u.IDCardBackKey,
		u.Verified, u.Banned, u.RejectReason,
	).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, r.casMiss(ctx, "sellers", id)
	}
	return v, err
}
