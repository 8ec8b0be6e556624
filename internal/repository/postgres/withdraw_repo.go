package postgres

import (
	"context"
	"errors"
	"fmt"

	"marketplace-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type withdrawRepository struct {
	base
}

func NewWithdrawRepository(pool *pgxpool.Pool) domain.WithdrawRepository {
	return &withdrawRepository{base{pool: pool}}
}

const withdrawColumns = `id, requester_id, requester_role, amount::text, bank_name, bank_bin, bank_account, account_holder,
	status, cancel_reason, proof_url, version, created_at, updated_at`

func scanWithdraw(row pgx.Row) (*domain.WithdrawRequest, error) {
	var w domain.WithdrawRequest
	var amount, status string
	if err := row.Scan(&w.ID, &w.RequesterID, &w.RequesterRole, &amount, &w.BankName, &w.BankBin, &w.BankAccount,
		&w.AccountHolder, &status, &w.CancelReason, &w.ProofURL, &w.Version, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	w.Status = domain.WithdrawStatus(status)
	var err error
	if w.Amount, err = parseMoney(amount); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *withdrawRepository) Create(ctx context.Context, w *domain.WithdrawRequest) error {
	if w.Status == "" {
		w.Status = domain.WithdrawPending
	}
	return r.db(ctx).QueryRow(ctx, `
		INSERT INTO withdraw_requests (id, requester_id, requester_role, amount, bank_name, bank_bin, bank_account, account_holder, status)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9)
		RETURNING version, created_at, updated_at`,
		w.ID, w.RequesterID, w.RequesterRole, w.Amount.String(), w.BankName, w.BankBin, w.BankAccount,
		w.AccountHolder, string(w.Status),
	).Scan(&w.Version, &w.CreatedAt, &w.UpdatedAt)
}

func (r *withdrawRepository) GetByID(ctx context.Context, id string) (*domain.WithdrawRequest, error) {
	w, err := scanWithdraw(r.db(ctx).QueryRow(ctx, `SELECT `+withdrawColumns+` FROM withdraw_requests WHERE id = $1`, id))
	return w, notFound(err)
}

func (r *withdrawRepository) GetAll(ctx context.Context, f domain.WithdrawFilter) ([]domain.WithdrawRequest, int64, error) {
	w := &where{}
	if f.Status != "" {
		w.add(`status = ?`, string(f.Status))
	}
	if f.RequesterID != "" {
		w.add(`requester_id = ?`, f.RequesterID)
	}

	var total int64
	if err := r.db(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM withdraw_requests`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count withdrawals: %w", err)
	}

	p := domain.NewPagination(f.Page, f.Limit, total)
	limit, offset := w.next(p.Limit), w.next(p.Offset())
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+withdrawColumns+` FROM withdraw_requests`+w.String()+` ORDER BY created_at DESC, id LIMIT `+limit+` OFFSET `+offset,
		w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list withdrawals: %w", err)
	}
	defer rows.Close()

	var out []domain.WithdrawRequest
	for rows.Next() {
		item, err := scanWithdraw(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *item)
	}
	return out, total, rows.Err()
}

func (r *withdrawRepository) UpdateStatus(ctx context.Context, id string, expectedVersion int64, status domain.WithdrawStatus, cancelReason, proofURL *string) (int64, error) {
	var v int64
	err := r.db(ctx).QueryRow(ctx, `
		UPDATE withdraw_requests SET
			status = $3,
			cancel_reason = COALESCE($4, cancel_reason),
			proof_url = COALESCE($5, proof_url),
			version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING version`,
		id, expectedVersion, string(status), cancelReason, proofURL,
	).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, r.casMiss(ctx, "withdraw_requests", id)
	}
	return v, err
}
