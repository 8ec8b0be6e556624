package postgres

import (
	"context"
	"errors"
	"fmt"

	"marketplace-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type reportRepository struct {
	base
}

func NewReportRepository(pool *pgxpool.Pool) domain.ReportRepository {
	return &reportRepository{base{pool: pool}}
}

const reportColumns = `id, seller_id, reporter_id, reason, status, reject_reason, version, created_at, updated_at`

func scanReport(row pgx.Row) (*domain.Report, error) {
	var rp domain.Report
	var status string
	if err := row.Scan(&rp.ID, &rp.SellerID, &rp.ReporterID, &rp.Reason, &status, &rp.RejectReason,
		&rp.Version, &rp.CreatedAt, &rp.UpdatedAt); err != nil {
		return nil, err
	}
	rp.Status = domain.ReportStatus(status)
	return &rp, nil
}

func (r *reportRepository) Create(ctx context.Context, rp *domain.Report) error {
	if rp.Status == "" {
		rp.Status = domain.ReportPending
	}
	return r.db(ctx).QueryRow(ctx, `
		INSERT INTO reports (id, seller_id, reporter_id, reason, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING version, created_at, updated_at`,
		rp.ID, rp.SellerID, rp.ReporterID, rp.Reason, string(rp.Status),
	).Scan(&rp.Version, &rp.CreatedAt, &rp.UpdatedAt)
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	rp, err := scanReport(r.db(ctx).QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id))
	return rp, notFound(err)
}

func (r *reportRepository) GetAll(ctx context.Context, f domain.ReportFilter) ([]domain.Report, int64, error) {
	w := &where{}
	if f.Status != "" {
		w.add(`status = ?`, string(f.Status))
	}
	if f.SellerID != "" {
		w.add(`seller_id = ?`, f.SellerID)
	}

	var total int64
	if err := r.db(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM reports`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	p := domain.NewPagination(f.Page, f.Limit, total)
	limit, offset := w.next(p.Limit), w.next(p.Offset())
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+reportColumns+` FROM reports`+w.String()+` ORDER BY created_at DESC, id LIMIT `+limit+` OFFSET `+offset,
		w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []domain.Report
	for rows.Next() {
		rp, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *rp)
	}
	return out, total, rows.Err()
}

func (r *reportRepository) UpdateStatus(ctx context.Context, id string, expectedVersion int64, status domain.ReportStatus, rejectReason *string) (int64, error) {
	var v int64
	err := r.db(ctx).QueryRow(ctx, `
		UPDATE reports SET status = $3, reject_reason = $4, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING version`,
		id, expectedVersion, string(status), rejectReason,
	).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, r.casMiss(ctx, "reports", id)
	}
	return v, err
}

func (r *reportRepository) AddEvidence(ctx context.Context, e *domain.Evidence) error {
	files, urls := e.Files, e.URLs
	if files == nil {
		files = []string{}
	}
	if urls == nil {
		urls = []string{}
	}
	return r.db(ctx).QueryRow(ctx, `
		INSERT INTO report_evidence (id, report_id, submitted_by, note, files, urls)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		e.ID, e.ReportID, e.SubmittedBy, e.Note, files, urls,
	).Scan(&e.CreatedAt)
}

func (r *reportRepository) GetEvidence(ctx context.Context, reportID string) ([]domain.Evidence, error) {
	rows, err := r.db(ctx).Query(ctx, `
		SELECT id, report_id, submitted_by, note, files, urls, created_at
		FROM report_evidence WHERE report_id = $1 ORDER BY created_at`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Evidence{}
	for rows.Next() {
		var e domain.Evidence
		if err := rows.Scan(&e.ID, &e.ReportID, &e.SubmittedBy, &e.Note, &e.Files, &e.URLs, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
