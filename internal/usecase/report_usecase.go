package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"marketplace-backend/internal/domain"
	"marketplace-backend/internal/workflow"
	"marketplace-backend/pkg/apperr"
	"marketplace-backend/pkg/cache"
	"marketplace-backend/pkg/logger"

	"golang.org/x/sync/errgroup"
)

type ReportUsecase struct {
	repo       domain.ReportRepository
	sellerRepo domain.SellerRepository
	history    domain.HistoryRepository
	txManager  domain.TransactionManager
	loader     *cache.Loader
	entityTTL  time.Duration
}

func NewReportUsecase(repo domain.ReportRepository, sellerRepo domain.SellerRepository, history domain.HistoryRepository,
	txManager domain.TransactionManager, loader *cache.Loader, entityTTL time.Duration) *ReportUsecase {
	return &ReportUsecase{
		repo:       repo,
		sellerRepo: sellerRepo,
		history:    history,
		txManager:  txManager,
		loader:     loader,
		entityTTL:  entityTTL,
	}
}

// CreateReport files a complaint against a seller.
func (u *ReportUsecase) CreateReport(ctx context.Context, actor *domain.User, sellerID, reason string) (*domain.Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.FieldErr("reason", workflow.MsgReasonRequired)
	}
	if _, err := u.sellerRepo.GetByID(ctx, sellerID); err != nil {
		return nil, repoErr(err, msgSellerNotFound)
	}
	r := &domain.Report{
		ID:         newID(),
		SellerID:   sellerID,
		ReporterID: actor.ID,
		Reason:     reason,
		Status:     domain.ReportPending,
	}
	if err := u.repo.Create(ctx, r); err != nil {
		return nil, apperr.Wrap(err)
	}
	return r, nil
}

func (u *ReportUsecase) GetReportByID(ctx context.Context, id string) (*domain.Report, error) {
	r, err := cache.GetOrLoad(u.loader, domain.EntityKey(domain.EntityReport, id), u.entityTTL, func() (*domain.Report, error) {
		return u.repo.GetByID(ctx, id)
	})
	if err != nil {
		return nil, repoErr(err, msgReportNotFound)
	}
	return r, nil
}

func (u *ReportUsecase) ListReports(ctx context.Context, f domain.ReportFilter) ([]domain.Report, domain.Pagination, error) {
	f.Page, f.Limit = clampPage(f.Page, f.Limit, 100)
	items, total, err := u.repo.GetAll(ctx, f)
	if err != nil {
		return nil, domain.Pagination{}, apperr.Wrap(err)
	}
	if items == nil {
		items = []domain.Report{}
	}
	return items, domain.NewPagination(f.Page, f.Limit, total), nil
}

// Apply handles accept/approve and reject for the workflow engine.
func (u *ReportUsecase) Apply(ctx context.Context, a domain.Action) (*domain.Transition, error) {
	r, err := u.repo.GetByID(ctx, a.EntityID)
	if err != nil {
		return nil, repoErr(err, msgReportNotFound)
	}
	if err := workflow.CheckVersion(a, r.Version); err != nil {
		return nil, err
	}
	from := string(r.Status)
	if !workflow.IsAllowed(domain.EntityReport, from, a.Kind) {
		return nil, workflow.Disallowed(domain.EntityReport, from, a.Kind)
	}

	to := domain.ReportAccepted
	var rejectReason *string
	if a.Kind == domain.ActionReject {
		to = domain.ReportRejected
		rejectReason = strPtr(strings.TrimSpace(a.Reason))
	}

	var version int64
	err = u.txManager.Do(ctx, func(ctx context.Context) error {
		v, err := u.repo.UpdateStatus(ctx, r.ID, r.Version, to, rejectReason)
		if err != nil {
			return err
		}
		version = v
		return u.history.Create(ctx, history(domain.EntityReport, r.ID, from, string(to), a))
	})
	if err != nil {
		return nil, repoErr(err, msgReportNotFound)
	}

	return &domain.Transition{
		Entity:   domain.EntityReport,
		EntityID: r.ID,
		Action:   a.Kind,
		From:     from,
		To:       string(to),
		Version:  version,
		Reason:   strings.TrimSpace(a.Reason),
		ActorID:  a.ActorID,
		Related:  []string{evidenceKey(r.ID), queueKey},
	}, nil
}

func evidenceKey(reportID string) string { return "evidence:" + reportID }

// canParticipate is true for admins, the reporter, and the reported seller.
func (u *ReportUsecase) canParticipate(ctx context.Context, actor *domain.User, r *domain.Report) (bool, error) {
	if actor.IsAdmin() || actor.ID == r.ReporterID {
		return true, nil
	}
	if actor.Role != domain.RoleSeller {
		return false, nil
	}
	s, err := u.sellerRepo.GetByUserID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return s.ID == r.SellerID, nil
}

// PostEvidence attaches files, links or a note to a pending report.
func (u *ReportUsecase) PostEvidence(ctx context.Context, actor *domain.User, reportID string, e domain.Evidence) (*domain.Evidence, error) {
	e.Note = strings.TrimSpace(e.Note)
	e.Files = compact(e.Files)
	e.URLs = compact(e.URLs)
	if e.IsEmpty() {
		return nil, apperr.InvalidErr("Vui lòng cung cấp ít nhất một bằng chứng", map[string]string{
			"evidence": "Cần tệp đính kèm, đường dẫn hoặc ghi chú",
		})
	}

	r, err := u.repo.GetByID(ctx, reportID)
	if err != nil {
		return nil, repoErr(err, msgReportNotFound)
	}
	ok, err := u.canParticipate(ctx, actor, r)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	if !ok {
		return nil, apperr.ForbiddenErr(msgForbidden)
	}
	if r.Status != domain.ReportPending {
		return nil, apperr.ConflictErr("Báo cáo đã được xử lý, không thể bổ sung bằng chứng")
	}

	e.ID = newID()
	e.ReportID = r.ID
	e.SubmittedBy = actor.ID
	if err := u.repo.AddEvidence(ctx, &e); err != nil {
		return nil, apperr.Wrap(err)
	}
	u.loader.Cache().Delete(evidenceKey(r.ID))

	logger.WithContext(ctx).Info().Str("report_id", r.ID).Int("files", len(e.Files)).Int("urls", len(e.URLs)).Msg("Evidence submitted")
	return &e, nil
}

// GetEvidence loads the report and its evidence concurrently.
func (u *ReportUsecase) GetEvidence(ctx context.Context, reportID string) ([]domain.Evidence, error) {
	var evidence []domain.Evidence
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := u.GetReportByID(gctx, reportID)
		return err
	})
	g.Go(func() error {
		var err error
		evidence, err = cache.GetOrLoad(u.loader, evidenceKey(reportID), u.entityTTL, func() ([]domain.Evidence, error) {
			return u.repo.GetEvidence(gctx, reportID)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, repoErr(err, msgReportNotFound)
	}
	if evidence == nil {
		evidence = []domain.Evidence{}
	}
	return evidence, nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
