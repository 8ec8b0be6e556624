package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"marketplace-backend/internal/domain"
	"marketplace-backend/internal/workflow"
	"marketplace-backend/pkg/apperr"
	"marketplace-backend/pkg/cache"
	"marketplace-backend/pkg/logger"

	"github.com/go-playground/validator/v10"
)

type WithdrawUsecase struct {
	repo      domain.WithdrawRepository
	history   domain.HistoryRepository
	txManager domain.TransactionManager
	loader    *cache.Loader
	validate  *validator.Validate
	qrBaseURL string
	entityTTL time.Duration
	qrTTL     time.Duration
}

func NewWithdrawUsecase(repo domain.WithdrawRepository, history domain.HistoryRepository, txManager domain.TransactionManager,
	loader *cache.Loader, qrBaseURL string, entityTTL, qrTTL time.Duration) *WithdrawUsecase {
	return &WithdrawUsecase{
		repo:      repo,
		history:   history,
		txManager: txManager,
		loader:    loader,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		qrBaseURL: strings.TrimSuffix(qrBaseURL, "/"),
		entityTTL: entityTTL,
		qrTTL:     qrTTL,
	}
}

type CreateWithdrawReq struct {
	Amount        domain.Money `json:"amount"`
	BankName      string       `json:"bankName" validate:"required,max=100"`
	BankBin       string       `json:"bankBin" validate:"required,numeric,len=6"`
	BankAccount   string       `json:"bankAccount" validate:"required,numeric,min=6,max=20"`
	AccountHolder string       `json:"accountHolder" validate:"required,max=100"`
}

func (u *WithdrawUsecase) CreateWithdraw(ctx context.Context, actor *domain.User, req CreateWithdrawReq) (*domain.WithdrawRequest, error) {
	if err := u.validate.Struct(req); err != nil {
		return nil, validationErr(err)
	}
	if !req.Amount.IsPositive() {
		return nil, apperr.FieldErr("amount", "Số tiền rút phải lớn hơn 0")
	}

	w := &domain.WithdrawRequest{
		ID:            newID(),
		RequesterID:   actor.ID,
		RequesterRole: actor.Role,
		Amount:        req.Amount,
		BankName:      strings.TrimSpace(req.BankName),
		BankBin:       req.BankBin,
		BankAccount:   req.BankAccount,
		AccountHolder: strings.ToUpper(strings.TrimSpace(req.AccountHolder)),
		Status:        domain.WithdrawPending,
	}
	err := u.txManager.Do(ctx, func(ctx context.Context) error {
		if err := u.repo.Create(ctx, w); err != nil {
			return err
		}
		return u.history.Create(ctx, history(domain.EntityWithdrawal, w.ID, "", string(w.Status),
			domain.Action{Kind: "create", ActorID: actor.ID}))
	})
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	logger.WithContext(ctx).Info().Str("withdraw_id", w.ID).Str("amount", w.Amount.String()).Msg("Withdraw request created")
	return w, nil
}

func (u *WithdrawUsecase) GetWithdraw(ctx context.Context, id string) (*domain.WithdrawRequest, error) {
	w, err := cache.GetOrLoad(u.loader, domain.EntityKey(domain.EntityWithdrawal, id), u.entityTTL, func() (*domain.WithdrawRequest, error) {
		return u.repo.GetByID(ctx, id)
	})
	if err != nil {
		return nil, repoErr(err, msgWithdrawNotFound)
	}
	return w, nil
}

func (u *WithdrawUsecase) ListWithdraws(ctx context.Context, f domain.WithdrawFilter) ([]domain.WithdrawRequest, domain.Pagination, error) {
	f.Page, f.Limit = clampPage(f.Page, f.Limit, 100)
	items, total, err := u.repo.GetAll(ctx, f)
	if err != nil {
		return nil, domain.Pagination{}, apperr.Wrap(err)
	}
	if items == nil {
		items = []domain.WithdrawRequest{}
	}
	return items, domain.NewPagination(f.Page, f.Limit, total), nil
}

// Apply handles accept, approve (with proof) and reject for the workflow engine.
func (u *WithdrawUsecase) Apply(ctx context.Context, a domain.Action) (*domain.Transition, error) {
	w, err := u.repo.GetByID(ctx, a.EntityID)
	if err != nil {
		return nil, repoErr(err, msgWithdrawNotFound)
	}
	if err := workflow.CheckVersion(a, w.Version); err != nil {
		return nil, err
	}
	from := string(w.Status)
	if !workflow.IsAllowed(domain.EntityWithdrawal, from, a.Kind) {
		return nil, workflow.Disallowed(domain.EntityWithdrawal, from, a.Kind)
	}

	var to domain.WithdrawStatus
	var cancelReason, proofURL *string
	switch a.Kind {
	case domain.ActionAccept:
		to = domain.WithdrawApproved
	case domain.ActionApprove:
		to = domain.WithdrawCompleted
		proofURL = strPtr(strings.TrimSpace(a.ProofURL))
	case domain.ActionReject:
		to = domain.WithdrawRejected
		cancelReason = strPtr(strings.TrimSpace(a.Reason))
	}

	var version int64
	err = u.txManager.Do(ctx, func(ctx context.Context) error {
		v, err := u.repo.UpdateStatus(ctx, w.ID, w.Version, to, cancelReason, proofURL)
		if err != nil {
			return err
		}
		version = v
		return u.history.Create(ctx, history(domain.EntityWithdrawal, w.ID, from, string(to), a))
	})
	if err != nil {
		return nil, repoErr(err, msgWithdrawNotFound)
	}

	return &domain.Transition{
		Entity:   domain.EntityWithdrawal,
		EntityID: w.ID,
		Action:   a.Kind,
		From:     from,
		To:       string(to),
		Version:  version,
		Reason:   strings.TrimSpace(a.Reason),
		ActorID:  a.ActorID,
		Related:  []string{qrKey(w.ID), queueKey},
	}, nil
}

func qrKey(id string) string { return "qr:" + id }

// GetQRCode returns a VietQR image URL for paying out a non-terminal request.
func (u *WithdrawUsecase) GetQRCode(ctx context.Context, id string) (string, error) {
	w, err := u.GetWithdraw(ctx, id)
	if err != nil {
		return "", err
	}
	if w.Status.IsTerminal() {
		return "", apperr.ConflictErr("Yêu cầu đã kết thúc, không còn mã QR")
	}
	return cache.GetOrLoad(u.loader, qrKey(id), u.qrTTL, func() (string, error) {
		return VietQRURL(u.qrBaseURL, w), nil
	})
}

// VietQRURL builds the img.vietqr.io quick link for a transfer.
func VietQRURL(base string, w *domain.WithdrawRequest) string {
	q := url.Values{}
	q.Set("amount", w.Amount.Round(0).String())
	q.Set("addInfo", "RUT TIEN "+strings.ToUpper(shortID(w.ID)))
	q.Set("accountName", w.AccountHolder)
	return fmt.Sprintf("%s/%s-%s-compact2.png?%s", base, w.BankBin, w.BankAccount, q.Encode())
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
