package usecase

import (
	"context"
	"strings"
	"time"

	"marketplace-backend/internal/domain"
	"marketplace-backend/internal/workflow"
	"marketplace-backend/pkg/apperr"
	"marketplace-backend/pkg/cache"
	"marketplace-backend/pkg/logger"
	"marketplace-backend/pkg/storage"
)

type SellerUsecase struct {
	repo          domain.SellerRepository
	history       domain.HistoryRepository
	txManager     domain.TransactionManager
	store         storage.Storage
	loader        *cache.Loader
	entityTTL     time.Duration
	presignExpiry time.Duration
}

func NewSellerUsecase(repo domain.SellerRepository, history domain.HistoryRepository, txManager domain.TransactionManager,
	store storage.Storage, loader *cache.Loader, entityTTL, presignExpiry time.Duration) *SellerUsecase {
	return &SellerUsecase{
		repo:          repo,
		history:       history,
		txManager:     txManager,
		store:         store,
		loader:        loader,
		entityTTL:     entityTTL,
		presignExpiry: presignExpiry,
	}
}

func (u *SellerUsecase) GetSeller(ctx context.Context, id string) (*domain.SellerProfile, error) {
	s, err := cache.GetOrLoad(u.loader, domain.EntityKey(domain.EntitySeller, id), u.entityTTL, func() (*domain.SellerProfile, error) {
		return u.repo.GetByID(ctx, id)
	})
	if err != nil {
		return nil, repoErr(err, msgSellerNotFound)
	}
	return s, nil
}

func (u *SellerUsecase) GetSellerByUser(ctx context.Context, userID string) (*domain.SellerProfile, error) {
	s, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, repoErr(err, msgSellerNotFound)
	}
	return s, nil
}

func (u *SellerUsecase) ListSellers(ctx context.Context, f domain.SellerFilter) ([]domain.SellerProfile, domain.Pagination, error) {
	f.Page, f.Limit = clampPage(f.Page, f.Limit, 100)
	sellers, total, err := u.repo.GetAll(ctx, f)
	if err != nil {
		return nil, domain.Pagination{}, apperr.Wrap(err)
	}
	if sellers == nil {
		sellers = []domain.SellerProfile{}
	}
	return sellers, domain.NewPagination(f.Page, f.Limit, total), nil
}

// Register creates the profile for a new shop in the INIT identity state.
func (u *SellerUsecase) Register(ctx context.Context, userID, shopName, email, phone, address string) (*domain.SellerProfile, error) {
	if strings.TrimSpace(shopName) == "" {
		return nil, apperr.FieldErr("shopName", "Vui lòng nhập tên cửa hàng")
	}
	if _, err := u.repo.GetByUserID(ctx, userID); err == nil {
		return nil, apperr.ConflictErr("Tài khoản đã đăng ký bán hàng")
	}
	s := &domain.SellerProfile{
		ID:             newID(),
		UserID:         userID,
		ShopName:       strings.TrimSpace(shopName),
		Email:          email,
		Phone:          phone,
		Address:        address,
		IdentityStatus: domain.IdentityInit,
	}
	if err := u.repo.Create(ctx, s); err != nil {
		return nil, apperr.Wrap(err)
	}
	return s, nil
}

// Apply handles approve, reject and ban for the workflow engine.
func (u *SellerUsecase) Apply(ctx context.Context, a domain.Action) (*domain.Transition, error) {
	s, err := u.repo.GetByID(ctx, a.EntityID)
	if err != nil {
		return nil, repoErr(err, msgSellerNotFound)
	}
	if err := workflow.CheckVersion(a, s.Version); err != nil {
		return nil, err
	}
	from := s.Badge()
	if !workflow.IsAllowed(domain.EntitySeller, from, a.Kind) {
		return nil, workflow.Disallowed(domain.EntitySeller, from, a.Kind)
	}

	next := *s
	reason := strings.TrimSpace(a.Reason)
	switch a.Kind {
	case domain.ActionApprove:
		next.Verified = true
		next.RejectReason = nil
		if a.ForceIdentity || s.IdentityStatus == domain.IdentityWaiting {
			next.IdentityStatus = domain.IdentityVerified
		}
	case domain.ActionReject:
		next.Verified = false
		next.RejectReason = &reason
		if a.ForceIdentity || s.IdentityStatus == domain.IdentityWaiting {
			next.IdentityStatus = domain.IdentityFailed
		}
	case domain.ActionBan:
		next.Banned = true
		next.Verified = false
		if reason != "" {
			next.RejectReason = &reason
		}
	}

	var version int64
	err = u.txManager.Do(ctx, func(ctx context.Context) error {
		v, err := u.repo.Update(ctx, s.ID, s.Version, next.ToUpdate())
		if err != nil {
			return err
		}
		version = v
		return u.history.Create(ctx, history(domain.EntitySeller, s.ID, from, next.Badge(), a))
	})
	if err != nil {
		return nil, repoErr(err, msgSellerNotFound)
	}

	logger.WithContext(ctx).Info().
		Str("seller_id", s.ID).
		Str("identity", string(next.IdentityStatus)).
		Bool("verified", next.Verified).
		Bool("banned", next.Banned).
		Msg("Seller status updated")

	return &domain.Transition{
		Entity:   domain.EntitySeller,
		EntityID: s.ID,
		Action:   a.Kind,
		From:     from,
		To:       next.Badge(),
		Version:  version,
		Reason:   reason,
		ActorID:  a.ActorID,
		Related:  []string{queueKey},
	}, nil
}

// SubmitIdentity records both ID-card sides and puts the seller in review.
func (u *SellerUsecase) SubmitIdentity(ctx context.Context, userID, frontKey, backKey string) (*domain.SellerProfile, error) {
	fields := map[string]string{}
	if strings.TrimSpace(frontKey) == "" {
		fields["front"] = "Vui lòng tải lên mặt trước CCCD"
	}
	if strings.TrimSpace(backKey) == "" {
		fields["back"] = "Vui lòng tải lên mặt sau CCCD"
	}
	if len(fields) > 0 {
		return nil, apperr.InvalidErr("Vui lòng tải lên đủ hai mặt CCCD", fields)
	}

	s, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, repoErr(err, msgSellerNotFound)
	}
	if s.Banned {
		return nil, apperr.ForbiddenErr("Tài khoản đã bị khóa")
	}
	if s.IdentityStatus == domain.IdentityVerified {
		return nil, apperr.ConflictErr("Danh tính đã được xác minh")
	}

	from := string(s.IdentityStatus)
	next := *s
	next.IdentityStatus = domain.IdentityWaiting
	next.IDCardFrontKey = &frontKey
	next.IDCardBackKey = &backKey

	err = u.txManager.Do(ctx, func(ctx context.Context) error {
		v, err := u.repo.Update(ctx, s.ID, s.Version, next.ToUpdate())
		if err != nil {
			return err
		}
		next.Version = v
		return u.history.Create(ctx, history(domain.EntitySeller, s.ID, from, string(domain.IdentityWaiting),
			domain.Action{Kind: "submit_identity", ActorID: userID}))
	})
	if err != nil {
		return nil, repoErr(err, msgSellerNotFound)
	}
	u.loader.Cache().Delete(domain.EntityKey(domain.EntitySeller, s.ID))
	return &next, nil
}

// GetIDCardImage returns a short-lived URL for one side of the seller's ID card.
func (u *SellerUsecase) GetIDCardImage(ctx context.Context, id, side string) (string, error) {
	s, err := u.GetSeller(ctx, id)
	if err != nil {
		return "", err
	}
	var key *string
	switch side {
	case "front":
		key = s.IDCardFrontKey
	case "back":
		key = s.IDCardBackKey
	default:
		return "", apperr.FieldErr("side", "Mặt CCCD không hợp lệ")
	}
	if key == nil || *key == "" {
		return "", apperr.NotFoundErr("Người bán chưa tải lên CCCD")
	}
	url, err := u.store.SignedURL(ctx, *key, u.presignExpiry)
	if err != nil {
		return "", apperr.Wrap(err)
	}
	return url, nil
}
