package usecase

import (
	"context"
	"errors"
	"strings"

	"marketplace-backend/internal/domain"
	"marketplace-backend/pkg/apperr"
	"marketplace-backend/pkg/logger"

	"github.com/go-playground/validator/v10"
)

type ProductUsecase struct {
	repo       domain.ProductRepository
	orderRepo  domain.OrderRepository
	sellerRepo domain.SellerRepository
	txManager  domain.TransactionManager
	validate   *validator.Validate
}

func NewProductUsecase(repo domain.ProductRepository, orderRepo domain.OrderRepository, sellerRepo domain.SellerRepository,
	txManager domain.TransactionManager) *ProductUsecase {
	return &ProductUsecase{
		repo:       repo,
		orderRepo:  orderRepo,
		sellerRepo: sellerRepo,
		txManager:  txManager,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

type ProductReq struct {
	Name     string       `json:"name" validate:"required,max=200"`
	Category string       `json:"category" validate:"max=100"`
	Price    domain.Money `json:"price"`
	Stock    int          `json:"stock" validate:"min=0"`
	ImageURL string       `json:"imageUrl" validate:"omitempty,max=500"`
}

func (u *ProductUsecase) check(req ProductReq) error {
	if err := u.validate.Struct(req); err != nil {
		return validationErr(err)
	}
	if req.Price.IsNegative() {
		return apperr.FieldErr("price", "Giá không được âm")
	}
	return nil
}

// ListProducts pages the catalog. Public callers only see ACTIVE products.
func (u *ProductUsecase) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, domain.Pagination, error) {
	f.Page, f.Limit = clampPage(f.Page, f.Limit, 100)
	items, total, err := u.repo.GetProducts(ctx, f)
	if err != nil {
		return nil, domain.Pagination{}, apperr.Wrap(err)
	}
	if items == nil {
		items = []domain.Product{}
	}
	return items, domain.NewPagination(f.Page, f.Limit, total), nil
}

// sellerFor resolves the seller profile of the acting user and refuses banned or unverified shops.
func (u *ProductUsecase) sellerFor(ctx context.Context, userID string) (*domain.SellerProfile, error) {
	s, err := u.sellerRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.ForbiddenErr("Tài khoản chưa đăng ký bán hàng")
		}
		return nil, apperr.Wrap(err)
	}
	if s.Banned {
		return nil, apperr.ForbiddenErr("Tài khoản đã bị khóa")
	}
	if !s.Verified {
		return nil, apperr.ForbiddenErr("Tài khoản chưa được xác minh")
	}
	return s, nil
}

func (u *ProductUsecase) ListSellerProducts(ctx context.Context, userID string, f domain.ProductFilter) ([]domain.Product, domain.Pagination, error) {
	s, err := u.sellerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, domain.Pagination{}, repoErr(err, msgSellerNotFound)
	}
	f.SellerID = s.ID
	return u.ListProducts(ctx, f)
}

func (u *ProductUsecase) CreateProduct(ctx context.Context, userID string, req ProductReq) (*domain.Product, error) {
	if err := u.check(req); err != nil {
		return nil, err
	}
	s, err := u.sellerFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := &domain.Product{
		ID:       newID(),
		SellerID: s.ID,
		Name:     strings.TrimSpace(req.Name),
		Category: strings.TrimSpace(req.Category),
		Price:    req.Price,
		Stock:    req.Stock,
		Status:   domain.ProductActive,
		ImageURL: req.ImageURL,
	}
	if err := u.repo.CreateProduct(ctx, p); err != nil {
		return nil, apperr.Wrap(err)
	}
	return p, nil
}

func (u *ProductUsecase) UpdateProduct(ctx context.Context, userID, id string, req ProductReq) (*domain.Product, error) {
	if err := u.check(req); err != nil {
		return nil, err
	}
	s, err := u.sellerFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := u.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, msgProductNotFound)
	}
	if p.SellerID != s.ID {
		return nil, apperr.NotFoundErr(msgProductNotFound)
	}
	if p.Status == domain.ProductBanned {
		return nil, apperr.ForbiddenErr("Sản phẩm đã bị gỡ bởi quản trị viên")
	}
	p.Name = strings.TrimSpace(req.Name)
	p.Category = strings.TrimSpace(req.Category)
	p.Price = req.Price
	p.Stock = req.Stock
	p.ImageURL = req.ImageURL
	if err := u.repo.UpdateProduct(ctx, p); err != nil {
		return nil, repoErr(err, msgProductNotFound)
	}
	return p, nil
}

func (u *ProductUsecase) SetProductStatus(ctx context.Context, id string, status domain.ProductStatus) error {
	valid := false
	for _, s := range domain.ProductStatuses {
		if s == status {
			valid = true
		}
	}
	if !valid {
		return apperr.FieldErr("status", "Trạng thái sản phẩm không hợp lệ")
	}
	if err := u.repo.UpdateProductStatus(ctx, id, status); err != nil {
		return repoErr(err, msgProductNotFound)
	}
	logger.WithContext(ctx).Info().Str("product_id", id).Str("status", string(status)).Msg("Product status changed")
	return nil
}

type RetradeReq struct {
	OrderItemID string       `json:"orderItemId" validate:"required"`
	Quantity    int          `json:"quantity" validate:"gt=0"`
	Price       domain.Money `json:"price"`
}

// Retrade re-lists part of a completed purchase under the buyer's own shop.
// The buyer needs a verified seller profile; the listing belongs to that profile.
func (u *ProductUsecase) Retrade(ctx context.Context, customerID string, req RetradeReq) (*domain.Product, error) {
	if err := u.validate.Struct(req); err != nil {
		return nil, validationErr(err)
	}
	if !req.Price.IsPositive() {
		return nil, apperr.FieldErr("price", "Giá bán lại phải lớn hơn 0")
	}

	item, combo, order, err := u.orderRepo.GetItem(ctx, req.OrderItemID)
	if err != nil {
		return nil, repoErr(err, "Không tìm thấy sản phẩm đã mua")
	}
	if order.CustomerID != customerID {
		return nil, apperr.NotFoundErr("Không tìm thấy sản phẩm đã mua")
	}
	if combo.Status != domain.ComboCompleted {
		return nil, apperr.ConflictErr("Chỉ bán lại được sản phẩm của đơn đã hoàn tất")
	}
	remaining := item.Quantity - item.Retraded
	if req.Quantity > remaining {
		return nil, apperr.FieldErr("quantity", "Số lượng bán lại vượt quá số lượng còn lại")
	}

	shop, err := u.sellerFor(ctx, customerID)
	if err != nil {
		return nil, err
	}

	category := ""
	if orig, err := u.repo.GetProductByID(ctx, item.ProductID); err == nil {
		category = orig.Category
	}
	itemID := item.ID
	p := &domain.Product{
		ID:        newID(),
		SellerID:  shop.ID,
		Name:      item.ProductName,
		Category:  category,
		Price:     req.Price,
		Stock:     req.Quantity,
		Status:    domain.ProductActive,
		RetradeOf: &itemID,
	}
	err = u.txManager.Do(ctx, func(ctx context.Context) error {
		if err := u.orderRepo.AddRetraded(ctx, item.ID, req.Quantity); err != nil {
			return err
		}
		return u.repo.CreateProduct(ctx, p)
	})
	if err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return nil, apperr.FieldErr("quantity", "Số lượng bán lại vượt quá số lượng còn lại")
		}
		return nil, apperr.Wrap(err)
	}
	return p, nil
}
