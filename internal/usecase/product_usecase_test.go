package usecase

import (
	"context"
	"testing"

	"marketplace-backend/internal/domain"
	"marketplace-backend/internal/mocks"
	"marketplace-backend/pkg/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProductUsecase() (*ProductUsecase, *mocks.MockProductRepository, *mocks.MockOrderRepository, *mocks.MockSellerRepository) {
	products := new(mocks.MockProductRepository)
	orders := new(mocks.MockOrderRepository)
	sellers := new(mocks.MockSellerRepository)
	return NewProductUsecase(products, orders, sellers, mocks.TxManager{}), products, orders, sellers
}

func purchased(status domain.ComboStatus) (*domain.OrderItem, *domain.OrderCombo, *domain.Order) {
	return &domain.OrderItem{ID: "i1", ProductID: "p1", ProductName: "Áo", Quantity: 3, Retraded: 1},
		&domain.OrderCombo{ID: "k1", Status: status},
		&domain.Order{ID: "o1", CustomerID: "c1"}
}

func TestRetrade(t *testing.T) {
	uc, products, orders, sellers := newProductUsecase()
	item, combo, order := purchased(domain.ComboCompleted)
	orders.On("GetItem", mock.Anything, "i1").Return(item, combo, order, nil)
	sellers.On("GetByUserID", mock.Anything, "c1").Return(&domain.SellerProfile{ID: "s9", UserID: "c1", Verified: true}, nil)
	orders.On("AddRetraded", mock.Anything, "i1", 2).Return(nil)
	products.On("GetProductByID", mock.Anything, "p1").Return(&domain.Product{ID: "p1", Category: "Thời trang"}, nil)
	products.On("CreateProduct", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)

	p, err := uc.Retrade(context.Background(), "c1", RetradeReq{OrderItemID: "i1", Quantity: 2, Price: decimal.NewFromInt(80000)})
	require.NoError(t, err)
	assert.Equal(t, "s9", p.SellerID, "listing belongs to the retrader's shop, not the user")
	assert.Equal(t, "Thời trang", p.Category)
	require.NotNil(t, p.RetradeOf)
	assert.Equal(t, "i1", *p.RetradeOf)
	assert.Equal(t, 2, p.Stock)
}

func TestRetradeNeedsVerifiedShop(t *testing.T) {
	tests := []struct {
		name    string
		profile *domain.SellerProfile
		err     error
	}{
		{"no shop", nil, domain.ErrNotFound},
		{"unverified shop", &domain.SellerProfile{ID: "s9", UserID: "c1"}, nil},
		{"banned shop", &domain.SellerProfile{ID: "s9", UserID: "c1", Verified: true, Banned: true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, products, orders, sellers := newProductUsecase()
			item, combo, order := purchased(domain.ComboCompleted)
			orders.On("GetItem", mock.Anything, "i1").Return(item, combo, order, nil)
			sellers.On("GetByUserID", mock.Anything, "c1").Return(tt.profile, tt.err)

			_, err := uc.Retrade(context.Background(), "c1", RetradeReq{OrderItemID: "i1", Quantity: 1, Price: decimal.NewFromInt(1000)})
			assert.True(t, apperr.IsKind(err, apperr.Forbidden), "got %v", err)
			orders.AssertNotCalled(t, "AddRetraded", mock.Anything, mock.Anything, mock.Anything)
			products.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
		})
	}
}

func TestRetradeRules(t *testing.T) {
	tests := []struct {
		name     string
		customer string
		status   domain.ComboStatus
		qty      int
		want     apperr.Kind
	}{
		{"not owner", "c2", domain.ComboCompleted, 1, apperr.NotFound},
		{"not completed", "c1", domain.ComboDelivered, 1, apperr.Conflict},
		{"over remaining", "c1", domain.ComboCompleted, 3, apperr.Invalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, products, orders, _ := newProductUsecase()
			item, combo, order := purchased(tt.status)
			orders.On("GetItem", mock.Anything, "i1").Return(item, combo, order, nil)

			_, err := uc.Retrade(context.Background(), tt.customer, RetradeReq{OrderItemID: "i1", Quantity: tt.qty, Price: decimal.NewFromInt(1000)})
			assert.True(t, apperr.IsKind(err, tt.want), "got %v", err)
			products.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateProductRequiresVerifiedSeller(t *testing.T) {
	uc, products, _, sellers := newProductUsecase()
	sellers.On("GetByUserID", mock.Anything, "u1").Return(&domain.SellerProfile{ID: "s1"}, nil)

	_, err := uc.CreateProduct(context.Background(), "u1", ProductReq{Name: "Áo", Price: decimal.NewFromInt(1000)})
	assert.True(t, apperr.IsKind(err, apperr.Forbidden))
	products.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
}

func TestUpdateProductOwnership(t *testing.T) {
	uc, products, _, sellers := newProductUsecase()
	sellers.On("GetByUserID", mock.Anything, "u1").Return(&domain.SellerProfile{ID: "s1", Verified: true}, nil)
	products.On("GetProductByID", mock.Anything, "p9").Return(&domain.Product{ID: "p9", SellerID: "s9"}, nil)

	_, err := uc.UpdateProduct(context.Background(), "u1", "p9", ProductReq{Name: "Áo", Price: decimal.NewFromInt(1000)})
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestSetProductStatusValidates(t *testing.T) {
	uc, products, _, _ := newProductUsecase()
	err := uc.SetProductStatus(context.Background(), "p1", "GONE")
	assert.Contains(t, apperr.FieldsOf(err), "status")

	products.On("UpdateProductStatus", mock.Anything, "p1", domain.ProductBanned).Return(nil)
	assert.NoError(t, uc.SetProductStatus(context.Background(), "p1", domain.ProductBanned))
}
