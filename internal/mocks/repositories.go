package mocks

import (
	"context"

	"marketplace-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByComboID(ctx context.Context, comboID string) (*domain.Order, error) {
	args := m.Called(ctx, comboID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByCustomerID(ctx context.Context, customerID string) ([]domain.Order, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context, policy domain.StatusPolicy) (map[domain.ComboStatus]int64, error) {
	args := m.Called(ctx, policy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.ComboStatus]int64), args.Error(1)
}

func (m *MockOrderRepository) GetItem(ctx context.Context, itemID string) (*domain.OrderItem, *domain.OrderCombo, *domain.Order, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, nil, nil, args.Error(3)
	}
	return args.Get(0).(*domain.OrderItem), args.Get(1).(*domain.OrderCombo), args.Get(2).(*domain.Order), args.Error(3)
}

func (m *MockOrderRepository) UpdateComboStatus(ctx context.Context, comboID string, expectedVersion int64, status domain.ComboStatus) (int64, error) {
	args := m.Called(ctx, comboID, expectedVersion, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) BumpVersion(ctx context.Context, orderID string, expectedVersion int64) (int64, error) {
	args := m.Called(ctx, orderID, expectedVersion)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) AddRetraded(ctx context.Context, itemID string, quantity int) error {
	args := m.Called(ctx, itemID, quantity)
	return args.Error(0)
}

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Create(ctx context.Context, h *domain.StatusHistory) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *MockHistoryRepository) List(ctx context.Context, entity, entityID string) ([]domain.StatusHistory, error) {
	args := m.Called(ctx, entity, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatusHistory), args.Error(1)
}

type MockSellerRepository struct {
	mock.Mock
}

func (m *MockSellerRepository) Create(ctx context.Context, s *domain.SellerProfile) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSellerRepository) GetByID(ctx context.Context, id string) (*domain.SellerProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SellerProfile), args.Error(1)
}

func (m *MockSellerRepository) GetByUserID(ctx context.Context, userID string) (*domain.SellerProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SellerProfile), args.Error(1)
}

func (m *MockSellerRepository) GetAll(ctx context.Context, filter domain.SellerFilter) ([]domain.SellerProfile, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.SellerProfile), args.Get(1).(int64), args.Error(2)
}

func (m *MockSellerRepository) Update(ctx context.Context, id string, expectedVersion int64, u domain.SellerUpdate) (int64, error) {
	args := m.Called(ctx, id, expectedVersion, u)
	return args.Get(0).(int64), args.Error(1)
}

type MockWithdrawRepository struct {
	mock.Mock
}

func (m *MockWithdrawRepository) Create(ctx context.Context, w *domain.WithdrawRequest) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockWithdrawRepository) GetByID(ctx context.Context, id string) (*domain.WithdrawRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WithdrawRequest), args.Error(1)
}

func (m *MockWithdrawRepository) GetAll(ctx context.Context, filter domain.WithdrawFilter) ([]domain.WithdrawRequest, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.WithdrawRequest), args.Get(1).(int64), args.Error(2)
}

func (m *MockWithdrawRepository) UpdateStatus(ctx context.Context, id string, expectedVersion int64, status domain.WithdrawStatus, cancelReason, proofURL *string) (int64, error) {
	args := m.Called(ctx, id, expectedVersion, status, cancelReason, proofURL)
	return args.Get(0).(int64), args.Error(1)
}

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Create(ctx context.Context, r *domain.Report) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *MockReportRepository) GetAll(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Report), args.Get(1).(int64), args.Error(2)
}

func (m *MockReportRepository) UpdateStatus(ctx context.Context, id string, expectedVersion int64, status domain.ReportStatus, rejectReason *string) (int64, error) {
	args := m.Called(ctx, id, expectedVersion, status, rejectReason)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportRepository) AddEvidence(ctx context.Context, e *domain.Evidence) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockReportRepository) GetEvidence(ctx context.Context, reportID string) ([]domain.Evidence, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Evidence), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateProductStatus(ctx context.Context, id string, status domain.ProductStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) GetPage(ctx context.Context, key string) (*domain.ContentPage, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContentPage), args.Error(1)
}

func (m *MockContentRepository) UpsertPage(ctx context.Context, p *domain.ContentPage) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
