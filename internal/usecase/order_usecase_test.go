package usecase

import (
	"bytes"
	"context"
	"testing"
	"time"

	"marketplace-backend/internal/domain"
	"marketplace-backend/internal/mocks"
	"marketplace-backend/pkg/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

type orderFixture struct {
	orders   *mocks.MockOrderRepository
	products *mocks.MockProductRepository
	sellers  *mocks.MockSellerRepository
	history  *mocks.MockHistoryRepository
	uc       *OrderUsecase
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:   new(mocks.MockOrderRepository),
		products: new(mocks.MockProductRepository),
		sellers:  new(mocks.MockSellerRepository),
		history:  new(mocks.MockHistoryRepository),
	}
	f.uc = NewOrderUsecase(f.orders, f.products, f.sellers, f.history, mocks.TxManager{}, newTestLoader(), OrderConfig{
		Policy:      domain.PolicyFirst,
		EntityTTL:   time.Minute,
		ShippingFee: decimal.NewFromInt(30000),
	})
	return f
}

func twoComboOrder(first, second domain.ComboStatus) *domain.Order {
	return &domain.Order{
		ID:         "o1",
		CustomerID: "c1",
		Version:    5,
		Combos: []domain.OrderCombo{
			{ID: "k1", OrderID: "o1", SellerID: "s1", Status: first, Version: 2},
			{ID: "k2", OrderID: "o1", SellerID: "s2", Status: second, Version: 7},
		},
	}
}

func TestPlaceOrderGroupsBySeller(t *testing.T) {
	f := newOrderFixture()
	f.products.On("GetProductByID", mock.Anything, "p1").Return(&domain.Product{ID: "p1", SellerID: "s1", Name: "Áo", Price: decimal.NewFromInt(100000), Stock: 10, Status: domain.ProductActive}, nil)
	f.products.On("GetProductByID", mock.Anything, "p2").Return(&domain.Product{ID: "p2", SellerID: "s1", Name: "Quần", Price: decimal.NewFromInt(50000), Stock: 10, Status: domain.ProductActive}, nil)
	f.products.On("GetProductByID", mock.Anything, "p3").Return(&domain.Product{ID: "p3", SellerID: "s2", Name: "Mũ", Price: decimal.NewFromInt(20000), Stock: 1, Status: domain.ProductActive}, nil)
	f.orders.On("CreateOrder", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
	f.history.On("Create", mock.Anything, mock.Anything).Return(nil)

	o, err := f.uc.PlaceOrder(context.Background(), "c1", PlaceOrderReq{
		Destination: domain.Destination{ReceiverName: "An", Phone: "0900000000", Address: "Hà Nội"},
		Lines:       []OrderLine{{"p1", 2}, {"p2", 1}, {"p3", 1}},
	})
	require.NoError(t, err)
	require.Len(t, o.Combos, 2)
	assert.Len(t, o.Combos[0].Items, 2)
	// 250000 + 20000 + two shipping fees
	assert.True(t, decimal.NewFromInt(330000).Equal(o.GrandTotal), o.GrandTotal.String())
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newOrderFixture()
	_, err := f.uc.PlaceOrder(context.Background(), "c1", PlaceOrderReq{})
	require.Error(t, err)
	fields := apperr.FieldsOf(err)
	for _, k := range []string{"receiverName", "phone", "address", "items"} {
		assert.Contains(t, fields, k)
	}

	f.products.On("GetProductByID", mock.Anything, "p1").Return(&domain.Product{ID: "p1", SellerID: "s1", Name: "Áo", Stock: 1, Status: domain.ProductActive}, nil)
	_, err = f.uc.PlaceOrder(context.Background(), "c1", PlaceOrderReq{
		Destination: domain.Destination{ReceiverName: "An", Phone: "0900000000", Address: "Hà Nội"},
		Lines:       []OrderLine{{"p1", 3}},
	})
	assert.True(t, apperr.IsKind(err, apperr.Conflict))
}

func TestCancelOrder(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("GetByID", mock.Anything, "o1").Return(twoComboOrder(domain.ComboPending, domain.ComboPreparing), nil)
	f.orders.On("UpdateComboStatus", mock.Anything, "k1", int64(2), domain.ComboCancelled).Return(int64(3), nil)
	f.orders.On("UpdateComboStatus", mock.Anything, "k2", int64(7), domain.ComboCancelled).Return(int64(8), nil)
	f.orders.On("BumpVersion", mock.Anything, "o1", int64(5)).Return(int64(6), nil)
	f.history.On("Create", mock.Anything, mock.Anything).Return(nil)

	tr, err := f.uc.OrderHandler().Apply(context.Background(), domain.Action{
		Kind: domain.ActionCancel, Entity: domain.EntityOrder, EntityID: "o1", ActorID: "c1", ActorRole: domain.RoleCustomer,
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.ComboCancelled), tr.To)
	assert.Equal(t, int64(6), tr.Version)
	assert.Contains(t, tr.Related, "combo:k1")
	assert.Contains(t, tr.Related, "combo:k2")
	f.history.AssertNumberOfCalls(t, "Create", 3)
}

func TestCancelOrderNotCancellable(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("GetByID", mock.Anything, "o1").Return(twoComboOrder(domain.ComboPending, domain.ComboDelivering), nil)

	_, err := f.uc.OrderHandler().Apply(context.Background(), domain.Action{
		Kind: domain.ActionCancel, Entity: domain.EntityOrder, EntityID: "o1", ActorID: "admin", ActorRole: domain.RoleAdmin,
	})
	assert.True(t, apperr.IsKind(err, apperr.Conflict))
	f.orders.AssertNotCalled(t, "UpdateComboStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelOtherCustomersOrderLooksMissing(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("GetByID", mock.Anything, "o1").Return(twoComboOrder(domain.ComboPending, domain.ComboPending), nil)

	_, err := f.uc.OrderHandler().Apply(context.Background(), domain.Action{
		Kind: domain.ActionCancel, Entity: domain.EntityOrder, EntityID: "o1", ActorID: "c2", ActorRole: domain.RoleCustomer,
	})
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestAdvanceCombo(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		actor   string
		from    domain.ComboStatus
		target  domain.ComboStatus
		seller  *domain.SellerProfile
		wantErr apperr.Kind
	}{
		{name: "seller prepares", role: domain.RoleSeller, actor: "su1", from: domain.ComboPending, target: domain.ComboPreparing, seller: &domain.SellerProfile{ID: "s1"}},
		{name: "banned seller", role: domain.RoleSeller, actor: "su1", from: domain.ComboPending, target: domain.ComboPreparing, seller: &domain.SellerProfile{ID: "s1", Banned: true}, wantErr: apperr.Forbidden},
		{name: "other seller", role: domain.RoleSeller, actor: "su2", from: domain.ComboPending, target: domain.ComboPreparing, seller: &domain.SellerProfile{ID: "s2"}, wantErr: apperr.Forbidden},
		{name: "customer completes", role: domain.RoleCustomer, actor: "c1", from: domain.ComboDelivered, target: domain.ComboCompleted},
		{name: "customer requests return", role: domain.RoleCustomer, actor: "c1", from: domain.ComboDelivered, target: domain.ComboReturnRequested},
		{name: "customer cannot ship", role: domain.RoleCustomer, actor: "c1", from: domain.ComboPreparing, target: domain.ComboDelivering, wantErr: apperr.Forbidden},
		{name: "skipping a step", role: domain.RoleAdmin, actor: "a1", from: domain.ComboPending, target: domain.ComboDelivered, wantErr: apperr.Conflict},
		{name: "admin any edge", role: domain.RoleAdmin, actor: "a1", from: domain.ComboReturned, target: domain.ComboRefunded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture()
			f.orders.On("GetByComboID", mock.Anything, "k1").Return(twoComboOrder(tt.from, domain.ComboPending), nil)
			if tt.seller != nil {
				f.sellers.On("GetByUserID", mock.Anything, tt.actor).Return(tt.seller, nil)
			}
			f.orders.On("UpdateComboStatus", mock.Anything, "k1", int64(2), tt.target).Return(int64(3), nil)
			f.orders.On("BumpVersion", mock.Anything, "o1", int64(5)).Return(int64(6), nil)
			f.history.On("Create", mock.Anything, mock.Anything).Return(nil)

			tr, err := f.uc.ComboHandler().Apply(context.Background(), domain.Action{
				Kind: domain.ActionAdvance, Entity: domain.EntityCombo, EntityID: "k1",
				Target: string(tt.target), ActorID: tt.actor, ActorRole: tt.role,
			})
			if tt.wantErr != "" {
				assert.True(t, apperr.IsKind(err, tt.wantErr), "got %v", err)
				f.orders.AssertNotCalled(t, "UpdateComboStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, string(tt.target), tr.To)
			assert.Contains(t, tr.Related, "order:o1")
		})
	}
}

func TestReturnDecision(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("GetByComboID", mock.Anything, "k1").Return(twoComboOrder(domain.ComboReturnRequested, domain.ComboPending), nil)
	f.orders.On("UpdateComboStatus", mock.Anything, "k1", int64(2), domain.ComboReturnRejected).Return(int64(3), nil)
	f.orders.On("BumpVersion", mock.Anything, "o1", int64(5)).Return(int64(6), nil)
	f.history.On("Create", mock.Anything, mock.Anything).Return(nil)

	tr, err := f.uc.ComboHandler().Apply(context.Background(), domain.Action{
		Kind: domain.ActionReject, Entity: domain.EntityCombo, EntityID: "k1", Reason: "Quá hạn", ActorID: "a1", ActorRole: domain.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.ComboReturnRejected), tr.To)
}

func TestGetOrderForHidesOthers(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("GetByID", mock.Anything, "o1").Return(twoComboOrder(domain.ComboPending, domain.ComboPending), nil).Once()

	v, err := f.uc.GetOrderFor(context.Background(), &domain.User{ID: "c1", Role: domain.RoleCustomer}, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.ComboPending, v.Status)
	assert.Equal(t, []domain.ActionKind{domain.ActionCancel}, v.Actions)

	_, err = f.uc.GetOrderFor(context.Background(), &domain.User{ID: "c2", Role: domain.RoleCustomer}, "o1")
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
	f.orders.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestListOrdersRejectsUnknownSort(t *testing.T) {
	f := newOrderFixture()
	_, _, err := f.uc.ListOrders(context.Background(), domain.OrderFilter{SortBy: "customer"})
	assert.Contains(t, apperr.FieldsOf(err), "sort")
}

func TestExportOrders(t *testing.T) {
	f := newOrderFixture()
	o := twoComboOrder(domain.ComboDelivered, domain.ComboPending)
	o.GrandTotal = decimal.NewFromInt(474000)
	o.Destination = domain.Destination{ReceiverName: "An", Phone: "0900", Address: "HN"}
	f.orders.On("GetAll", mock.Anything, mock.MatchedBy(func(fl domain.OrderFilter) bool { return fl.Page == 1 })).
		Return([]domain.Order{*o}, int64(1), nil)

	var buf bytes.Buffer
	require.NoError(t, f.uc.ExportOrders(context.Background(), domain.OrderFilter{}, &buf))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	rows := file.Sheets[0].Rows
	require.Len(t, rows, 2)
	assert.Equal(t, "Mã đơn", rows[0].Cells[0].String())
	assert.Equal(t, "o1", rows[1].Cells[0].String())
	assert.Equal(t, string(domain.ComboDelivered), rows[1].Cells[5].String())
}
