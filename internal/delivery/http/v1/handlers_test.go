package v1

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketplace-backend/internal/domain"
	memcache "marketplace-backend/internal/infrastructure/cache"
	"marketplace-backend/internal/mocks"
	"marketplace-backend/internal/usecase"
	"marketplace-backend/internal/workflow"
	"marketplace-backend/pkg/cache"
	"marketplace-backend/pkg/utils"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	mux       *http.ServeMux
	orders    *mocks.MockOrderRepository
	products  *mocks.MockProductRepository
	sellers   *mocks.MockSellerRepository
	withdraws *mocks.MockWithdrawRepository
	reports   *mocks.MockReportRepository
	content   *mocks.MockContentRepository
	history   *mocks.MockHistoryRepository
	store     *mocks.MockStorage
	pub       *mocks.MockPublisher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	utils.SetSecret("test-secret")

	s := &testServer{
		orders:    new(mocks.MockOrderRepository),
		products:  new(mocks.MockProductRepository),
		sellers:   new(mocks.MockSellerRepository),
		withdraws: new(mocks.MockWithdrawRepository),
		reports:   new(mocks.MockReportRepository),
		content:   new(mocks.MockContentRepository),
		history:   new(mocks.MockHistoryRepository),
		store:     new(mocks.MockStorage),
		pub:       new(mocks.MockPublisher),
	}
	s.pub.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	s.history.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()

	memCache := memcache.NewMemoryCache(time.Minute, time.Minute)
	loader := cache.NewLoader(memCache)
	tx := mocks.TxManager{}

	orderUC := usecase.NewOrderUsecase(s.orders, s.products, s.sellers, s.history, tx, loader, usecase.OrderConfig{
		Policy: domain.PolicyFirst, EntityTTL: time.Minute, ShippingFee: decimal.NewFromInt(30000),
	})
	statsUC := usecase.NewStatsUsecase(s.orders, s.sellers, s.withdraws, s.reports, loader, domain.PolicyFirst, time.Minute)
	sellerUC := usecase.NewSellerUsecase(s.sellers, s.history, tx, s.store, loader, time.Minute, time.Minute)
	withdrawUC := usecase.NewWithdrawUsecase(s.withdraws, s.history, tx, loader, "https://img.vietqr.io/image", time.Minute, time.Minute)
	reportUC := usecase.NewReportUsecase(s.reports, s.sellers, s.history, tx, loader, time.Minute)
	productUC := usecase.NewProductUsecase(s.products, s.orders, s.sellers, tx)

	engine := workflow.NewEngine(nil, time.Second, loader.Cache(), s.pub)
	engine.Register(domain.EntityOrder, orderUC.OrderHandler())
	engine.Register(domain.EntityCombo, orderUC.ComboHandler())
	engine.Register(domain.EntitySeller, sellerUC)
	engine.Register(domain.EntityWithdrawal, withdrawUC)
	engine.Register(domain.EntityReport, reportUC)

	s.mux = http.NewServeMux()
	RegisterRoutes(s.mux, Handlers{
		Action:   NewActionHandler(engine),
		Config:   NewConfigHandler(memCache, domain.PolicyFirst),
		Content:  NewContentHandler(usecase.NewContentUsecase(s.content, loader, time.Minute)),
		Order:    NewOrderHandler(orderUC, statsUC, engine),
		Seller:   NewSellerHandler(sellerUC, engine),
		Withdraw: NewWithdrawHandler(withdrawUC, engine),
		Report:   NewReportHandler(reportUC, engine),
		Product:  NewProductHandler(productUC),
		Upload:   NewUploadHandler(usecase.NewUploadUsecase(s.store), 1),
	})
	return s
}

func token(t *testing.T, id, role string) string {
	t.Helper()
	tok, err := utils.GenerateJWT(id, id+"@example.vn", role, time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, tok string, body interface{}, hdr ...string) (*httptest.ResponseRecorder, domain.Response) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)

	var resp domain.Response
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func waitingSeller() *domain.SellerProfile {
	return &domain.SellerProfile{ID: "s1", UserID: "u1", ShopName: "Shop", IdentityStatus: domain.IdentityWaiting, Version: 3}
}

func TestApproveSeller(t *testing.T) {
	s := newTestServer(t)
	s.sellers.On("GetByID", mock.Anything, "s1").Return(waitingSeller(), nil)
	s.sellers.On("Update", mock.Anything, "s1", int64(3), mock.MatchedBy(func(u domain.SellerUpdate) bool {
		return u.Verified && u.IdentityStatus == domain.IdentityVerified
	})).Return(int64(4), nil)

	rec, resp := s.do(t, http.MethodPost, "/api/v1/admin/sellers/s1/approve", token(t, "admin", domain.RoleAdmin),
		map[string]interface{}{"approve": true, "forceIdentity": false})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, resp.Success)
	assert.Equal(t, "Xác minh tài khoản thành công!", resp.Message)
	assert.Equal(t, `"4"`, rec.Header().Get("ETag"))
	s.pub.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e domain.StatusChanged) bool {
		return e.Key == "seller:s1" && e.ActorID == "admin"
	}))
}

func TestRejectSellerNeedsReason(t *testing.T) {
	s := newTestServer(t)

	rec, resp := s.do(t, http.MethodPost, "/api/v1/admin/sellers/s1/approve", token(t, "admin", domain.RoleAdmin),
		map[string]interface{}{"approve": false})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, workflow.MsgReasonRequired, resp.Fields["reason"])
	s.sellers.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)

	rec, resp := s.do(t, http.MethodGet, "/api/v1/admin/sellers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, resp.Success)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/admin/sellers", token(t, "c1", domain.RoleCustomer), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/admin/sellers", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStaleIfMatchIsConflict(t *testing.T) {
	s := newTestServer(t)
	s.sellers.On("GetByID", mock.Anything, "s1").Return(waitingSeller(), nil)

	rec, resp := s.do(t, http.MethodPost, "/api/v1/admin/sellers/s1/ban", token(t, "admin", domain.RoleAdmin), nil, "If-Match", `"2"`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, workflow.MsgStale, resp.Message)
	s.sellers.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGenericActionEndpoint(t *testing.T) {
	s := newTestServer(t)
	w := &domain.WithdrawRequest{ID: "w1", Status: domain.WithdrawPending, Version: 1, Amount: decimal.NewFromInt(100000)}
	s.withdraws.On("GetByID", mock.Anything, "w1").Return(w, nil)
	s.withdraws.On("UpdateStatus", mock.Anything, "w1", int64(1), domain.WithdrawCompleted, mock.Anything, mock.Anything).Return(int64(2), nil)

	rec, resp := s.do(t, http.MethodPost, "/api/v1/admin/actions", token(t, "admin", domain.RoleAdmin),
		map[string]interface{}{"kind": "approve", "entity": "withdrawal", "entityId": "w1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, workflow.MsgProofRequired, resp.Fields["proof"])

	rec, resp = s.do(t, http.MethodPost, "/api/v1/admin/actions", token(t, "admin", domain.RoleAdmin),
		map[string]interface{}{"kind": "approve", "entity": "withdrawal", "entityId": "w1", "proofUrl": "https://cdn/p.webp"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Xác nhận chuyển tiền thành công!", resp.Message)
}

func TestListOrdersShape(t *testing.T) {
	s := newTestServer(t)
	orders := []domain.Order{{ID: "o1", CustomerID: "c1", Combos: []domain.OrderCombo{{ID: "k1", Status: domain.ComboDelivered}}}}
	s.orders.On("GetAll", mock.Anything, mock.MatchedBy(func(f domain.OrderFilter) bool {
		return f.Page == 2 && f.Limit == 5 && f.Status == "deliv" && f.SortBy == "grandTotal" && f.SortAsc
	})).Return(orders, int64(11), nil)

	rec, _ := s.do(t, http.MethodGet, "/api/v1/admin/orders?page=2&limit=5&status=deliv&sort=grandTotal&asc=true",
		token(t, "admin", domain.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Success bool `json:"success"`
		Content struct {
			Orders []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"orders"`
			Page        int   `json:"page"`
			MaxPage     int   `json:"maxPage"`
			TotalOrders int64 `json:"totalOrders"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Content.MaxPage)
	assert.Equal(t, int64(11), body.Content.TotalOrders)
	require.Len(t, body.Content.Orders, 1)
	assert.Equal(t, "DELIVERED", body.Content.Orders[0].Status)
}

func TestCustomerCancelsOwnOrder(t *testing.T) {
	s := newTestServer(t)
	o := &domain.Order{ID: "o1", CustomerID: "c1", Version: 1, Combos: []domain.OrderCombo{{ID: "k1", Status: domain.ComboPending, Version: 1}}}
	s.orders.On("GetByID", mock.Anything, "o1").Return(o, nil)
	s.orders.On("UpdateComboStatus", mock.Anything, "k1", int64(1), domain.ComboCancelled).Return(int64(2), nil)
	s.orders.On("BumpVersion", mock.Anything, "o1", int64(1)).Return(int64(2), nil)

	rec, _ := s.do(t, http.MethodPost, "/api/v1/orders/o1/cancel", token(t, "c2", domain.RoleCustomer), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, resp := s.do(t, http.MethodPost, "/api/v1/orders/o1/cancel", token(t, "c1", domain.RoleCustomer), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Hủy đơn hàng thành công!", resp.Message)
}

func TestEnums(t *testing.T) {
	s := newTestServer(t)
	rec, resp := s.do(t, http.MethodGet, "/api/v1/config/enums", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	content, ok := resp.Content.(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, content["comboStatuses"], len(domain.ComboStatuses))
	assert.Equal(t, "first", content["statusPolicy"])
}

func TestPublicPage(t *testing.T) {
	s := newTestServer(t)
	s.content.On("GetPage", mock.Anything, "terms").Return(&domain.ContentPage{Key: "terms", Title: "Điều khoản", IsActive: true}, nil)
	s.content.On("GetPage", mock.Anything, "draft").Return(&domain.ContentPage{Key: "draft", IsActive: false}, nil)

	rec, _ := s.do(t, http.MethodGet, "/api/v1/pages/terms", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(t, http.MethodGet, "/api/v1/pages/draft", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadRejectsExtension(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "run.exe")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("MZ"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token(t, "u1", domain.RoleSeller))
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	s.store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPostEvidenceEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.reports.On("GetByID", mock.Anything, "r1").Return(&domain.Report{ID: "r1", SellerID: "s1", ReporterID: "c1", Status: domain.ReportPending}, nil)
	s.reports.On("AddEvidence", mock.Anything, mock.Anything).Return(nil)

	rec, resp := s.do(t, http.MethodPost, "/api/v1/reports/r1/evidence", token(t, "c1", domain.RoleCustomer),
		map[string]interface{}{"note": "Hàng không đúng mô tả"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, resp.Success)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/reports/r1/evidence", token(t, "c1", domain.RoleCustomer),
		map[string]interface{}{"unknown": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunActionWithoutUser(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil).WithContext(context.Background())
	runAction(rec, req, nil, domain.Action{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
