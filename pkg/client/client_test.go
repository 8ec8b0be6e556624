package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"marketplace-backend/internal/domain"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, resp domain.Response) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func TestApproveSellerSendsBodyAndVersion(t *testing.T) {
	var (
		gotBody  map[string]interface{}
		gotMatch string
		gotAuth  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/admin/sellers/s1/approve", r.URL.Path)
		gotMatch = r.Header.Get("If-Match")
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeEnvelope(t, w, http.StatusOK, domain.Response{
			Success: true,
			Message: "Xác minh tài khoản thành công!",
			Content: domain.Transition{Entity: domain.EntitySeller, EntityID: "s1", Action: domain.ActionApprove, From: "WAITING", To: "VERIFIED", Version: 4},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("tok"))
	res, err := c.ApproveSeller(IfMatch(context.Background(), 3), "s1", true, false, nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"approve": true, "forceIdentity": false}, gotBody)
	assert.Equal(t, `"3"`, gotMatch)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "Xác minh tài khoản thành công!", res.Message)
	assert.Equal(t, int64(4), res.Transition.Version)
	assert.Equal(t, "VERIFIED", res.Transition.To)
}

func TestErrorEnvelopeBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusBadRequest, domain.Response{
			Message: "Vui lòng nhập lý do",
			Fields:  map[string]string{"reason": "Vui lòng nhập lý do"},
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL).RejectReport(context.Background(), "r1", "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Vui lòng nhập lý do", apiErr.Message)
	assert.Contains(t, apiErr.Fields, "reason")
}

func TestSuccessFalseOn200IsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusOK, domain.Response{Success: false, Message: "Không thành công"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).GetSeller(context.Background(), "s1")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Không thành công", apiErr.Message)
}

func TestNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).GetWithdraw(context.Background(), "w1")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "bad gateway", apiErr.Message)
}

func TestGetOrdersQueryAndDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "Nguyen", q.Get("search"))
		assert.Equal(t, "grandTotal", q.Get("sort"))
		assert.Equal(t, "true", q.Get("asc"))
		assert.False(t, q.Has("status"))
		_, _ = io.WriteString(w, `{"success":true,"content":{"orders":[{"id":"o1","grandTotal":330000,"orderCombos":[],"status":"PENDING","actions":["cancel"]}],"page":2,"maxPage":3,"totalOrders":21}}`)
	}))
	defer srv.Close()

	page, err := New(srv.URL).GetOrders(context.Background(), 2, OrderQuery{Search: "Nguyen", Sort: "grandTotal", Asc: true})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, "o1", page.Orders[0].ID)
	assert.Equal(t, domain.ComboStatus("PENDING"), page.Orders[0].Status)
	assert.Equal(t, "330000", page.Orders[0].GrandTotal.String())
	assert.Equal(t, []domain.ActionKind{domain.ActionCancel}, page.Orders[0].Actions)
	assert.Equal(t, 3, page.MaxPage)
	assert.Equal(t, int64(21), page.TotalOrders)
}

func TestListSellersReadsMeta(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pending", r.URL.Query().Get("badge"))
		writeEnvelope(t, w, http.StatusOK, domain.Response{
			Success: true,
			Content: []domain.SellerProfile{{ID: "s1", ShopName: "Shop A"}},
			Meta:    domain.NewPagination(1, 10, 11),
		})
	}))
	defer srv.Close()

	sellers, p, err := New(srv.URL).ListSellers(context.Background(), 1, SellerQuery{Badge: "pending"})
	require.NoError(t, err)
	require.Len(t, sellers, 1)
	assert.Equal(t, "Shop A", sellers[0].ShopName)
	assert.Equal(t, 2, p.MaxPage)
	assert.Equal(t, int64(11), p.Total)
}

func TestApproveWithdrawUploadsThenApproves(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/api/v1/upload":
			assert.Equal(t, "evidence", r.URL.Query().Get("folder"))
			f, h, err := r.FormFile("file")
			require.NoError(t, err)
			defer f.Close()
			assert.Equal(t, "proof.png", h.Filename)
			assert.Equal(t, "image/png", h.Header.Get("Content-Type"))
			writeEnvelope(t, w, http.StatusCreated, domain.Response{Success: true, Content: map[string]string{"url": "https://cdn.example/evidence/p.webp"}})
		case "/api/v1/admin/withdrawals/w1/approve":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]string{"proofUrl": "https://cdn.example/evidence/p.webp"}, body)
			writeEnvelope(t, w, http.StatusOK, domain.Response{
				Success: true,
				Message: "Xác nhận chuyển tiền thành công!",
				Content: domain.Transition{Entity: domain.EntityWithdrawal, EntityID: "w1", To: "COMPLETED", Version: 3},
			})
		default:
			t.Errorf("unexpected call %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	res, err := New(srv.URL).ApproveWithdraw(context.Background(), "w1", strings.NewReader("png-bytes"), "proof.png")
	require.NoError(t, err)
	assert.Equal(t, []string{"POST /api/v1/upload", "POST /api/v1/admin/withdrawals/w1/approve"}, calls)
	assert.Equal(t, "COMPLETED", res.Transition.To)
}

func TestRejectWithoutReasonSendsNoBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, int64(0), r.ContentLength)
		writeEnvelope(t, w, http.StatusOK, domain.Response{Success: true, Content: domain.Transition{To: "CANCELLED"}})
	}))
	defer srv.Close()

	_, err := New(srv.URL).CancelOrder(context.Background(), "o1", "")
	require.NoError(t, err)
}

func TestGetRetriesOnServerError(t *testing.T) {
	var n int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&n, 1) == 1 {
			writeEnvelope(t, w, http.StatusServiceUnavailable, domain.Response{Message: "busy"})
			return
		}
		writeEnvelope(t, w, http.StatusOK, domain.Response{Success: true, Content: map[string]string{"url": "https://img.vietqr.io/x.png"}})
	}))
	defer srv.Close()

	url, err := New(srv.URL, WithRetry(2, time.Millisecond)).GetWithdrawQR(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, "https://img.vietqr.io/x.png", url)
	assert.Equal(t, int32(2), atomic.LoadInt32(&n))
}

func TestPostsAreNotRetried(t *testing.T) {
	var n int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&n, 1)
		writeEnvelope(t, w, http.StatusInternalServerError, domain.Response{Message: "Đã có lỗi xảy ra, vui lòng thử lại."})
	}))
	defer srv.Close()

	_, err := New(srv.URL, WithRetry(3, time.Millisecond)).AcceptWithdraw(context.Background(), "w1")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&n))
}

func TestExecuteSendsActionBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/admin/actions", r.URL.Path)
		var a domain.Action
		require.NoError(t, json.NewDecoder(r.Body).Decode(&a))
		assert.Equal(t, domain.ActionBan, a.Kind)
		assert.Equal(t, domain.EntitySeller, a.Entity)
		require.NotNil(t, a.ExpectedVersion)
		assert.Equal(t, int64(7), *a.ExpectedVersion)
		writeEnvelope(t, w, http.StatusOK, domain.Response{Success: true, Message: "ok", Content: domain.Transition{Version: 8}})
	}))
	defer srv.Close()

	v := int64(7)
	res, err := New(srv.URL).Execute(context.Background(), domain.Action{Kind: domain.ActionBan, Entity: domain.EntitySeller, EntityID: "s1", ExpectedVersion: &v})
	require.NoError(t, err)
	assert.Equal(t, int64(8), res.Transition.Version)
}

func TestNoBuiltInTimeout(t *testing.T) {
	c := New("http://api.example.vn/")
	assert.Zero(t, c.httpClient.Timeout)
	assert.Equal(t, "http://api.example.vn", c.baseURL)

	custom := &http.Client{Timeout: time.Second}
	assert.Same(t, custom, New("http://x", WithHTTPClient(custom)).httpClient)
}
