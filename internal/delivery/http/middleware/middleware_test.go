package middleware

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketplace-backend/config"
	"marketplace-backend/internal/domain"
	"marketplace-backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func TestAuthMiddlewareSetsUser(t *testing.T) {
	utils.SetSecret("test-secret")
	tok, err := utils.GenerateJWT("u1", "u1@example.vn", domain.RoleSeller, time.Minute)
	require.NoError(t, err)

	var got *domain.User
	h := AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = UserFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: tok})
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, domain.RoleSeller, got.Role)
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	rec := httptest.NewRecorder()
	AuthMiddleware(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(domain.RoleSeller, domain.RoleAdmin)(http.HandlerFunc(okHandler))
	tests := []struct {
		user *domain.User
		want int
	}{
		{nil, http.StatusUnauthorized},
		{&domain.User{ID: "c", Role: domain.RoleCustomer}, http.StatusForbidden},
		{&domain.User{ID: "s", Role: domain.RoleSeller}, http.StatusNoContent},
		{&domain.User{ID: "a", Role: domain.RoleAdmin}, http.StatusNoContent},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.user != nil {
			req = req.WithContext(context.WithValue(req.Context(), domain.UserContextKey, tt.user))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := NewCORSMiddleware(&config.Config{AllowedOrigin: "https://admin.example.vn, https://shop.example.vn"})(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/orders", nil)
	req.Header.Set("Origin", "https://shop.example.vn")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://shop.example.vn", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "If-Match")
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "ETag")

	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	public := NewCORSMiddleware(&config.Config{AllowedOrigin: "*"})(http.HandlerFunc(okHandler))
	rec = httptest.NewRecorder()
	public.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2, time.Minute)
	h := rl.Middleware()(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "198.51.100.2:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// same IP, but an authenticated caller gets its own bucket
	utils.SetSecret("test-secret")
	tok, err := utils.GenerateJWT("admin-1", "admin@example.vn", domain.RoleAdmin, time.Minute)
	require.NoError(t, err)
	authed := httptest.NewRequest(http.MethodGet, "/", nil)
	authed.Header.Set("X-Forwarded-For", "203.0.113.7")
	authed.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, authed)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 3, rl.Callers())
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	RequestLogger(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get("X-Request-ID"), 8)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequestLoggerKeepsIncomingID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "trace-abc")
	RequestLogger(http.HandlerFunc(okHandler)).ServeHTTP(rec, req)
	assert.Equal(t, "trace-abc", rec.Header().Get("X-Request-ID"))
}

func TestCompressSkipsWebsocket(t *testing.T) {
	h := Compress(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := w.(http.Hijacker)
		assert.True(t, ok)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	h.ServeHTTP(&hijackRecorder{httptest.NewRecorder()}, req)
}

type hijackRecorder struct{ *httptest.ResponseRecorder }

func (hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) { return nil, nil, nil }
