package middleware

import (
	"context"
	"net/http"

	"marketplace-backend/internal/domain"
	"marketplace-backend/pkg/apperr"
	"marketplace-backend/pkg/logger"
	"marketplace-backend/pkg/utils"
)

// AuthMiddleware accepts a bearer token or the accessToken cookie and puts the
// claimed user in the request context. Roles come from the token, not the DB.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := utils.TokenFromRequest(r)
		if tokenString == "" {
			utils.WriteError(w, apperr.UnauthorizedErr("Vui lòng đăng nhập"))
			return
		}

		claims, err := utils.ValidateJWT(tokenString)
		if err != nil {
			utils.WriteError(w, apperr.UnauthorizedErr("Phiên đăng nhập không hợp lệ hoặc đã hết hạn"))
			return
		}
		user := claims.User()

		ctx := context.WithValue(r.Context(), domain.UserContextKey, user)
		if l := logger.WithContext(ctx); l != nil {
			ul := logger.WithUserID(*l, user.ID)
			ctx = logger.NewContext(ctx, &ul)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFrom returns the authenticated user, or nil outside AuthMiddleware.
func UserFrom(ctx context.Context) *domain.User {
	u, _ := ctx.Value(domain.UserContextKey).(*domain.User)
	return u
}

// RequireRole admits only the listed roles. It must run after AuthMiddleware.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFrom(r.Context())
			if user == nil {
				utils.WriteError(w, apperr.UnauthorizedErr("Vui lòng đăng nhập"))
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			utils.WriteError(w, apperr.ForbiddenErr("Bạn không có quyền truy cập"))
		})
	}
}

// AdminMiddleware ensures the authenticated user has the admin role.
func AdminMiddleware(next http.Handler) http.Handler {
	return RequireRole(domain.RoleAdmin)(next)
}
