package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"marketplace-backend/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessCookie carries the token for browser sessions.
const AccessCookie = "accessToken"

var (
	ErrNoToken     = errors.New("no token found")
	ErrUnknownRole = errors.New("token has unknown role")
)

// Tokens are issued by the identity service; the API only validates them.
// GenerateJWT is kept for tooling and tests.
var secretKey []byte

func SetSecret(key string) {
	secretKey = []byte(key)
}

// Claims is the principal an access token describes.
type Claims struct {
	UserID string
	Email  string
	Role   string
}

func (c *Claims) User() *domain.User {
	return &domain.User{ID: c.UserID, Email: c.Email, Role: c.Role}
}

type accessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

var knownRoles = map[string]bool{
	domain.RoleAdmin:    true,
	domain.RoleSeller:   true,
	domain.RoleCustomer: true,
}

func GenerateJWT(userID, email, role string, expiry time.Duration) (string, error) {
	if len(secretKey) == 0 {
		return "", fmt.Errorf("jwt secret not set")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	})
	return token.SignedString(secretKey)
}

// ValidateJWT accepts HMAC-signed, unexpired tokens with a subject and a known role.
func ValidateJWT(tokenString string) (*Claims, error) {
	var ac accessClaims
	_, err := jwt.ParseWithClaims(tokenString, &ac, func(*jwt.Token) (interface{}, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil {
		return nil, err
	}
	if ac.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	if !knownRoles[ac.Role] {
		return nil, ErrUnknownRole
	}
	return &Claims{UserID: ac.Subject, Email: ac.Email, Role: ac.Role}, nil
}

// TokenFromRequest prefers the Authorization bearer over the cookie.
func TokenFromRequest(r *http.Request) string {
	if tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(tok)
	}
	if c, err := r.Cookie(AccessCookie); err == nil {
		return c.Value
	}
	return ""
}

func ExtractClaims(r *http.Request) (*Claims, error) {
	tok := TokenFromRequest(r)
	if tok == "" {
		return nil, ErrNoToken
	}
	return ValidateJWT(tok)
}

func GenerateUUID() string {
	return uuid.NewString()
}
