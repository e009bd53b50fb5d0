package middleware

import (
	"CaseKeeper/internal/model"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	CookieName = "auth_token"
	tokenTTL   = 12 * time.Hour
)

type ctxKey struct{}

// Identity аутентифицированный пользователь из токена.
type Identity struct {
	UserID string
	Role   model.Role
}

type claims struct {
	jwt.RegisteredClaims
	Role model.Role `json:"role"`
}

// BuildToken подписывает JWT (HS256) для пользователя.
func BuildToken(userID string, role model.Role, secret string) (string, error) {
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
		Role: role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

// ParseToken проверяет подпись и срок действия.
func ParseToken(token, secret string) (Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, err
	}
	if c.Subject == "" {
		return Identity{}, errors.New("token without subject")
	}
	if _, ok := model.ParseRole(string(c.Role)); !ok {
		return Identity{}, errors.New("token with unknown role")
	}
	return Identity{UserID: c.Subject, Role: c.Role}, nil
}

// SetLoginCookie выставляет cookie с токеном.
func SetLoginCookie(w http.ResponseWriter, userID string, role model.Role, secret string) error {
	token, err := BuildToken(userID, role, secret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(tokenTTL),
	})
	return nil
}

// ClearLoginCookie удаляет cookie.
func ClearLoginCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// WithAuth кладёт Identity в контекст при валидном cookie. Анонимные запросы пропускает.
func WithAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(CookieName)
			if err == nil && c.Value != "" {
				if id, err := ParseToken(c.Value, secret); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetIdentityFromContext достаёт пользователя, положенного WithAuth.
func GetIdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// GetUserIDFromContext id пользователя из контекста.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := GetIdentityFromContext(ctx)
	return id.UserID, ok
}
