package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/AnshRaj112/socialapp-backend/internal/apperr"
	"github.com/AnshRaj112/socialapp-backend/internal/models"
)

// CookieName is the cookie that carries the access token.
const CookieName = "jwt"

type contextKey int

const (
	userKey contextKey = iota
	tokenKey
)

// TokenResolver turns an access token into the calling user.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// TokenFromRequest returns the token from the jwt cookie, falling back to an
// Authorization: Bearer header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireAuth rejects requests without a valid token and stores the caller
// in the request context.
func RequireAuth(gate TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			user, err := gate.Resolve(r.Context(), token)
			if err != nil {
				writeError(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom returns the caller stored by RequireAuth, or nil.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

func TokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.HTTPStatus(apperr.KindOf(err)))
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "error",
		"message": apperr.PublicMessage(err),
	})
}
