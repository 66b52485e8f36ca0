package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/config"
)

type contextKey string

const claimsKey contextKey = "user_claims"

const CronSecretHeader = "X-Cron-Secret"

var ErrNoClaims = errors.New("no user claims in context")

func WithClaims(ctx context.Context, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, claimsKey, claims)
	return config.ContextWithUserID(ctx, claims.UserID)
}

func GetUserClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	if !ok || claims == nil {
		return nil, ErrNoClaims
	}
	return claims, nil
}

func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := r.Cookie("jwt"); err == nil {
		return cookie.Value
	}
	return ""
}

func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := tokenFromRequest(r)
		if tokenStr == "" {
			config.WriteError(w, r, apperror.New(apperror.KindUnauthorized, "unauthorized"))
			return
		}

		claims, err := ValidateJWT(tokenStr)
		if err != nil {
			config.WriteError(w, r, apperror.Wrap(apperror.KindUnauthorized, "unauthorized", err))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RequireAdmin rejects callers without the admin role before the handler runs.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := GetUserClaimsFromContext(r.Context())
		if err != nil {
			config.WriteError(w, r, apperror.New(apperror.KindUnauthorized, "unauthorized"))
			return
		}
		if !claims.IsAdmin() {
			config.WriteError(w, r, apperror.New(apperror.KindForbidden, "admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CronSecret gates scheduler endpoints behind a shared secret passed in the
// X-Cron-Secret header or the secret query parameter.
func CronSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				config.WriteError(w, r, apperror.NotConfigured("set CRON_SECRET"))
				return
			}

			provided := r.Header.Get(CronSecretHeader)
			if provided == "" {
				provided = r.URL.Query().Get("secret")
			}
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				config.WriteError(w, r, apperror.New(apperror.KindUnauthorized, "invalid cron secret"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
