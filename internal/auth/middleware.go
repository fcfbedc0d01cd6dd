package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/taskweave/taskweave/internal/api"
)

type contextKey struct{}

var claimsKey contextKey

// Middleware rejects requests without a valid bearer token and stores the
// verified claims on the request context.
func Middleware(jwtManager *JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				api.HandleError(w, api.ErrUnauthorized)
				return
			}

			claims, err := jwtManager.Verify(raw)
			if err != nil {
				api.HandleError(w, api.ErrInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

// GetUserClaims returns the claims stored by Middleware, or nil.
func GetUserClaims(ctx context.Context) *AccessClaims {
	claims, _ := ctx.Value(claimsKey).(*AccessClaims)
	return claims
}
