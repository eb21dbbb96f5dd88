package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/garagem-ai/garagem/internal/api"
)

type contextKey string

const OperatorClaimsKey contextKey = "operator_claims"

// Middleware validates the bearer token and stores the operator claims on
// the request context.
func Middleware(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.HandleError(w, api.ErrUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				api.HandleError(w, api.ErrUnauthorized)
				return
			}

			claims, err := svc.jwt.ValidateToken(parts[1])
			if err != nil {
				api.HandleError(w, api.ErrInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), OperatorClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetOperatorClaims returns the authenticated operator's claims, or nil.
func GetOperatorClaims(ctx context.Context) *OperatorClaims {
	claims, _ := ctx.Value(OperatorClaimsKey).(*OperatorClaims)
	return claims
}
