package auth

import (
	"net/http"
	"strings"

	apperrors "github.com/chainsafe/crosschain-issuer/pkg/app/errors"
	apphttp "github.com/chainsafe/crosschain-issuer/pkg/app/http"
)

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*Claims, error)
}

// Middleware rejects requests without a valid bearer token and stores the
// token subject in the request context. A nil validator lets every request
// through.
func Middleware(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if v == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := v.ValidateToken(bearerToken(r))
			if err != nil {
				apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(err, "unauthorized"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithOperator(r.Context(), claims.Subject)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
