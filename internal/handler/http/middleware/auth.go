package middleware

import (
	"net/http"

	"github.com/bpo-ops/ops-backend-go/internal/domain/auth"
	"github.com/bpo-ops/ops-backend-go/internal/handler/http/response"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired lets through only verified access tokens; refresh tokens are rejected.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}
		if token == nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}
		if tokenType, ok := claims["type"].(string); !ok || tokenType != jwt.TokenTypeAccess {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		next.ServeHTTP(w, r)
	})
}
