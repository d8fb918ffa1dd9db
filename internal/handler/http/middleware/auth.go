package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/guardline/roster-backend/internal/domain/user"
	"github.com/guardline/roster-backend/internal/handler/http/response"
	"github.com/guardline/roster-backend/internal/pkg/jwt"
)

// AuthRequired rejects requests without a verified access token. Run after jwtauth.Verifier.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())

		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		if token == nil {
			response.HandleError(w, user.ErrInvalidToken)
			return
		}

		tokenType, ok := claims["type"].(string)
		if tokenType != jwt.TokenTypeAccess || !ok {
			response.HandleError(w, user.ErrInvalidToken)
			return
		}

		if _, err := user.FromClaims(claims); err != nil {
			response.HandleError(w, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// PrincipalFromRequest returns the caller of an authenticated request.
func PrincipalFromRequest(r *http.Request) (user.Principal, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return user.Principal{}, user.ErrInvalidToken
	}
	return user.FromClaims(claims)
}
