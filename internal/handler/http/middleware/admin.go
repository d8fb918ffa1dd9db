package middleware

import (
	"net/http"

	"github.com/guardline/roster-backend/internal/domain/user"
	"github.com/guardline/roster-backend/internal/handler/http/response"
)

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := PrincipalFromRequest(r)
		if err != nil {
			response.HandleError(w, err)
			return
		}

		if !principal.IsAdmin() {
			response.HandleError(w, user.ErrAdminPrivilegeRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
