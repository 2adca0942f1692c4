package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/tempora-hr/attendance-backend-go/internal/handler/http/response"
	"github.com/tempora-hr/attendance-backend-go/internal/pkg/jwt"
)

// RequireAdmin requires the admin role
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Forbidden(w, "Admin access required")
			return
		}

		role, ok := claims["role"].(string)
		if !ok || role != jwt.RoleAdmin {
			response.Forbidden(w, "Admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
