package middleware

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/internal/access"
)

// RequireUser redirects anonymous callers home before the handler reads the body.
func RequireUser(gate access.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := gate.RequireAuthenticated(IdentityFromContext(r.Context())); !ok {
				responses.WriteRedirect(w, access.HomeRoute)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(gate access.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := gate.RequireAdmin(IdentityFromContext(r.Context())); !ok {
				responses.WriteRedirect(w, access.HomeRoute)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
