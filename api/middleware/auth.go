package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Identity resolves the caller from a bearer token or the session cookie. A
// missing or unverifiable token leaves the request anonymous; the action gates
// decide what an anonymous caller may do.
func Identity(verifier auth.Verifier, cookieName string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r, cookieName)
			if token == "" || verifier == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			identity, err := verifier.Verify(ctx, token)
			if err != nil {
				if logg != nil {
					logg.Debug(logg.WithField(ctx, "reason", err.Error()), "session token rejected")
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx = WithIdentity(ctx, identity)
			if logg != nil {
				ctx = logg.WithUserID(ctx, identity.UserID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionToken(r *http.Request, cookieName string) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw != "" {
		if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
			raw = strings.TrimSpace(raw[7:])
		}
		return raw
	}
	if cookieName == "" {
		return ""
	}
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}
