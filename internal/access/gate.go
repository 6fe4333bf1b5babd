// Package access decides whether a caller may run an action.
package access

import (
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/auth"
)

// HomeRoute is where callers failing a gate are sent.
const HomeRoute = "/"

// Gate holds the configured administrator identity.
type Gate struct {
	adminID string
}

func NewGate(adminID string) Gate {
	return Gate{adminID: strings.TrimSpace(adminID)}
}

// RequireAuthenticated returns the caller when one is present.
func (g Gate) RequireAuthenticated(caller *auth.Identity) (auth.Identity, bool) {
	if caller == nil || strings.TrimSpace(caller.UserID) == "" {
		return auth.Identity{}, false
	}
	return *caller, true
}

// RequireAdmin returns the caller when it is the administrator.
func (g Gate) RequireAdmin(caller *auth.Identity) (auth.Identity, bool) {
	identity, ok := g.RequireAuthenticated(caller)
	if !ok || g.adminID == "" || identity.UserID != g.adminID {
		return auth.Identity{}, false
	}
	return identity, true
}
