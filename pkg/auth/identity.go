package auth

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned by verifiers for any token that cannot be trusted.
var ErrInvalidToken = errors.New("invalid session token")

// Identity is the authenticated caller as asserted by the identity provider.
type Identity struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// Verifier validates a session token and returns the identity it carries.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}
