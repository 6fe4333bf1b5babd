package auth

import "github.com/golang-jwt/jwt/v5"

// SessionTokenPayload captures the data available when minting a session token.
type SessionTokenPayload struct {
	UserID    string
	Email     string
	SessionID string
}

// SessionTokenClaims mirrors the claims set issued by the identity provider.
type SessionTokenClaims struct {
	Email           string `json:"email,omitempty"`
	SessionID       string `json:"sid,omitempty"`
	AuthorizedParty string `json:"azp,omitempty"`
	jwt.RegisteredClaims
}
