package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// MintSessionToken issues an HS256 session token. Local development and tests use it
// in place of the hosted identity provider.
func MintSessionToken(cfg config.AuthConfig, now time.Time, payload SessionTokenPayload) (string, error) {
	if cfg.HMACSecret == "" {
		return "", fmt.Errorf("hmac secret is required")
	}
	if cfg.ExpirationMinutes <= 0 {
		return "", fmt.Errorf("token expiration minutes must be positive")
	}
	if strings.TrimSpace(payload.UserID) == "" {
		return "", fmt.Errorf("user id is required")
	}

	sid := strings.TrimSpace(payload.SessionID)
	if sid == "" {
		sid = uuid.NewString()
	}

	claims := SessionTokenClaims{
		Email:           payload.Email,
		SessionID:       sid,
		AuthorizedParty: cfg.AuthorizedParty,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   payload.UserID,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.HMACSecret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseSessionToken validates an HS256 session token and returns typed claims.
func ParseSessionToken(cfg config.AuthConfig, tokenString string) (*SessionTokenClaims, error) {
	if cfg.HMACSecret == "" {
		return nil, fmt.Errorf("hmac secret is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := &SessionTokenClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.HMACSecret), nil
		},
		opts...,
	)
	if err != nil {
		return nil, err
	}
	if cfg.AuthorizedParty != "" && claims.AuthorizedParty != cfg.AuthorizedParty {
		return nil, fmt.Errorf("unexpected authorized party %q", claims.AuthorizedParty)
	}

	return claims, nil
}

// HMACVerifier verifies tokens minted by MintSessionToken.
type HMACVerifier struct {
	cfg config.AuthConfig
}

func NewHMACVerifier(cfg config.AuthConfig) (*HMACVerifier, error) {
	if cfg.HMACSecret == "" {
		return nil, fmt.Errorf("hmac secret is required")
	}
	return &HMACVerifier{cfg: cfg}, nil
}

func (v *HMACVerifier) Verify(_ context.Context, tokenString string) (Identity, error) {
	claims, err := ParseSessionToken(v.cfg, tokenString)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return Identity{
		UserID:    claims.Subject,
		Email:     claims.Email,
		SessionID: claims.SessionID,
	}, nil
}
