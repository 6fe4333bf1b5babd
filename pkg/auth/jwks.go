package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// JWKSVerifier validates RS256 session tokens against the identity provider's key set.
// The key set is cached and refetched at most once per minInterval.
type JWKSVerifier struct {
	mu sync.RWMutex

	jwksURL         string
	issuer          string
	authorizedParty string

	cachedSet     jwk.Set
	lastRefreshed time.Time
	minInterval   time.Duration
}

func NewJWKSVerifier(ctx context.Context, cfg config.AuthConfig) (*JWKSVerifier, error) {
	if cfg.JWKSURL == "" {
		return nil, fmt.Errorf("jwks url is required")
	}
	v := &JWKSVerifier{
		jwksURL:         cfg.JWKSURL,
		issuer:          cfg.Issuer,
		authorizedParty: cfg.AuthorizedParty,
		minInterval:     cfg.JWKSMinInterval,
	}
	if _, err := v.keySet(ctx); err != nil {
		return nil, fmt.Errorf("initial JWKS fetch failed: %w", err)
	}
	return v, nil
}

func (v *JWKSVerifier) keySet(ctx context.Context) (jwk.Set, error) {
	v.mu.RLock()
	if v.cachedSet != nil && time.Since(v.lastRefreshed) < v.minInterval {
		set := v.cachedSet
		v.mu.RUnlock()
		return set, nil
	}
	v.mu.RUnlock()

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cachedSet != nil && time.Since(v.lastRefreshed) < v.minInterval {
		return v.cachedSet, nil
	}
	set, err := jwk.Fetch(ctx, v.jwksURL)
	if err != nil {
		// keep serving the last good set while the provider is unreachable
		if v.cachedSet != nil {
			return v.cachedSet, nil
		}
		return nil, fmt.Errorf("fetching JWKS from %s: %w", v.jwksURL, err)
	}
	v.cachedSet = set
	v.lastRefreshed = time.Now()
	return set, nil
}

func (v *JWKSVerifier) Verify(ctx context.Context, tokenString string) (Identity, error) {
	set, err := v.keySet(ctx)
	if err != nil {
		return Identity{}, err
	}

	opts := []jwt.ParseOption{
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.authorizedParty != "" {
		opts = append(opts, jwt.WithClaimValue("azp", v.authorizedParty))
	}

	token, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	identity := Identity{UserID: subject}
	var email, sid string
	if err := token.Get("email", &email); err == nil {
		identity.Email = email
	}
	if err := token.Get("sid", &sid); err == nil {
		identity.SessionID = sid
	}
	return identity, nil
}

// NewVerifier builds the verifier selected by configuration.
func NewVerifier(ctx context.Context, cfg config.AuthConfig) (Verifier, error) {
	if cfg.UsesJWKS() {
		return NewJWKSVerifier(ctx, cfg)
	}
	return NewHMACVerifier(cfg)
}
