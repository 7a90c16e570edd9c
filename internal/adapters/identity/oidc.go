// Package identity resolves bearer tokens to user ids.
package identity

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/focushive/hivetimer/internal/ports"
)

// OIDCVerifier validates ID tokens issued by an OpenID Connect provider
// and maps them to the subject claim.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// Ensure the port is met.
var _ ports.TokenVerifier = (*OIDCVerifier)(nil)

// NewOIDCVerifier discovers the issuer's keys and builds a verifier for
// tokens minted for the given client id.
func NewOIDCVerifier(ctx context.Context, issuerURL, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover oidc provider: %w", err)
	}
	return &OIDCVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// Verify checks the token's signature, issuer, audience and expiry, and
// returns the stable subject as the user id.
func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (string, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return "", fmt.Errorf("failed to verify token: %w", err)
	}

	var claims struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return "", fmt.Errorf("failed to parse claims: %w", err)
	}
	if claims.Sub == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return claims.Sub, nil
}
