package identity

import (
	"context"
	"errors"

	"github.com/focushive/hivetimer/internal/ports"
)

// ErrUnknownToken is returned for tokens not in the static map.
var ErrUnknownToken = errors.New("unknown token")

// StaticVerifier maps pre-shared tokens to user ids. Suited to single-box
// deployments where an identity provider is overkill.
type StaticVerifier struct {
	tokens map[string]string
}

// Ensure the port is met.
var _ ports.TokenVerifier = (*StaticVerifier)(nil)

// NewStaticVerifier creates a verifier over a token -> user id map.
func NewStaticVerifier(tokens map[string]string) *StaticVerifier {
	owned := make(map[string]string, len(tokens))
	for token, user := range tokens {
		owned[token] = user
	}
	return &StaticVerifier{tokens: owned}
}

// Verify looks the token up in the static map.
func (v *StaticVerifier) Verify(ctx context.Context, token string) (string, error) {
	user, ok := v.tokens[token]
	if !ok {
		return "", ErrUnknownToken
	}
	return user, nil
}
