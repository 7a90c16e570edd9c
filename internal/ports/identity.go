package ports

import "context"

// TokenVerifier resolves a bearer token to the calling principal's user id.
// The core trusts the resolved identity; authentication mechanics live
// behind this port.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (userID string, err error)
}
