package repository

import (
	"context"
	"time"
)

// RevocationStore remembers revoked refresh token ids until they would have expired.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
