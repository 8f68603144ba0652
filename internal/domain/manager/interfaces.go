package manager

import (
	"context"

	"github.com/rpggio/heartlog/internal/domain/session"
)

// Store is the part of the record store the manager uses directly.
// Exports and restores reach the store through their own services.
type Store interface {
	session.BoundsSource
	DeleteBySessionStart(ctx context.Context, start int64) (int64, error)
}
