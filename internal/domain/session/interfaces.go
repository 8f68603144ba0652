package session

import (
	"context"

	"github.com/rpggio/heartlog/internal/domain/sample"
)

// BoundsSource lists one (start, end) pair per stored session.
type BoundsSource interface {
	SessionBounds(ctx context.Context) ([]sample.Bounds, error)
}
