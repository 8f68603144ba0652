package export

import (
	"context"

	"github.com/rpggio/heartlog/internal/domain/sample"
)

// Store is the read side of the record store used by exports.
type Store interface {
	ListBySessionStart(ctx context.Context, start int64) ([]sample.Sample, error)
	ListHeartRateBySessionStart(ctx context.Context, start int64) ([]sample.Sample, error)
	ScanAll(ctx context.Context) ([]sample.Sample, error)
}
