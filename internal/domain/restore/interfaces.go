package restore

import (
	"context"

	"github.com/rpggio/heartlog/internal/domain/sample"
)

// Store is the write side of the record store used by restore.
type Store interface {
	RecreateTable(ctx context.Context) error
	Insert(ctx context.Context, s *sample.Sample) (int64, error)
}
