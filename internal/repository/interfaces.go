package repository

import (
	"context"

	"github.com/rpggio/heartlog/internal/domain/activity"
	"github.com/rpggio/heartlog/internal/domain/sample"
)

// SampleRepository is the record store holding every captured sample.
// All list operations return rows in store (insertion) order.
type SampleRepository interface {
	ListBySessionStart(ctx context.Context, start int64) ([]sample.Sample, error)
	ListHeartRateBySessionStart(ctx context.Context, start int64) ([]sample.Sample, error)
	SessionBounds(ctx context.Context) ([]sample.Bounds, error)
	ScanAll(ctx context.Context) ([]sample.Sample, error)
	DeleteBySessionStart(ctx context.Context, start int64) (int64, error)
	RecreateTable(ctx context.Context) error
	Insert(ctx context.Context, s *sample.Sample) (int64, error)
}

// ActivityRepository manages operation log persistence
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
	List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}
