package mocks

import (
	"context"

	"github.com/rpggio/heartlog/internal/domain/activity"
	"github.com/rpggio/heartlog/internal/domain/sample"
	"github.com/stretchr/testify/mock"
)

// SampleRepository is a mock for repository.SampleRepository.
type SampleRepository struct {
	mock.Mock
}

func (m *SampleRepository) ListBySessionStart(ctx context.Context, start int64) ([]sample.Sample, error) {
	args := m.Called(ctx, start)
	if list, ok := args.Get(0).([]sample.Sample); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SampleRepository) ListHeartRateBySessionStart(ctx context.Context, start int64) ([]sample.Sample, error) {
	args := m.Called(ctx, start)
	if list, ok := args.Get(0).([]sample.Sample); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SampleRepository) SessionBounds(ctx context.Context) ([]sample.Bounds, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]sample.Bounds); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SampleRepository) ScanAll(ctx context.Context) ([]sample.Sample, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]sample.Sample); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SampleRepository) DeleteBySessionStart(ctx context.Context, start int64) (int64, error) {
	args := m.Called(ctx, start)
	return args.Get(0).(int64), args.Error(1)
}

func (m *SampleRepository) RecreateTable(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *SampleRepository) Insert(ctx context.Context, s *sample.Sample) (int64, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(int64), args.Error(1)
}

// ActivityRepository is a mock for repository.ActivityRepository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
