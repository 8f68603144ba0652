package restore_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rpggio/heartlog/internal/clock"
	"github.com/rpggio/heartlog/internal/domain/restore"
	"github.com/stretchr/testify/require"
)

// blockingRestorer holds every restore until release is closed.
type blockingRestorer struct {
	release chan struct{}
	calls   atomic.Int32
	ctxErr  error
}

func (b *blockingRestorer) Restore(ctx context.Context, path string) restore.Result {
	b.calls.Add(1)
	<-b.release
	b.ctxErr = ctx.Err()
	return restore.Result{File: path, Lines: 3, Restored: 3}
}

func TestRunner_SingleSlot(t *testing.T) {
	restorer := &blockingRestorer{release: make(chan struct{})}
	startedAt := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	runner := restore.NewRunner(restorer, clock.Fixed(startedAt), nil)

	var started, finished atomic.Int32
	cb := restore.Callbacks{
		OnStart: func(*restore.Run) { started.Add(1) },
		OnDone:  func(*restore.Run, restore.Result) { finished.Add(1) },
	}

	run, ok := runner.Start(context.Background(), "first.txt", cb)
	require.True(t, ok)
	require.NotEmpty(t, run.ID)
	require.Equal(t, startedAt, run.StartedAt)
	require.Equal(t, int32(1), started.Load(), "OnStart runs before Start returns")
	require.True(t, runner.Busy())
	require.Same(t, run, runner.Current())

	again, ok := runner.Start(context.Background(), "second.txt", cb)
	require.False(t, ok)
	require.Nil(t, again)
	require.Equal(t, int32(1), started.Load())

	_, done := run.Result()
	require.False(t, done)

	close(restorer.release)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := run.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, "first.txt", result.File)
	require.Equal(t, 3, result.Restored)

	require.False(t, runner.Busy())
	require.Nil(t, runner.Current())
	require.Same(t, run, runner.Last())
	require.Equal(t, int32(1), finished.Load())
	require.Equal(t, int32(1), restorer.calls.Load())
}

func TestRunner_IgnoresCallerCancellation(t *testing.T) {
	restorer := &blockingRestorer{release: make(chan struct{})}
	runner := restore.NewRunner(restorer, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	run, ok := runner.Start(ctx, "backup.txt", restore.Callbacks{})
	require.True(t, ok)
	cancel()
	close(restorer.release)

	select {
	case <-run.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("restore did not finish")
	}
	require.NoError(t, restorer.ctxErr)

	result, ok := run.Result()
	require.True(t, ok)
	require.True(t, result.OK())
}

func TestRunner_AcceptsStartAfterCompletion(t *testing.T) {
	restorer := &blockingRestorer{release: make(chan struct{})}
	close(restorer.release)
	runner := restore.NewRunner(restorer, nil, nil)

	first, ok := runner.Start(context.Background(), "a.txt", restore.Callbacks{})
	require.True(t, ok)
	<-first.Done()

	second, ok := runner.Start(context.Background(), "b.txt", restore.Callbacks{})
	require.True(t, ok)
	<-second.Done()
	require.Equal(t, int32(2), restorer.calls.Load())
	require.Same(t, second, runner.Last())
}
