package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/heartlog/internal/domain/sample"
	"github.com/stretchr/testify/require"
)

func insertSample(t *testing.T, repo *SampleRepository, date, start int64, hr *int64, rr *string) int64 {
	t.Helper()
	id, err := repo.Insert(context.Background(), &sample.Sample{
		CaptureTime:  date,
		SessionStart: start,
		HeartRate:    hr,
		BeatInterval: rr,
	})
	require.NoError(t, err)
	require.Greater(t, id, int64(0))
	return id
}

func TestSampleRepository_ListBySessionStart(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewSampleRepository(db)

	insertSample(t, repo, 1000, 1000, sample.Int64(60), sample.String("1.0"))
	insertSample(t, repo, 9000, 9000, sample.Int64(70), nil)
	insertSample(t, repo, 2000, 1000, nil, sample.String("0.9"))

	samples, err := repo.ListBySessionStart(ctx, 1000)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	require.Equal(t, int64(1000), samples[0].CaptureTime)
	require.Equal(t, int64(60), *samples[0].HeartRate)
	require.Equal(t, "1.0", *samples[0].BeatInterval)
	require.Nil(t, samples[1].HeartRate)
	require.Equal(t, "0.9", *samples[1].BeatInterval)

	hrOnly, err := repo.ListHeartRateBySessionStart(ctx, 9000)
	require.NoError(t, err)
	require.Len(t, hrOnly, 1)
	require.Equal(t, int64(70), *hrOnly[0].HeartRate)
	require.Nil(t, hrOnly[0].BeatInterval)
}

func TestSampleRepository_SessionBounds(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewSampleRepository(db)

	insertSample(t, repo, 9000, 9000, sample.Int64(1), nil)
	insertSample(t, repo, 1000, 1000, sample.Int64(1), nil)
	insertSample(t, repo, 5000, 1000, sample.Int64(1), nil)
	insertSample(t, repo, 9500, 9000, sample.Int64(1), nil)
	insertSample(t, repo, 3000, 1000, sample.Int64(1), nil)

	bounds, err := repo.SessionBounds(ctx)
	require.NoError(t, err)
	require.Equal(t, []sample.Bounds{{Start: 9000, End: 9500}, {Start: 1000, End: 5000}}, bounds)
}

func TestSampleRepository_LenientScan(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewSampleRepository(db)

	// SQLite keeps whatever type is written, so simulate damaged columns.
	_, err := db.ExecContext(ctx,
		`INSERT INTO samples (date, start_date, hr, rr) VALUES ('garbage', 7, 'fast', 12)`)
	require.NoError(t, err)

	samples, err := repo.ScanAll(ctx)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	require.Equal(t, sample.InvalidDate, samples[0].CaptureTime)
	require.False(t, samples[0].HasCaptureTime())
	require.Equal(t, int64(7), samples[0].SessionStart)
	require.Nil(t, samples[0].HeartRate)
	require.Equal(t, "12", *samples[0].BeatInterval)
}

func TestSampleRepository_DeleteAndRecreate(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewSampleRepository(db)

	insertSample(t, repo, 1, 1, nil, nil)
	insertSample(t, repo, 2, 1, nil, nil)
	insertSample(t, repo, 3, 3, nil, nil)

	n, err := repo.DeleteBySessionStart(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	all, err := repo.ScanAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, repo.RecreateTable(ctx))
	all, err = repo.ScanAll(ctx)
	require.NoError(t, err)
	require.Empty(t, all)

	id := insertSample(t, repo, 4, 4, sample.Int64(sample.InvalidInt), sample.String(""))
	require.Equal(t, int64(1), id, "ids restart after recreate")
}
