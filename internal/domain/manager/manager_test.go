package manager_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rpggio/heartlog/internal/clock"
	"github.com/rpggio/heartlog/internal/domain/activity"
	"github.com/rpggio/heartlog/internal/domain/export"
	"github.com/rpggio/heartlog/internal/domain/manager"
	"github.com/rpggio/heartlog/internal/domain/restore"
	"github.com/rpggio/heartlog/internal/domain/sample"
	"github.com/rpggio/heartlog/internal/domain/session"
	"github.com/rpggio/heartlog/internal/sqlite"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	mgr      *manager.Manager
	store    *sqlite.SampleRepository
	dir      string
	changes  []session.Session
	restorer *gatedRestorer
}

// gatedRestorer delegates to a real restore once release is closed.
type gatedRestorer struct {
	inner   *restore.Service
	release chan struct{}
}

func (g *gatedRestorer) Restore(ctx context.Context, path string) restore.Result {
	<-g.release
	return g.inner.Restore(ctx, path)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations())

	f := &fixture{
		store: sqlite.NewSampleRepository(db),
		dir:   t.TempDir(),
	}
	f.restorer = &gatedRestorer{
		inner:   restore.NewService(f.store, ",", nil),
		release: make(chan struct{}),
	}
	exporter := export.NewService(f.store, export.Options{
		Dir:      f.dir,
		Location: time.UTC,
		Clock:    clock.Fixed(time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)),
	}, nil)
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), nil)

	f.mgr = manager.New(f.store, exporter, restore.NewRunner(f.restorer, clock.Fixed(time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)), nil), activitySvc, manager.Options{
		Location:          time.UTC,
		OnSelectionChange: func(s session.Session) { f.changes = append(f.changes, s) },
	}, nil)
	return f
}

func (f *fixture) seed(t *testing.T, rows ...sample.Sample) {
	t.Helper()
	for i := range rows {
		_, err := f.store.Insert(context.Background(), &rows[i])
		require.NoError(t, err)
	}
}

func row(date, start, hr int64) sample.Sample {
	return sample.Sample{CaptureTime: date, SessionStart: start, HeartRate: sample.Int64(hr), BeatInterval: sample.String("0.9")}
}

func names(sessions []session.Session) []string {
	var out []string
	for _, s := range sessions {
		out = append(out, s.Name)
	}
	return out
}

func TestManager_RefreshAndSelect(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, row(9000, 9000, 70), row(1000, 1000, 60), row(5000, 1000, 61))

	sessions, err := f.mgr.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	late, early := sessions[0], sessions[1]
	require.Equal(t, int64(9000), late.StartTime)
	require.Equal(t, int64(5000), early.EndTime)

	sessions, err = f.mgr.Select([]string{early.Name, "BCM-missing"}, true)
	require.ErrorIs(t, err, session.ErrSessionNotFound)
	require.True(t, sessions[1].Selected)
	require.False(t, sessions[0].Selected)
	require.Equal(t, []string{early.Name}, names(f.changes))

	sessions, err = f.mgr.SelectAll(true)
	require.NoError(t, err)
	require.True(t, sessions[0].Selected && sessions[1].Selected)
	require.Len(t, f.changes, 2, "only sessions whose selection changed notify")

	sessions, err = f.mgr.Refresh(ctx)
	require.NoError(t, err)
	require.False(t, sessions[0].Selected, "refresh builds a fresh catalog")
}

func TestManager_ExportRecordsActivity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, row(1000, 1000, 60), row(9000, 9000, 70))
	_, err := f.mgr.Refresh(ctx)
	require.NoError(t, err)

	_, err = f.mgr.ExportCSV(ctx)
	require.ErrorIs(t, err, manager.ErrNothingSelected)

	_, err = f.mgr.SelectAll(true)
	require.NoError(t, err)
	report, err := f.mgr.ExportCombined(ctx)
	require.NoError(t, err)
	require.True(t, report.OK())
	require.FileExists(t, filepath.Join(f.dir, report.Files[0]))

	entries, err := f.mgr.RecentActivity(ctx, activity.ListActivityOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, activity.TypeExportCombined, entries[0].ActivityType)
	require.False(t, entries[0].Failed)
	require.Equal(t, activity.TypeExportCSV, entries[1].ActivityType)
	require.True(t, entries[1].Failed)
}

func TestManager_Discard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, row(1000, 1000, 60), row(2000, 1000, 61), row(9000, 9000, 70))
	sessions, err := f.mgr.Refresh(ctx)
	require.NoError(t, err)

	_, err = f.mgr.Discard(ctx)
	require.ErrorIs(t, err, manager.ErrNothingSelected)

	_, err = f.mgr.Select([]string{sessions[0].Name}, true)
	require.NoError(t, err)
	result, err := f.mgr.Discard(ctx)
	require.NoError(t, err)
	require.True(t, result.OK())
	require.Equal(t, int64(2), result.Rows)

	remaining, err := f.mgr.Sessions()
	require.NoError(t, err)
	require.Equal(t, []string{sessions[1].Name}, names(remaining))
}

func TestManager_RestoreGatesCatalog(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, row(1000, 1000, 60), row(9000, 9000, 70))
	_, err := f.mgr.Refresh(ctx)
	require.NoError(t, err)

	report, err := f.mgr.Backup(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"BCMDatabase-20240304-050607.txt"}, report.Files)

	_, err = f.mgr.SelectAll(true)
	require.NoError(t, err)
	_, err = f.mgr.Discard(ctx)
	require.NoError(t, err)
	sessions, err := f.mgr.Sessions()
	require.NoError(t, err)
	require.Empty(t, sessions)

	backups, err := f.mgr.Backups()
	require.NoError(t, err)
	require.Len(t, backups, 1)

	done := make(chan restore.Result, 1)
	run, ok, err := f.mgr.StartRestore(ctx, backups[0].Name, func(r restore.Result) { done <- r })
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, f.mgr.Busy())

	_, err = f.mgr.Sessions()
	require.ErrorIs(t, err, manager.ErrRestoreInProgress)
	_, err = f.mgr.ExportGPX(ctx)
	require.ErrorIs(t, err, manager.ErrRestoreInProgress)
	_, err = f.mgr.Backup(ctx)
	require.ErrorIs(t, err, manager.ErrRestoreInProgress)

	again, ok, err := f.mgr.StartRestore(ctx, backups[0].Name, nil)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, again)

	status := f.mgr.RestoreStatus()
	require.True(t, status.Busy)
	require.Same(t, run, status.Current)

	close(f.restorer.release)
	select {
	case result := <-done:
		require.True(t, result.OK(), result.Message())
		require.Equal(t, 2, result.Restored)
	case <-time.After(5 * time.Second):
		t.Fatal("restore did not complete")
	}
	<-run.Done()

	sessions, err = f.mgr.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2, "catalog rebuilt after restore")

	status = f.mgr.RestoreStatus()
	require.False(t, status.Busy)
	require.NotNil(t, status.Result)
	require.Equal(t, 2, status.Result.Restored)

	typ := activity.TypeRestore
	entries, err := f.mgr.RecentActivity(ctx, activity.ListActivityOptions{ActivityType: &typ})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Contains(t, entries[0].Summary, "Restored 2 lines")
}

func TestManager_StartRestoreMissingFile(t *testing.T) {
	f := newFixture(t)

	_, ok, err := f.mgr.StartRestore(context.Background(), "BCMDatabase-none.txt", nil)
	require.False(t, ok)
	require.True(t, errors.Is(err, restore.ErrBackupNotFound))
	require.False(t, f.mgr.Busy())

	require.NoError(t, os.Mkdir(filepath.Join(f.dir, "BCMDatabase-dir.txt"), 0o755))
	_, _, err = f.mgr.StartRestore(context.Background(), "BCMDatabase-dir.txt", nil)
	require.ErrorIs(t, err, restore.ErrBackupNotFound)
}

func TestManager_StartRestoreOnlyAcceptsDataDirBackups(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	outside := t.TempDir()
	outsideBackup := filepath.Join(outside, "BCMDatabase-20240101-000000.txt")
	require.NoError(t, os.WriteFile(outsideBackup, []byte("1,1,60,0.8,\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "notes.txt"), []byte("1,1,60,0.8,\n"), 0o644))

	rel, err := filepath.Rel(f.dir, outsideBackup)
	require.NoError(t, err)

	for _, file := range []string{
		"notes.txt",
		filepath.Join(f.dir, "notes.txt"),
		outsideBackup,
		rel,
	} {
		run, ok, err := f.mgr.StartRestore(ctx, file, nil)
		require.ErrorIs(t, err, restore.ErrBackupNotFound, "file %q", file)
		require.False(t, ok)
		require.Nil(t, run)
	}
	require.False(t, f.mgr.Busy())

	report, err := f.mgr.Backup(ctx)
	require.NoError(t, err)
	close(f.restorer.release)

	run, ok, err := f.mgr.StartRestore(ctx, filepath.Join(f.dir, report.Files[0]), nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, filepath.Join(f.dir, report.Files[0]), run.File)
	<-run.Done()
}
