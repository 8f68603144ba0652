// Package manager is the interactive controller: it owns the session catalog,
// runs exports on the caller's goroutine and hands restores to the background
// runner, refusing catalog work while a restore is in flight.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rpggio/heartlog/internal/domain/activity"
	"github.com/rpggio/heartlog/internal/domain/export"
	"github.com/rpggio/heartlog/internal/domain/restore"
	"github.com/rpggio/heartlog/internal/domain/session"
	"github.com/rpggio/heartlog/internal/format"
)

// Options configures a Manager.
type Options struct {
	Location *time.Location
	// OnSelectionChange is attached to every catalog the manager builds.
	OnSelectionChange func(session.Session)
}

// Manager serialises access to the session catalog.
type Manager struct {
	mu       sync.Mutex
	store    Store
	exporter *export.Service
	runner   *restore.Runner
	activity *activity.Service
	opts     Options
	logger   *slog.Logger

	catalog *session.Catalog
}

// New creates a manager with an empty catalog. Call Refresh to load sessions.
func New(store Store, exporter *export.Service, runner *restore.Runner, activitySvc *activity.Service, opts Options, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	m := &Manager{
		store:    store,
		exporter: exporter,
		runner:   runner,
		activity: activitySvc,
		opts:     opts,
		logger:   logger,
	}
	m.catalog = m.newCatalog()
	return m
}

// DataDir is where exports and backups are written and restores are read.
func (m *Manager) DataDir() string {
	return m.exporter.Dir()
}

// Busy reports whether a restore is running.
func (m *Manager) Busy() bool {
	return m.runner.Busy()
}

// Refresh rebuilds the catalog from the store. Selections are not kept.
// A store failure leaves an empty catalog and is returned.
func (m *Manager) Refresh(ctx context.Context) ([]session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.gate(); err != nil {
		return nil, err
	}
	err := m.rebuild(ctx)
	return m.catalog.Sessions(), err
}

// Sessions returns the catalog in store order.
func (m *Manager) Sessions() ([]session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.gate(); err != nil {
		return nil, err
	}
	return m.catalog.Sessions(), nil
}

// Select sets the selection of the named sessions. Unknown names are
// reported after every known name has been applied.
func (m *Manager) Select(names []string, selected bool) ([]session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.gate(); err != nil {
		return nil, err
	}
	var errs []error
	for _, name := range names {
		if err := m.catalog.SetSelected(name, selected); err != nil {
			errs = append(errs, err)
		}
	}
	return m.catalog.Sessions(), errors.Join(errs...)
}

// SelectAll sets the selection of every session.
func (m *Manager) SelectAll(selected bool) ([]session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.gate(); err != nil {
		return nil, err
	}
	m.catalog.SetAllSelected(selected)
	return m.catalog.Sessions(), nil
}

// ExportCSV writes one CSV file per selected session.
func (m *Manager) ExportCSV(ctx context.Context) (export.Report, error) {
	return m.runExport(ctx, activity.TypeExportCSV, m.exporter.ExportCSV)
}

// ExportCombined writes the selected sessions into one CSV file.
func (m *Manager) ExportCombined(ctx context.Context) (export.Report, error) {
	return m.runExport(ctx, activity.TypeExportCombined, m.exporter.ExportCombined)
}

// ExportGPX writes one GPX track per selected session.
func (m *Manager) ExportGPX(ctx context.Context) (export.Report, error) {
	return m.runExport(ctx, activity.TypeExportGPX, m.exporter.ExportGPX)
}

// Backup writes every stored row to a new backup file. Selection is ignored.
func (m *Manager) Backup(ctx context.Context) (export.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.gate(); err != nil {
		return export.Report{}, err
	}
	report, err := m.exporter.Backup(ctx)
	m.recordReport(ctx, activity.TypeBackup, report, err)
	return report, err
}

func (m *Manager) runExport(ctx context.Context, typ activity.ActivityType, fn func(context.Context, []session.Session) (export.Report, error)) (export.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.gate(); err != nil {
		return export.Report{}, err
	}
	report, err := fn(ctx, m.catalog.Selected())
	m.recordReport(ctx, typ, report, err)
	return report, err
}

// DiscardResult reports the sessions removed from the store.
type DiscardResult struct {
	Sessions []string `json:"sessions"`
	Rows     int64    `json:"rows"`
	Failed   []string `json:"failed,omitempty"`
}

// OK reports whether every selected session was deleted.
func (r DiscardResult) OK() bool {
	return len(r.Failed) == 0
}

// Discard deletes the samples of every selected session and rebuilds the catalog.
func (m *Manager) Discard(ctx context.Context) (DiscardResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.gate(); err != nil {
		return DiscardResult{}, err
	}
	selected := m.catalog.Selected()
	if len(selected) == 0 {
		return DiscardResult{}, ErrNothingSelected
	}

	var result DiscardResult
	for _, sess := range selected {
		n, err := m.store.DeleteBySessionStart(ctx, sess.StartTime)
		if err != nil {
			m.logger.Error("failed to discard session", "session", sess.Name, "error", err)
			result.Failed = append(result.Failed, sess.Name)
			continue
		}
		result.Sessions = append(result.Sessions, sess.Name)
		result.Rows += n
	}

	summary := fmt.Sprintf("Discarded %d sessions (%d rows)", len(result.Sessions), result.Rows)
	if !result.OK() {
		summary += fmt.Sprintf(", %d failed", len(result.Failed))
	}
	m.record(ctx, activity.TypeDiscard, summary, !result.OK(), result)

	if err := m.rebuild(ctx); err != nil {
		return result, err
	}
	return result, nil
}

// Backups lists the backup files available for restore, newest first.
func (m *Manager) Backups() ([]restore.Backup, error) {
	return restore.ListBackups(m.DataDir())
}

// StartRestore launches a background restore of file. Only backup files
// directly inside the data directory are accepted; file may be a bare name
// or a path to one. When a restore is already
// running the call does nothing and reports false. onDone, if set, runs on
// the restore goroutine after the catalog has been rebuilt.
func (m *Manager) StartRestore(ctx context.Context, file string, onDone func(restore.Result)) (*restore.Run, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runner.Busy() {
		return nil, false, nil
	}

	path, err := m.resolveBackup(file)
	if err != nil {
		return nil, false, err
	}

	bg := context.WithoutCancel(ctx)
	run, ok := m.runner.Start(ctx, path, restore.Callbacks{
		OnStart: func(run *restore.Run) {
			m.logger.Info("restoring database", "run_id", run.ID, "file", run.File)
		},
		OnDone: func(run *restore.Run, result restore.Result) {
			m.finishRestore(bg, run, result)
			if onDone != nil {
				onDone(result)
			}
		},
	})
	return run, ok, nil
}

// resolveBackup maps file to a backup in the data directory.
func (m *Manager) resolveBackup(file string) (string, error) {
	name := filepath.Base(file)
	if !format.IsBackupFileName(name) {
		return "", fmt.Errorf("%w: %s is not a backup file", restore.ErrBackupNotFound, file)
	}
	dir, err := filepath.Abs(m.DataDir())
	if err != nil {
		return "", fmt.Errorf("%w: %v", export.ErrDataDirUnavailable, err)
	}
	if name != file {
		abs, err := filepath.Abs(file)
		if err != nil || filepath.Dir(abs) != dir {
			return "", fmt.Errorf("%w: %s is outside %s", restore.ErrBackupNotFound, file, dir)
		}
	}

	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", restore.ErrBackupNotFound, file)
	}
	return path, nil
}

func (m *Manager) finishRestore(ctx context.Context, run *restore.Run, result restore.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.rebuild(ctx); err != nil {
		m.logger.Error("failed to reload sessions after restore", "run_id", run.ID, "error", err)
	}
	details := map[string]any{
		"run_id":   run.ID,
		"file":     result.File,
		"lines":    result.Lines,
		"restored": result.Restored,
		"errors":   result.Errors,
	}
	if result.Err != nil {
		details["error"] = result.Err.Error()
	}
	m.record(ctx, activity.TypeRestore, result.Message(), !result.OK(), details)
}

// RestoreStatus describes the in-flight and most recent restores.
type RestoreStatus struct {
	Busy    bool            `json:"busy"`
	Current *restore.Run    `json:"current,omitempty"`
	Last    *restore.Run    `json:"last,omitempty"`
	Result  *restore.Result `json:"result,omitempty"`
}

// RestoreStatus reports the runner state. It is available while a restore runs.
func (m *Manager) RestoreStatus() RestoreStatus {
	status := RestoreStatus{
		Busy:    m.runner.Busy(),
		Current: m.runner.Current(),
		Last:    m.runner.Last(),
	}
	if status.Last != nil {
		if result, ok := status.Last.Result(); ok {
			status.Result = &result
		}
	}
	return status
}

// RecentActivity lists the latest operation log entries, newest first.
func (m *Manager) RecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	if m.activity == nil {
		return nil, nil
	}
	return m.activity.GetRecentActivity(ctx, opts)
}

func (m *Manager) gate() error {
	if m.runner.Busy() {
		return ErrRestoreInProgress
	}
	return nil
}

func (m *Manager) newCatalog() *session.Catalog {
	c := session.NewCatalog()
	c.OnSelectionChange = m.opts.OnSelectionChange
	return c
}

// rebuild replaces the catalog. The caller holds m.mu.
func (m *Manager) rebuild(ctx context.Context) error {
	catalog, err := session.Build(ctx, m.store, m.opts.Location)
	catalog.OnSelectionChange = m.opts.OnSelectionChange
	m.catalog = catalog
	if err != nil {
		m.logger.Error("failed to load sessions", "error", err)
		return err
	}
	m.logger.Debug("sessions loaded", "count", catalog.Len())
	return nil
}

func (m *Manager) recordReport(ctx context.Context, typ activity.ActivityType, report export.Report, err error) {
	if err != nil {
		m.record(ctx, typ, err.Error(), true, nil)
		return
	}
	summary := fmt.Sprintf("Saved %d files to %s", len(report.Files), report.Dir)
	if !report.OK() {
		summary += fmt.Sprintf(" with %d errors", report.Errors)
	}
	m.record(ctx, typ, summary, !report.OK(), report)
}

func (m *Manager) record(ctx context.Context, typ activity.ActivityType, summary string, failed bool, details any) {
	if m.activity == nil {
		return
	}
	m.activity.Record(ctx, typ, summary, failed, details)
}
