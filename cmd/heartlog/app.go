package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rpggio/heartlog/internal/clock"
	"github.com/rpggio/heartlog/internal/config"
	"github.com/rpggio/heartlog/internal/domain/activity"
	"github.com/rpggio/heartlog/internal/domain/export"
	"github.com/rpggio/heartlog/internal/domain/manager"
	"github.com/rpggio/heartlog/internal/domain/restore"
	"github.com/rpggio/heartlog/internal/domain/session"
	"github.com/rpggio/heartlog/internal/sqlite"
)

// app is the wired application shared by every command.
type app struct {
	cfg     config.Config
	loc     *time.Location
	logger  *slog.Logger
	db      *sqlite.DB
	manager *manager.Manager
	closers []io.Closer
}

// newApp opens the store and wires the services. Logs go to logWriter
// unless a log file is configured.
func newApp(ctx context.Context, cfg config.Config, logWriter io.Writer) (*app, error) {
	a := &app{cfg: cfg}

	if cfg.Log.Path != "" {
		fileWriter, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			a.closers = append(a.closers, fileWriter)
			logWriter = fileWriter
		}
	}
	a.logger = slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	loc, err := cfg.Location()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.loc = loc

	if err := ensureParentDir(cfg.DB.Path); err != nil {
		a.Close()
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		a.logger.Warn("failed to create data directory", "dir", cfg.Data.Dir, "error", err)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.db = db
	a.closers = append([]io.Closer{db}, a.closers...)

	if err := db.RunMigrations(); err != nil {
		a.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	sampleRepo := sqlite.NewSampleRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)

	clk := clock.System{}
	exportSvc := export.NewService(sampleRepo, export.Options{
		Dir:             cfg.Data.Dir,
		CSVDelimiter:    cfg.Export.CSVDelimiter,
		BackupDelimiter: cfg.Backup.Delimiter,
		Location:        loc,
		AppName:         cfg.App.Name,
		AppVersion:      cfg.App.Version,
		Clock:           clk,
	}, a.logger)
	restoreSvc := restore.NewService(sampleRepo, cfg.Backup.Delimiter, a.logger)
	activitySvc := activity.NewService(activityRepo, a.logger)

	a.manager = manager.New(sampleRepo, exportSvc, restore.NewRunner(restoreSvc, clk, a.logger), activitySvc, manager.Options{
		Location: loc,
		OnSelectionChange: func(s session.Session) {
			a.logger.Debug("session selection changed", "session", s.Name, "selected", s.Selected)
		},
	}, a.logger)

	if _, err := a.manager.Refresh(ctx); err != nil {
		a.logger.Error("failed to load sessions", "error", err)
	}
	return a, nil
}

// Close releases the store and the log file.
func (a *app) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
