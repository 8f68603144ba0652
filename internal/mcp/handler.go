package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/rpggio/heartlog/internal/domain/activity"
	"github.com/rpggio/heartlog/internal/domain/export"
	"github.com/rpggio/heartlog/internal/domain/manager"
	"github.com/rpggio/heartlog/internal/domain/restore"
	"github.com/rpggio/heartlog/internal/domain/session"
	"github.com/rpggio/heartlog/internal/format"
)

const defaultActivityLimit = 20

// SessionService defines catalog operations needed by MCP.
type SessionService interface {
	Refresh(ctx context.Context) ([]session.Session, error)
	Sessions() ([]session.Session, error)
	Select(names []string, selected bool) ([]session.Session, error)
	SelectAll(selected bool) ([]session.Session, error)
	Discard(ctx context.Context) (manager.DiscardResult, error)
}

// ExportService defines export operations needed by MCP.
type ExportService interface {
	ExportCSV(ctx context.Context) (export.Report, error)
	ExportCombined(ctx context.Context) (export.Report, error)
	ExportGPX(ctx context.Context) (export.Report, error)
	Backup(ctx context.Context) (export.Report, error)
}

// RestoreService defines restore operations needed by MCP.
type RestoreService interface {
	Backups() ([]restore.Backup, error)
	StartRestore(ctx context.Context, file string, onDone func(restore.Result)) (*restore.Run, bool, error)
	RestoreStatus() manager.RestoreStatus
}

// ActivityService defines operation log queries needed by MCP.
type ActivityService interface {
	RecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Handler dispatches MCP commands.
type Handler struct {
	sessions SessionService
	exports  ExportService
	restores RestoreService
	activity ActivityService
	loc      *time.Location
	logger   *slog.Logger
}

// NewHandler creates a new MCP handler. Session times are rendered in loc.
func NewHandler(services Services, loc *time.Location, logger *slog.Logger) *Handler {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		sessions: services.Sessions,
		exports:  services.Exports,
		restores: services.Restores,
		activity: services.Activity,
		loc:      loc,
		logger:   logger,
	}
}

// Handle dispatches MCP requests to domain services.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "list_sessions":
		var req ListSessionsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		var (
			sessions []session.Session
			err      error
		)
		if req.Refresh {
			sessions, err = h.sessions.Refresh(ctx)
		} else {
			sessions, err = h.sessions.Sessions()
		}
		if err != nil {
			return nil, mapError(err)
		}
		return h.sessionList(sessions), nil
	case "select_sessions":
		var req SelectSessionsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		selected := true
		if req.Selected != nil {
			selected = *req.Selected
		}
		var (
			sessions []session.Session
			err      error
		)
		switch {
		case req.All:
			sessions, err = h.sessions.SelectAll(selected)
		case len(req.Names) > 0:
			sessions, err = h.sessions.Select(req.Names, selected)
		default:
			return nil, fmt.Errorf("%w: names or all is required", errInvalidParams)
		}
		if err != nil {
			return nil, mapError(err)
		}
		return h.sessionList(sessions), nil
	case "export_csv":
		return reportResponse(h.exports.ExportCSV(ctx))
	case "export_combined":
		return reportResponse(h.exports.ExportCombined(ctx))
	case "export_gpx":
		return reportResponse(h.exports.ExportGPX(ctx))
	case "backup_database":
		return reportResponse(h.exports.Backup(ctx))
	case "discard_sessions":
		var req DiscardSessionsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if !req.Confirm {
			return nil, fmt.Errorf("%w: discarding deletes the selected sessions from the store", errConfirmationRequired)
		}
		result, err := h.sessions.Discard(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		return DiscardResponse{
			Sessions: result.Sessions,
			Rows:     result.Rows,
			Failed:   result.Failed,
			OK:       result.OK(),
		}, nil
	case "list_backups":
		backups, err := h.restores.Backups()
		if err != nil {
			return nil, mapError(err)
		}
		resp := make([]BackupResponse, 0, len(backups))
		for _, b := range backups {
			resp = append(resp, BackupResponse{Name: b.Name, Size: b.Size, ModTime: b.ModTime})
		}
		return resp, nil
	case "start_restore":
		var req StartRestoreParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		// Restores only read backups from the data directory.
		name := filepath.Base(req.File)
		if req.File == "" || !format.IsBackupFileName(name) {
			return nil, fmt.Errorf("%w: file must name a backup from list_backups", errInvalidParams)
		}
		if !req.Confirm {
			return nil, fmt.Errorf("%w: restoring replaces every stored sample", errConfirmationRequired)
		}
		run, started, err := h.restores.StartRestore(ctx, name, func(result restore.Result) {
			h.logger.Info("restore finished", "file", result.File, "ok", result.OK(), "message", result.Message())
		})
		if err != nil {
			return nil, mapError(err)
		}
		if !started {
			return StartRestoreResponse{File: name, Message: "A restore is already running; request ignored"}, nil
		}
		return StartRestoreResponse{
			Started: true,
			RunID:   run.ID,
			File:    name,
			Message: "Restore started; poll restore_status for the result",
		}, nil
	case "restore_status":
		return restoreStatusResponse(h.restores.RestoreStatus()), nil
	case "get_recent_activity":
		var req GetRecentActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		opts := activity.ListActivityOptions{
			FailedOnly: req.FailedOnly,
			Limit:      req.Limit,
			Offset:     req.Offset,
		}
		if opts.Limit <= 0 {
			opts.Limit = defaultActivityLimit
		}
		if req.Type != "" {
			typ := activity.ActivityType(req.Type)
			opts.ActivityType = &typ
		}
		entries, err := h.activity.RecentActivity(ctx, opts)
		if err != nil {
			return nil, mapError(err)
		}
		resp := make([]ActivityEntryResponse, 0, len(entries))
		for _, entry := range entries {
			resp = append(resp, ActivityEntryResponse{
				ID:        entry.ID,
				Timestamp: entry.CreatedAt,
				Type:      entry.ActivityType,
				Summary:   entry.Summary,
				Details:   entry.Details,
				Failed:    entry.Failed,
			})
		}
		return resp, nil
	default:
		return nil, fmt.Errorf("unknown method: %s", method)
	}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}
	return nil
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}

func (h *Handler) sessionList(sessions []session.Session) SessionListResponse {
	resp := SessionListResponse{
		Sessions: make([]SessionResponse, 0, len(sessions)),
		Count:    len(sessions),
	}
	for _, s := range sessions {
		if s.Selected {
			resp.Selected++
		}
		resp.Sessions = append(resp.Sessions, SessionResponse{
			Name:      s.Name,
			StartTime: time.UnixMilli(s.StartTime).In(h.loc),
			EndTime:   time.UnixMilli(s.EndTime).In(h.loc),
			Duration:  format.Duration(s.Duration()),
			Selected:  s.Selected,
		})
	}
	return resp
}

func reportResponse(report export.Report, err error) (any, error) {
	if err != nil {
		return nil, mapError(err)
	}
	return ReportResponse{
		ID:        report.ID,
		Operation: report.Operation,
		Dir:       report.Dir,
		Files:     report.Files,
		Failed:    report.Failed,
		Errors:    report.Errors,
		OK:        report.OK(),
		Message:   report.Message(),
	}, nil
}

func restoreStatusResponse(status manager.RestoreStatus) RestoreStatusResponse {
	resp := RestoreStatusResponse{
		Busy:    status.Busy,
		Current: runResponse(status.Current),
		Last:    runResponse(status.Last),
	}
	if r := status.Result; r != nil {
		resp.Result = &RestoreResultResponse{
			File:     r.File,
			Lines:    r.Lines,
			Restored: r.Restored,
			Errors:   r.Errors,
			OK:       r.OK(),
			Message:  r.Message(),
		}
		if r.Err != nil {
			resp.Result.Error = r.Err.Error()
		}
	}
	return resp
}

func runResponse(run *restore.Run) *RestoreRunResponse {
	if run == nil {
		return nil
	}
	return &RestoreRunResponse{ID: run.ID, File: run.File, StartedAt: run.StartedAt}
}
