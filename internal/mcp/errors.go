package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/heartlog/internal/domain/export"
	"github.com/rpggio/heartlog/internal/domain/manager"
	"github.com/rpggio/heartlog/internal/domain/restore"
	"github.com/rpggio/heartlog/internal/domain/session"
)

var (
	errInvalidParams        = errors.New("invalid params")
	errConfirmationRequired = errors.New("confirmation required")
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, manager.ErrRestoreInProgress):
		return &APIError{Code: "RESTORE_IN_PROGRESS", Message: "a restore is running", RecoveryHint: "Poll restore_status until busy is false"}
	case errors.Is(err, export.ErrNoSessions):
		return &APIError{Code: "NOTHING_SELECTED", Message: "no sessions selected", RecoveryHint: "Call select_sessions first"}
	case errors.Is(err, export.ErrDataDirUnavailable):
		return &APIError{Code: "DATA_DIR_UNAVAILABLE", Message: err.Error(), RecoveryHint: "Create the data directory or fix data.dir"}
	case errors.Is(err, restore.ErrBackupNotFound):
		return &APIError{Code: "BACKUP_NOT_FOUND", Message: err.Error(), RecoveryHint: "Call list_backups for available files"}
	case errors.Is(err, session.ErrSessionNotFound):
		return &APIError{Code: "SESSION_NOT_FOUND", Message: err.Error(), RecoveryHint: "Call list_sessions with refresh=true"}
	case errors.Is(err, errConfirmationRequired):
		return &APIError{Code: "CONFIRMATION_REQUIRED", Message: err.Error(), RecoveryHint: "Repeat the call with confirm=true"}
	case errors.Is(err, errInvalidParams):
		return &APIError{Code: "INVALID_PARAMS", Message: err.Error()}
	default:
		return nil
	}
}
