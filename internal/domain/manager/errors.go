package manager

import (
	"errors"

	"github.com/rpggio/heartlog/internal/domain/export"
)

var (
	// ErrRestoreInProgress is returned by every catalog operation while a restore runs.
	ErrRestoreInProgress = errors.New("restore in progress")
	// ErrNothingSelected is returned when an operation needs at least one selected session.
	ErrNothingSelected = export.ErrNoSessions
)
