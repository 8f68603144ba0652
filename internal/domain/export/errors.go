package export

import "errors"

var (
	// ErrNoSessions indicates an export was requested with nothing selected.
	ErrNoSessions = errors.New("no sessions selected")
	// ErrDataDirUnavailable indicates the export directory is missing or not a directory.
	ErrDataDirUnavailable = errors.New("data directory unavailable")
)
