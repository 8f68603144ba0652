package restore

import "errors"

var (
	// ErrOpenBackup is returned in Result.Err when the backup file cannot be opened.
	ErrOpenBackup = errors.New("cannot open backup file")
	// ErrReadBackup is returned in Result.Err when reading stops part way through the file.
	ErrReadBackup = errors.New("error reading backup file")
	// ErrRecreateTable is returned in Result.Err when the store could not be emptied.
	ErrRecreateTable = errors.New("cannot recreate sample table")
	// ErrBackupNotFound is returned when a named backup does not exist.
	ErrBackupNotFound = errors.New("backup not found")
)
