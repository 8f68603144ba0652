package restore

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/rpggio/heartlog/internal/format"
)

// Backup is a backup file found in the data directory.
type Backup struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// ListBackups returns the backup files in dir, newest modification time first.
func ListBackups(dir string) ([]Backup, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var backups []Backup
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !format.IsBackupFileName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Backup{
			Name:    entry.Name(),
			Path:    filepath.Join(dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	slices.SortStableFunc(backups, func(a, b Backup) int {
		return b.ModTime.Compare(a.ModTime)
	})
	return backups, nil
}
