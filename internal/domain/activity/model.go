package activity

import "time"

// ActivityType represents the kind of operation that was performed
type ActivityType string

const (
	TypeExportCSV      ActivityType = "export_csv"
	TypeExportCombined ActivityType = "export_combined"
	TypeExportGPX      ActivityType = "export_gpx"
	TypeBackup         ActivityType = "backup"
	TypeRestore        ActivityType = "restore"
	TypeDiscard        ActivityType = "discard"
)

// ActivityEntry represents an event in the operation log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	Failed       bool         `json:"failed"`
	CreatedAt    time.Time    `json:"created_at"`
}
