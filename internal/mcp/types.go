package mcp

import (
	"time"

	"github.com/rpggio/heartlog/internal/domain/activity"
)

type ListSessionsParams struct {
	Refresh bool `json:"refresh,omitempty"`
}

type SelectSessionsParams struct {
	Names    []string `json:"names,omitempty"`
	Selected *bool    `json:"selected,omitempty"`
	All      bool     `json:"all,omitempty"`
}

type DiscardSessionsParams struct {
	Confirm bool `json:"confirm"`
}

type StartRestoreParams struct {
	File    string `json:"file"`
	Confirm bool   `json:"confirm"`
}

type GetRecentActivityParams struct {
	Type       string `json:"type,omitempty"`
	FailedOnly bool   `json:"failed_only,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

type SessionResponse struct {
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  string    `json:"duration"`
	Selected  bool      `json:"selected"`
}

type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Count    int               `json:"count"`
	Selected int               `json:"selected"`
}

type ReportResponse struct {
	ID        string   `json:"id"`
	Operation string   `json:"operation"`
	Dir       string   `json:"dir"`
	Files     []string `json:"files"`
	Failed    []string `json:"failed,omitempty"`
	Errors    int      `json:"errors"`
	OK        bool     `json:"ok"`
	Message   string   `json:"message"`
}

type DiscardResponse struct {
	Sessions []string `json:"sessions"`
	Rows     int64    `json:"rows"`
	Failed   []string `json:"failed,omitempty"`
	OK       bool     `json:"ok"`
}

type BackupResponse struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

type StartRestoreResponse struct {
	Started bool   `json:"started"`
	RunID   string `json:"run_id,omitempty"`
	File    string `json:"file"`
	Message string `json:"message"`
}

type RestoreRunResponse struct {
	ID        string    `json:"id"`
	File      string    `json:"file"`
	StartedAt time.Time `json:"started_at"`
}

type RestoreResultResponse struct {
	File     string `json:"file"`
	Lines    int    `json:"lines"`
	Restored int    `json:"restored"`
	Errors   int    `json:"errors"`
	Error    string `json:"error,omitempty"`
	OK       bool   `json:"ok"`
	Message  string `json:"message"`
}

type RestoreStatusResponse struct {
	Busy    bool                   `json:"busy"`
	Current *RestoreRunResponse    `json:"current,omitempty"`
	Last    *RestoreRunResponse    `json:"last,omitempty"`
	Result  *RestoreResultResponse `json:"result,omitempty"`
}

type ActivityEntryResponse struct {
	ID        int64                 `json:"id"`
	Timestamp time.Time             `json:"timestamp"`
	Type      activity.ActivityType `json:"type"`
	Summary   string                `json:"summary"`
	Details   string                `json:"details,omitempty"`
	Failed    bool                  `json:"failed"`
}
