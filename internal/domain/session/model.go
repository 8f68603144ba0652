package session

import (
	"time"

	"github.com/rpggio/heartlog/internal/format"
)

// Session is a view over the samples stored under one session start.
// It is rebuilt from the store on every refresh and never persisted.
type Session struct {
	Name      string `json:"name"`
	StartTime int64  `json:"start_time"`
	EndTime   int64  `json:"end_time"`
	Selected  bool   `json:"selected"`
}

// New derives a session from its bounds. EndTime never precedes StartTime.
func New(start, end int64, loc *time.Location) Session {
	if end < start {
		end = start
	}
	return Session{
		Name:      format.SessionName(start, loc),
		StartTime: start,
		EndTime:   end,
	}
}

// Duration is the span between the first and last sample, in milliseconds.
func (s Session) Duration() int64 {
	return s.EndTime - s.StartTime
}

// Start returns StartTime as a time.Time.
func (s Session) Start() time.Time {
	return time.UnixMilli(s.StartTime)
}

// Equal reports whether both sessions derive the same name.
func (s Session) Equal(other Session) bool {
	return s.Name == other.Name
}
