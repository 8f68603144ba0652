package sample

import (
	"math"
	"time"
)

const (
	// InvalidDate marks a timestamp column that was absent or unreadable.
	InvalidDate int64 = math.MinInt64
	// InvalidInt marks an integer column that was absent or unparseable.
	InvalidInt int64 = -1
)

// Sample is one stored heart-rate reading.
// Timestamps are epoch milliseconds. Nil pointers mean the column was absent.
type Sample struct {
	ID           int64   `json:"id"`
	CaptureTime  int64   `json:"capture_time"`
	SessionStart int64   `json:"session_start"`
	HeartRate    *int64  `json:"heart_rate,omitempty"`
	BeatInterval *string `json:"beat_interval,omitempty"`
}

// HasCaptureTime reports whether the capture timestamp could be read.
func (s Sample) HasCaptureTime() bool {
	return s.CaptureTime != InvalidDate
}

// Captured returns the capture time as a time.Time.
func (s Sample) Captured() time.Time {
	return time.UnixMilli(s.CaptureTime)
}

// Bounds is the first and last capture time stored under one session start.
type Bounds struct {
	Start int64
	End   int64
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 {
	return &v
}

// String returns a pointer to v.
func String(v string) *string {
	return &v
}
