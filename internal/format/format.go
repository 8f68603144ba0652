// Package format holds the naming and text rendering rules shared by the
// session catalog, the exporters and the restore reader.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rpggio/heartlog/internal/domain/sample"
)

const (
	// Placeholder is written in place of any CSV field whose column is absent.
	Placeholder = "Invalid"

	SessionNamePrefix = "BCM-"
	sessionNameLayout = "2006-01-02-15-04-05"

	csvDateLayout = "2006-01-02 15:04:05.000"
	gpxTimeLayout = "2006-01-02T15:04:05.000Z"

	BackupPrefix      = "BCMDatabase-"
	BackupSuffix      = ".txt"
	backupStampLayout = "20060102-150405"

	// DefaultDelimiter separates fields in both CSV exports and backup files.
	DefaultDelimiter = ","

	// CombinedSuffix is appended to the first session name for a combined export.
	CombinedSuffix = "-Combined.csv"
)

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

// SessionName derives the catalog key for a session from its start time.
func SessionName(start int64, loc *time.Location) string {
	return SessionNamePrefix + time.UnixMilli(start).In(location(loc)).Format(sessionNameLayout)
}

// CSVDate renders a capture time for CSV export.
func CSVDate(ms int64, loc *time.Location) string {
	if ms == sample.InvalidDate {
		return Placeholder
	}
	return time.UnixMilli(ms).In(location(loc)).Format(csvDateLayout)
}

// GPXTime renders t as ISO-8601 UTC with millisecond precision.
func GPXTime(t time.Time) string {
	return t.UTC().Format(gpxTimeLayout)
}

// CSVLine renders one sample as date, heart rate and beat interval.
func CSVLine(s sample.Sample, delim string, loc *time.Location) string {
	hr := Placeholder
	if s.HeartRate != nil {
		hr = strconv.FormatInt(*s.HeartRate, 10)
	}
	rr := Placeholder
	if s.BeatInterval != nil && *s.BeatInterval != "" {
		rr = *s.BeatInterval
	}
	return CSVDate(s.CaptureTime, loc) + delim + hr + delim + rr + "\n"
}

// BackupLine renders one stored row. Absent columns become sentinels and the
// line always ends with a delimiter so the beat interval stays a token.
func BackupLine(s sample.Sample, delim string) string {
	hr := sample.InvalidInt
	if s.HeartRate != nil {
		hr = *s.HeartRate
	}
	rr := " "
	if s.BeatInterval != nil && *s.BeatInterval != "" {
		rr = *s.BeatInterval
	}
	return fmt.Sprintf("%d%s%d%s%d%s%s%s\n",
		s.CaptureTime, delim, s.SessionStart, delim, hr, delim, rr, delim)
}

// BackupFileName names a backup generated at now.
func BackupFileName(now time.Time, loc *time.Location) string {
	return BackupPrefix + now.In(location(loc)).Format(backupStampLayout) + BackupSuffix
}

// IsBackupFileName reports whether name follows the backup naming rule.
func IsBackupFileName(name string) bool {
	return strings.HasPrefix(name, BackupPrefix) && strings.HasSuffix(name, BackupSuffix)
}

// Duration renders a span in milliseconds as "1 day 2 hr 3 min 4 sec".
// Leading zero units are omitted; seconds are always present.
func Duration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	days := total / 86400
	hours := total % 86400 / 3600
	mins := total % 3600 / 60
	secs := total % 60

	var b strings.Builder
	if days > 0 {
		fmt.Fprintf(&b, "%d day ", days)
	}
	if hours > 0 {
		fmt.Fprintf(&b, "%d hr ", hours)
	}
	if mins > 0 {
		fmt.Fprintf(&b, "%d min ", mins)
	}
	fmt.Fprintf(&b, "%d sec", secs)
	return b.String()
}
