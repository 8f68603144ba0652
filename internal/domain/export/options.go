package export

import (
	"time"

	"github.com/rpggio/heartlog/internal/clock"
	"github.com/rpggio/heartlog/internal/format"
)

// DefaultAppName is written as the GPX creator when none is configured.
const DefaultAppName = "BLE Cardiac Monitor"

// Options configures where and how exports are written.
type Options struct {
	Dir             string
	CSVDelimiter    string
	BackupDelimiter string
	Location        *time.Location
	AppName         string
	AppVersion      string
	Clock           clock.Clock
}

func (o Options) withDefaults() Options {
	if o.CSVDelimiter == "" {
		o.CSVDelimiter = format.DefaultDelimiter
	}
	if o.BackupDelimiter == "" {
		o.BackupDelimiter = format.DefaultDelimiter
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.AppName == "" {
		o.AppName = DefaultAppName
	}
	if o.Clock == nil {
		o.Clock = clock.System{}
	}
	return o
}

func (o Options) creator() string {
	if o.AppVersion == "" {
		return o.AppName
	}
	return o.AppName + " " + o.AppVersion
}
