package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `heartlog manages recorded heart-rate sessions: it groups stored samples into sessions, exports them and takes or restores full backups.

Core concepts:
- Sample: one reading (capture time, session start, heart rate, beat interval).
- Session: every sample stored under one session start. Named BCM-yyyy-MM-dd-HH-mm-ss after its start.
- Selection: exports and discard act on the selected sessions only. Backups ignore selection.
- Restore: destructive. The store is emptied, then refilled from a backup file in the background.

Workflow:
1) list_sessions (refresh=true after the store changed outside this server).
2) select_sessions with names or all=true.
3) export_csv / export_combined / export_gpx, or backup_database for everything.
4) Every result reports files written and an error count; a batch never stops on one bad session.
5) start_restore (confirm=true) with a file from list_backups, then poll restore_status.
   While a restore runs every catalog and export tool fails with RESTORE_IN_PROGRESS.
6) get_recent_activity shows past outcomes.

Docs:
- heartlog://docs/formats (CSV, GPX and backup file formats)
- heartlog://docs/restore (restore rules and error accounting)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "heartlog://docs/formats",
		Name:        "docs_formats",
		Title:       "Export and backup file formats",
		Description: "Line formats and file naming for CSV, combined CSV, GPX and backup files.",
		Content: `# File formats

All files are written to the configured data directory.

## Session CSV (` + "`<session>.csv`" + `)

One line per sample, in store order:

    yyyy-MM-dd HH:mm:ss.SSS,<heart rate>,<beat interval>

Absent fields are written as ` + "`Invalid`" + ` so every line keeps three columns.

## Combined CSV (` + "`<first session>-Combined.csv`" + `)

The selected sessions in ascending start time, each block formatted as a session CSV,
separated by one blank line. The file is named after the earliest session.

## GPX (` + "`<session>.gpx`" + `)

GPX 1.1 with the Garmin TrackPointExtension namespace. One ` + "`trkpt`" + ` per sample that has a
heart rate (zero is kept). Points carry the capture time in UTC and ` + "`gpxtpx:hr`" + `; no position
is recorded.

## Backup (` + "`BCMDatabase-yyyyMMdd-HHmmss.txt`" + `)

One line per stored row, every row regardless of selection:

    <capture ms>,<session start ms>,<heart rate>,<beat interval>,

Timestamps are epoch milliseconds. The trailing delimiter is always written. A missing heart
rate is written as -1, a missing beat interval as a single space, an unreadable timestamp as
-9223372036854775808.
`,
	},
	{
		URI:         "heartlog://docs/restore",
		Name:        "docs_restore",
		Title:       "Restore rules",
		Description: "What a restore does to the store and how lines and errors are counted.",
		Content: `# Restore

1. The backup file is opened. If it cannot be opened nothing changes.
2. The sample table is dropped and recreated empty. There is no rollback after this point.
3. Every line is counted. Blank lines and lines starting with ` + "`#`" + ` are skipped without error.
4. A line with fewer than 4 fields counts one error and is skipped.
5. Fields that do not parse fall back to sentinels (-1 for heart rate) and the row is still
   inserted; this is not an error.
6. A failed insert counts one error.

Only one restore runs at a time. A start while one is running is ignored, not queued.
The session list is rebuilt when the restore finishes; ` + "`restore_status`" + ` reports the line,
row and error counts.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
