package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/heartlog/internal/clock"
	"github.com/rpggio/heartlog/internal/domain/activity"
	"github.com/rpggio/heartlog/internal/domain/export"
	"github.com/rpggio/heartlog/internal/domain/manager"
	"github.com/rpggio/heartlog/internal/domain/restore"
	"github.com/rpggio/heartlog/internal/domain/sample"
	"github.com/rpggio/heartlog/internal/mcp"
	"github.com/rpggio/heartlog/internal/sqlite"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T) (*sdkmcp.ClientSession, *sqlite.SampleRepository) {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations())

	store := sqlite.NewSampleRepository(db)
	exporter := export.NewService(store, export.Options{
		Dir:      t.TempDir(),
		Location: time.UTC,
		Clock:    clock.Fixed(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
	}, nil)
	mgr := manager.New(store, exporter,
		restore.NewRunner(restore.NewService(store, ",", nil), nil, nil),
		activity.NewService(sqlite.NewActivityRepository(db), nil),
		manager.Options{Location: time.UTC}, nil)

	server := mcp.NewServer(mcp.Config{
		Services: mcp.Services{Sessions: mgr, Exports: mgr, Restores: mgr, Activity: mgr},
		Location: time.UTC,
	})

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { clientSession.Close() })

	return clientSession, store
}

func callTool(t *testing.T, cs *sdkmcp.ClientSession, name string, args any, out any) bool {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	if out != nil {
		require.NoError(t, json.Unmarshal([]byte(text.Text), out))
	}
	return !res.IsError
}

func TestServer_ExportBackupRestore(t *testing.T) {
	ctx := context.Background()
	cs, store := connect(t)

	for _, s := range []sample.Sample{
		{CaptureTime: 1000, SessionStart: 1000, HeartRate: sample.Int64(60), BeatInterval: sample.String("1.0")},
		{CaptureTime: 2000, SessionStart: 1000, HeartRate: sample.Int64(62), BeatInterval: sample.String("0.97")},
		{CaptureTime: 9000, SessionStart: 9000, HeartRate: sample.Int64(70), BeatInterval: sample.String("0.86")},
	} {
		_, err := store.Insert(ctx, &s)
		require.NoError(t, err)
	}

	var list mcp.SessionListResponse
	require.True(t, callTool(t, cs, "list_sessions", map[string]any{"refresh": true}, &list))
	require.Equal(t, 2, list.Count)

	var apiErr mcp.APIError
	require.False(t, callTool(t, cs, "export_csv", map[string]any{}, &apiErr))
	require.Equal(t, "NOTHING_SELECTED", apiErr.Code)

	require.True(t, callTool(t, cs, "select_sessions", map[string]any{"all": true}, &list))
	require.Equal(t, 2, list.Selected)

	var report mcp.ReportResponse
	require.True(t, callTool(t, cs, "export_gpx", map[string]any{}, &report))
	require.True(t, report.OK)
	require.Len(t, report.Files, 2)

	require.True(t, callTool(t, cs, "backup_database", map[string]any{}, &report))
	require.Equal(t, []string{"BCMDatabase-20240601-120000.txt"}, report.Files)

	var backups []mcp.BackupResponse
	require.True(t, callTool(t, cs, "list_backups", map[string]any{}, &backups))
	require.Len(t, backups, 1)

	var started mcp.StartRestoreResponse
	require.True(t, callTool(t, cs, "start_restore", map[string]any{"file": backups[0].Name, "confirm": true}, &started))
	require.True(t, started.Started)

	var status mcp.RestoreStatusResponse
	require.Eventually(t, func() bool {
		callTool(t, cs, "restore_status", map[string]any{}, &status)
		return !status.Busy && status.Result != nil
	}, 5*time.Second, 10*time.Millisecond)
	require.True(t, status.Result.OK, status.Result.Message)
	require.Equal(t, 3, status.Result.Restored)
	require.Equal(t, started.RunID, status.Last.ID)

	require.True(t, callTool(t, cs, "list_sessions", map[string]any{}, &list))
	require.Equal(t, 2, list.Count)
	require.Zero(t, list.Selected, "catalog rebuilt after restore")

	var entries []mcp.ActivityEntryResponse
	require.True(t, callTool(t, cs, "get_recent_activity", map[string]any{"limit": 10}, &entries))
	require.Len(t, entries, 4)
	require.Equal(t, activity.TypeRestore, entries[0].Type)
}

func TestServer_ToolsAndDocs(t *testing.T) {
	ctx := context.Background()
	cs, _ := connect(t)

	tools, err := cs.ListTools(ctx, &sdkmcp.ListToolsParams{})
	require.NoError(t, err)
	names := map[string]bool{}
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, name := range []string{
		"list_sessions", "select_sessions", "export_csv", "export_combined", "export_gpx",
		"backup_database", "discard_sessions", "list_backups", "start_restore", "restore_status",
		"get_recent_activity",
	} {
		require.True(t, names[name], "missing tool %s", name)
	}

	res, err := cs.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "heartlog://docs/formats"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	require.Contains(t, res.Contents[0].Text, "BCMDatabase-yyyyMMdd-HHmmss.txt")
}
