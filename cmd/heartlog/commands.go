package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rpggio/heartlog/internal/domain/activity"
	"github.com/rpggio/heartlog/internal/domain/export"
	"github.com/rpggio/heartlog/internal/domain/manager"
	"github.com/rpggio/heartlog/internal/domain/session"
	"github.com/rpggio/heartlog/internal/format"
)

func newSessionsCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			sessions, err := a.manager.Sessions()
			if err != nil {
				return err
			}
			printSessions(cmd.OutOrStdout(), sessions, a.loc)
			return nil
		},
	}
}

func printSessions(w io.Writer, sessions []session.Session, loc *time.Location) {
	if len(sessions) == 0 {
		_, _ = fmt.Fprintln(w, "no sessions")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tSTART\tEND\tDURATION")
	for _, s := range sessions {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Name,
			time.UnixMilli(s.StartTime).In(loc).Format(time.DateTime),
			time.UnixMilli(s.EndTime).In(loc).Format(time.DateTime),
			format.Duration(s.Duration()))
	}
	_ = tw.Flush()
}

// selectSessions applies a command's selection: every session with all,
// otherwise the named ones.
func selectSessions(a *app, all bool, names []string) error {
	if all {
		_, err := a.manager.SelectAll(true)
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("name at least one session or pass --all")
	}
	_, err := a.manager.Select(names, true)
	return err
}

func newExportCmd(load loader) *cobra.Command {
	exportCmd := &cobra.Command{Use: "export", Short: "Export sessions to CSV or GPX"}

	kinds := []struct {
		use, short string
		run        func(*manager.Manager, *cobra.Command) (export.Report, error)
	}{
		{"csv [session...]", "Write one CSV file per session", func(m *manager.Manager, cmd *cobra.Command) (export.Report, error) {
			return m.ExportCSV(cmdContext(cmd))
		}},
		{"combined [session...]", "Write the sessions into one CSV file ordered by start time", func(m *manager.Manager, cmd *cobra.Command) (export.Report, error) {
			return m.ExportCombined(cmdContext(cmd))
		}},
		{"gpx [session...]", "Write one GPX track per session", func(m *manager.Manager, cmd *cobra.Command) (export.Report, error) {
			return m.ExportGPX(cmdContext(cmd))
		}},
	}

	for _, kind := range kinds {
		var all bool
		sub := &cobra.Command{
			Use:   kind.use,
			Short: kind.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := load(cmd, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				defer a.Close()

				if err := selectSessions(a, all, args); err != nil {
					return err
				}
				report, err := kind.run(a.manager, cmd)
				if err != nil {
					return err
				}
				return printReport(cmd.OutOrStdout(), report)
			},
		}
		sub.Flags().BoolVar(&all, "all", false, "export every session")
		exportCmd.AddCommand(sub)
	}
	return exportCmd
}

func newBackupCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Write every stored sample to a new backup file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.manager.Backup(cmdContext(cmd))
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}
}

func printReport(w io.Writer, report export.Report) error {
	_, _ = fmt.Fprint(w, report.Message())
	if !report.OK() {
		return fmt.Errorf("%d errors during %s export", report.Errors, report.Operation)
	}
	return nil
}

func newDiscardCmd(load loader) *cobra.Command {
	var all, yes bool
	cmd := &cobra.Command{
		Use:   "discard [session...]",
		Short: "Delete sessions from the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("discard deletes samples permanently; pass --yes to confirm")
			}
			a, err := load(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := selectSessions(a, all, args); err != nil {
				return err
			}
			result, err := a.manager.Discard(cmdContext(cmd))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "discarded %d sessions (%d rows)\n", len(result.Sessions), result.Rows)
			if !result.OK() {
				return fmt.Errorf("failed to discard: %v", result.Failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "discard every session")
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func newRestoreCmd(load loader) *cobra.Command {
	var latest, yes, list bool
	cmd := &cobra.Command{
		Use:   "restore [backup-file]",
		Short: "Replace the store with the contents of a backup file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			backups, err := a.manager.Backups()
			if err != nil && (list || latest) {
				return err
			}
			if list {
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, b := range backups {
					_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\n", b.Name, b.Size, b.ModTime.In(a.loc).Format(time.DateTime))
				}
				return tw.Flush()
			}

			var file string
			switch {
			case len(args) == 1:
				file = args[0]
			case latest && len(backups) > 0:
				file = backups[0].Name
			case latest:
				return fmt.Errorf("no backups in %s", a.manager.DataDir())
			default:
				return fmt.Errorf("name a backup file or pass --latest")
			}
			if !yes {
				return fmt.Errorf("restore drops every stored sample first; pass --yes to confirm")
			}

			run, started, err := a.manager.StartRestore(cmdContext(cmd), file, nil)
			if err != nil {
				return err
			}
			if !started {
				return fmt.Errorf("a restore is already running")
			}
			result, err := run.Wait(cmdContext(cmd))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.Message())
			if !result.OK() {
				return fmt.Errorf("restore completed with errors")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&latest, "latest", false, "restore the newest backup")
	cmd.Flags().BoolVar(&list, "list", false, "list available backups, newest first")
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm replacing the store")
	return cmd
}

func newActivityCmd(load loader) *cobra.Command {
	var limit int
	var failedOnly bool
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent export, backup, restore and discard outcomes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.manager.RecentActivity(cmdContext(cmd), activity.ListActivityOptions{
				FailedOnly: failedOnly,
				Limit:      limit,
			})
			if err != nil {
				return err
			}
			for _, e := range entries {
				status := "ok"
				if e.Failed {
					status = "FAILED"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n",
					e.CreatedAt.In(a.loc).Format(time.DateTime), e.ActivityType, status, e.Summary)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "only failed operations")
	return cmd
}
