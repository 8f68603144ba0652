package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rpggio/heartlog/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir, dbPath string

	root := &cobra.Command{
		Use:           "heartlog",
		Short:         "Heart-rate session export, backup and restore",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for exports and backups (overrides config)")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "sample database path (overrides config)")

	load := func(cmd *cobra.Command, logWriter io.Writer) (*app, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
		if dataDir != "" {
			cfg.Data.Dir = dataDir
		}
		if dbPath != "" {
			cfg.DB.Path = dbPath
		}
		return newApp(cmdContext(cmd), cfg, logWriter)
	}

	root.AddCommand(newSessionsCmd(load))
	root.AddCommand(newExportCmd(load))
	root.AddCommand(newBackupCmd(load))
	root.AddCommand(newDiscardCmd(load))
	root.AddCommand(newRestoreCmd(load))
	root.AddCommand(newActivityCmd(load))
	root.AddCommand(newServeCmd(load))
	return root
}

type loader func(cmd *cobra.Command, logWriter io.Writer) (*app, error)

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
