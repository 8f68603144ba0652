package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rpggio/heartlog/internal/mcp"
)

func newServeCmd(load loader) *cobra.Command {
	var transport string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tool server over stdio or HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode := transport
			// Logs go to stderr to keep stdout clean for JSON-RPC in stdio mode.
			a, err := load(cmd, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()
			if mode == "" {
				mode = a.cfg.Transport.Mode
			}

			server := mcp.NewServer(mcp.Config{
				Services: mcp.Services{
					Sessions: a.manager,
					Exports:  a.manager,
					Restores: a.manager,
					Activity: a.manager,
				},
				Location: a.loc,
				Version:  a.cfg.App.Version,
				Logger:   a.logger,
			})

			ctx, stop := signal.NotifyContext(cmdContext(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			switch mode {
			case "stdio":
				return runStdioMode(ctx, a.logger, server)
			case "http":
				return runHTTPMode(ctx, a.logger, server, a.cfg.Server.Host, a.cfg.Server.Port)
			default:
				return fmt.Errorf("unknown transport %q", mode)
			}
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "", "stdio or http (overrides config)")
	return cmd
}

func runStdioMode(ctx context.Context, logger *slog.Logger, server *sdkmcp.Server) error {
	logger.Info("starting stdio transport")

	// Run blocks until stdin closes or context is canceled
	if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, server *sdkmcp.Server, host string, port int) error {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{
			SessionTimeout: 30 * time.Minute,
		},
	)

	router := http.NewServeMux()
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/", mcpHandler)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
