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

	"github.com/spf13/cobra"

	"github.com/cwbudde/bestfit/internal/server"
	"github.com/cwbudde/bestfit/internal/store"
)

var (
	serveAddr    string
	serveDataDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and index page",
	Long: `Serves the fit, auto and eval operations over HTTP and lists every recorded
fit at /. Records are kept in memory unless --data-dir is given, in which case
each record is stored as a JSON file in that directory.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "Directory for fit records (default: in memory)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = serveAddr
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.Server.DataDir = serveDataDir
	}

	var st store.Store
	if cfg.Server.DataDir != "" {
		fs, err := store.NewFSStore(cfg.Server.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open data dir: %w", err)
		}
		st = fs
		slog.Info("Storing records on disk", "dir", cfg.Server.DataDir)
	}

	srv := server.NewServer(cfg.Server.Addr, st, cfg.Options())
	srv.SetTimeouts(cfg.Server.ReadTimeout.Duration, cfg.Server.WriteTimeout.Duration)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
