// Package main provides the waitlist binary. The root command groups:
//
//   - serve: load configuration, open SQLite, and run the HTTP server until
//     SIGINT/SIGTERM.
//   - id: mint and convert prefixed resource ids with the configured secret.
//   - list: print waitlist entries in queue order.
//
// Configuration comes from WAITLIST_* environment variables; serve flags
// override individual values.
package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haukened/waitlist/internal/config"
)

// loadConfig is swapped in tests.
var loadConfig = config.Load

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "waitlist",
		Short:        "Waitlist service",
		Long:         "Waitlist collects launch signups and issues opaque, prefixed entry ids.",
		SilenceUsage: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(newServeCmd(), newIDCmd(), newListCmd())
	return root
}

// newLogger builds the process logger from config (text or json handler).
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
