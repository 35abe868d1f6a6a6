package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/haukened/waitlist/internal/app"
	"github.com/haukened/waitlist/internal/config"
	"github.com/haukened/waitlist/internal/httpx"
	"github.com/haukened/waitlist/internal/janitor"
	"github.com/haukened/waitlist/internal/metrics"
	"github.com/haukened/waitlist/internal/resourceid"
	"github.com/haukened/waitlist/internal/store/sqlite"
	"github.com/haukened/waitlist/web"
)

const shutdownTimeout = 10 * time.Second

// realClock implements app.Clock using time.Now.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// mintCounter counts ids minted by the column default.
type mintCounter struct {
	resourceid.Column
	metrics app.Metrics
}

func (c mintCounter) Default() (string, error) {
	id, err := c.Column.Default()
	if err == nil {
		c.metrics.Inc(metrics.CounterIDsMinted, 1)
	}
	return id, err
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := applyServeFlags(cmd, cfg); err != nil {
				return err
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())
			slog.SetDefault(logger)
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runServe(ctx, cfg, logger)
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides WAITLIST_ADDR)")
	cmd.Flags().String("data-dir", "", "database directory (overrides WAITLIST_DATA_DIR)")
	cmd.Flags().String("log-level", "", "debug|info|warn|error (overrides WAITLIST_LOG_LEVEL)")
	cmd.Flags().String("log-format", "", "text|json (overrides WAITLIST_LOG_FORMAT)")
	return cmd
}

// applyServeFlags overlays explicitly set flags onto cfg and re-validates.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr, _ = flags.GetString("addr")
	}
	if flags.Changed("data-dir") {
		cfg.DataDir, _ = flags.GetString("data-dir")
	}
	if flags.Changed("log-level") {
		lvl, _ := flags.GetString("log-level")
		if err := cfg.LogLevel.UnmarshalText([]byte(lvl)); err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
	}
	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}
	return config.Validate(cfg)
}

// ensureDataDir creates dir if missing and rejects non-directories.
func ensureDataDir(dir string) error {
	st, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("stat data directory: %w", err)
	case !st.IsDir():
		return fmt.Errorf("data path %q is not a directory", dir)
	}
	return nil
}

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	if err := ensureDataDir(cfg.DataDir); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", cfg.SQLiteDSN())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return db, nil
}

// loadTemplates parses the page templates from fsys.
func loadTemplates(fsys fs.FS) (*template.Template, error) {
	t, err := web.Templates(fsys)
	if err != nil {
		return nil, err
	}
	if t.Lookup(web.IndexTemplate) == nil {
		return nil, fmt.Errorf("template %q not defined", web.IndexTemplate)
	}
	return t, nil
}

// stack is the wired application behind the HTTP server.
type stack struct {
	db      *sql.DB
	metrics *metrics.Manager
	janitor *janitor.Janitor
	handler http.Handler
}

// Close stops background workers, flushes metrics, then closes the database.
func (s *stack) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.janitor.Stop()
	return errors.Join(s.metrics.Stop(ctx), s.db.Close())
}

// buildStack opens storage and wires codec, store, service, metrics, and handler.
func buildStack(ctx context.Context, cfg *config.Config, logger *slog.Logger, assets fs.FS) (_ *stack, err error) {
	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = db.Close()
		}
	}()
	codec, err := resourceid.New(cfg.Secret())
	if err != nil {
		return nil, err
	}
	col, err := resourceid.NewColumn(codec, cfg.IDPrefix)
	if err != nil {
		return nil, err
	}
	mm := metrics.New(db, metrics.Config{FlushInterval: cfg.FlushInterval, Logger: logger})
	if err := mm.InitSchema(ctx); err != nil {
		return nil, fmt.Errorf("init metrics schema: %w", err)
	}
	st, err := sqlite.New(db, mintCounter{Column: col, metrics: mm})
	if err != nil {
		return nil, fmt.Errorf("init waitlist schema: %w", err)
	}
	tmpl, err := loadTemplates(assets)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	svc := &app.Service{Store: st, Clock: realClock{}, Metrics: mm, Prefix: cfg.IDPrefix}

	h := httpx.New(svc, cfg.MaxBytes, db.PingContext)
	h.IndexTmpl = httpx.HTMLRenderer{T: tmpl, Name: web.IndexTemplate}
	h.Assets = http.FS(web.Static(assets))
	h.Metrics = metrics.Handler(mm, cfg.MetricsToken)
	h.Observer = mm

	jan := janitor.New(st, mm, janitor.Config{Interval: cfg.MaintenanceInterval, Logger: logger})
	mm.Start(ctx)
	jan.Start(ctx)
	return &stack{db: db, metrics: mm, janitor: jan, handler: h.Router()}, nil
}

func newServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// runServe serves until ctx is cancelled, then shuts down gracefully.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	log := logger.With("domain", "server")
	st, err := buildStack(ctx, cfg, logger, web.Assets)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error("close", "error", err)
		}
	}()

	srv := newServer(cfg, st.handler)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info("starting server", "addr", cfg.Addr, "pid", os.Getpid(), "id_prefix", cfg.IDPrefix)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
