package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yanizio/nasabah/internal/api"
	"github.com/yanizio/nasabah/internal/component"
	"github.com/yanizio/nasabah/internal/config"
	"github.com/yanizio/nasabah/internal/form"
	"github.com/yanizio/nasabah/internal/logger"
	"github.com/yanizio/nasabah/internal/requestinfo"
	"github.com/yanizio/nasabah/internal/server"
	"github.com/yanizio/nasabah/internal/session"
	"github.com/yanizio/nasabah/internal/view"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web portal",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Configuration and logging ──────────────────────────────────
	//
	cfg, err := config.Load(ctx)
	if err != nil {
		printError("load config", err)
		return err
	}
	log, err := logger.New(logger.Options{
		Dir:   underRoot(cfg, cfg.Log.Dir),
		Level: cfg.Log.Level,
		Tee:   cfg.Log.Tee,
	})
	if err != nil {
		printError("start logger", err)
		return err
	}
	defer func() { _ = log.Sync() }()

	//
	// ── 2.  Shared dependencies ────────────────────────────────────────
	//
	deps, err := buildDeps(cfg, log)
	if err != nil {
		log.Errorw("startup failed", "err", err)
		return err
	}
	if err := requestinfo.InitGeo(underRoot(cfg, cfg.Geo.DBPath)); err != nil {
		log.Warnw("geoip disabled", "path", cfg.Geo.DBPath, "err", err)
	}

	//
	// ── 3.  Root handler ───────────────────────────────────────────────
	//
	opts := server.RouterOptions{
		ForceHTTPS: cfg.HTTP.ForceHTTPS,
		Debug:      cfg.HTTP.DebugEndpoint,
	}
	if cfg.Metrics.Enabled {
		opts.MetricsPath = cfg.Metrics.Path
	}
	if cfg.UI.OverrideDir != "" {
		opts.FormOverride = []string{underRoot(cfg, cfg.UI.OverrideDir)}
	}
	handler, err := server.NewRouter(deps, opts, component.All()...)
	if err != nil {
		log.Errorw("router build failed", "err", err)
		return err
	}

	//
	// ── 4.  Serve until signalled ──────────────────────────────────────
	//
	go deps.Sessions.RunEvictor(logger.WithContext(ctx, log), 0)

	srv := server.New(cfg.HTTP, handler)
	return server.Run(ctx, srv, nil, cfg.HTTP.ShutdownTimeout, log)
}

// buildDeps wires the objects every component shares.
func buildDeps(cfg *config.Config, log *zap.SugaredLogger) (component.Deps, error) {
	if cfg.Security.CSRFKey == "" {
		log.Warnw("security.csrf_key not set; form tokens will not survive a restart")
	}
	form.SetCSRFKey([]byte(cfg.Security.CSRFKey))

	rules, err := form.NewRules(cfg.UI.Locale)
	if err != nil {
		return component.Deps{}, fmt.Errorf("form rules: %w", err)
	}
	cli, err := api.New(api.Options{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout})
	if err != nil {
		return component.Deps{}, err
	}

	return component.Deps{
		API: cli,
		Sessions: session.NewManager(session.Options{
			CookieName: cfg.Session.CookieName,
			IdleTTL:    cfg.Session.IdleTTL,
			Capacity:   cfg.Session.Capacity,
			Secure:     cfg.Session.Secure,
		}),
		Forms: form.NewController(rules),
		View: view.New(view.Options{
			Title:       cfg.UI.Title,
			OverrideDir: underRoot(cfg, cfg.UI.OverrideDir),
		}),
		Log: log,
	}, nil
}

// underRoot anchors a relative path at the config root.  Empty stays empty.
func underRoot(cfg *config.Config, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cfg.Paths.Root, p)
}
