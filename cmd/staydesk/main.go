// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"

	"github.com/olegiv/staydesk/internal/apiclient"
	"github.com/olegiv/staydesk/internal/config"
	"github.com/olegiv/staydesk/internal/confirm"
	"github.com/olegiv/staydesk/internal/handler"
	"github.com/olegiv/staydesk/internal/listing"
	"github.com/olegiv/staydesk/internal/logging"
	"github.com/olegiv/staydesk/internal/render"
	"github.com/olegiv/staydesk/internal/scheduler"
	"github.com/olegiv/staydesk/internal/service"
	"github.com/olegiv/staydesk/internal/session"
	"github.com/olegiv/staydesk/internal/store"
	"github.com/olegiv/staydesk/internal/uikit"
	"github.com/olegiv/staydesk/internal/version"
	"github.com/olegiv/staydesk/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "StayDesk - admin console for the StayDesk booking marketplace\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  STAYDESK_API_BASE_URL     Marketplace backend URL (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  STAYDESK_SESSION_SECRET   Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  STAYDESK_DB_PATH          SQLite database path (default: ./data/staydesk.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  STAYDESK_SERVER_PORT      Server port (default: 8090)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  STAYDESK_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  STAYDESK_TOKEN_STORE      Admin token storage: sqlite|redis|memory (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  STAYDESK_REDIS_URL        Redis URL when the token store is redis\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
	if *showVersion {
		_, _ = fmt.Println(info.String())
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	logger := slog.New(textHandler)
	slog.SetDefault(logger)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Upgrade logger to also write warnings, errors and audited categories
	// to the local audit log.
	audit := service.NewAuditService(db)
	logger = slog.New(logging.NewAuditHandler(textHandler, audit))
	slog.SetDefault(logger)
	slog.Info("audit log enabled", "min_level", "warn")

	tokens, closeTokens, err := tokenStorage(cfg, db)
	if err != nil {
		return fmt.Errorf("initializing token storage: %w", err)
	}
	defer closeTokens()

	raw, err := apiclient.New(apiclient.Config{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.APITimeout,
		RateLimit: cfg.APIRateLimit,
		Burst:     cfg.APIBurst,
		UserAgent: "staydesk/" + info.Version,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("creating API client: %w", err)
	}

	sess := session.New(service.NewAuthService(raw), tokens, logger)
	api := apiclient.NewSessionClient(raw, sess, logger)
	catalog := service.NewCatalog(api)

	listOpts := listing.Options{
		PageSize: cfg.PageSize,
		Debounce: cfg.Debounce,
		MaxWait:  cfg.DebounceMaxWait,
		Logger:   logger,
	}
	lists := handler.NewLists(catalog, listOpts)
	defer lists.Close()
	// Filters and pages do not outlive the session.
	sess.OnChange(lists.SessionChanged)

	startCtx, cancelStart := context.WithTimeout(context.Background(), cfg.APITimeout)
	if sess.CheckAuth(startCtx) {
		id, _ := sess.Identity()
		slog.Info("restored admin session", "email", id.Email)
	}
	cancelStart()

	gate := confirm.NewGate(cfg.ConfirmTTL, logger)

	money, err := uikit.NewMoney(cfg.Currency, language.English)
	if err != nil {
		return fmt.Errorf("initializing currency %q: %w", cfg.Currency, err)
	}

	sessionManager := session.NewBrowserManager(db, cfg.IsDevelopment())
	renderer, err := render.New(render.Config{
		TemplatesFS:    web.TemplatesFS(),
		SessionManager: sessionManager,
		Money:          money,
		Nav:            navigation(catalog),
	})
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	auditLog := handler.NewAuditLogHandler(audit, listOpts, renderer)
	defer auditLog.Close()

	h := handlers{
		auth:      handler.NewAuthHandler(sess, renderer, sessionManager, logger),
		dashboard: handler.NewDashboardHandler(service.NewDashboardService(api), gate, renderer),
		resources: handler.NewResourceHandler(catalog, lists, gate, renderer, logger),
		confirms:  handler.NewConfirmHandler(gate, renderer, logger),
		content:   handler.NewContentHandler(service.NewContentService(api), lists, renderer, logger),
		audit:     auditLog,
		live:      handler.NewLiveHandler(lists, logger),
		health:    handler.NewHealthHandler(db, sess, info),
	}

	sched := scheduler.New(logger)
	jobs := []struct {
		name, schedule string
		fn             scheduler.JobFunc
	}{
		{"session-recheck", cfg.SessionRecheck, scheduler.SessionRecheck(sess, logger)},
		{"prune-confirmations", "@every 1m", scheduler.PruneConfirmations(gate, logger)},
		{"audit-retention", "@daily", scheduler.AuditRetention(audit, cfg.AuditRetention(), logger)},
	}
	for _, j := range jobs {
		if err := sched.Add(j.name, j.schedule, j.fn); err != nil {
			return fmt.Errorf("scheduling %s: %w", j.name, err)
		}
	}
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           routes(cfg, sess, sessionManager, h),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "backend", raw.BaseURL(), "version", info.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// tokenStorage opens the configured admin token store.
func tokenStorage(cfg *config.Config, db *sql.DB) (session.Storage, func(), error) {
	switch cfg.TokenStore {
	case config.TokenStoreRedis:
		rs, err := session.NewRedisStorage(session.RedisOptions{
			URL:            cfg.RedisURL,
			Prefix:         cfg.RedisPrefix,
			ConnectTimeout: 5 * time.Second,
		})
		if err != nil {
			return nil, nil, err
		}
		slog.Info("admin token storage", "backend", "redis")
		return rs, func() {
			if err := rs.Close(); err != nil {
				slog.Error("error closing redis connection", "error", err)
			}
		}, nil
	case config.TokenStoreMemory:
		slog.Warn("admin token storage is in memory; sign-ins do not survive a restart")
		return session.NewMemoryStorage(), func() {}, nil
	default:
		slog.Info("admin token storage", "backend", "sqlite")
		return session.NewSQLStorage(store.New(db)), func() {}, nil
	}
}

// navigation builds the sidebar from the catalog.
func navigation(catalog *service.Catalog) []render.NavItem {
	nav := []render.NavItem{{Label: "Dashboard", URL: handler.RouteAdmin}}
	for _, d := range catalog.Descriptors() {
		nav = append(nav, render.NavItem{Label: d.Title, URL: handler.RouteAdmin + "/" + d.Name})
	}
	return append(nav, render.NavItem{Label: "Audit log", URL: handler.RouteAdmin + handler.RouteAudit})
}
