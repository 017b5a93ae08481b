// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

// Command api is the entry point for the FarmLink gateway server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Build the marketplace backend client.
//  7. Wire session manager, view-state registry, and HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/farmlink/gateway/internal/api"
	"github.com/farmlink/gateway/internal/community"
	"github.com/farmlink/gateway/internal/guard"
	"github.com/farmlink/gateway/internal/market/product"
	"github.com/farmlink/gateway/internal/market/resource"
	"github.com/farmlink/gateway/internal/platform/backend"
	"github.com/farmlink/gateway/internal/platform/config"
	"github.com/farmlink/gateway/internal/platform/constants"
	"github.com/farmlink/gateway/internal/platform/migration"
	pgstore "github.com/farmlink/gateway/internal/platform/postgres"
	redisstore "github.com/farmlink/gateway/internal/platform/redis"
	"github.com/farmlink/gateway/internal/session"
	"github.com/farmlink/gateway/internal/viewstate"
	"github.com/farmlink/gateway/pkg/pagelist"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[FarmLink] gateway_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("session_persistence", cfg.SessionPersistence),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Root context for background workers (sweepers). Cancelled on shutdown.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Backend Client ─────────────────────────────────────────────────
	client := backend.New(cfg.BackendURL, cfg.BackendTimeout, log)

	// ── 7. Session Manager ────────────────────────────────────────────────
	// Token persistence tier is configuration-selected: redis keeps tokens
	// with a TTL, postgres keeps them until logout.
	var tokenStorage session.TokenStorage
	switch cfg.SessionPersistence {
	case "postgres":
		tokenStorage = session.NewPostgresTokenStorage(pool)
	default:
		tokenStorage = session.NewRedisTokenStorage(rdb, cfg.SessionTTL)
	}

	sessions := session.NewManager(workerCtx, tokenStorage,
		session.BackendUserFetcher(client),
		session.BackendTokenRefresher(client),
		log,
	)

	// ── 8. View-State Registry ────────────────────────────────────────────
	definitions := map[string]viewstate.Definition{
		viewstate.ListProducts: {
			New: func() viewstate.ListHandle {
				return viewstate.NewHandle(pagelist.New(product.NewFetcher(client), product.ListPageSize))
			},
			Normalize: product.NormalizeFilters,
		},
		viewstate.ListPosts: {
			New: func() viewstate.ListHandle {
				return viewstate.NewHandle(pagelist.New(community.NewPostFetcher(client), community.PostPageSize))
			},
			Normalize: community.NormalizeFilters,
		},
		viewstate.ListResources: {
			New: func() viewstate.ListHandle {
				return viewstate.NewHandle(pagelist.New(resource.NewFetcher(client), resource.ListPageSize))
			},
			Normalize: resource.NormalizeFilters,
		},
	}

	// Reply lists are addressed per post and created on demand.
	replyLists := func(name string) (viewstate.Definition, bool) {
		postID, ok := viewstate.ReplyListPostID(name)
		if !ok {
			return viewstate.Definition{}, false
		}
		return viewstate.Definition{
			New: func() viewstate.ListHandle {
				return viewstate.NewHandle(pagelist.New(community.NewReplyFetcher(client, postID), community.ReplyPageSize))
			},
			Normalize: community.NormalizeFilters,
		}, true
	}

	registry := viewstate.NewRegistry(workerCtx, definitions, replyLists, cfg.SearchDebounce, log)

	// ── 9. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
		CheckBackend: func() error {
			probeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Get(probeCtx, "/health", nil, "", nil)
		},
	}, log)

	// ── 10. Domain Wiring ─────────────────────────────────────────────────
	communityService := community.NewService(client, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Session:   session.NewHandler(sessions, client, registry.Forget),
		Guard:     guard.NewHandler(),
		Lists:     viewstate.NewHandler(registry),
		Community: community.NewHandler(communityService, registry),
	}

	// ── 11. HTTP Server ───────────────────────────────────────────────────
	server := api.NewServer(workerCtx, cfg, log, handlers)

	// ── 12. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
