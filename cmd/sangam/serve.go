package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/erazemk/sangam/internal/api"
	"github.com/erazemk/sangam/internal/auth"
	"github.com/erazemk/sangam/internal/config"
	"github.com/erazemk/sangam/internal/db"
	"github.com/erazemk/sangam/internal/mongostore"
	"github.com/erazemk/sangam/internal/store"
)

// purgeInterval is how often expired revoked tokens are dropped.
const purgeInterval = time.Hour

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a.cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	dbPath := cfg.Storage.SQLitePath

	// Check if DB exists, auto-init if not.
	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		database, password, err := initDatabase(dbPath, cfg.AdminUser)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		database.Close()

		printInitResult(dbPath, cfg.AdminUser, password)
		fmt.Println()
	}

	database, err := openDatabase(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	slog.Info("database ready", "path", dbPath)

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	content, closeContent, err := openContent(ctx, cfg, database)
	if err != nil {
		return err
	}
	defer closeContent()

	issuer := auth.NewIssuer(jwtSecret, cfg.TokenTTL())
	handler := api.LoggingMiddleware(
		api.CORSMiddleware(cfg.CORS.AllowedOrigins)(
			api.NewRouter(database, content, issuer),
		),
	)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server started", "addr", cfg.Addr, "storage", cfg.Storage.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown on SIGINT/SIGTERM or when the server fails.
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down", "timeout", cfg.ShutdownTimeout())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		purgeRevokedTokens(gctx, database)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped, closing database")
	return nil
}

// openDatabase opens the SQLite database and ensures the schema exists.
func openDatabase(path string) (*sql.DB, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("ensuring database schema: %w", err)
	}
	return database, nil
}

// openContent returns the configured content backend. The SQLite backend
// shares database; the MongoDB one gets its own client.
func openContent(ctx context.Context, cfg *config.Config, database *sql.DB) (store.ContentStore, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		ms, err := mongostore.Connect(ctx, cfg.Storage.MongoURI, cfg.Storage.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("mongo content store ready", "database", cfg.Storage.MongoDatabase)
		return ms, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := ms.Close(ctx); err != nil {
				slog.Error("failed to disconnect from mongo", "error", err)
			}
		}, nil
	default:
		return store.NewContent(database), func() {}, nil
	}
}

// purgeRevokedTokens drops revoked tokens past their expiry until ctx ends.
func purgeRevokedTokens(ctx context.Context, database *sql.DB) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		n, err := store.PurgeRevokedTokens(ctx, database, time.Now())
		if err != nil && ctx.Err() == nil {
			slog.Error("failed to purge revoked tokens", "error", err)
		} else if n > 0 {
			slog.Info("purged revoked tokens", "count", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
