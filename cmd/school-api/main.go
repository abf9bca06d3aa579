// main is the entry point of the School Management API.
//
// STARTUP SEQUENCE:
//  1. Load configuration (.env, optional YAML file, environment)
//  2. Initialise the logger
//  3. Build the student store (hosted Xata database, or local SQLite)
//  4. Register all HTTP routes
//  5. Serve until SIGINT/SIGTERM, then shut down gracefully
//
// RUNNING THE SERVER:
//
//	XATA_API_KEY=... XATA_DATABASE_URL=https://ws.us-east-1.xata.sh/db/school go run ./cmd/school-api
//
// or against a local SQLite file:
//
//	STORAGE_DRIVER=sqlite go run ./cmd/school-api --config=config/local.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/aanand-mishra/school-api/internal/config"
	"github.com/aanand-mishra/school-api/internal/http/router"
	"github.com/aanand-mishra/school-api/internal/storage"
	"github.com/aanand-mishra/school-api/internal/storage/sqlite"
	"github.com/aanand-mishra/school-api/internal/storage/xata"
)

const version = "1.0.0"

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting school-api",
		slog.String("env", cfg.Env),
		slog.String("version", version),
	)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

func run(cfg *config.Config, log *slog.Logger) error {
	store, closer, err := newStorage(cfg, log)
	if err != nil {
		return err
	}
	defer closer.Close()

	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      router.New(store),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, stopping server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// newStorage builds the store selected by cfg.Storage.Driver. The returned
// io.Closer releases it on exit.
func newStorage(cfg *config.Config, log *slog.Logger) (storage.Storage, io.Closer, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		s, err := sqlite.New(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("initialise storage: %w", err)
		}
		log.Info("storage initialised",
			slog.String("driver", cfg.Storage.Driver),
			slog.String("path", cfg.Storage.Path),
			slog.String("table", cfg.Storage.Table))
		return s, s, nil
	default:
		if !cfg.Xata.Configured() {
			log.Warn("xata credentials are incomplete; store calls will fail until XATA_API_KEY and XATA_DATABASE_URL are set")
		}
		log.Info("storage initialised",
			slog.String("driver", cfg.Storage.Driver),
			slog.String("branch", cfg.Xata.Branch),
			slog.String("table", cfg.Storage.Table),
			slog.Duration("timeout", cfg.Storage.Timeout))
		return xata.New(cfg), io.NopCloser(nil), nil
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default:
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
