// Command server runs the VendorHub HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/VendorHub/internal/config"
	"github.com/JonMunkholm/VendorHub/internal/core"
	"github.com/JonMunkholm/VendorHub/internal/database"
	"github.com/JonMunkholm/VendorHub/internal/fields"
	"github.com/JonMunkholm/VendorHub/internal/logging"
	"github.com/JonMunkholm/VendorHub/internal/metrics"
	"github.com/JonMunkholm/VendorHub/internal/tier"
	"github.com/JonMunkholm/VendorHub/internal/web"
	"github.com/JonMunkholm/VendorHub/internal/web/middleware"
)

func main() {
	// Values in .env win over the inherited environment.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if err := run(cfg); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func run(cfg *config.Config) error {
	slog.Info("starting vendorhub",
		"addr", cfg.Server.Addr(),
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"import_max_file_size", cfg.Import.MaxFileSize,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"tier_policy_file", cfg.Tier.PolicyFile,
	)
	slog.Debug("configuration", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := openPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, cfg.Database.URL); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		slog.Info("database schema up to date")
	}

	registry := fields.Default()
	tiers, err := tier.LoadService(cfg.Tier.PolicyFile, registry.AccessLevels())
	if err != nil {
		return err
	}
	slog.Info("field registry loaded",
		"fields", registry.Len(),
		"admin_fields", len(registry.AdminFields()),
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.RuntimeMetrics)
	}

	store := database.NewStore(pool)
	service, err := core.NewService(core.Deps{
		Vendors:  store,
		History:  store,
		Requests: store,
		Audit:    store,
		Registry: registry,
		Tiers:    tiers,
		Metrics:  m,
	}, core.Config{
		MaxFileSize:   cfg.Import.MaxFileSize,
		MaxConcurrent: cfg.Import.MaxConcurrent,
		MaxWaitTime:   cfg.Import.MaxWaitTime,
		ImportTimeout: cfg.Import.Timeout,
	})
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	rate := 0
	if cfg.Rate.Enabled {
		rate = cfg.Rate.RequestsPerMinute
	}
	server := web.NewServer(service, web.Options{
		Auth: middleware.AuthConfig{
			Secret: []byte(cfg.Auth.JWTSecret),
			Issuer: cfg.Auth.Issuer,
			Leeway: cfg.Auth.Leeway,
		},
		TrustedProxies: cfg.Security.TrustedProxies,
		RequestTimeout: cfg.Server.RequestTimeout,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxUploadSize:  cfg.Import.MaxFileSize,
		DryRunDefault:  cfg.Import.DryRunDefault,
		RateLimit:      rate,
		Metrics:        m,
		Health:         store.Ping,
	})

	if cfg.Archive.Enabled {
		go service.StartArchiveScheduler(ctx, core.ArchiveConfig{
			HotRetentionDays:      cfg.Archive.HotRetentionDays,
			ArchiveRetentionYears: cfg.Archive.ArchiveRetentionYears,
			BatchSize:             cfg.Archive.BatchSize,
			CheckInterval:         cfg.Archive.CheckInterval,
		})
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start(cfg.Server.Addr())
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutdown requested")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if active := service.ImportStatus().Active; active > 0 {
		slog.Info("draining imports", "active", active)
		if err := service.WaitForImports(shutdownCtx); err != nil {
			slog.Warn("imports still running at shutdown", "error", err)
		}
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openPool connects and pings PostgreSQL with the configured pool limits.
func openPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	name := ""
	if u, err := url.Parse(cfg.URL); err == nil {
		name = strings.TrimPrefix(u.Path, "/")
	}
	slog.Info("connected to database", "name", name, "max_conns", cfg.MaxConns)
	return pool, nil
}
