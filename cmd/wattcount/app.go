package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/mmynk/wattcount/internal/auth"
	"github.com/mmynk/wattcount/internal/backup"
	"github.com/mmynk/wattcount/internal/config"
	"github.com/mmynk/wattcount/internal/metrics"
	"github.com/mmynk/wattcount/internal/repository"
	"github.com/mmynk/wattcount/internal/service"
	"github.com/mmynk/wattcount/internal/storage"
	"github.com/mmynk/wattcount/internal/storage/memory"
	"github.com/mmynk/wattcount/internal/storage/postgres"
	"github.com/mmynk/wattcount/internal/storage/redis"
	"github.com/mmynk/wattcount/internal/storage/sqlite"
	"github.com/mmynk/wattcount/pkg/logging"
)

// BackendOpener opens the key-value backend named by the storage settings.
type BackendOpener func(ctx context.Context, cfg config.StorageConfig) (storage.Backend, error)

// openBackend opens the configured storage driver.
func openBackend(ctx context.Context, cfg config.StorageConfig) (storage.Backend, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.New(cfg.DBPath)
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.PostgresDSN)
	case config.DriverRedis:
		return redis.New(ctx, &goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// app holds everything a command needs, built once per invocation.
type app struct {
	cfg      config.Config
	store    *storage.RecordStore
	repos    *repository.Repositories
	auth     *service.AuthService
	groups   *service.GroupService
	billing  *service.BillingService
	backup   *backup.Engine
	registry *prometheus.Registry
	logs     io.Closer
}

func newApp(ctx context.Context, cfg config.Config, open BackendOpener) (*app, error) {
	logs := logging.Configure(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	logger := slog.Default()

	backend, err := open(ctx, cfg.Storage)
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}

	registry := prometheus.NewRegistry()
	store := storage.New(backend,
		storage.WithKeyPrefix(cfg.Storage.KeyPrefix),
		storage.WithMetrics(metrics.NewStoreMetrics(registry)),
		storage.WithLogger(logger),
	)
	if err := store.Init(ctx); err != nil {
		store.Close()
		logs.Close()
		return nil, err
	}

	hasher, err := auth.NewPasswordHasher(cfg.Auth.PasswordHashing)
	if err != nil {
		store.Close()
		logs.Close()
		return nil, err
	}

	repos := repository.New(store, repository.WithLogger(logger))
	authenticator := auth.NewPasswordAuthenticator(repos.Users, hasher)
	tokens := auth.NewTokenCodec(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL)

	slog.Debug("Storage opened", "driver", cfg.Storage.Driver, "prefix", cfg.Storage.KeyPrefix)

	return &app{
		cfg:      cfg,
		store:    store,
		repos:    repos,
		auth:     service.NewAuthService(repos, store, authenticator, tokens, logger),
		groups:   service.NewGroupService(repos, logger),
		billing:  service.NewBillingService(repos, logger),
		backup:   backup.New(store, backup.WithLogger(logger)),
		registry: registry,
		logs:     logs,
	}, nil
}

// Close writes the metrics textfile, if configured, and releases storage
// and the log file.
func (a *app) Close() error {
	var errs []error
	if a.cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(a.cfg.MetricsTextfile, a.registry); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics: %w", err))
		}
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
	}
	if err := a.logs.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
