package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/telhawk-systems/telhawk-querybuilder/builder/internal/executor"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/internal/handlers"
	buildernats "github.com/telhawk-systems/telhawk-querybuilder/builder/internal/nats"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/internal/repository"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/internal/server"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/internal/service"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/migrations"
	"github.com/telhawk-systems/telhawk-querybuilder/common/config"
	"github.com/telhawk-systems/telhawk-querybuilder/common/fields"
	"github.com/telhawk-systems/telhawk-querybuilder/common/logging"
	natsclient "github.com/telhawk-systems/telhawk-querybuilder/common/messaging/nats"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "querybuilder: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format).
		With(logging.Service("querybuilder"))
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := fields.Default()
	opts := []service.Option{
		service.WithRegistry(reg),
		service.WithVersion(version),
		service.WithLogger(logger),
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	opts = append(opts, service.WithStore(store))

	if cfg.OpenSearch.Enabled {
		exec, err := executor.NewOpenSearch(cfg.OpenSearch, cfg.Executor, reg)
		if err != nil {
			return err
		}
		if err := exec.Ping(ctx); err != nil {
			// searches fail until the cluster is reachable; health reports it
			logger.Warn("opensearch is not reachable", logging.Error(err))
		}
		opts = append(opts, service.WithExecutor(exec))
		logger.Info("search executor enabled", "index", cfg.OpenSearch.Index)
	}

	var nc *natsclient.Client
	if cfg.NATS.Enabled {
		natsCfg := natsclient.ConfigFrom(cfg.NATS)
		natsCfg.Logger = logger.Logger
		nc, err = natsclient.NewClient(natsCfg)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer func() {
			if err := nc.Drain(); err != nil {
				logger.Warn("failed to drain NATS connection", logging.Error(err))
			}
		}()
		opts = append(opts, service.WithPublisher(nc))
	}

	svc := service.New(opts...)

	if nc != nil {
		jobs := buildernats.NewHandler(nc, svc, logger)
		if err := jobs.Start(ctx); err != nil {
			return err
		}
		defer jobs.Stop()
	}

	h := handlers.NewHandler(svc, server.CheckOrigin(cfg.CORS.AllowedOrigins))
	srv := server.New(cfg, h, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (repository.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		if cfg.Database.Migrate {
			logger.Info("running database migrations")
			if err := migrations.Up(cfg.Database.URL); err != nil {
				return nil, err
			}
		}
		store, err := repository.NewPostgresStore(ctx, cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		return store, nil
	case config.BackendRedis:
		store, err := repository.NewRedisStore(ctx, cfg.Redis.URL, cfg.Redis.KeyPrefix, cfg.Redis.PoolSize)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		return store, nil
	default:
		return repository.NewMemoryStore(), nil
	}
}
