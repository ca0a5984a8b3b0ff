package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sharipovr/aws-url-shortener/internal/cache"
	"github.com/sharipovr/aws-url-shortener/internal/cache/memory"
	"github.com/sharipovr/aws-url-shortener/internal/clicks"
	"github.com/sharipovr/aws-url-shortener/internal/config"
	"github.com/sharipovr/aws-url-shortener/internal/endpoint"
	"github.com/sharipovr/aws-url-shortener/internal/metrics"
	"github.com/sharipovr/aws-url-shortener/internal/repository"
	"github.com/sharipovr/aws-url-shortener/internal/repository/dynamodb"
	memorystore "github.com/sharipovr/aws-url-shortener/internal/repository/memory"
	"github.com/sharipovr/aws-url-shortener/internal/repository/postgres"
	"github.com/sharipovr/aws-url-shortener/internal/repository/redis"
	"github.com/sharipovr/aws-url-shortener/internal/repository/sqlite"
	"github.com/sharipovr/aws-url-shortener/internal/service"
	"github.com/sharipovr/aws-url-shortener/internal/shortener"
	httpTransport "github.com/sharipovr/aws-url-shortener/internal/transport/http"
)

// App holds the wired application dependencies. Everything is opened once
// in New and released by Close.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	Store     repository.LinkStore
	Cache     cache.Cache
	Recorder  *clicks.Recorder
	Service   service.LinkService
	Endpoints *endpoint.Endpoints
}

// New initializes and returns a new App with all dependencies wired up
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	store, err := NewStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	generator, err := shortener.NewGenerator(cfg.Code.Shortener())
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create shortener generator: %w", err)
	}
	logger.Info("using shortener generator", zap.String("type", generator.Type()))

	urlCache, err := newCache(cfg.Cache)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	recorder := clicks.NewRecorder(store, clicks.Config{
		Workers:   cfg.Clicks.Workers,
		QueueSize: cfg.Clicks.QueueSize,
		Timeout:   cfg.Clicks.Timeout,
	}, logger, m)

	svc := service.NewLinkService(store, urlCache, generator, recorder, service.Options{
		MaxAttempts: cfg.Code.MaxAttempts,
		Logger:      logger,
		Metrics:     m,
	})

	logger.Info("application initialized",
		zap.String("store", cfg.Store.Backend),
		zap.String("table", cfg.Store.Table),
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.Int("click_workers", cfg.Clicks.Workers),
	)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Registry:  registry,
		Metrics:   m,
		Store:     store,
		Cache:     urlCache,
		Recorder:  recorder,
		Service:   svc,
		Endpoints: endpoint.New(svc, cfg.Server.BaseURL, logger),
	}, nil
}

// NewStore opens the link store selected by cfg.Store.Backend
func NewStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.LinkStore, error) {
	logger.Info("opening link store", zap.String("backend", cfg.Store.Backend))

	switch cfg.Store.Backend {
	case config.BackendMemory:
		return memorystore.New(), nil

	case config.BackendSQLite:
		return sqlite.New(cfg.Store.DBPath, cfg.Store.Table)

	case config.BackendPostgres:
		store, err := postgres.New(ctx, cfg.Store.DatabaseURL, cfg.Store.Table)
		if err != nil {
			return nil, err
		}
		if cfg.Store.AutoMigrate {
			if err := store.Migrate(ctx); err != nil {
				store.Close()
				return nil, err
			}
			logger.Info("postgres migrations applied", zap.String("table", cfg.Store.Table))
		}
		return store, nil

	case config.BackendRedis:
		return redis.New(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Store.Table)

	case config.BackendDynamoDB:
		return dynamodb.NewFromConfig(ctx, dynamodb.Options{
			Region:   cfg.AWS.Region,
			Endpoint: cfg.AWS.DynamoDBEndpoint,
		}, cfg.Store.Table)

	default:
		return nil, fmt.Errorf("unsupported store backend: %q", cfg.Store.Backend)
	}
}

func newCache(cfg config.CacheConfig) (cache.Cache, error) {
	if !cfg.Enabled {
		return cache.NewNop(), nil
	}
	return memory.New(cfg.Size)
}

// HTTPServer builds the HTTP server over the wired endpoints
func (a *App) HTTPServer() *httpTransport.Server {
	return httpTransport.NewServer(a.Endpoints, httpTransport.Options{
		Port:           a.Config.Server.Port,
		Verbose:        a.Config.Log.Verbose,
		MetricsEnabled: a.Config.Metrics.Enabled,
		Logger:         a.Logger,
		Metrics:        a.Metrics,
	})
}

// Close drains pending clicks and then releases the cache and the store
func (a *App) Close() error {
	var errs []error

	if err := a.Recorder.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close click recorder: %w", err))
	}
	if err := a.Cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close cache: %w", err))
	}
	if err := a.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close store: %w", err))
	}

	a.Logger.Info("application closed")
	return errors.Join(errs...)
}
