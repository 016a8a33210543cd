// Package cli wires configuration, stores, collaborators and transports into
// the commands of the adflow binary.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/adflow"
	"github.com/aretw0/adflow/internal/config"
	"github.com/aretw0/adflow/internal/logging"
	"github.com/aretw0/adflow/pkg/adapters/file"
	httpadapter "github.com/aretw0/adflow/pkg/adapters/http"
	"github.com/aretw0/adflow/pkg/adapters/lru"
	"github.com/aretw0/adflow/pkg/adapters/memory"
	"github.com/aretw0/adflow/pkg/adapters/openai"
	"github.com/aretw0/adflow/pkg/adapters/redis"
	"github.com/aretw0/adflow/pkg/adapters/stub"
	"github.com/aretw0/adflow/pkg/observability"
	"github.com/aretw0/adflow/pkg/persistence/middleware"
	"github.com/aretw0/adflow/pkg/ports"
)

// logOutput keeps stdout free for chat output and MCP stdio.
var logOutput io.Writer = os.Stderr

// App holds everything a command needs, built once from the config.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Engine   *adflow.Engine
	Streams  *httpadapter.StreamManager
	Registry *prometheus.Registry
	Metrics  *observability.Metrics

	closers []func() error
}

// NewLogger builds the application logger from the config.
func NewLogger(cfg config.Config) *slog.Logger {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.NewWithWriter(logOutput, level, cfg.LogJSON)
}

// NewApp builds the engine and its infrastructure. Close releases it.
func NewApp(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.Metrics = observability.NewMetrics(app.Registry)
	app.Streams = httpadapter.NewStreamManager(logger)

	store, locker, closeStore, err := OpenStore(cfg.Store, logger)
	if err != nil {
		return nil, err
	}
	if closeStore != nil {
		app.closers = append(app.closers, closeStore)
	}

	collab := stub.New().Collaborators()
	collab.Classifier = NewClassifier(cfg.OpenAI, logger)

	opts := []adflow.Option{
		adflow.WithStore(store),
		adflow.WithLogger(logger),
		adflow.WithLifecycleHooks(observability.Merge(
			app.Metrics.Hooks(),
			observability.LoggingHooks(logger),
		)),
		adflow.WithStateObserver(app.Streams.Observe),
		adflow.WithImageCount(cfg.Workflow.ImageCount),
	}
	if len(cfg.Workflow.CampaignTriggers) > 0 {
		opts = append(opts, adflow.WithCampaignTriggers(cfg.Workflow.CampaignTriggers...))
	}
	if locker != nil {
		opts = append(opts, adflow.WithLocker(locker, time.Duration(cfg.Store.Redis.LockTTL)))
	}
	app.Engine = adflow.New(collab, opts...)
	return app, nil
}

// OpenStore builds the configured session store, sealing access tokens when
// an encryption key is set. The locker is non-nil for Redis only; close is
// nil when there is nothing to release.
func OpenStore(cfg config.StoreConfig, logger *slog.Logger) (ports.StateStore, ports.DistributedLocker, func() error, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	active, fallback, err := cfg.Keys()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	store, locker, closeStore, err := openBaseStore(cfg, logger)
	if err != nil || active == nil {
		return store, locker, closeStore, err
	}

	seal, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    active,
		FallbackKeys: fallback,
	})
	if err != nil {
		if closeStore != nil {
			_ = closeStore()
		}
		return nil, nil, nil, err
	}
	logger.Debug("access tokens are sealed at rest", "fallback_keys", len(fallback))
	return middleware.Chain(store, seal), locker, closeStore, nil
}

func openBaseStore(cfg config.StoreConfig, logger *slog.Logger) (ports.StateStore, ports.DistributedLocker, func() error, error) {
	switch cfg.Kind {
	case "", config.StoreMemory:
		return memory.NewStore(), nil, nil, nil
	case config.StoreLRU:
		store, err := lru.New(cfg.Size, lru.WithLogger(logger))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create lru store: %w", err)
		}
		return store, nil, nil, nil
	case config.StoreFile:
		return file.NewStore(cfg.Path), nil, nil, nil
	case config.StoreRedis:
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(time.Duration(cfg.Redis.TTL)),
		)
		locker := redis.NewLocker(store.Client(), cfg.Redis.Prefix)
		return store, locker, store.Client().Close, nil
	}
	return nil, nil, nil, fmt.Errorf("%w: unknown store kind %q", config.ErrInvalidConfig, cfg.Kind)
}

// NewClassifier returns the model-backed classifier when an API key is set,
// the keyword classifier otherwise.
func NewClassifier(cfg config.OpenAIConfig, logger *slog.Logger) ports.IntentClassifier {
	if cfg.APIKey == "" {
		logger.Debug("no OpenAI key, using keyword intent classifier")
		return stub.NewKeywordClassifier()
	}
	return openai.New(cfg.APIKey, cfg.Model, openai.WithLogger(logger))
}

// HTTPServer builds the HTTP transport over the app engine.
func (a *App) HTTPServer() *httpadapter.Server {
	return httpadapter.NewServer(a.Engine,
		httpadapter.WithLogger(a.Logger),
		httpadapter.WithStreams(a.Streams),
		httpadapter.WithMetrics(a.MetricsHandler()),
		httpadapter.WithVersion(adflow.Version),
	)
}

// MetricsHandler serves the app registry in the Prometheus text format.
func (a *App) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{Registry: a.Registry})
}

// Close releases the store connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
