// Package daemon hosts the subtransd process: it owns the job store, the
// translation engine, and the HTTP API, and enforces single-instance
// operation through a lock file.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"subtrans/internal/api"
	"subtrans/internal/config"
	"subtrans/internal/groundtruth"
	"subtrans/internal/jobstore"
	"subtrans/internal/logging"
	"subtrans/internal/notifications"
	"subtrans/internal/provider"
	"subtrans/internal/translate"
)

// Daemon wires the translation engine and API server over one configuration.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	lock   *flock.Flock
	store  *jobstore.Store
	engine *translate.Engine
	server *api.Server
}

// New constructs a daemon. The instance lock is not taken until Run.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.ValidateProviderCredentials(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	store, err := jobstore.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}

	settings := translate.NewSettingsStore(settingsFromConfig(cfg))
	factory := clientFactory(cfg)

	var opts []translate.EngineOption
	if cfg.Storage.GroundTruthURL != "" {
		sink := groundtruth.NewHTTPSink(
			cfg.Storage.GroundTruthURL,
			"subtrans",
			time.Duration(cfg.Storage.RequestTimeoutSeconds)*time.Second,
		)
		opts = append(opts, translate.WithGroundTruthSink(sink))
	}
	opts = append(opts, translate.WithNotifier(notifications.NewService(cfg)))

	engine := translate.NewEngine(store, settings, factory, logger, opts...)
	server := api.NewServer(cfg.Paths.APIBind, engine, logger)

	return &Daemon{
		cfg:    cfg,
		logger: logger.With(logging.String(logging.FieldComponent, "daemon")),
		lock:   flock.New(cfg.LockPath()),
		store:  store,
		engine: engine,
		server: server,
	}, nil
}

// settingsFromConfig seeds the engine's runtime settings from the
// configuration file.
func settingsFromConfig(cfg *config.Config) translate.Settings {
	return translate.Settings{
		Provider:          cfg.Translation.Provider,
		Model:             cfg.Translation.Model,
		Temperature:       cfg.Translation.Temperature,
		MaxTokens:         cfg.Translation.MaxTokens,
		SystemPrompt:      cfg.Translation.SystemPrompt,
		SourceLanguage:    cfg.Translation.SourceLanguage,
		TargetLanguage:    cfg.Translation.TargetLanguage,
		RequestsPerMinute: cfg.Translation.RequestsPerMinute,
		ChunkSize:         cfg.Translation.ChunkSize,
		MaxPromptTokens:   cfg.Translation.MaxPromptTokens,
		RetryDelay:        time.Duration(cfg.Translation.RetryDelaySeconds) * time.Second,
		MaxRetries:        cfg.Translation.MaxRetries,
		RequestTimeout:    time.Duration(cfg.Translation.RequestTimeoutSeconds) * time.Second,
	}
}

// clientFactory builds a retrying model client for each settings snapshot,
// so provider and model switches apply at chunk boundaries.
func clientFactory(cfg *config.Config) translate.ClientFactory {
	return func(settings translate.Settings) (translate.ModelClient, error) {
		var backend provider.Provider
		switch settings.Provider {
		case "anthropic":
			backend = provider.NewAnthropicProvider(
				cfg.Providers.Anthropic.APIKey,
				cfg.Providers.Anthropic.BaseURL,
				settings.RequestTimeout,
			)
		case "openai":
			backend = provider.NewOpenAIProvider(
				cfg.Providers.OpenAI.APIKey,
				cfg.Providers.OpenAI.BaseURL,
				settings.RequestTimeout,
			)
		default:
			return nil, fmt.Errorf("unsupported provider %q", settings.Provider)
		}
		return provider.NewClient(backend, settings.MaxRetries, settings.RetryDelay), nil
	}
}

// Run takes the instance lock, fails jobs orphaned by a previous process,
// and serves the API until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	locked, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another subtransd instance holds %s", d.cfg.LockPath())
	}
	defer func() { _ = d.lock.Unlock() }()

	interrupted, err := d.store.MarkInterrupted(ctx, "interrupted by daemon restart")
	if err != nil {
		return fmt.Errorf("recover interrupted jobs: %w", err)
	}
	if interrupted > 0 {
		d.logger.Warn("failed jobs left by previous run", logging.Int("count", int(interrupted)))
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- d.server.ListenAndServe()
	}()
	d.logger.Info("daemon started",
		logging.String("api_bind", d.cfg.Paths.APIBind),
		logging.String("database", d.store.Path()))

	select {
	case err := <-serveErr:
		d.shutdown()
		return err
	case <-ctx.Done():
		d.logger.Info("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(d.cfg.Workflow.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		if err := d.server.Shutdown(shutdownCtx); err != nil {
			d.logger.Warn("api shutdown incomplete", logging.Error(err))
		}
		d.shutdown()
		return nil
	}
}

func (d *Daemon) shutdown() {
	d.engine.Close()
	if err := d.store.Close(); err != nil {
		d.logger.Warn("close job store failed", logging.Error(err))
	}
	d.logger.Info("daemon stopped")
}
