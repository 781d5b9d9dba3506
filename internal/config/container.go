package config

import (
	"context"
	"errors"
	"fmt"
	"io"

	"pdf-slide-synth/internal/domain"
	redisinfra "pdf-slide-synth/internal/infra/redis"
	supabaseinfra "pdf-slide-synth/internal/infra/supabase"
	"pdf-slide-synth/internal/repository"
	"pdf-slide-synth/internal/service"
	"pdf-slide-synth/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

// Store and limiter backends selectable by configuration.
const (
	BackendMemory    = "memory"
	BackendSQLite    = "sqlite"
	BackendRedis     = "redis"
	BackendSupabase  = "supabase"
	BackendFirestore = "firestore"
)

// Container holds all application dependencies
type Container struct {
	Config            domain.Config
	Logger            domain.Logger
	KVStore           domain.KVStore
	JobStore          domain.JobStore
	RateLimiter       domain.RateLimiter
	Generator         domain.Generator
	Renderer          domain.Renderer
	ConversionService domain.ConversionService

	redis   goredis.UniversalClient
	closers []io.Closer
}

// NewContainer loads configuration and wires every dependency from it.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg, err := Load()
	appLogger := logger.New(logger.Options{Level: cfg.GetLogLevel(), Format: cfg.GetLogFormat()})
	if err != nil {
		appLogger.Warn("Ignoring unreadable config file", "error", err)
	}
	return NewContainerWith(ctx, cfg, appLogger)
}

// NewContainerWith wires dependencies from an existing config and logger.
func NewContainerWith(ctx context.Context, cfg domain.Config, appLogger domain.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: appLogger}

	kv, err := c.newKVStore(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.KVStore = kv
	c.closers = append(c.closers, kv)
	c.JobStore = repository.NewJobStore(kv, appLogger)

	windowLog, err := c.newWindowLog(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.RateLimiter = service.NewRateLimiter(windowLog, appLogger, service.WithLimiterEnabled(cfg.GetRateLimitingEnabled()))

	generator, err := service.NewGenerator(ctx, cfg, appLogger)
	switch {
	case errors.Is(err, domain.ErrModelNotConfigured):
		appLogger.Info("Model synthesis disabled, heuristic only", "reason", err.Error())
	case err != nil:
		c.Close()
		return nil, fmt.Errorf("failed to create model backend: %w", err)
	default:
		c.Generator = generator
		if closer, ok := generator.(io.Closer); ok {
			c.closers = append(c.closers, closer)
		}
		appLogger.Info("Model synthesis enabled", "backend", generator.Name())
	}

	validatorOpts := []service.ValidatorOption{
		service.WithSizeLimits(cfg.GetMinFileSize(), cfg.GetMaxFileSize()),
		service.WithSignatureSniffing(cfg.GetSniffSignatures()),
	}
	if cfg.GetValidatePDFStructure() {
		validatorOpts = append(validatorOpts, service.WithStructureCheck(service.PDFCPUStructureCheck))
	}
	validator := service.NewValidator(appLogger, validatorOpts...)
	extractor := service.NewExtractor(service.NewPageDecoder(cfg.GetPDFDecoder()), cfg.GetPageTimeout(), appLogger)

	synthesizer := service.NewModelSynthesizer(c.Generator, appLogger,
		service.WithSynthesisTimeout(cfg.GetSynthesisTimeout()),
		service.WithRetryPolicy(service.RetryPolicy{
			MaxRetries:     cfg.GetSynthesisMaxRetries(),
			InitialBackoff: service.DefaultRetryPolicy().InitialBackoff,
			MaxBackoff:     service.DefaultRetryPolicy().MaxBackoff,
		}),
		service.WithMaxPromptChars(cfg.GetSynthesisMaxChars()),
	)

	c.Renderer = service.NewRenderer(
		service.NewHTTPImageFetcher(cfg.GetImageTimeout(), appLogger),
		appLogger,
		service.WithImageBaseURL(cfg.GetImageBaseURL()),
		service.WithImageConcurrency(cfg.GetImageConcurrency()),
	)

	c.ConversionService = service.NewConversionService(
		validator,
		extractor,
		synthesizer,
		c.Renderer,
		c.JobStore,
		c.RateLimiter,
		appLogger,
		service.WithThumbnailBaseURL(cfg.GetImageBaseURL()),
	)
	return c, nil
}

func (c *Container) redisClient(ctx context.Context) (goredis.UniversalClient, error) {
	if c.redis != nil {
		return c.redis, nil
	}
	client, err := redisinfra.NewClient(ctx, c.Config, c.Logger)
	if err != nil {
		return nil, err
	}
	c.redis = client
	c.closers = append(c.closers, client)
	return client, nil
}

func (c *Container) newKVStore(ctx context.Context) (domain.KVStore, error) {
	backend := c.Config.GetStoreBackend()
	c.Logger.Info("Initializing job store", "backend", backend)

	switch backend {
	case "", BackendMemory:
		return repository.NewMemoryKVStore(), nil
	case BackendSQLite:
		return repository.NewSQLiteKVStore(c.Config.GetSQLitePath(), c.Logger)
	case BackendRedis:
		client, err := c.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return repository.NewRedisKVStore(client, c.Config.GetRedisPrefix()), nil
	case BackendSupabase:
		client := supabaseinfra.NewSupabaseClient(c.Config, c.Logger)
		if err := client.Initialize(); err != nil {
			return nil, err
		}
		return repository.NewSupabaseKVStore(client, c.Logger), nil
	case BackendFirestore:
		client, err := repository.NewFirestoreClient(ctx, c.Config.GetFirestoreProjectID())
		if err != nil {
			return nil, err
		}
		return repository.NewFirestoreKVStore(client), nil
	}
	return nil, fmt.Errorf("unknown STORE_BACKEND %q", backend)
}

func (c *Container) newWindowLog(ctx context.Context) (domain.WindowLog, error) {
	switch backend := c.Config.GetRateLimitBackend(); backend {
	case "", BackendMemory:
		return repository.NewMemoryWindowLog(), nil
	case BackendRedis:
		client, err := c.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return repository.NewRedisWindowLog(client, c.Config.GetRedisPrefix()), nil
	default:
		return nil, fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", backend)
	}
}

// Close releases backend connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			c.Logger.Warn("Failed to close dependency", "error", err)
		}
	}
	c.closers = nil
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}
