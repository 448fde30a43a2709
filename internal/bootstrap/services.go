package bootstrap

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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/javaDevJT/auth-hooker/config"
	"github.com/javaDevJT/auth-hooker/internal/adapters/oidc"
	redisadapter "github.com/javaDevJT/auth-hooker/internal/adapters/redis"
	"github.com/javaDevJT/auth-hooker/internal/adapters/reaper"
	"github.com/javaDevJT/auth-hooker/internal/data"
	"github.com/javaDevJT/auth-hooker/internal/observability/metrics"
	"github.com/javaDevJT/auth-hooker/internal/ports"
	"github.com/javaDevJT/auth-hooker/internal/service"
)

// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
const shutdownWaitTimeout = 15 * time.Second

// ServiceContainer holds the verification core services.
type ServiceContainer struct {
	Sessions      *service.VerificationSessionManager
	Callbacks     *service.CallbackService
	ClaimMappings *service.ClaimMappingService
	Rules         *service.ClaimRuleEngine
	Normalizer    *service.ClaimsNormalizer
	OIDC          *oidc.Client
	Providers     *data.ProviderRepo
	SessionStore  ports.SessionRepository
	Clock         ports.Clock
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	Registry *prometheus.Registry
	Metrics  metrics.Recorder
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
	Clock       ports.Clock // Optional: defaults to data.RealTimeProvider
}

// buildObservability registers the verification collectors on a private registry.
func buildObservability() (ObservabilityContainer, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec, err := metrics.NewPrometheus(reg)
	if err != nil {
		return ObservabilityContainer{}, fmt.Errorf("register metrics: %w", err)
	}
	return ObservabilityContainer{Registry: reg, Metrics: rec}, nil
}

// buildSessionStore picks the session backend named by SESSION_STORE.
//
//nolint:ireturn // the backend is chosen at runtime.
func buildSessionStore(cfg *config.AppConfig, db *sql.DB, client redis.UniversalClient) (ports.SessionRepository, error) {
	switch cfg.Sessions.Store {
	case config.SessionStoreRedis:
		if client == nil {
			return nil, errors.New("redis session store requires a redis client")
		}
		return redisadapter.NewSessionStore(client, redisadapter.SessionStoreOptions{
			Prefix:    cfg.Sessions.RedisPrefix,
			Retention: cfg.Sweep.Retention,
		}), nil
	case config.SessionStorePostgres, "":
		if db == nil {
			return nil, errors.New("postgres session store requires a database")
		}
		return data.NewSessionRepo(db), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Sessions.Store)
	}
}

// NewServices wires repositories, the OIDC client and the verification services.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	if deps.DB == nil {
		return ServiceContainer{}, errors.New("database is required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := deps.Clock
	if clock == nil {
		clock = data.RealTimeProvider{}
	}

	obs, err := buildObservability()
	if err != nil {
		return ServiceContainer{}, err
	}

	enc, err := CreateEncryptor(cfg.SecretsEncryptionKey)
	if err != nil {
		return ServiceContainer{}, err
	}

	store, err := buildSessionStore(cfg, deps.DB, deps.RedisClient)
	if err != nil {
		return ServiceContainer{}, err
	}

	sessions, err := service.NewVerificationSessionManager(service.VerificationSessionManagerOptions{
		Sessions:       store,
		TTL:            cfg.Sessions.TTL,
		SweepRetention: cfg.Sweep.Retention,
		SweepBatchSize: cfg.Sweep.BatchSize,
		Logger:         logger,
		Metrics:        obs.Metrics,
		Clock:          clock,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("session manager: %w", err)
	}

	oidcClient, err := oidc.NewClient(oidc.Options{
		CallbackBaseURL:       cfg.OIDC.CallbackBaseURL,
		DefaultScopes:         cfg.OIDC.DefaultScopes,
		Timeout:               cfg.OIDC.HTTPTimeout,
		AllowUnsignedIDTokens: cfg.OIDC.AllowUnsignedIDTokens,
		Decryptor:             enc,
		Logger:                logger,
		Metrics:               obs.Metrics,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("oidc client: %w", err)
	}

	mappingRepo := data.NewClaimMappingRepo(deps.DB)
	rules, err := service.NewClaimRuleEngine(service.ClaimRuleEngineOptions{Mappings: mappingRepo, Logger: logger})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("claim rule engine: %w", err)
	}
	normalizer := service.NewClaimsNormalizer(service.ClaimsNormalizerOptions{Rules: rules, Logger: logger})

	providers := data.NewProviderRepo(deps.DB, enc)
	callbacks, err := service.NewCallbackService(service.CallbackServiceOptions{
		Sessions:   sessions,
		Providers:  providers,
		OIDC:       oidcClient,
		Normalizer: normalizer,
		Logger:     logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("callback service: %w", err)
	}

	mappings, err := service.NewClaimMappingService(service.ClaimMappingServiceOptions{Repo: mappingRepo, Logger: logger})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("claim mapping service: %w", err)
	}

	return ServiceContainer{
		Sessions:      sessions,
		Callbacks:     callbacks,
		ClaimMappings: mappings,
		Rules:         rules,
		Normalizer:    normalizer,
		OIDC:          oidcClient,
		Providers:     providers,
		SessionStore:  store,
		Clock:         clock,
		Observability: obs,
	}, nil
}

// ServiceOrchestrationConfig groups what RunServicesWithShutdown needs.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// backgroundService describes a startable background component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	name string
	done <-chan struct{}
}

// serviceStartupDeps groups dependencies for service startup.
type serviceStartupDeps struct {
	ctx             context.Context
	cfg             *ServiceOrchestrationConfig
	logger          *slog.Logger
	enabledServices map[config.ServiceMode]bool
	errCh           chan error
}

func launchBackground(deps *serviceStartupDeps, descriptor backgroundService) <-chan struct{} {
	if !deps.enabledServices[descriptor.mode] {
		return nil
	}
	ctx := deps.ctx

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := descriptor.start(ctx); err != nil {
			errMsg := fmt.Errorf("%s failed: %w", descriptor.name, err)
			select {
			case deps.errCh <- errMsg:
			case <-ctx.Done():
			default:
				deps.logger.WarnContext(ctx, "dropping background service error", "service", descriptor.name, "error", errMsg)
			}
		}
	}()

	deps.logger.InfoContext(ctx, "background service started", "service", descriptor.name, "mode", descriptor.mode)
	return done
}

func newSweeperBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode: config.ServiceModeSweeper,
		name: "session sweeper",
		start: func(ctx context.Context) error {
			runner, err := reaper.NewRunner(reaper.RunnerOptions{
				Sessions: deps.cfg.Services.SessionStore,
				Config:   *deps.cfg.Config,
				Logger:   deps.logger,
				Metrics:  deps.cfg.Services.Observability.Metrics,
				Clock:    deps.cfg.Services.Clock,
			})
			if err != nil {
				return err
			}
			return runner.Run(ctx)
		},
	}
}

func startBackgroundServices(deps *serviceStartupDeps, services []backgroundService) []backgroundServiceHandle {
	handles := make([]backgroundServiceHandle, 0, len(services))
	for _, svc := range services {
		if done := launchBackground(deps, svc); done != nil {
			handles = append(handles, backgroundServiceHandle{name: svc.name, done: done})
		}
	}
	return handles
}

func startMetricsServerIfEnabled(deps *serviceStartupDeps) *http.Server {
	if !deps.enabledServices[config.ServiceModeMetrics] {
		return nil
	}
	return StartMetricsServer(MetricsServerConfig{
		Addr:     deps.cfg.Config.Observability.Metrics.Addr,
		Gatherer: deps.cfg.Services.Observability.Registry,
		Logger:   deps.logger,
	})
}

// RunServicesWithShutdown starts all enabled services and blocks until a shutdown
// signal arrives or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := &serviceStartupDeps{
		ctx:             serviceCtx,
		cfg:             cfg,
		logger:          logger,
		enabledServices: enabled,
		errCh:           make(chan error, errorChannelBufferSize(enabled)),
	}
	metricsServer := startMetricsServerIfEnabled(deps)
	backgrounds := startBackgroundServices(deps, []backgroundService{newSweeperBackgroundService(deps)})

	return waitForShutdown(shutdownConfig{
		ctx:           serviceCtx,
		cancel:        cancel,
		errCh:         deps.errCh,
		metricsServer: metricsServer,
		logger:        logger,
		backgrounds:   backgrounds,
	})
}

func errorChannelCapacity(enabled map[config.ServiceMode]bool) int {
	count := 0
	for _, mode := range config.ValidServiceModes() {
		if enabled[mode] {
			count++
		}
	}
	return count
}

func errorChannelBufferSize(enabled map[config.ServiceMode]bool) int {
	return errorChannelCapacity(enabled) + 1
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	ctx           context.Context
	cancel        context.CancelFunc
	errCh         <-chan error
	metricsServer *http.Server
	logger        *slog.Logger
	backgrounds   []backgroundServiceHandle
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		cfg.cancel()
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel()
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop stops the metrics listener then waits for background services.
func gracefulStop(cfg shutdownConfig) error {
	if err := ShutdownMetricsServer(cfg.ctx, cfg.metricsServer, cfg.logger); err != nil {
		return err
	}
	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}
	return nil
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
