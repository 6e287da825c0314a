// Package di provides dependency injection container for managing service lifecycle and dependencies.
package di

import (
	"context"
	"sync"
	"time"

	"notlikethat/internal/config"
	"notlikethat/internal/dataset"
	"notlikethat/internal/models"
	"notlikethat/internal/observability"
	"notlikethat/internal/services"
	"notlikethat/internal/store"
	contextutils "notlikethat/internal/utils"

	otelmetric "go.opentelemetry.io/otel/metric"
)

// Registered service names
const (
	ServiceSelector    = "daily_selector"
	ServiceStreak      = "streak"
	ServicePreferences = "preferences"
)

// ServiceContainerInterface defines the interface for service containers
type ServiceContainerInterface interface {
	GetService(name string) (interface{}, error)
	GetDailySelectorService() (services.DailySelectorServiceInterface, error)
	GetStreakService() (services.StreakServiceInterface, error)
	GetPreferencesService() (services.PreferencesServiceInterface, error)
	GetStore() store.KeyValueStore
	GetCatalog() *dataset.Catalog
	GetConfig() *config.Config
	GetLogger() *observability.Logger
	GetLocation() *time.Location
	NewSession(lang models.Language) (*services.Session, error)
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Option customizes a ServiceContainer before Initialize
type Option func(*ServiceContainer)

// WithStore uses kv instead of opening the configured store. The container still closes it.
func WithStore(kv store.KeyValueStore) Option {
	return func(sc *ServiceContainer) { sc.kv = kv }
}

// WithDatasetSource overrides the configured dataset source
func WithDatasetSource(src dataset.Source) Option {
	return func(sc *ServiceContainer) { sc.source = src }
}

// WithMeterProvider records the widget counters on mp instead of the global provider
func WithMeterProvider(mp otelmetric.MeterProvider) Option {
	return func(sc *ServiceContainer) { sc.meterProvider = mp }
}

// WithClock replaces the wall clock used by sessions
func WithClock(clock services.Clock) Option {
	return func(sc *ServiceContainer) { sc.clock = clock }
}

// ServiceContainer manages all service dependencies and lifecycle
type ServiceContainer struct {
	cfg           *config.Config
	logger        *observability.Logger
	meterProvider otelmetric.MeterProvider
	source        dataset.Source
	clock         services.Clock
	location      *time.Location
	kv            store.KeyValueStore
	catalog       *dataset.Catalog
	metrics       *observability.Metrics
	services      map[string]interface{}
	mu            sync.RWMutex
	shutdownFuncs []func(context.Context) error
}

// NewServiceContainer creates a new dependency injection container
func NewServiceContainer(cfg *config.Config, logger *observability.Logger, opts ...Option) *ServiceContainer {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	sc := &ServiceContainer{
		cfg:      cfg,
		logger:   logger,
		services: make(map[string]interface{}),
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

// Initialize opens the store, loads both datasets and wires the services.
// A dataset failure is returned as ErrDatasetLoad and leaves nothing open.
func (sc *ServiceContainer) Initialize(ctx context.Context) (err error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	ctx, span := observability.TraceFunction(ctx, "di", "initialize",
		observability.AttributeStoreDriver(sc.cfg.Storage.Driver),
	)
	defer observability.FinishSpan(span, &err)

	loc, locErr := sc.cfg.Location()
	if locErr != nil {
		sc.logger.Warn(ctx, "Unknown time zone, using local time", map[string]interface{}{
			"timezone": sc.cfg.App.Timezone,
			"error":    locErr.Error(),
		})
	}
	sc.location = loc
	if sc.clock == nil {
		sc.clock = services.SystemClock{Location: loc}
	}

	metrics, err := observability.NewMetrics(sc.meterProvider)
	if err != nil {
		return contextutils.WrapError(err, "failed to register metrics")
	}
	sc.metrics = metrics

	if sc.kv == nil {
		kv, err := store.Open(ctx, sc.cfg.Storage, sc.logger)
		if err != nil {
			return contextutils.WrapErrorf(err, "failed to open %s store", sc.cfg.Storage.Driver)
		}
		sc.kv = kv
	}
	kv := sc.kv
	sc.shutdownFuncs = append(sc.shutdownFuncs, func(_ context.Context) error {
		return kv.Close()
	})

	if err := sc.loadCatalog(ctx); err != nil {
		_ = sc.cleanup(ctx)
		return err
	}

	sc.initializeServices(ctx)
	return nil
}

func (sc *ServiceContainer) loadCatalog(ctx context.Context) error {
	if sc.source == nil {
		src, err := dataset.NewSource(sc.cfg.Dataset)
		if err != nil {
			return contextutils.WrapError(err, "failed to configure dataset source")
		}
		sc.source = src
	}

	loader, err := dataset.NewLoader(sc.source, sc.logger)
	if err != nil {
		return contextutils.WrapError(err, "failed to create dataset loader")
	}

	catalog, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	sc.catalog = catalog
	return nil
}

// initializeServices sets up all service dependencies
func (sc *ServiceContainer) initializeServices(_ context.Context) {
	sc.services[ServiceSelector] = services.NewDailySelectorService(sc.kv, sc.logger, sc.metrics)
	sc.services[ServiceStreak] = services.NewStreakService(sc.kv, sc.logger, sc.metrics)
	sc.services[ServicePreferences] = services.NewPreferencesService(sc.kv, sc.logger)
}

// GetService retrieves a service by name with type assertion
func (sc *ServiceContainer) GetService(name string) (interface{}, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	service, exists := sc.services[name]
	if !exists {
		return nil, contextutils.ErrorWithContextf("service %s not found", name)
	}
	return service, nil
}

// GetServiceAs performs type-safe service retrieval
func GetServiceAs[T any](sc *ServiceContainer, name string) (T, error) {
	var zero T
	service, err := sc.GetService(name)
	if err != nil {
		return zero, err
	}

	typed, ok := service.(T)
	if !ok {
		return zero, contextutils.ErrorWithContextf("service %s is not of expected type %T", name, zero)
	}
	return typed, nil
}

// GetDailySelectorService returns the daily selector service
func (sc *ServiceContainer) GetDailySelectorService() (services.DailySelectorServiceInterface, error) {
	return GetServiceAs[services.DailySelectorServiceInterface](sc, ServiceSelector)
}

// GetStreakService returns the streak service
func (sc *ServiceContainer) GetStreakService() (services.StreakServiceInterface, error) {
	return GetServiceAs[services.StreakServiceInterface](sc, ServiceStreak)
}

// GetPreferencesService returns the preferences service
func (sc *ServiceContainer) GetPreferencesService() (services.PreferencesServiceInterface, error) {
	return GetServiceAs[services.PreferencesServiceInterface](sc, ServicePreferences)
}

// GetStore returns the key-value store
func (sc *ServiceContainer) GetStore() store.KeyValueStore {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.kv
}

// GetCatalog returns the loaded datasets
func (sc *ServiceContainer) GetCatalog() *dataset.Catalog {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.catalog
}

// GetConfig returns the configuration
func (sc *ServiceContainer) GetConfig() *config.Config {
	return sc.cfg
}

// GetLogger returns the logger
func (sc *ServiceContainer) GetLogger() *observability.Logger {
	return sc.logger
}

// GetLocation returns the time zone that decides the calendar day
func (sc *ServiceContainer) GetLocation() *time.Location {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if sc.location == nil {
		return time.Local
	}
	return sc.location
}

// NewSession bundles the services for one run in lang
func (sc *ServiceContainer) NewSession(lang models.Language) (*services.Session, error) {
	selector, err := sc.GetDailySelectorService()
	if err != nil {
		return nil, err
	}
	streak, err := sc.GetStreakService()
	if err != nil {
		return nil, err
	}

	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return &services.Session{
		Language: lang,
		Catalog:  sc.catalog,
		Clock:    sc.clock,
		Selector: selector,
		Streak:   streak,
	}, nil
}

// Shutdown gracefully shuts down all services
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	return sc.cleanup(ctx)
}

// cleanup runs the shutdown functions in reverse order of registration
func (sc *ServiceContainer) cleanup(ctx context.Context) error {
	var errors []error

	for i := len(sc.shutdownFuncs) - 1; i >= 0; i-- {
		if err := sc.shutdownFuncs[i](ctx); err != nil {
			sc.logger.Error(ctx, "Shutdown step failed", err)
			errors = append(errors, err)
		}
	}
	sc.shutdownFuncs = nil

	if len(errors) > 0 {
		return contextutils.ErrorWithContextf("shutdown errors: %v", errors)
	}
	return nil
}
