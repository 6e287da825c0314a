package observability

import (
	"context"

	"notlikethat/internal/config"
	contextutils "notlikethat/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// InitMetrics initializes OpenTelemetry metrics
func InitMetrics(cfg *config.OpenTelemetryConfig) (result0 *metric.MeterProvider, err error) {
	ctx := context.Background()

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var exporter metric.Exporter
	switch cfg.Protocol {
	case "grpc":
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
			otlpmetricgrpc.WithHeaders(cfg.Headers),
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exp, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create otlp grpc metric exporter: %w", err)
		}
		exporter = exp
	case "http":
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(cfg.Endpoint),
			otlpmetrichttp.WithHeaders(cfg.Headers),
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exp, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create otlp http metric exporter: %w", err)
		}
		exporter = exp
	default:
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "unsupported otel protocol: %s", cfg.Protocol)
	}

	mp := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter)),
		metric.WithResource(res),
	)
	return mp, nil
}

// Metrics holds the widget counters
type Metrics struct {
	selections      otelmetric.Int64Counter
	shownResets     otelmetric.Int64Counter
	streakTicks     otelmetric.Int64Counter
	storageFailures otelmetric.Int64Counter
}

// NewMetrics registers the counters on the given meter provider.
// A nil provider uses the global one, which is a no-op until SetupObservability installs a real one.
func NewMetrics(mp otelmetric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(config.ServiceName)

	m := &Metrics{}
	var err error
	if m.selections, err = meter.Int64Counter("notlikethat.selections",
		otelmetric.WithDescription("Daily item resolutions by outcome")); err != nil {
		return nil, contextutils.WrapError(err, "failed to create selections counter")
	}
	if m.shownResets, err = meter.Int64Counter("notlikethat.shown_resets",
		otelmetric.WithDescription("Shown-set resets after every item was presented")); err != nil {
		return nil, contextutils.WrapError(err, "failed to create shown resets counter")
	}
	if m.streakTicks, err = meter.Int64Counter("notlikethat.streak_ticks",
		otelmetric.WithDescription("Streak updates by outcome")); err != nil {
		return nil, contextutils.WrapError(err, "failed to create streak ticks counter")
	}
	if m.storageFailures, err = meter.Int64Counter("notlikethat.storage_failures",
		otelmetric.WithDescription("Key-value store operations that failed and fell back to defaults")); err != nil {
		return nil, contextutils.WrapError(err, "failed to create storage failures counter")
	}
	return m, nil
}

// RecordSelection counts a ResolveToday call; outcome is "cached", "selected" or "fallback".
func (m *Metrics) RecordSelection(ctx context.Context, lang, outcome string) {
	if m == nil {
		return
	}
	m.selections.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("language", lang),
		attribute.String("outcome", outcome),
	))
}

// RecordShownReset counts a shown-set reset.
func (m *Metrics) RecordShownReset(ctx context.Context, lang string) {
	if m == nil {
		return
	}
	m.shownResets.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("language", lang)))
}

// RecordStreakTick counts a streak update; outcome is "same_day", "continued" or "reset".
func (m *Metrics) RecordStreakTick(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.streakTicks.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordStorageFailure counts a failed store operation.
func (m *Metrics) RecordStorageFailure(ctx context.Context, op string) {
	if m == nil {
		return
	}
	m.storageFailures.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("operation", op)))
}
