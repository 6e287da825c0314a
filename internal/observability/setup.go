package observability

import (
	"context"
	"errors"
	"os"

	"notlikethat/internal/config"
	contextutils "notlikethat/internal/utils"

	autosdk "go.opentelemetry.io/auto/sdk"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

// SetupObservability initializes tracing, metrics, and logging for the CLI
func SetupObservability(cfg *config.Config, serviceName string) (result0 trace.TracerProvider, result1 *metric.MeterProvider, result2 *Logger, err error) {
	otelCfg := &cfg.OpenTelemetry
	if serviceName != "" {
		otelCfg.ServiceName = serviceName
	}

	var tp trace.TracerProvider
	var mp *metric.MeterProvider

	if err := os.Setenv("OTEL_SERVICE_NAME", otelCfg.ServiceName); err != nil {
		return nil, nil, nil, err
	}
	if err := os.Setenv("OTEL_SERVICE_VERSION", otelCfg.ServiceVersion); err != nil {
		return nil, nil, nil, err
	}

	logger := NewLoggerWithLevel(otelCfg, ParseLevel(cfg.App.LogLevel))

	if otelCfg.EnableTracing {
		if otelCfg.UseAutoSDK {
			tp = autosdk.TracerProvider()
			logger.Debug(context.Background(), "Tracing enabled with Auto SDK", map[string]interface{}{"service_name": otelCfg.ServiceName})
		} else {
			tp, err = InitStandardTracing(otelCfg)
			if err != nil {
				return nil, nil, logger, err
			}
			logger.Debug(context.Background(), "Tracing enabled with standard SDK", map[string]interface{}{"service_name": otelCfg.ServiceName})
		}
		otel.SetTracerProvider(tp)

		if err := InitTracing(otelCfg); err != nil {
			return nil, nil, logger, err
		}

		InitGlobalTracer()
	}

	if otelCfg.EnableMetrics {
		mp, err = InitMetrics(otelCfg)
		if err != nil {
			return nil, nil, logger, err
		}
		otel.SetMeterProvider(mp)
	}

	return tp, mp, logger, nil
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// Shutdown flushes every provider returned by SetupObservability. Nil values are skipped.
func Shutdown(ctx context.Context, tp trace.TracerProvider, mp *metric.MeterProvider, logger *Logger) error {
	var errs []error
	if s, ok := tp.(shutdowner); ok && s != nil {
		errs = append(errs, s.Shutdown(ctx))
	}
	if mp != nil {
		errs = append(errs, mp.Shutdown(ctx))
	}
	if logger != nil {
		errs = append(errs, logger.Shutdown(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		return contextutils.WrapError(err, "failed to flush telemetry")
	}
	return nil
}
