package observability

import (
	"context"
	"fmt"

	"notlikethat/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "notlikethat"

var globalTracer trace.Tracer

// InitGlobalTracer initializes the global tracer for the application.
func InitGlobalTracer() {
	globalTracer = otel.Tracer(tracerName)
}

// GetGlobalTracer returns the global tracer instance for the application.
func GetGlobalTracer() trace.Tracer {
	if globalTracer == nil {
		// Fallback to default tracer if not initialized
		globalTracer = otel.Tracer(tracerName)
	}
	return globalTracer
}

// TraceFunction starts a new span with a descriptive name for the given service and function.
func TraceFunction(ctx context.Context, serviceName, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := GetGlobalTracer()
	spanName := fmt.Sprintf("%s.%s", serviceName, functionName)
	return tracer.Start(ctx, spanName, trace.WithAttributes(attributes...))
}

// TraceSelectorFunction starts a new span for a daily selector function.
func TraceSelectorFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "selector", functionName, attributes...)
}

// TraceStreakFunction starts a new span for a streak tracker function.
func TraceStreakFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "streak", functionName, attributes...)
}

// TraceStoreFunction starts a new span for a key-value store function.
func TraceStoreFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "store", functionName, attributes...)
}

// TraceDatasetFunction starts a new span for a dataset loading function.
func TraceDatasetFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "dataset", functionName, attributes...)
}

// TracePreferencesFunction starts a new span for a preferences function.
func TracePreferencesFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "preferences", functionName, attributes...)
}

// TraceSchedulerFunction starts a new span for a scheduled job.
func TraceSchedulerFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "scheduler", functionName, attributes...)
}

// TraceCommandFunction starts a new span for a CLI command.
func TraceCommandFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "command", functionName, attributes...)
}

// AttributeItem returns a tracing attribute for a misconception's ID.
func AttributeItem(item models.MisconceptionItem) attribute.KeyValue {
	return attribute.Int("item.id", item.ID)
}

// AttributeItemID returns a tracing attribute for an item ID.
func AttributeItemID(id int) attribute.KeyValue {
	return attribute.Int("item.id", id)
}

// AttributeItemCount returns a tracing attribute for the size of an item list.
func AttributeItemCount(n int) attribute.KeyValue {
	return attribute.Int("item.count", n)
}

// AttributeLanguage returns a tracing attribute for a language.
func AttributeLanguage(lang models.Language) attribute.KeyValue {
	return attribute.String("language", string(lang))
}

// AttributeDate returns a tracing attribute for a calendar day.
func AttributeDate(d models.Date) attribute.KeyValue {
	return attribute.String("date", d.String())
}

// AttributeStoreKey returns a tracing attribute for a key-value store key.
func AttributeStoreKey(key string) attribute.KeyValue {
	return attribute.String("store.key", key)
}

// AttributeStoreDriver returns a tracing attribute for the storage driver.
func AttributeStoreDriver(driver string) attribute.KeyValue {
	return attribute.String("store.driver", driver)
}

// AttributeStreak returns a tracing attribute for a streak count.
func AttributeStreak(n int) attribute.KeyValue {
	return attribute.Int("streak.current", n)
}
