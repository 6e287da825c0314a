package services

import (
	"context"

	"notlikethat/internal/models"
	"notlikethat/internal/observability"
	"notlikethat/internal/store"

	"go.opentelemetry.io/otel/attribute"
)

// Streak outcomes reported on spans and metrics
const (
	StreakSameDay   = "same_day"
	StreakContinued = "continued"
	StreakReset     = "reset"
)

// StreakServiceInterface defines the visit streak operations
type StreakServiceInterface interface {
	Tick(ctx context.Context, today models.Date) (int, error)
	Current(ctx context.Context) (models.StreakRecord, error)
}

// StreakService tracks consecutive days with at least one visit
type StreakService struct {
	store   store.KeyValueStore
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewStreakService creates a new StreakService instance
func NewStreakService(kv store.KeyValueStore, logger *observability.Logger, metrics *observability.Metrics) *StreakService {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &StreakService{
		store:   kv,
		logger:  logger,
		metrics: metrics,
	}
}

// Tick records a visit on today and returns the resulting streak. A second visit on
// the same day changes nothing; a visit the day after the last one extends the streak;
// anything else (first visit, a gap, a clock that went backwards) starts over at 1.
func (s *StreakService) Tick(ctx context.Context, today models.Date) (result int, err error) {
	ctx, span := observability.TraceStreakFunction(ctx, "tick", observability.AttributeDate(today))
	defer observability.FinishSpan(span, &err)

	record := s.read(ctx)

	var outcome string
	switch {
	case record.LastVisit.Equal(today):
		span.SetAttributes(attribute.String("streak.outcome", StreakSameDay), observability.AttributeStreak(record.CurrentStreak))
		s.metrics.RecordStreakTick(ctx, StreakSameDay)
		return record.CurrentStreak, nil
	case !record.LastVisit.IsZero() && record.LastVisit.Equal(today.AddDays(-1)):
		record.CurrentStreak++
		outcome = StreakContinued
	default:
		record.CurrentStreak = 1
		outcome = StreakReset
	}

	record.LastVisit = today
	if record.CurrentStreak > record.LongestStreak {
		record.LongestStreak = record.CurrentStreak
	}

	if err := s.store.Set(ctx, store.StreakKey, record); err != nil {
		s.metrics.RecordStorageFailure(ctx, store.OpSet)
		s.logger.Warn(ctx, "Failed to persist streak", map[string]interface{}{
			"error":  err.Error(),
			"streak": record.CurrentStreak,
		})
	}

	span.SetAttributes(attribute.String("streak.outcome", outcome), observability.AttributeStreak(record.CurrentStreak))
	s.metrics.RecordStreakTick(ctx, outcome)
	return record.CurrentStreak, nil
}

// Current returns the stored streak without recording a visit.
func (s *StreakService) Current(ctx context.Context) (result models.StreakRecord, err error) {
	ctx, span := observability.TraceStreakFunction(ctx, "current")
	defer observability.FinishSpan(span, &err)

	return s.read(ctx), nil
}

func (s *StreakService) read(ctx context.Context) models.StreakRecord {
	record, err := store.GetOr(ctx, s.store, store.StreakKey, models.StreakRecord{})
	if err != nil {
		s.metrics.RecordStorageFailure(ctx, store.OpGet)
		s.logger.Warn(ctx, "Failed to read streak, starting from zero", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if record.CurrentStreak < 0 {
		record.CurrentStreak = 0
	}
	if record.LongestStreak < record.CurrentStreak {
		record.LongestStreak = record.CurrentStreak
	}
	return record
}
