package services

import (
	"context"
	"math"
	"math/rand"

	"notlikethat/internal/models"
	"notlikethat/internal/observability"
	"notlikethat/internal/store"
	contextutils "notlikethat/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// Selection outcomes reported on spans and metrics
const (
	OutcomeCached   = "cached"
	OutcomeSelected = "selected"
	OutcomeFallback = "fallback"
)

// DailySelectorServiceInterface defines the daily item operations
type DailySelectorServiceInterface interface {
	ResolveToday(ctx context.Context, lang models.Language, items []models.MisconceptionItem, today models.Date) (models.MisconceptionItem, error)
	Progress(ctx context.Context, lang models.Language, total int) (models.Progress, error)
}

// RandomSource picks an index in [0, n)
type RandomSource interface {
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Intn(n int) int { return rand.Intn(n) }

// DailySelectorService picks one unseen item per language per calendar day and
// remembers it, so every call on the same day returns the same item.
type DailySelectorService struct {
	store   store.KeyValueStore
	logger  *observability.Logger
	metrics *observability.Metrics
	rng     RandomSource
}

// NewDailySelectorService creates a new DailySelectorService instance
func NewDailySelectorService(kv store.KeyValueStore, logger *observability.Logger, metrics *observability.Metrics) *DailySelectorService {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &DailySelectorService{
		store:   kv,
		logger:  logger,
		metrics: metrics,
		rng:     globalRand{},
	}
}

// WithRandomSource replaces the random index source, mainly for tests
func (s *DailySelectorService) WithRandomSource(rng RandomSource) *DailySelectorService {
	if rng != nil {
		s.rng = rng
	}
	return s
}

// ResolveToday returns today's item for lang, selecting and persisting a new one when the
// stored record is from another day. Storage failures fall back to defaults and are logged;
// the only error is ErrNoMisconceptions for an empty list.
func (s *DailySelectorService) ResolveToday(ctx context.Context, lang models.Language, items []models.MisconceptionItem, today models.Date) (result models.MisconceptionItem, err error) {
	ctx, span := observability.TraceSelectorFunction(ctx, "resolve_today",
		observability.AttributeLanguage(lang),
		observability.AttributeDate(today),
		observability.AttributeItemCount(len(items)),
	)
	defer observability.FinishSpan(span, &err)

	if len(items) == 0 {
		return models.MisconceptionItem{}, contextutils.WrapErrorf(contextutils.ErrNoMisconceptions, "no items for language %s", lang)
	}

	record := s.readDailyRecord(ctx, lang)
	if record.Date.Equal(today) {
		item := findItem(items, record.SelectedID)
		span.SetAttributes(attribute.String("selection.outcome", OutcomeCached), observability.AttributeItem(item))
		s.metrics.RecordSelection(ctx, lang.String(), OutcomeCached)
		return item, nil
	}

	shown := s.readShownSet(ctx, lang)
	if len(shown) >= len(items) {
		s.logger.Info(ctx, "Every item has been shown, starting over", map[string]interface{}{
			"language": lang.String(),
			"shown":    len(shown),
		})
		s.metrics.RecordShownReset(ctx, lang.String())
		shown = models.ShownSet{}
	}

	available := unseenIndices(items, shown)
	if len(available) == 0 {
		// Shown ids that are not in the list can leave nothing to pick without
		// triggering the reset above.
		item := items[0]
		s.writeRecord(ctx, store.DailyKey(lang), models.DailyRecord{SelectedID: item.ID, Date: today})
		span.SetAttributes(attribute.String("selection.outcome", OutcomeFallback), observability.AttributeItem(item))
		s.metrics.RecordSelection(ctx, lang.String(), OutcomeFallback)
		return item, nil
	}

	item := items[available[s.rng.Intn(len(available))]]
	shown = append(shown, item.ID)
	s.writeRecord(ctx, store.ShownKey(lang), shown)
	s.writeRecord(ctx, store.DailyKey(lang), models.DailyRecord{SelectedID: item.ID, Date: today})

	span.SetAttributes(
		attribute.String("selection.outcome", OutcomeSelected),
		observability.AttributeItem(item),
		attribute.Int("selection.available", len(available)),
	)
	s.metrics.RecordSelection(ctx, lang.String(), OutcomeSelected)
	s.logger.Debug(ctx, "Selected daily item", map[string]interface{}{
		"language": lang.String(),
		"item_id":  item.ID,
		"date":     today.String(),
	})
	return item, nil
}

// Progress reports how many items of lang have been shown since the last reset.
func (s *DailySelectorService) Progress(ctx context.Context, lang models.Language, total int) (result models.Progress, err error) {
	ctx, span := observability.TraceSelectorFunction(ctx, "progress",
		observability.AttributeLanguage(lang),
		observability.AttributeItemCount(total),
	)
	defer observability.FinishSpan(span, &err)

	shown := s.readShownSet(ctx, lang)
	result = models.Progress{Shown: len(shown), Total: total}
	if total > 0 {
		result.Percent = int(math.Round(100 * float64(len(shown)) / float64(total)))
	}
	return result, nil
}

func (s *DailySelectorService) readDailyRecord(ctx context.Context, lang models.Language) models.DailyRecord {
	record, err := store.GetOr(ctx, s.store, store.DailyKey(lang), models.NoSelection)
	if err != nil {
		s.storageFailure(ctx, store.OpGet, err)
	}
	return record
}

func (s *DailySelectorService) readShownSet(ctx context.Context, lang models.Language) models.ShownSet {
	shown, err := store.GetOr(ctx, s.store, store.ShownKey(lang), models.ShownSet{})
	if err != nil {
		s.storageFailure(ctx, store.OpGet, err)
	}
	if shown == nil {
		shown = models.ShownSet{}
	}
	return shown
}

func (s *DailySelectorService) writeRecord(ctx context.Context, key string, value any) {
	if err := s.store.Set(ctx, key, value); err != nil {
		s.storageFailure(ctx, store.OpSet, err)
	}
}

func (s *DailySelectorService) storageFailure(ctx context.Context, op string, err error) {
	s.metrics.RecordStorageFailure(ctx, op)
	s.logger.Warn(ctx, "Storage operation failed, using default", map[string]interface{}{
		"operation": op,
		"error":     err.Error(),
	})
}

// findItem returns the item with id, or the first item when none matches.
func findItem(items []models.MisconceptionItem, id int) models.MisconceptionItem {
	for _, item := range items {
		if item.ID == id {
			return item
		}
	}
	return items[0]
}

func unseenIndices(items []models.MisconceptionItem, shown models.ShownSet) []int {
	seen := shown.Lookup()
	available := make([]int, 0, len(items))
	for i, item := range items {
		if _, ok := seen[item.ID]; !ok {
			available = append(available, i)
		}
	}
	return available
}
