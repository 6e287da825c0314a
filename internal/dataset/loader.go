package dataset

import (
	"context"
	"encoding/json"
	"sync"

	"notlikethat/internal/models"
	"notlikethat/internal/observability"
	contextutils "notlikethat/internal/utils"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Loader fetches and validates every supported language concurrently.
// The load is all-or-nothing: one failing language fails the whole catalog.
type Loader struct {
	source    Source
	validator *SchemaValidator
	logger    *observability.Logger
}

// NewLoader creates a loader over source
func NewLoader(source Source, logger *observability.Logger) (*Loader, error) {
	validator, err := NewSchemaValidator()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Loader{source: source, validator: validator, logger: logger}, nil
}

// Load fetches all supported languages and builds the catalog.
// Failures are reported as ErrDatasetLoad with the first underlying cause.
func (l *Loader) Load(ctx context.Context) (result *Catalog, err error) {
	ctx, span := observability.TraceDatasetFunction(ctx, "load",
		attribute.String("dataset.source", l.source.Name()),
	)
	defer observability.FinishSpan(span, &err)

	var mu sync.Mutex
	lists := make(map[models.Language][]models.MisconceptionItem, len(models.SupportedLanguages))

	eg, egCtx := errgroup.WithContext(ctx)
	for _, lang := range models.SupportedLanguages {
		eg.Go(func() error {
			items, err := l.loadLanguage(egCtx, lang)
			if err != nil {
				return err
			}
			mu.Lock()
			lists[lang] = items
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		l.logger.Error(ctx, "Failed to load misconceptions", err, map[string]interface{}{
			"source": l.source.Name(),
		})
		return nil, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeDatasetLoad,
			contextutils.SeverityFatal,
			"Failed to load misconceptions",
			err.Error(),
			err,
		)
	}

	catalog := NewCatalog(lists)
	for _, lang := range catalog.Languages() {
		span.SetAttributes(attribute.Int("dataset.items."+lang.String(), catalog.Len(lang)))
	}
	l.logger.Debug(ctx, "Loaded misconceptions", map[string]interface{}{
		"source": l.source.Name(),
		"en":     catalog.Len(models.LanguageEnglish),
		"es":     catalog.Len(models.LanguageSpanish),
	})
	return catalog, nil
}

func (l *Loader) loadLanguage(ctx context.Context, lang models.Language) ([]models.MisconceptionItem, error) {
	raw, err := l.source.Fetch(ctx, lang)
	if err != nil {
		return nil, err
	}
	return l.Parse(ctx, lang, raw)
}

// Parse validates a raw list against the schema and the item struct rules.
// Duplicate ids are rejected since the shown set tracks items by id.
func (l *Loader) Parse(ctx context.Context, lang models.Language, raw []byte) ([]models.MisconceptionItem, error) {
	if err := l.validator.Validate(raw); err != nil {
		return nil, contextutils.WrapErrorf(err, "dataset %s", lang)
	}

	var items []models.MisconceptionItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatasetInvalid, "dataset %s: %v", lang, err)
	}

	seen := make(map[int]struct{}, len(items))
	for i, item := range items {
		if err := contextutils.ValidateStruct(item); err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrDatasetInvalid, "dataset %s item %d: %v", lang, i, err)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, contextutils.WrapErrorf(contextutils.ErrDatasetInvalid, "dataset %s: duplicate id %d", lang, item.ID)
		}
		seen[item.ID] = struct{}{}
	}

	if len(items) == 0 {
		l.logger.Warn(ctx, "Dataset is empty", map[string]interface{}{"language": lang.String()})
	}
	return items, nil
}
