package services

import (
	"context"
	"strings"

	"notlikethat/internal/models"
	"notlikethat/internal/observability"
	"notlikethat/internal/store"

	"go.opentelemetry.io/otel/attribute"
)

// localeEnvVars are consulted in POSIX precedence order
var localeEnvVars = []string{"LC_ALL", "LC_MESSAGES", "LANG"}

// DetectLanguage picks the dataset language from the locale environment.
// lookup is usually os.LookupEnv. Unset, empty, "C" and "POSIX" locales give English.
func DetectLanguage(lookup func(string) (string, bool)) models.Language {
	for _, name := range localeEnvVars {
		value, ok := lookup(name)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		if value == "C" || value == "POSIX" {
			return models.LanguageEnglish
		}
		return models.NormalizeLanguage(value)
	}
	return models.LanguageEnglish
}

// ResolveLanguage applies the precedence flag > config > environment.
func ResolveLanguage(flag, configured string, lookup func(string) (string, bool)) models.Language {
	if flag != "" {
		return models.NormalizeLanguage(flag)
	}
	if configured != "" {
		return models.NormalizeLanguage(configured)
	}
	return DetectLanguage(lookup)
}

// PreferencesServiceInterface defines the persisted display preferences
type PreferencesServiceInterface interface {
	Theme(ctx context.Context) (models.Theme, error)
	SetTheme(ctx context.Context, theme models.Theme) error
	ToggleTheme(ctx context.Context) (models.Theme, error)
}

// PreferencesService stores the color theme
type PreferencesService struct {
	store  store.KeyValueStore
	logger *observability.Logger
}

// NewPreferencesService creates a new PreferencesService instance
func NewPreferencesService(kv store.KeyValueStore, logger *observability.Logger) *PreferencesService {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &PreferencesService{store: kv, logger: logger}
}

// Theme returns the saved theme, light when absent, unreadable or unknown.
func (s *PreferencesService) Theme(ctx context.Context) (result models.Theme, err error) {
	ctx, span := observability.TracePreferencesFunction(ctx, "theme")
	defer observability.FinishSpan(span, &err)

	theme, readErr := store.GetOr(ctx, s.store, store.ThemeKey, models.ThemeLight)
	if readErr != nil {
		s.logger.Warn(ctx, "Failed to read theme, using light", map[string]interface{}{"error": readErr.Error()})
	}
	if !theme.Valid() {
		theme = models.ThemeLight
	}
	span.SetAttributes(attribute.String("theme", string(theme)))
	return theme, nil
}

// SetTheme persists theme. Write failures are returned to the caller.
func (s *PreferencesService) SetTheme(ctx context.Context, theme models.Theme) (err error) {
	ctx, span := observability.TracePreferencesFunction(ctx, "set_theme", attribute.String("theme", string(theme)))
	defer observability.FinishSpan(span, &err)

	if !theme.Valid() {
		theme = models.ThemeLight
	}
	return s.store.Set(ctx, store.ThemeKey, theme)
}

// ToggleTheme flips between light and dark and returns the new theme
func (s *PreferencesService) ToggleTheme(ctx context.Context) (models.Theme, error) {
	current, err := s.Theme(ctx)
	if err != nil {
		return current, err
	}
	next := current.Toggle()
	if err := s.SetTheme(ctx, next); err != nil {
		return current, err
	}
	return next, nil
}
