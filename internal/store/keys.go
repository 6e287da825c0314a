package store

import "notlikethat/internal/models"

// Persisted key namespace
const (
	dailyKeyPrefix = "daily_data_"
	shownKeyPrefix = "shown_"

	// StreakKey holds the single global StreakRecord
	StreakKey = "streak_data"
	// ThemeKey holds the color scheme preference
	ThemeKey = "theme"
)

// DailyKey is the key of a language's DailyRecord
func DailyKey(lang models.Language) string {
	return dailyKeyPrefix + string(lang)
}

// ShownKey is the key of a language's ShownSet
func ShownKey(lang models.Language) string {
	return shownKeyPrefix + string(lang)
}

// LanguageKeys lists every key owned by a language
func LanguageKeys(lang models.Language) []string {
	return []string{DailyKey(lang), ShownKey(lang)}
}
