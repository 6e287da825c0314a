// Package models defines data structures used throughout the misconception widget.
package models

import (
	"strings"

	"golang.org/x/text/language"
)

// MisconceptionItem represents one entry of a language dataset
type MisconceptionItem struct {
	ID        int    `json:"id" yaml:"id" validate:"gte=0"`
	Text      string `json:"text" yaml:"text" validate:"required"`
	Category  string `json:"category" yaml:"category"`
	SourceURL string `json:"source_url" yaml:"source_url" validate:"omitempty,url"`
}

// Language represents a dataset language
type Language string

const (
	// LanguageEnglish is the English dataset
	LanguageEnglish Language = "en"
	// LanguageSpanish is the Spanish dataset
	LanguageSpanish Language = "es"
)

// SupportedLanguages lists every language that ships a dataset, in load order.
var SupportedLanguages = []Language{LanguageEnglish, LanguageSpanish}

// NormalizeLanguage maps a free-form tag ("es-MX", "es_AR.UTF-8", "EN", "spa") to a
// supported language. Tags starting with "es" and tags whose base language is
// Spanish map to Spanish; everything else is English.
func NormalizeLanguage(tag string) Language {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if strings.HasPrefix(tag, "es") {
		return LanguageSpanish
	}

	// Drop the POSIX codeset and modifier: "spa_MX.UTF-8@euro" -> "spa_MX"
	if i := strings.IndexAny(tag, ".@"); i >= 0 {
		tag = tag[:i]
	}
	parsed, err := language.Parse(strings.ReplaceAll(tag, "_", "-"))
	if err != nil {
		return LanguageEnglish
	}
	base, _ := parsed.Base()
	spanishBase, _ := language.Spanish.Base()
	if base == spanishBase {
		return LanguageSpanish
	}
	return LanguageEnglish
}

// IsSupported reports whether l has a dataset.
func (l Language) IsSupported() bool {
	for _, s := range SupportedLanguages {
		if l == s {
			return true
		}
	}
	return false
}

func (l Language) String() string { return string(l) }

// Theme is the persisted color scheme preference
type Theme string

const (
	// ThemeLight is the default theme
	ThemeLight Theme = "light"
	// ThemeDark is the dark theme
	ThemeDark Theme = "dark"
)

// Toggle returns the opposite theme. Unknown values toggle to dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}
