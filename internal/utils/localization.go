package contextutils

import (
	"fmt"
	"strings"
)

// Locale represents a language locale (e.g., "en", "es")
type Locale string

const (
	// LocaleEnglish represents English language
	LocaleEnglish Locale = "en"
	// LocaleSpanish represents Spanish language
	LocaleSpanish Locale = "es"
)

// LocalizedMessages contains localized error messages for different locales
type LocalizedMessages struct {
	messages map[ErrorCode]map[Locale]string
}

// NewLocalizedMessages creates a new instance of localized messages
func NewLocalizedMessages() *LocalizedMessages {
	return &LocalizedMessages{
		messages: make(map[ErrorCode]map[Locale]string),
	}
}

// AddMessage adds a localized message for a specific error code and locale
func (lm *LocalizedMessages) AddMessage(code ErrorCode, locale Locale, message string) {
	if lm.messages[code] == nil {
		lm.messages[code] = make(map[Locale]string)
	}
	lm.messages[code][locale] = message
}

// GetMessage returns the localized message for an error code and locale
func (lm *LocalizedMessages) GetMessage(code ErrorCode, locale Locale) string {
	if localeMessages, exists := lm.messages[code]; exists {
		if message, exists := localeMessages[locale]; exists {
			return message
		}

		// Fallback to English if the specific locale doesn't have a message
		if message, exists := localeMessages[LocaleEnglish]; exists {
			return message
		}
	}

	return getDefaultMessage(code)
}

// GetMessageWithDetails returns a localized message with additional details
func (lm *LocalizedMessages) GetMessageWithDetails(code ErrorCode, locale Locale, details string) string {
	message := lm.GetMessage(code, locale)
	if details != "" {
		return fmt.Sprintf("%s: %s", message, details)
	}
	return message
}

// getDefaultMessage returns a default English message for error codes
func getDefaultMessage(code ErrorCode) string {
	switch code {
	case ErrorCodeStorageFailure:
		return "Storage operation failed"
	case ErrorCodeStorageDecode:
		return "Stored value could not be decoded"
	case ErrorCodeUnsupportedStore:
		return "Unsupported storage driver"
	case ErrorCodeDatasetLoad:
		return "Failed to load misconceptions. Please restart or check the dataset source."
	case ErrorCodeDatasetInvalid:
		return "Misconception dataset is invalid"
	case ErrorCodeNoMisconceptions:
		return "No misconceptions available"
	case ErrorCodeUnsupportedLanguage:
		return "Unsupported language"
	case ErrorCodeInvalidInput:
		return "Invalid input"
	case ErrorCodeInvalidFormat:
		return "Invalid format"
	case ErrorCodeValidationFailed:
		return "Validation failed"
	case ErrorCodeServiceUnavailable:
		return "Service temporarily unavailable"
	case ErrorCodeTimeout:
		return "Operation timed out"
	case ErrorCodeInternalError:
		return "Internal error"
	default:
		return "An error occurred"
	}
}

// ParseLocale parses a locale string (e.g., "en-US", "es_MX.UTF-8") and returns the language part
func ParseLocale(localeStr string) Locale {
	localeStr = strings.TrimSpace(localeStr)
	if i := strings.IndexAny(localeStr, "-_.@"); i >= 0 {
		localeStr = localeStr[:i]
	}
	if localeStr != "" {
		return Locale(strings.ToLower(localeStr))
	}
	return LocaleEnglish
}

// Global instance of localized messages
var globalLocalizedMessages = NewLocalizedMessages()

func init() {
	globalLocalizedMessages.AddMessage(ErrorCodeDatasetLoad, LocaleSpanish, "No se pudieron cargar los mitos. Reinicia o revisa la fuente de datos.")
	globalLocalizedMessages.AddMessage(ErrorCodeDatasetInvalid, LocaleSpanish, "El conjunto de mitos no es válido")
	globalLocalizedMessages.AddMessage(ErrorCodeNoMisconceptions, LocaleSpanish, "No hay mitos disponibles")
	globalLocalizedMessages.AddMessage(ErrorCodeStorageFailure, LocaleSpanish, "Falló el almacenamiento")
	globalLocalizedMessages.AddMessage(ErrorCodeUnsupportedLanguage, LocaleSpanish, "Idioma no soportado")
	globalLocalizedMessages.AddMessage(ErrorCodeInvalidInput, LocaleSpanish, "Entrada inválida")
	globalLocalizedMessages.AddMessage(ErrorCodeInternalError, LocaleSpanish, "Error interno")
}

// GetLocalizedMessage returns a localized error message using the global instance
func GetLocalizedMessage(code ErrorCode, locale Locale) string {
	return globalLocalizedMessages.GetMessage(code, locale)
}

// GetLocalizedMessageWithDetails returns a localized error message with details
func GetLocalizedMessageWithDetails(code ErrorCode, locale Locale, details string) string {
	return globalLocalizedMessages.GetMessageWithDetails(code, locale, details)
}

// UIText holds the user-facing strings of the widget for one locale.
type UIText struct {
	Title          string
	Logo           string
	CountdownLabel string
	SourceLabel    string
	SourceListURL  string
	ReadMore       string
	ReadLess       string
	ShareTitle     string
	Copied         string
	Support        string
}

var uiTexts = map[Locale]UIText{
	LocaleEnglish: {
		Title:          "Not Like That - Daily Misconceptions",
		Logo:           "Not Like That",
		CountdownLabel: "Next misconception in:",
		SourceLabel:    "View Source",
		SourceListURL:  "https://en.wikipedia.org/wiki/List_of_common_misconceptions",
		ReadMore:       "Read More",
		ReadLess:       "Read Less",
		ShareTitle:     "Share this misconception",
		Copied:         "✓ Copied!",
		Support:        "Buy me a coffee",
	},
	LocaleSpanish: {
		Title:          "No Es Así - Mitos Diarios",
		Logo:           "No Es Así",
		CountdownLabel: "Próximo mito en:",
		SourceLabel:    "Ver Fuente",
		SourceListURL:  "https://es.wikipedia.org/wiki/Anexo:Falsos_mitos",
		ReadMore:       "Leer Más",
		ReadLess:       "Leer Menos",
		ShareTitle:     "Compartir este mito",
		Copied:         "✓ ¡Copiado!",
		Support:        "Invítame un café",
	},
}

// GetUIText returns the widget strings for a locale, falling back to English.
func GetUIText(locale Locale) UIText {
	if text, ok := uiTexts[locale]; ok {
		return text
	}
	return uiTexts[LocaleEnglish]
}

// FormatStreak renders the streak badge, e.g. "3 days streak 🔥" or "Racha de 3 días 🔥".
// Returns an empty string for a streak of zero.
func FormatStreak(locale Locale, streak int) string {
	if streak <= 0 {
		return ""
	}
	if locale == LocaleSpanish {
		suffix := ""
		if streak > 1 {
			suffix = "s"
		}
		return fmt.Sprintf("Racha de %d día%s 🔥", streak, suffix)
	}
	suffix := ""
	if streak > 1 {
		suffix = "s"
	}
	return fmt.Sprintf("%d day%s streak 🔥", streak, suffix)
}
