package dataset

import (
	"notlikethat/internal/models"
	contextutils "notlikethat/internal/utils"
)

// Catalog holds the loaded item lists, one per supported language.
// It is immutable once built by the Loader.
type Catalog struct {
	items map[models.Language][]models.MisconceptionItem
}

// NewCatalog builds a catalog from already validated lists
func NewCatalog(items map[models.Language][]models.MisconceptionItem) *Catalog {
	copied := make(map[models.Language][]models.MisconceptionItem, len(items))
	for lang, list := range items {
		copied[lang] = append([]models.MisconceptionItem(nil), list...)
	}
	return &Catalog{items: copied}
}

// Items returns the list for lang. The slice is shared and must not be modified.
func (c *Catalog) Items(lang models.Language) ([]models.MisconceptionItem, error) {
	list, ok := c.items[lang]
	if !ok {
		return nil, contextutils.WrapErrorf(contextutils.ErrUnsupportedLanguage, "no dataset for language %q", lang)
	}
	return list, nil
}

// Languages lists the loaded languages in load order
func (c *Catalog) Languages() []models.Language {
	langs := make([]models.Language, 0, len(c.items))
	for _, lang := range models.SupportedLanguages {
		if _, ok := c.items[lang]; ok {
			langs = append(langs, lang)
		}
	}
	return langs
}

// Len returns the number of items for lang, or 0 when it is not loaded
func (c *Catalog) Len(lang models.Language) int {
	return len(c.items[lang])
}
