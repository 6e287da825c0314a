package services

import (
	"context"
	"time"

	"notlikethat/internal/dataset"
	"notlikethat/internal/models"
	"notlikethat/internal/observability"
)

// Clock supplies the current time in the zone that decides the calendar day
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in Location (time.Local when nil)
type SystemClock struct {
	Location *time.Location
}

// Now implements Clock
func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// Visit is everything shown for one page view
type Visit struct {
	Language models.Language
	Date     models.Date
	Item     models.MisconceptionItem
	Streak   int
	Progress models.Progress
}

// Session carries the state of one run explicitly instead of through globals:
// the active language, the loaded catalog and the clock.
type Session struct {
	Language models.Language
	Catalog  *dataset.Catalog
	Clock    Clock

	Selector DailySelectorServiceInterface
	Streak   StreakServiceInterface
}

// Today is the current calendar day according to the session clock
func (s *Session) Today() models.Date {
	return models.DateOf(s.Clock.Now())
}

// Items returns the list of the session language
func (s *Session) Items() ([]models.MisconceptionItem, error) {
	return s.Catalog.Items(s.Language)
}

// WithLanguage returns a copy of the session switched to lang
func (s *Session) WithLanguage(lang models.Language) *Session {
	next := *s
	next.Language = lang
	return &next
}

// TodayItem resolves today's item without touching the streak
func (s *Session) TodayItem(ctx context.Context) (models.MisconceptionItem, error) {
	items, err := s.Items()
	if err != nil {
		return models.MisconceptionItem{}, err
	}
	return s.Selector.ResolveToday(ctx, s.Language, items, s.Today())
}

// Visit resolves today's item, records the visit on the streak and computes progress.
// The streak is ticked after selection, matching the order the item is displayed in.
func (s *Session) Visit(ctx context.Context) (result *Visit, err error) {
	ctx, span := observability.TraceCommandFunction(ctx, "visit", observability.AttributeLanguage(s.Language))
	defer observability.FinishSpan(span, &err)

	items, err := s.Items()
	if err != nil {
		return nil, err
	}
	today := s.Today()

	item, err := s.Selector.ResolveToday(ctx, s.Language, items, today)
	if err != nil {
		return nil, err
	}
	progress, err := s.Selector.Progress(ctx, s.Language, len(items))
	if err != nil {
		return nil, err
	}
	streak, err := s.Streak.Tick(ctx, today)
	if err != nil {
		return nil, err
	}

	return &Visit{
		Language: s.Language,
		Date:     today,
		Item:     item,
		Streak:   streak,
		Progress: progress,
	}, nil
}
