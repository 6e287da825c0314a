package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"notlikethat/internal/dataset"
	"notlikethat/internal/models"
	contextutils "notlikethat/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(kv *recordingStore, clock Clock) *Session {
	catalog := dataset.NewCatalog(map[models.Language][]models.MisconceptionItem{
		models.LanguageEnglish: testItems(4),
		models.LanguageSpanish: testItems(2),
	})
	return &Session{
		Language: models.LanguageEnglish,
		Catalog:  catalog,
		Clock:    clock,
		Selector: NewDailySelectorService(kv, nil, nil),
		Streak:   NewStreakService(kv, nil, nil),
	}
}

func TestSession_VisitAcrossDays(t *testing.T) {
	ctx := context.Background()
	kv := newRecordingStore()
	clock := &fixedClock{now: time.Date(2024, time.March, 10, 23, 59, 0, 0, time.UTC)}
	session := newTestSession(kv, clock)

	first, err := session.Visit(ctx)
	require.NoError(t, err)
	assert.Equal(t, day0, first.Date)
	assert.Equal(t, 1, first.Streak)
	assert.Equal(t, models.Progress{Shown: 1, Total: 4, Percent: 25}, first.Progress)

	again, err := session.Visit(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Item, again.Item)
	assert.Equal(t, 1, again.Streak)

	clock.advanceDays(1)
	next, err := session.Visit(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.Item.ID, next.Item.ID)
	assert.Equal(t, 2, next.Streak)
	assert.Equal(t, 50, next.Progress.Percent)
}

func TestSession_TodayUsesClockLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 20:00 UTC on the 9th is already the 10th in Tokyo
	clock := &fixedClock{now: time.Date(2024, time.March, 9, 20, 0, 0, 0, time.UTC).In(tokyo)}
	session := newTestSession(newRecordingStore(), clock)
	assert.Equal(t, day0, session.Today())
}

func TestSession_WithLanguage(t *testing.T) {
	ctx := context.Background()
	kv := newRecordingStore()
	session := newTestSession(kv, &fixedClock{now: time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)})

	spanish := session.WithLanguage(models.LanguageSpanish)
	assert.Equal(t, models.LanguageEnglish, session.Language)

	visit, err := spanish.Visit(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.LanguageSpanish, visit.Language)
	assert.Equal(t, 2, visit.Progress.Total)

	item, err := spanish.TodayItem(ctx)
	require.NoError(t, err)
	assert.Equal(t, visit.Item, item)
}

func TestSession_UnsupportedLanguage(t *testing.T) {
	session := newTestSession(newRecordingStore(), SystemClock{})
	session.Language = models.Language("fr")

	_, err := session.Visit(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, contextutils.ErrUnsupportedLanguage))
}

func TestSystemClock(t *testing.T) {
	loc := time.FixedZone("test", 5*3600)
	assert.Equal(t, loc, SystemClock{Location: loc}.Now().Location())
	assert.WithinDuration(t, time.Now(), SystemClock{}.Now(), time.Minute)
}
