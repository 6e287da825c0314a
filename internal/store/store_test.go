package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"notlikethat/internal/config"
	"notlikethat/internal/models"
	"notlikethat/internal/observability"
	contextutils "notlikethat/internal/utils"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract exercises the behaviour every KeyValueStore must share
func runStoreContract(t *testing.T, kv KeyValueStore) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		var rec models.DailyRecord
		found, err := kv.Get(ctx, "missing", &rec)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("round trip records", func(t *testing.T) {
		daily := models.DailyRecord{SelectedID: 3, Date: models.NewDate(2024, time.January, 2)}
		require.NoError(t, kv.Set(ctx, DailyKey(models.LanguageEnglish), daily))

		var got models.DailyRecord
		found, err := kv.Get(ctx, DailyKey(models.LanguageEnglish), &got)
		require.NoError(t, err)
		assert.True(t, found)
		if diff := cmp.Diff(daily, got); diff != "" {
			t.Errorf("daily record mismatch (-want +got):\n%s", diff)
		}

		shown := models.ShownSet{5, 1, 3}
		require.NoError(t, kv.Set(ctx, ShownKey(models.LanguageEnglish), shown))
		gotShown, err := GetOr(ctx, kv, ShownKey(models.LanguageEnglish), models.ShownSet{})
		require.NoError(t, err)
		assert.Equal(t, shown, gotShown)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, ThemeKey, models.ThemeLight))
		require.NoError(t, kv.Set(ctx, ThemeKey, models.ThemeDark))

		theme, err := GetOr(ctx, kv, ThemeKey, models.ThemeLight)
		require.NoError(t, err)
		assert.Equal(t, models.ThemeDark, theme)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, StreakKey, models.StreakRecord{CurrentStreak: 2}))
		require.NoError(t, kv.Remove(ctx, StreakKey))
		require.NoError(t, kv.Remove(ctx, StreakKey))

		rec, err := GetOr(ctx, kv, StreakKey, models.StreakRecord{})
		require.NoError(t, err)
		assert.Equal(t, models.StreakRecord{}, rec)
	})

	t.Run("raw json", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, ShownKey(models.LanguageSpanish), []int{7}))

		var raw json.RawMessage
		found, err := kv.Get(ctx, ShownKey(models.LanguageSpanish), &raw)
		require.NoError(t, err)
		assert.True(t, found)
		assert.JSONEq(t, `[7]`, string(raw))
	})

	t.Run("decode failure", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "daily_data_xx", "not a record"))

		fallback := models.NoSelection
		rec, err := GetOr(ctx, kv, "daily_data_xx", fallback)
		require.Error(t, err)
		assert.Equal(t, fallback, rec)
		assert.True(t, errors.Is(err, contextutils.ErrStorageFailure))
		assert.True(t, errors.Is(err, contextutils.ErrStorageDecode))

		var storageErr *StorageError
		require.True(t, errors.As(err, &storageErr))
		assert.Equal(t, OpDecode, storageErr.Op)
		assert.Equal(t, "daily_data_xx", storageErr.Key)
	})

	t.Run("keys", func(t *testing.T) {
		lister, ok := kv.(Lister)
		require.True(t, ok)
		keys, err := lister.Keys(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, DailyKey(models.LanguageEnglish))
		assert.Contains(t, keys, ThemeKey)
		assert.NotContains(t, keys, StreakKey)
	})
}

func TestMemoryStore(t *testing.T) {
	kv := NewMemoryStore()
	defer kv.Close()
	runStoreContract(t, kv)
}

func TestSQLStore_SQLite(t *testing.T) {
	cfg := config.StorageConfig{
		Driver:          "sqlite",
		Path:            filepath.Join(t.TempDir(), "state.db"),
		ConnMaxLifetime: config.DatabaseConnMaxLifetime,
	}
	kv, err := Open(context.Background(), cfg, observability.NewNopLogger())
	require.NoError(t, err)
	defer kv.Close()

	_, ok := kv.(*SQLStore)
	require.True(t, ok)
	runStoreContract(t, kv)
}

func TestSQLStore_SQLitePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	cfg := config.StorageConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "state.db")}

	kv, err := Open(ctx, cfg, observability.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, StreakKey, models.StreakRecord{CurrentStreak: 4, LongestStreak: 9}))
	require.NoError(t, kv.Close())

	kv, err = Open(ctx, cfg, observability.NewNopLogger())
	require.NoError(t, err)
	defer kv.Close()

	rec, err := GetOr(ctx, kv, StreakKey, models.StreakRecord{})
	require.NoError(t, err)
	assert.Equal(t, 4, rec.CurrentStreak)
	assert.Equal(t, 9, rec.LongestStreak)
}

func TestSQLStore_ClosedDatabaseReportsStorageError(t *testing.T) {
	ctx := context.Background()
	cfg := config.StorageConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "state.db")}

	kv, err := Open(ctx, cfg, observability.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, kv.Close())

	err = kv.Set(ctx, ThemeKey, models.ThemeDark)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contextutils.ErrStorageFailure))
	assert.False(t, errors.Is(err, contextutils.ErrStorageDecode))

	_, err = kv.Get(ctx, ThemeKey, new(models.Theme))
	require.Error(t, err)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Driver: "redis"}, observability.NewNopLogger())
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeUnsupportedStore, contextutils.GetErrorCode(err))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "daily_data_en", DailyKey(models.LanguageEnglish))
	assert.Equal(t, "shown_es", ShownKey(models.LanguageSpanish))
	assert.Equal(t, []string{"daily_data_es", "shown_es"}, LanguageKeys(models.LanguageSpanish))
}

func TestStorageError_Message(t *testing.T) {
	err := newStorageError(OpSet, "theme", errors.New("locked"))
	assert.Equal(t, `store set "theme": locked`, err.Error())
	assert.Equal(t, "store keys: locked", newStorageError(OpKeys, "", errors.New("locked")).Error())
}
