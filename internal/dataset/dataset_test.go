package dataset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"notlikethat/internal/config"
	"notlikethat/internal/models"
	"notlikethat/internal/observability"
	contextutils "notlikethat/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const validList = `[
  {"id": 1, "text": "first", "category": "Science", "source_url": "https://example.com/1"},
  {"id": 2, "text": "second", "category": "History", "source_url": ""}
]`

// stubSource returns canned payloads per language
type stubSource struct {
	payloads map[models.Language][]byte
	errs     map[models.Language]error
}

func (s stubSource) Name() string { return "stub" }

func (s stubSource) Fetch(_ context.Context, lang models.Language) ([]byte, error) {
	if err := s.errs[lang]; err != nil {
		return nil, err
	}
	return s.payloads[lang], nil
}

func newTestLoader(t *testing.T, src Source) *Loader {
	t.Helper()
	loader, err := NewLoader(src, observability.NewNopLogger())
	require.NoError(t, err)
	return loader
}

func TestEmbeddedSource_LoadsBothLanguages(t *testing.T) {
	catalog, err := newTestLoader(t, EmbeddedSource{}).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.SupportedLanguages, catalog.Languages())
	for _, lang := range models.SupportedLanguages {
		items, err := catalog.Items(lang)
		require.NoError(t, err)
		assert.NotEmpty(t, items, "language %s", lang)
		for _, item := range items {
			assert.NotEmpty(t, item.Text)
			assert.GreaterOrEqual(t, item.ID, 0)
		}
	}
}

func TestLoader_AllOrNothing(t *testing.T) {
	src := stubSource{
		payloads: map[models.Language][]byte{models.LanguageEnglish: []byte(validList)},
		errs: map[models.Language]error{
			models.LanguageSpanish: contextutils.WrapError(contextutils.ErrDatasetLoad, "boom"),
		},
	}

	catalog, err := newTestLoader(t, src).Load(context.Background())
	require.Error(t, err)
	assert.Nil(t, catalog)
	assert.True(t, errors.Is(err, contextutils.ErrDatasetLoad))
	assert.Equal(t, contextutils.ErrorCodeDatasetLoad, contextutils.GetErrorCode(err))
	assert.Equal(t, contextutils.SeverityFatal, contextutils.GetErrorSeverity(err))
}

func TestLoader_InvalidPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: `{"id": `},
		{name: "object instead of array", payload: `{"id": 1, "text": "x"}`},
		{name: "missing text", payload: `[{"id": 1, "category": "x"}]`},
		{name: "empty text", payload: `[{"id": 1, "text": ""}]`},
		{name: "negative id", payload: `[{"id": -3, "text": "x"}]`},
		{name: "string id", payload: `[{"id": "1", "text": "x"}]`},
		{name: "bad source url", payload: `[{"id": 1, "text": "x", "source_url": "not a url"}]`},
		{name: "duplicate id", payload: `[{"id": 1, "text": "x"}, {"id": 1, "text": "y"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := stubSource{payloads: map[models.Language][]byte{
				models.LanguageEnglish: []byte(validList),
				models.LanguageSpanish: []byte(tt.payload),
			}}

			_, err := newTestLoader(t, src).Load(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, contextutils.ErrDatasetLoad))
			assert.True(t, errors.Is(err, contextutils.ErrDatasetInvalid), "got %v", err)
		})
	}
}

func TestLoader_EmptyListIsAccepted(t *testing.T) {
	src := stubSource{payloads: map[models.Language][]byte{
		models.LanguageEnglish: []byte(validList),
		models.LanguageSpanish: []byte(`[]`),
	}}

	catalog, err := newTestLoader(t, src).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, catalog.Len(models.LanguageSpanish))
	assert.Equal(t, 2, catalog.Len(models.LanguageEnglish))
}

func TestLoader_EmptyListWarningCarriesTraceContext(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	loader, err := NewLoader(EmbeddedSource{}, observability.NewLoggerFromCore(core))
	require.NoError(t, err)

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("dataset-test").Start(context.Background(), "load")
	defer span.End()

	items, err := loader.Parse(ctx, models.LanguageSpanish, []byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, items)

	entries := logs.FilterMessage("Dataset is empty").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "es", fields["language"])
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
}

func TestCatalog_UnsupportedLanguage(t *testing.T) {
	catalog := NewCatalog(map[models.Language][]models.MisconceptionItem{
		models.LanguageEnglish: {{ID: 1, Text: "x"}},
	})

	_, err := catalog.Items(models.Language("fr"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, contextutils.ErrUnsupportedLanguage))
	assert.Equal(t, []models.Language{models.LanguageEnglish}, catalog.Languages())
}

func TestCatalog_CopiesInput(t *testing.T) {
	list := []models.MisconceptionItem{{ID: 1, Text: "x"}}
	catalog := NewCatalog(map[models.Language][]models.MisconceptionItem{models.LanguageEnglish: list})
	list[0].Text = "changed"

	items, err := catalog.Items(models.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, "x", items[0].Text)
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "misconceptions_en.json"), []byte(validList), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "misconceptions_es.json"), []byte(validList), 0o600))

	catalog, err := newTestLoader(t, DirSource{Dir: dir}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.Len(models.LanguageSpanish))

	_, err = DirSource{Dir: filepath.Join(dir, "missing")}.Fetch(context.Background(), models.LanguageEnglish)
	assert.True(t, errors.Is(err, contextutils.ErrDatasetLoad))
}

func TestHTTPSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/misconceptions_en.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(validList))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL+"/data/", time.Second)
	assert.Equal(t, SourceHTTP, src.Name())

	data, err := src.Fetch(context.Background(), models.LanguageEnglish)
	require.NoError(t, err)
	assert.JSONEq(t, validList, string(data))

	// A non-ok response fails the whole load
	_, err = newTestLoader(t, src).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, contextutils.ErrDatasetLoad))
	assert.Contains(t, err.Error(), "status 404")
}

func TestNewSource(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.DatasetConfig
		wantName string
		wantErr  bool
	}{
		{name: "default", cfg: config.DatasetConfig{}, wantName: SourceEmbedded},
		{name: "embedded", cfg: config.DatasetConfig{Source: "embedded"}, wantName: SourceEmbedded},
		{name: "dir", cfg: config.DatasetConfig{Source: "dir", Dir: "/tmp"}, wantName: SourceDir},
		{name: "dir without path", cfg: config.DatasetConfig{Source: "dir"}, wantErr: true},
		{name: "http", cfg: config.DatasetConfig{Source: "http", BaseURL: "https://example.com/data"}, wantName: SourceHTTP},
		{name: "http bad url", cfg: config.DatasetConfig{Source: "http", BaseURL: "nope"}, wantErr: true},
		{name: "unknown", cfg: config.DatasetConfig{Source: "ftp"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewSource(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, contextutils.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, src.Name())
		})
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "misconceptions_en.json", FileName(models.LanguageEnglish))
	assert.Equal(t, "misconceptions_es.json", FileName(models.LanguageSpanish))
}
