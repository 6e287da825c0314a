// Package dataset loads the per-language misconception lists the selector draws from.
package dataset

import (
	"context"
	"embed"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"notlikethat/internal/config"
	"notlikethat/internal/models"
	"notlikethat/internal/observability"
	contextutils "notlikethat/internal/utils"
)

//go:embed data/misconceptions_*.json data/schema.json
var dataFS embed.FS

// Source names accepted in dataset.source
const (
	SourceEmbedded = "embedded"
	SourceDir      = "dir"
	SourceHTTP     = "http"
)

// maxDatasetBytes bounds a single fetched list
const maxDatasetBytes = 8 << 20

// Source returns the raw JSON list for a language
type Source interface {
	Fetch(ctx context.Context, lang models.Language) ([]byte, error)
	Name() string
}

// FileName returns the dataset file name of a language, e.g. "misconceptions_en.json".
func FileName(lang models.Language) string {
	return fmt.Sprintf("misconceptions_%s.json", lang)
}

// EmbeddedSource serves the lists compiled into the binary
type EmbeddedSource struct{}

// Name implements Source
func (EmbeddedSource) Name() string { return SourceEmbedded }

// Fetch implements Source
func (EmbeddedSource) Fetch(_ context.Context, lang models.Language) ([]byte, error) {
	data, err := dataFS.ReadFile("data/" + FileName(lang))
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatasetLoad, "embedded dataset for %s: %v", lang, err)
	}
	return data, nil
}

// DirSource reads lists from a local directory
type DirSource struct {
	Dir string
}

// Name implements Source
func (s DirSource) Name() string { return SourceDir }

// Fetch implements Source
func (s DirSource) Fetch(ctx context.Context, lang models.Language) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatasetLoad, "dataset %s: %v", lang, err)
	}
	path := filepath.Join(s.Dir, FileName(lang))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatasetLoad, "failed to read %s: %v", path, err)
	}
	return data, nil
}

// HTTPSource downloads lists from BaseURL/misconceptions_{lang}.json
type HTTPSource struct {
	BaseURL string
	client  *http.Client
}

// NewHTTPSource creates an HTTP source with a traced client
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = config.DatasetFetchTimeout
	}
	return &HTTPSource{
		BaseURL: baseURL,
		client:  observability.NewHTTPClient(timeout),
	}
}

// Name implements Source
func (s *HTTPSource) Name() string { return SourceHTTP }

// Fetch implements Source. Any non-2xx response is a load failure.
func (s *HTTPSource) Fetch(ctx context.Context, lang models.Language) (result []byte, err error) {
	target, err := url.JoinPath(s.BaseURL, FileName(lang))
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatasetLoad, "invalid dataset base url %q: %v", s.BaseURL, err)
	}

	ctx, span := observability.TraceDatasetFunction(ctx, "fetch_http",
		observability.AttributeLanguage(lang),
	)
	defer observability.FinishSpan(span, &err)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatasetLoad, "failed to build request for %s: %v", target, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatasetLoad, "failed to fetch %s: %v", target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatasetLoad, "failed to fetch %s: status %d", target, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDatasetBytes))
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatasetLoad, "failed to read %s: %v", target, err)
	}
	return data, nil
}

// NewSource builds the Source selected by cfg.Source
func NewSource(cfg config.DatasetConfig) (Source, error) {
	switch strings.ToLower(cfg.Source) {
	case "", SourceEmbedded:
		return EmbeddedSource{}, nil
	case SourceDir:
		if cfg.Dir == "" {
			return nil, contextutils.WrapError(contextutils.ErrInvalidInput, "dataset.dir is required for the dir source")
		}
		return DirSource{Dir: cfg.Dir}, nil
	case SourceHTTP:
		if !contextutils.IsValidURL(cfg.BaseURL) {
			return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "dataset.base_url %q is not a valid url", cfg.BaseURL)
		}
		return NewHTTPSource(cfg.BaseURL, cfg.Timeout), nil
	default:
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "unknown dataset source %q", cfg.Source)
	}
}
