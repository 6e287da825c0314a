package observability

import (
	"fmt"
	"net/http"
	"time"

	contextutils "notlikethat/internal/utils"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// NewHTTPClient returns a client whose requests are traced by otelhttp and whose
// failed responses are annotated on the client span.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(&errorAnnotatingTransport{base: http.DefaultTransport}),
	}
}

type errorAnnotatingTransport struct {
	base http.RoundTripper
}

func (t *errorAnnotatingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	span := trace.SpanFromContext(req.Context())
	if err != nil {
		span.SetAttributes(attribute.String("error.severity", string(contextutils.SeverityError)))
		return resp, err
	}

	if resp.StatusCode >= 400 {
		severity := determineErrorSeverity(resp.StatusCode)
		errorMsg := "client error"
		if resp.StatusCode >= 500 {
			errorMsg = "server error"
		}
		span.RecordError(fmt.Errorf("%s: %s", errorMsg, resp.Status))
		span.SetStatus(codes.Error, errorMsg)
		span.SetAttributes(
			attribute.Int("http.status_code", resp.StatusCode),
			attribute.String("http.method", req.Method),
			attribute.String("http.path", req.URL.Path),
			attribute.String("error.severity", severity),
		)
		if resp.StatusCode >= 500 {
			span.SetAttributes(attribute.Bool("error.server_error", true))
		}
	}
	return resp, nil
}

// determineErrorSeverity determines the severity level based on status code
func determineErrorSeverity(statusCode int) string {
	switch {
	case statusCode >= 500:
		return string(contextutils.SeverityError)
	case statusCode >= 400:
		return string(contextutils.SeverityWarn)
	default:
		return string(contextutils.SeverityInfo)
	}
}
