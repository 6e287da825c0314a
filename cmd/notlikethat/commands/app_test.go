package commands

import (
	"bytes"
	"errors"
	"testing"

	"notlikethat/internal/observability"
	contextutils "notlikethat/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newReportingApp(t *testing.T) (*App, *bytes.Buffer, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	var errOut bytes.Buffer
	app := &App{
		Err:       &errOut,
		LookupEnv: func(string) (string, bool) { return "", false },
		logger:    observability.NewLoggerFromCore(core),
	}
	return app, &errOut, logs
}

func TestReportError_WarningCarriesDetailsAndLogsAtWarn(t *testing.T) {
	app, errOut, logs := newReportingApp(t)

	app.reportError(contextutils.WrapError(contextutils.ErrStorageFailure, "save streak"))

	assert.Equal(t, "Storage operation failed: STORAGE_FAILURE: Storage operation failed\n", errOut.String())
	entries := logs.FilterMessage("Command failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "warn", entries[0].ContextMap()["severity"])
	assert.Equal(t, string(contextutils.ErrorCodeStorageFailure), entries[0].ContextMap()["code"])
}

func TestReportError_ErrorSeverityLogsAtError(t *testing.T) {
	app, errOut, logs := newReportingApp(t)

	app.reportError(contextutils.WrapErrorf(contextutils.ErrUnsupportedStore, "driver %q", "memory"))

	assert.Contains(t, errOut.String(), "Unsupported storage driver: ")
	entries := logs.FilterMessage("Command failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestReportError_FatalKeepsBareMessage(t *testing.T) {
	app, errOut, logs := newReportingApp(t)
	app.langFlag = "es"

	app.reportError(contextutils.WrapError(contextutils.ErrDatasetLoad, "load es"))

	assert.Equal(t, "No se pudieron cargar los mitos. Reinicia o revisa la fuente de datos.\n", errOut.String())
	entries := logs.FilterMessage("Command failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "fatal", entries[0].ContextMap()["severity"])
}

func TestReportError_PlainErrorIsNotLocalized(t *testing.T) {
	app, errOut, logs := newReportingApp(t)

	app.reportError(errors.New("open config: no such file"))

	assert.Equal(t, "Error: open config: no such file\n", errOut.String())
	assert.Zero(t, logs.Len())
}
