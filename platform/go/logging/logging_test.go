package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := NewLogger(Config{Level: "loud"})
	require.Error(t, err)
}

func TestNewLoggerDefaultsToInfo(t *testing.T) {
	t.Parallel()

	logger, err := NewLogger(Config{Component: "api"})
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	require.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func observedRequestLogger() (*observer.ObservedLogs, func(http.Handler) http.Handler) {
	core, logs := observer.New(zapcore.InfoLevel)
	return logs, RequestLogger(zap.New(core))
}

func TestRequestLoggerSeverityFollowsStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusNotFound, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tc := range cases {
		logs, requestLogger := observedRequestLogger()
		handler := requestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil))

		entries := logs.All()
		require.Len(t, entries, 1)
		require.Equal(t, tc.level, entries[0].Level)
		require.Equal(t, "request completed", entries[0].Message)
	}
}

func TestRequestLoggerSkipsHealthProbes(t *testing.T) {
	t.Parallel()

	logs, requestLogger := observedRequestLogger()
	handler := requestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, logs.Len())
}

func TestRequestLoggerAttachesScopedLogger(t *testing.T) {
	t.Parallel()

	_, requestLogger := observedRequestLogger()

	var sawLogger bool
	handler := requestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawLogger = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil))

	require.True(t, sawLogger)
}
