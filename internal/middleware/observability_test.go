package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"whatsorders/internal/tracing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestObservabilityMiddlewareSetsRequestID(t *testing.T) {
	var gotRequestID string
	handler := ObservabilityMiddleware(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = tracing.GetRequestInfo(r.Context()).RequestID
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/aliases", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, gotRequestID)
}

func TestObservabilityMiddlewarePassesStatusThrough(t *testing.T) {
	handler := ObservabilityMiddleware(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/messages/x", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResponseWrapperDefaultsToOK(t *testing.T) {
	handler := ObservabilityMiddleware(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("implicit status"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "implicit status", rec.Body.String())
}

func TestResponseWrapperIgnoresDoubleWriteHeader(t *testing.T) {
	handler := ObservabilityMiddleware(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/aliases", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
}
