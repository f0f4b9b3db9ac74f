package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campuseats/campuseats-backend/pkg/logger"
)

func testLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: buf})
}

func TestRequestIDKeepsCallerValue(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := testLogger(buf)
	h := RequestID(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logg.Info(r.Context(), "inside")
	}))

	req := httptest.NewRequest(http.MethodGet, "/vendors", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
	assert.Contains(t, buf.String(), `"request_id":"abc-123"`)
}

func TestRequestIDReplacesOversizedValue(t *testing.T) {
	h := RequestID(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/vendors", nil)
	req.Header.Set(requestIDHeader, strings.Repeat("x", maxRequestIDLen+1))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	got := w.Header().Get(requestIDHeader)
	assert.NotEmpty(t, got)
	assert.Len(t, got, 36)
}

func TestLoggingRecordsStatus(t *testing.T) {
	buf := &bytes.Buffer{}
	h := Logging(testLogger(buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	out := buf.String()
	assert.Contains(t, out, `"status":503`)
	assert.Contains(t, out, `"path":"/health/ready"`)
	assert.Contains(t, out, `"level":"warn"`)
}

func TestRecovererWritesInternalError(t *testing.T) {
	h := Recoverer(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"INTERNAL_ERROR"`)
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	h := CORS([]string{"https://eats.example.edu"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/vendors", nil)
	req.Header.Set("Origin", "https://eats.example.edu")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "https://eats.example.edu", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
