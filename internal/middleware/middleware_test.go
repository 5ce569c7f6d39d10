package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tutorials", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	require.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDHonoursInbound(t *testing.T) {
	inbound := uuid.NewString()
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tutorials", nil)
	req.Header.Set(RequestIDHeader, inbound)
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, inbound, seen)

	req = httptest.NewRequest(http.MethodGet, "/api/tutorials", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotEqual(t, "not-a-uuid", seen)
}

func TestGetRequestIDWithoutMiddleware(t *testing.T) {
	require.Equal(t, "unknown", GetRequestID(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	h := RequestID(LoggerMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NotEqual(t, zerolog.Disabled, zerolog.Ctx(r.Context()).GetLevel())
		w.WriteHeader(http.StatusNoContent)
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/tutorials?x=1", nil))

	out := buf.String()
	require.Contains(t, out, `"status":204`)
	require.Contains(t, out, `"uri":"/api/tutorials?x=1"`)
	require.Contains(t, out, `"request_id"`)
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	h := Recovery(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tutorials/1", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Empty(t, rec.Body.String())
	require.Contains(t, buf.String(), "boom")
}
