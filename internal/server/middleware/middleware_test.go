package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

func TestRequestID_Generated(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRequestID_IncomingHeader(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		reused   bool
	}{
		{name: "well formed", incoming: "abc-123_x.y", reused: true},
		{name: "spaces", incoming: "abc 123", reused: false},
		{name: "too long", incoming: strings.Repeat("a", 65), reused: false},
		{name: "newline", incoming: "abc\nINFO fake", reused: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RequestID(http.HandlerFunc(okHandler))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, tt.incoming)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if tt.reused {
				assert.Equal(t, tt.incoming, rec.Header().Get(RequestIDHeader))
			} else {
				assert.NotEqual(t, tt.incoming, rec.Header().Get(RequestIDHeader))
			}
		})
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, GetRequestID(req.Context()))
}

func TestLogging_LevelsByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	statuses := map[int]zapcore.Level{
		http.StatusOK:                  zapcore.InfoLevel,
		http.StatusBadRequest:          zapcore.WarnLevel,
		http.StatusServiceUnavailable:  zapcore.ErrorLevel,
		http.StatusInternalServerError: zapcore.ErrorLevel,
	}
	for status, level := range statuses {
		logs.TakeAll()
		h := RequestID(Logging(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte("body"))
		})))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/predict", nil))

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, level, entries[0].Level, "status %d", status)
		assert.Equal(t, "http", entries[0].LoggerName)

		fields := entries[0].ContextMap()
		assert.Equal(t, int64(status), fields["status"])
		assert.Equal(t, int64(4), fields["bytes"])
		assert.Equal(t, "/predict", fields["path"])
		assert.NotEmpty(t, fields["request_id"])
	}
}

func TestLogging_ImplicitOK(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := Logging(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, int64(http.StatusOK), logs.All()[0].ContextMap()["status"])
}

func TestRecover(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := Recover(zap.New(core), "internal error")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/predict", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "handler panic", logs.All()[0].Message)
}

func TestRecover_AbortHandlerPropagates(t *testing.T) {
	h := Recover(zap.NewNop(), "x")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.Panics(t, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		allowed     []string
		origin      string
		method      string
		wantOrigin  string
		wantStatus  int
		wantHandled bool
	}{
		{name: "wildcard", allowed: []string{"*"}, origin: "https://a.example", method: http.MethodPost, wantOrigin: "*", wantStatus: http.StatusOK, wantHandled: true},
		{name: "wildcard preflight", allowed: []string{"*"}, origin: "https://a.example", method: http.MethodOptions, wantOrigin: "*", wantStatus: http.StatusNoContent},
		{name: "listed origin", allowed: []string{"https://a.example"}, origin: "https://a.example", method: http.MethodPost, wantOrigin: "https://a.example", wantStatus: http.StatusOK, wantHandled: true},
		{name: "unlisted origin", allowed: []string{"https://a.example"}, origin: "https://b.example", method: http.MethodPost, wantStatus: http.StatusOK, wantHandled: true},
		{name: "disabled", allowed: nil, origin: "https://a.example", method: http.MethodGet, wantStatus: http.StatusOK, wantHandled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handled := false
			h := CORS(tt.allowed)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handled = true
				okHandler(w, r)
			}))

			req := httptest.NewRequest(tt.method, "/predict", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantHandled, handled)
		})
	}
}
