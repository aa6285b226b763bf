package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	mw "github.com/UnknownOlympus/cartographer/internal/api/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRequireUser(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/jobs/usage", nil)

		mw.RequireUser(http.HandlerFunc(okHandler)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"ok":false,"error":"Unauthorized"}`, rec.Body.String())
	})

	t.Run("identity is stored in context", func(t *testing.T) {
		var got string
		handler := mw.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = mw.GetUserID(r)
			w.WriteHeader(http.StatusOK)
		}))
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/jobs/usage", nil)
		req.Header.Set(mw.UserIDHeader, " user-1 ")

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", got)
	})
}

func TestRequireWorkerToken(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		header     string
		value      string
		want       int
	}{
		{"worker header", "secret", mw.WorkerTokenHeader, "secret", http.StatusOK},
		{"bearer credential", "secret", "Authorization", "Bearer secret", http.StatusOK},
		{"wrong token", "secret", mw.WorkerTokenHeader, "guess", http.StatusUnauthorized},
		{"missing token", "secret", "", "", http.StatusUnauthorized},
		{"unconfigured token", "", mw.WorkerTokenHeader, "", http.StatusUnauthorized},
		{"malformed bearer", "secret", "Authorization", "secret", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/jobs/process-one", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}

			mw.RequireWorkerToken(tt.configured)(http.HandlerFunc(okHandler)).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := mw.Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	require.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "panic recovered")
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := mw.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"path":"/healthz"`)
}
