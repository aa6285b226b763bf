package response_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/UnknownOlympus/cartographer/internal/api/response"
	"github.com/stretchr/testify/assert"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	response.JSON(rec, map[string]any{"ok": true, "processed": 0})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok":true,"processed":0}`, rec.Body.String())
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()

	response.Error(rec, http.StatusTooManyRequests, "monthly quota exceeded")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"monthly quota exceeded"}`, rec.Body.String())
}
