package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dstanfill/parley/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.EUNAUTHORIZED, http.StatusUnauthorized},
		{domain.EPAYMENT, http.StatusPaymentRequired},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.ECONFLICT, http.StatusConflict},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{"bogus", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := ErrorCodeToHTTPStatus(tt.code); got != tt.want {
			t.Errorf("ErrorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestErrorResponse_DomainError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/chat/save-chat", nil)

	ErrorResponse(rec, req, testLogger(), domain.QuotaExceeded("test"))

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Free response limit reached. Please subscribe.", body.Error)
}

func TestErrorResponse_PlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/subscription/plans", nil)

	ErrorResponse(rec, req, testLogger(), errors.New("connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	// Internal details are never leaked to the client
	assert.NotContains(t, body.Error, "connection refused")
}

func TestValidationErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/chat/save-chat", nil)

	verr := domain.NewValidationError("test", "user_id", "user_id is required")
	verr = domain.AddFieldError(verr, "question", "question is required")

	ValidationErrorResponse(rec, req, testLogger(), verr)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Success bool              `json:"success"`
		Error   string            `json:"error"`
		Fields  map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Missing required fields", body.Error)
	assert.Len(t, body.Fields, 2)
	assert.Equal(t, "question is required", body.Fields["question"])
}

func TestValidationErrorResponse_FallsBack(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/chat/save-chat", nil)

	ValidationErrorResponse(rec, req, testLogger(), domain.NotFound("test", "settings", "x"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
