package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/elearn-api/internal/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHandleServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", apperrors.ErrNotFound, http.StatusNotFound},
		{"attempt not found", apperrors.ErrAttemptNotFound, http.StatusNotFound},
		{"conflict", apperrors.ErrConflict, http.StatusConflict},
		{"already submitted", apperrors.ErrAlreadySubmitted, http.StatusConflict},
		{"validation", apperrors.ErrValidation, http.StatusUnprocessableEntity},
		{"incomplete attempt", apperrors.ErrIncompleteAttempt, http.StatusUnprocessableEntity},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden},
		{"not enrolled", apperrors.ErrNotEnrolled, http.StatusForbidden},
		{"subscription required", apperrors.ErrSubscriptionRequired, http.StatusPaymentRequired},
		{"attempt expired", apperrors.ErrAttemptExpired, http.StatusGone},
		{"unknown error", fmt.Errorf("database exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			handleServiceError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestHandleServiceError_WrappedErrorKeepsStatus(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	wrapped := fmt.Errorf("%w: course 42 does not exist", apperrors.ErrNotFound)
	handleServiceError(c, wrapped)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "course 42")
}

func TestHandleServiceError_InternalErrorHidesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	handleServiceError(c, fmt.Errorf("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestSanitizeForExcel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alice", "alice"},
		{"", ""},
		{"=1+1", "'=1+1"},
		{"+SUM(A1)", "'+SUM(A1)"},
		{"-2", "'-2"},
		{"@cmd", "'@cmd"},
		{"\tx", "'\tx"},
		{"bob=", "bob="},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeForExcel(tt.in), "input %q", tt.in)
	}
}
