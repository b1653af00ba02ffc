package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biopsycli/internal/infrastructure"
	"biopsycli/internal/shared/testutil"
)

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "record not found",
			err:        NewNotFoundError("biopsy KB-9/99"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeRecordNotFound,
		},
		{
			name:       "wrapped validation error",
			err:        fmt.Errorf("generate: %w", NewAppValidationError("Please fill in required fields")),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeValidation,
		},
		{
			name:       "render failure",
			err:        NewRenderError("pdf output", fmt.Errorf("disk full")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeRenderFailed,
		},
		{
			name:       "malformed data file",
			err:        NewParsingError("decode data file", fmt.Errorf("unexpected EOF")),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDataCorrupted,
		},
		{
			name:       "api error",
			err:        MissingFieldsError([]string{"Patient Name"}),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeValidation,
		},
		{
			name:       "conflict",
			err:        ConflictError("Export job already finished", "job-1"),
			wantStatus: http.StatusConflict,
			wantType:   TypeConflict,
		},
		{
			name:       "deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "plain error",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			h := NewErrorHandler(logger, false)

			req := httptest.NewRequest(http.MethodGet, "/api/records/KB-9", nil)
			req = req.WithContext(infrastructure.WithTraceID(req.Context(), "trace-1"))
			rec := httptest.NewRecorder()

			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, "/api/records/KB-9", body["instance"])
			assert.Equal(t, "trace-1", body["trace_id"])
			assert.True(t, logs.ContainsMessage("request failed"))
		})
	}
}

func TestErrorHandler_HandleErrorNil(t *testing.T) {
	h := NewErrorHandler(nil, false)
	rec := httptest.NewRecorder()

	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Zero(t, rec.Body.Len())
}

func TestErrorHandler_AppErrorContextBecomesExtension(t *testing.T) {
	h := NewErrorHandler(nil, false)
	err := NewAppValidationError("Please fill in required fields").
		WithContext("missing_fields", []string{"Patient Name", "Age"})

	problem := h.ErrorToProblem(err, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, problem.Status)
	assert.Equal(t, []string{"Patient Name", "Age"}, problem.Extensions["missing_fields"])
	assert.Equal(t, "VALIDATION", problem.Extensions["error_type"])
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, true)
	rec := httptest.NewRecorder()

	h.HandlePanic(rec, httptest.NewRequest(http.MethodGet, "/boom", nil), "kaput")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, "kaput", body["panic"])
	assert.Contains(t, body, "stack")
	assert.True(t, logs.ContainsMessage("panic recovered"))
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	h := NewErrorHandler(nil, false)

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/records", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, decodeProblem(t, rec)["detail"], "DELETE")
}
