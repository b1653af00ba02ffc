package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "biopsycli/internal/errors"
	"biopsycli/internal/operations"
	"biopsycli/internal/shared/testutil"
)

// MockExportQueue is a mock implementation of ExportQueueInterface
type MockExportQueue struct {
	mock.Mock
}

func (m *MockExportQueue) Enqueue(ctx context.Context, req operations.ExportRequest) (*operations.Job, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*operations.Job), args.Error(1)
}

func (m *MockExportQueue) GetJob(id string) (*operations.Job, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*operations.Job), args.Error(1)
}

func (m *MockExportQueue) ListJobs(filter operations.JobFilter) ([]*operations.Job, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*operations.Job), args.Error(1)
}

func (m *MockExportQueue) CancelJob(id string) (*operations.Job, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*operations.Job), args.Error(1)
}

func (m *MockExportQueue) Stats() operations.QueueStats {
	return operations.QueueStats{Workers: 1, QueueCap: 4}
}

func newExportsRouter(t *testing.T, q *MockExportQueue) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	r := chi.NewRouter()
	r.Mount("/api/exports", NewExportsHandler(q, logger, apierrors.NewErrorHandler(logger, false)).Routes())
	return r
}

func TestExportsHandler_Create(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantReq operations.ExportRequest
	}{
		{
			name:    "empty body exports everything",
			body:    "",
			wantReq: operations.ExportRequest{},
		},
		{
			name:    "ids are trimmed",
			body:    `{"ids":[" KB-1/25 ","","KB-2/25"],"group_by_year":true}`,
			wantReq: operations.ExportRequest{IDs: []string{"KB-1/25", "KB-2/25"}, GroupByYear: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := new(MockExportQueue)
			q.On("Enqueue", tt.wantReq).Return(&operations.Job{
				ID:      "job-1",
				Status:  operations.JobStatusPending,
				Request: tt.wantReq,
			}, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/exports", strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			rec := httptest.NewRecorder()
			newExportsRouter(t, q).ServeHTTP(rec, req)

			require.Equal(t, http.StatusAccepted, rec.Code)
			assert.Equal(t, "/api/exports/job-1", rec.Header().Get("Location"))
			body := decodeBody(t, rec)
			assert.Equal(t, "job-1", body["id"])
			assert.Equal(t, "pending", body["status"])
			q.AssertExpectations(t)
		})
	}
}

func TestExportsHandler_CreateErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		queueErr   error
		wantStatus int
		wantType   string
	}{
		{
			name:       "malformed json",
			body:       `{"ids":`,
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeBadRequest,
		},
		{
			name:       "only blank ids",
			body:       `{"ids":["  "]}`,
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeBadRequest,
		},
		{
			name:       "queue full",
			body:       `{}`,
			queueErr:   operations.ErrQueueFull,
			wantStatus: http.StatusServiceUnavailable,
			wantType:   apierrors.TypeServiceDown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := new(MockExportQueue)
			if tt.queueErr != nil {
				q.On("Enqueue", mock.Anything).Return(nil, tt.queueErr)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/exports", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			newExportsRouter(t, q).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantType, decodeBody(t, rec)["type"])
			q.AssertExpectations(t)
		})
	}
}

func TestExportsHandler_List(t *testing.T) {
	q := new(MockExportQueue)
	q.On("ListJobs", operations.JobFilter{Status: operations.JobStatusCompleted, Limit: 5}).
		Return([]*operations.Job{{ID: "a"}, {ID: "b"}}, nil)

	rec := httptest.NewRecorder()
	newExportsRouter(t, q).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exports?status=completed&limit=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, float64(1), body["queue"].(map[string]interface{})["workers"])

	rec = httptest.NewRecorder()
	newExportsRouter(t, q).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exports?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportsHandler_GetAndCancel(t *testing.T) {
	q := new(MockExportQueue)
	q.On("GetJob", "job-1").Return(&operations.Job{ID: "job-1", Status: operations.JobStatusRunning, Progress: 40}, nil)
	q.On("GetJob", "nope").Return(nil, fmt.Errorf("job nope: %w", operations.ErrJobNotFound))
	q.On("CancelJob", "job-1").Return(&operations.Job{ID: "job-1", Status: operations.JobStatusRunning}, nil)
	q.On("CancelJob", "done").Return(&operations.Job{ID: "done", Status: operations.JobStatusCompleted}, operations.ErrJobFinished)
	router := newExportsRouter(t, q)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exports/job-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(40), decodeBody(t, rec)["progress"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exports/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Export job nope not found", decodeBody(t, rec)["detail"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/exports/job-1", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/exports/done", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apierrors.TypeConflict, decodeBody(t, rec)["type"])

	q.AssertExpectations(t)
}
