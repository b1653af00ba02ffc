package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "biopsycli/internal/errors"
	"biopsycli/internal/operations"
)

// ExportQueueInterface defines the job operations used by the exports handler
type ExportQueueInterface interface {
	Enqueue(ctx context.Context, req operations.ExportRequest) (*operations.Job, error)
	GetJob(id string) (*operations.Job, error)
	ListJobs(filter operations.JobFilter) ([]*operations.Job, error)
	CancelJob(id string) (*operations.Job, error)
	Stats() operations.QueueStats
}

// ExportsHandler serves background bulk exports
type ExportsHandler struct {
	queue        ExportQueueInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportsHandler creates a new exports handler
func NewExportsHandler(queue ExportQueueInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportsHandler{
		queue:        queue,
		logger:       logger.With(slog.String("component", "exports_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the export routes
func (h *ExportsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.CreateExport)
	r.Get("/", h.ListExports)
	r.Get("/{jobID}", h.GetExport)
	r.Delete("/{jobID}", h.CancelExport)
	return r
}

// exportRequest is the POST body. IDs are trimmed and blanks dropped.
type exportRequest struct {
	IDs         []string `json:"ids"`
	GroupByYear bool     `json:"group_by_year"`
}

// Bind implements render.Binder
func (e *exportRequest) Bind(r *http.Request) error {
	ids := make([]string, 0, len(e.IDs))
	for _, id := range e.IDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(e.IDs) > 0 && len(ids) == 0 {
		return errors.New("ids contains no biopsy numbers")
	}
	e.IDs = ids
	return nil
}

// CreateExport handles POST /api/exports
func (h *ExportsHandler) CreateExport(w http.ResponseWriter, r *http.Request) {
	req := &exportRequest{}
	if r.ContentLength != 0 {
		if err := render.Bind(r, req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusBadRequest, "INVALID_REQUEST", "Invalid export request", err.Error()))
			return
		}
	}

	job, err := h.queue.Enqueue(r.Context(), operations.ExportRequest{
		IDs:         req.IDs,
		GroupByYear: req.GroupByYear,
	})
	if err != nil {
		h.handleQueueError(w, r, err, "")
		return
	}

	w.Header().Set("Location", "/api/exports/"+job.ID)
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, job)
}

// ListExports handles GET /api/exports?status=&limit=
func (h *ExportsHandler) ListExports(w http.ResponseWriter, r *http.Request) {
	filter := operations.JobFilter{Status: operations.JobStatus(r.URL.Query().Get("status"))}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusBadRequest, "INVALID_REQUEST", "Invalid limit", raw))
			return
		}
		filter.Limit = limit
	}

	jobs, err := h.queue.ListJobs(filter)
	if err != nil {
		h.handleQueueError(w, r, err, "")
		return
	}

	render.JSON(w, r, struct {
		Count int                   `json:"count"`
		Jobs  []*operations.Job     `json:"jobs"`
		Queue operations.QueueStats `json:"queue"`
	}{Count: len(jobs), Jobs: jobs, Queue: h.queue.Stats()})
}

// GetExport handles GET /api/exports/{jobID}
func (h *ExportsHandler) GetExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")

	job, err := h.queue.GetJob(id)
	if err != nil {
		h.handleQueueError(w, r, err, id)
		return
	}
	render.JSON(w, r, job)
}

// CancelExport handles DELETE /api/exports/{jobID}
func (h *ExportsHandler) CancelExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")

	job, err := h.queue.CancelJob(id)
	if err != nil {
		h.handleQueueError(w, r, err, id)
		return
	}

	h.logger.InfoContext(r.Context(), "export cancellation requested",
		slog.String("job_id", id),
		slog.String("status", string(job.Status)))
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, job)
}

func (h *ExportsHandler) handleQueueError(w http.ResponseWriter, r *http.Request, err error, id string) {
	switch {
	case errors.Is(err, operations.ErrJobNotFound):
		err = apierrors.NotFoundError(fmt.Sprintf("Export job %s", id))
	case errors.Is(err, operations.ErrJobFinished):
		err = apierrors.ConflictError("Export job already finished", id)
	case errors.Is(err, operations.ErrQueueFull), errors.Is(err, operations.ErrQueueStopped):
		err = apierrors.ErrExportQueueFull
	}
	h.errorHandler.HandleError(w, r, err)
}
