package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "biopsycli/internal/errors"
	"biopsycli/internal/form"
	"biopsycli/internal/services"
	"biopsycli/pkg/contracts/domain"
)

// RecordsHandler serves the record browser endpoints
type RecordsHandler struct {
	service      RecordServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewRecordsHandler creates a new records handler
func NewRecordsHandler(service RecordServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *RecordsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "records_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the record routes. Biopsy numbers usually contain a slash
// and must be path-escaped by the client.
func (h *RecordsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/", h.ListRecords)
	r.With(render.SetContentType(render.ContentTypeJSON)).Post("/reload", h.Reload)

	r.Route("/{biopsyNo}", func(r chi.Router) {
		r.Use(h.BiopsyNoCtx)
		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/", h.GetRecord)
		r.Get("/pdf", h.DownloadPDF)
	})
	return r
}

type biopsyNoKey struct{}

// BiopsyNoCtx unescapes the biopsy number URL parameter into the context
func (h *RecordsHandler) BiopsyNoCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "biopsyNo")
		biopsyNo, err := url.PathUnescape(raw)
		if err != nil || biopsyNo == "" {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusBadRequest, "INVALID_REQUEST", "Invalid biopsy number", raw))
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithBiopsyNo(r.Context(), biopsyNo)))
	})
}

// ListRecords handles GET /api/records?q=
func (h *RecordsHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	summaries, err := h.service.Search(r.Context(), query)
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}

	render.JSON(w, r, struct {
		Query   string                 `json:"query"`
		Count   int                    `json:"count"`
		Records []domain.RecordSummary `json:"records"`
	}{Query: query, Count: len(summaries), Records: summaries})
}

// GetRecord handles GET /api/records/{biopsyNo}
func (h *RecordsHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	biopsyNo := biopsyNoFrom(r)

	detail, err := h.service.Get(r.Context(), biopsyNo)
	if err != nil {
		h.handleServiceError(w, r, err, biopsyNo)
		return
	}
	render.JSON(w, r, detail)
}

// DownloadPDF handles GET /api/records/{biopsyNo}/pdf
func (h *RecordsHandler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	biopsyNo := biopsyNoFrom(r)

	doc, err := h.service.GeneratePDF(r.Context(), biopsyNo)
	if err != nil {
		h.handleServiceError(w, r, err, biopsyNo)
		return
	}

	h.logger.InfoContext(r.Context(), "document generated",
		slog.String("biopsy_no", biopsyNo),
		slog.String("filename", doc.Filename),
		slog.Int("size_bytes", len(doc.Data)),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Data)
}

// Reload handles POST /api/records/reload
func (h *RecordsHandler) Reload(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Reload(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status":  "reloaded",
		"records": n,
	})
}

// handleServiceError maps service errors onto problem responses. Errors
// that already carry a type pass through unchanged.
func (h *RecordsHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, biopsyNo string) {
	var missing *form.MissingFieldsError
	switch {
	case errors.Is(err, services.ErrRecordNotFound):
		err = apierrors.NotFoundError(fmt.Sprintf("Biopsy number %s", biopsyNo))
	case errors.Is(err, services.ErrNoData):
		err = apierrors.ErrServiceUnavailable
	case errors.As(err, &missing):
		err = apierrors.MissingFieldsError(missing.Fields)
	}
	h.errorHandler.HandleError(w, r, err)
}
