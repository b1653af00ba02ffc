package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apierrors "biopsycli/internal/errors"
	"biopsycli/internal/services"
)

// StatisticsPage serves the statistics dashboard rendered from the current
// record store
func StatisticsPage(service RecordServiceInterface, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := service.StatisticsHTML(r.Context())
		if err != nil {
			if errors.Is(err, services.ErrNoData) {
				err = apierrors.ErrServiceUnavailable
			}
			errorHandler.HandleError(w, r, err)
			return
		}

		logger.DebugContext(r.Context(), "statistics page served",
			slog.Int("size_bytes", len(page)))
		serveHTML(w, page)
	}
}

func serveHTML(w http.ResponseWriter, page []byte) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(page)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}
