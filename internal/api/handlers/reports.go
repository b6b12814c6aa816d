package handlers

import (
	"elevator-sim/internal/api/dto"
	"elevator-sim/internal/services"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
)

const (
	defaultReportLimit = 20
	maxReportLimit     = 100
)

// ReportHandler exposes stored run reports.
type ReportHandler struct {
	Runner *services.Runner
}

func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := defaultReportLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxReportLimit {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	reports, err := h.Runner.List(r.Context(), limit)
	if errors.Is(err, services.ErrNoRepository) {
		writeError(w, r, http.StatusServiceUnavailable, "report storage is not configured")
		return
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("list reports failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListReportsResponse{
		Reports: make([]dto.ReportResponse, 0, len(reports)),
	}
	for _, rep := range reports {
		res.Reports = append(res.Reports, toReportResponse(rep))
	}

	writeJSON(w, r, http.StatusOK, res)
}
