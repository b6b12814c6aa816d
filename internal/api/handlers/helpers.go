package handlers

import (
	"elevator-sim/internal/api/dto"
	"elevator-sim/internal/domain"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("encode failed")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

func toReportResponse(r *domain.RunReport) dto.ReportResponse {
	res := dto.ReportResponse{
		ID:          r.ID,
		Scenario:    r.Scenario,
		Fingerprint: r.Fingerprint,
		Scheduler:   r.Scheduler,
		Requests:    r.Requests,
		Delivered:   r.Delivered,
		Ticks:       r.Ticks,
		FinishTime:  r.FinishTime,
		MeanWait:    r.MeanWait,
		MaxWait:     r.MaxWait,
		MeanRide:    r.MeanRide,
		MeanTrip:    r.MeanTrip,
		Elevators:   make([]dto.ElevatorReportResponse, 0, len(r.Elevators)),
		CreatedAt:   r.CreatedAt,
	}
	for _, e := range r.Elevators {
		res.Elevators = append(res.Elevators, dto.ElevatorReportResponse{
			Name:          e.Name,
			Delivered:     e.Delivered,
			FinalPosition: e.FinalPosition,
			FinalState:    e.FinalState,
			MeanWait:      e.MeanWait,
			MeanRide:      e.MeanRide,
		})
	}
	return res
}
