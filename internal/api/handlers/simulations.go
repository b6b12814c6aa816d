package handlers

import (
	"context"
	"elevator-sim/internal/api/dto"
	"elevator-sim/internal/config"
	"elevator-sim/internal/domain"
	"elevator-sim/internal/services"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const maxScenarioBytes = 1 << 20

const (
	DefaultMaxTicks   = 1_000_000
	DefaultMaxRiders  = 10_000
	DefaultRunTimeout = 30 * time.Second
)

// RunLimits bounds the work one posted scenario may ask for. Zero fields take
// the defaults.
type RunLimits struct {
	MaxTicks  int
	MaxRiders int
	Timeout   time.Duration
}

func (l RunLimits) withDefaults() RunLimits {
	if l.MaxTicks <= 0 {
		l.MaxTicks = DefaultMaxTicks
	}
	if l.MaxRiders <= 0 {
		l.MaxRiders = DefaultMaxRiders
	}
	if l.Timeout <= 0 {
		l.Timeout = DefaultRunTimeout
	}
	return l
}

// apply caps the scenario's tick budget and rejects oversized workloads.
func (l RunLimits) apply(sc *config.Scenario) error {
	if sc.MaxTicks > l.MaxTicks {
		return fmt.Errorf("max_ticks=%d exceeds the limit of %d", sc.MaxTicks, l.MaxTicks)
	}
	if sc.MaxTicks == 0 {
		sc.MaxTicks = l.MaxTicks
	}

	riders := len(sc.Requests)
	if sc.Workload != nil {
		riders += max(0, sc.Workload.Riders)
	}
	if riders > l.MaxRiders {
		return fmt.Errorf("%d riders exceeds the limit of %d", riders, l.MaxRiders)
	}
	return nil
}

var badScenarioErrors = []error{
	config.ErrInvalidScenario,
	services.ErrUnknownScheduler,
	services.ErrInvalidIncrement,
	domain.ErrFloorOutOfRange,
	domain.ErrInvalidFloorRange,
	domain.ErrInvalidSpeed,
	domain.ErrInvalidCapacity,
	domain.ErrInvalidDwellTime,
	domain.ErrInvalidDirection,
	domain.ErrInvalidTimestamp,
}

// SimulationHandler runs scenarios posted as JSON.
type SimulationHandler struct {
	Runner *services.Runner
	Limits RunLimits
}

func (h *SimulationHandler) Run(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var sc config.Scenario

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxScenarioBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&sc); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	limits := h.Limits.withDefaults()
	if err := limits.apply(&sc); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), limits.Timeout)
	defer cancel()

	report, cached, err := h.Runner.Run(ctx, &sc)
	if err != nil {
		status := runErrorStatus(err)
		if status == http.StatusInternalServerError {
			zerolog.Ctx(r.Context()).Error().Err(err).Str("scenario", sc.Name).Msg("run scenario failed")
			writeError(w, r, status, "internal server error")
			return
		}
		writeError(w, r, status, err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, dto.SimulationResponse{
		Cached: cached,
		Report: toReportResponse(report),
	})
}

func runErrorStatus(err error) int {
	for _, target := range badScenarioErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	switch {
	case errors.Is(err, services.ErrTickLimit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
