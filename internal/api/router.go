package api

import (
	"elevator-sim/internal/api/handlers"
	"elevator-sim/internal/services"
	"net/http"

	"github.com/rs/zerolog"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(runner *services.Runner, limits handlers.RunLimits, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	simHandler := &handlers.SimulationHandler{Runner: runner, Limits: limits}
	reportHandler := &handlers.ReportHandler{Runner: runner}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/simulations", simHandler.Run)
	mux.HandleFunc("/reports", reportHandler.List)

	return loggingMiddleware(log, mux)
}
