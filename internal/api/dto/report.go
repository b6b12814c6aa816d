package dto

import "time"

type ElevatorReportResponse struct {
	Name          string  `json:"name"`
	Delivered     int     `json:"delivered"`
	FinalPosition float64 `json:"final_position"`
	FinalState    string  `json:"final_state"`
	MeanWait      float64 `json:"mean_wait"`
	MeanRide      float64 `json:"mean_ride"`
}

type ReportResponse struct {
	ID          int64                    `json:"id,omitempty"`
	Scenario    string                   `json:"scenario"`
	Fingerprint string                   `json:"fingerprint"`
	Scheduler   string                   `json:"scheduler"`
	Requests    int                      `json:"requests"`
	Delivered   int                      `json:"delivered"`
	Ticks       int                      `json:"ticks"`
	FinishTime  float64                  `json:"finish_time"`
	MeanWait    float64                  `json:"mean_wait"`
	MaxWait     float64                  `json:"max_wait"`
	MeanRide    float64                  `json:"mean_ride"`
	MeanTrip    float64                  `json:"mean_trip"`
	Elevators   []ElevatorReportResponse `json:"elevators"`
	CreatedAt   time.Time                `json:"created_at"`
}

type SimulationResponse struct {
	Cached bool           `json:"cached"`
	Report ReportResponse `json:"report"`
}

type ListReportsResponse struct {
	Reports []ReportResponse `json:"reports"`
}
