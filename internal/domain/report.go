package domain

import "time"

// Represents what a single elevator did over a finished run.
type ElevatorReport struct {
	Name          string
	Delivered     int
	FinalPosition float64
	FinalState    string
	MeanWait      float64
	MeanRide      float64
}

// Represents the outcome of one simulation run.
// A RunReport is derived from the elevators' completed riders once the run
// has finished. It is read-only summary data: persisting or caching it never
// feeds back into a simulation.
type RunReport struct {
	ID          int64
	Scenario    string
	Fingerprint string
	Scheduler   string
	Requests    int
	Delivered   int
	Ticks       int
	FinishTime  float64
	MeanWait    float64
	MaxWait     float64
	MeanRide    float64
	MeanTrip    float64
	Elevators   []ElevatorReport
	CreatedAt   time.Time
}
