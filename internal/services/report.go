package services

import (
	"elevator-sim/internal/domain"
	"fmt"
	"math"
)

// Summarize builds a report from the riders each elevator has delivered.
// Scenario metadata (name, fingerprint, scheduler) is left to the caller.
func Summarize(sim *Simulation) (*domain.RunReport, error) {
	snaps, err := sim.Snapshots()
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	report := &domain.RunReport{
		Requests:   sim.RequestCount(),
		Ticks:      sim.Ticks(),
		FinishTime: sim.CurrentTime(),
	}

	var totalWait, totalRide, totalTrip float64
	for _, snap := range snaps {
		completed := snap.Completed

		er := domain.ElevatorReport{
			Name:          snap.Name,
			Delivered:     len(completed),
			FinalPosition: snap.Position,
			FinalState:    snap.State.String(),
		}

		var wait, ride float64
		for _, r := range completed {
			wait += r.WaitTime()
			ride += r.RideTime()
			totalTrip += r.TripTime()
			report.MaxWait = math.Max(report.MaxWait, r.WaitTime())
		}
		if len(completed) > 0 {
			er.MeanWait = wait / float64(len(completed))
			er.MeanRide = ride / float64(len(completed))
		}

		totalWait += wait
		totalRide += ride
		report.Delivered += len(completed)
		report.Elevators = append(report.Elevators, er)
	}

	if report.Delivered > 0 {
		n := float64(report.Delivered)
		report.MeanWait = totalWait / n
		report.MeanRide = totalRide / n
		report.MeanTrip = totalTrip / n
	}
	return report, nil
}
