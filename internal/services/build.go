package services

import (
	"cmp"
	"elevator-sim/internal/config"
	"elevator-sim/internal/domain"
	"elevator-sim/internal/ports"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
)

// WorkloadFactory turns a scenario's workload section into a generator.
type WorkloadFactory func(cfg config.Workload) (ports.WorkloadGenerator, error)

// BuildSimulation assembles a ready-to-run simulation from a scenario: the
// elevator bank with any initial targets applied, the explicit riders plus any
// generated workload, and the named scheduler.
func BuildSimulation(sc *config.Scenario, workloads WorkloadFactory, log zerolog.Logger) (*Simulation, error) {
	if sc == nil {
		return nil, errors.New("build simulation: scenario must be non-nil")
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("build simulation: %w", err)
	}

	elevators, err := buildElevators(sc, log)
	if err != nil {
		return nil, fmt.Errorf("build simulation %q: %w", sc.Name, err)
	}

	requests, err := buildRequests(sc, workloads)
	if err != nil {
		return nil, fmt.Errorf("build simulation %q: %w", sc.Name, err)
	}

	scheduler, err := NewScheduler(sc.Scheduler)
	if err != nil {
		return nil, fmt.Errorf("build simulation %q: %w", sc.Name, err)
	}

	opts := []SimulationOption{
		WithScheduler(scheduler),
		WithLogger(log.With().Str("scenario", sc.Name).Logger()),
	}
	if sc.TimeIncrement > 0 {
		opts = append(opts, WithTimeIncrement(sc.TimeIncrement))
	}
	if sc.MaxTicks > 0 {
		opts = append(opts, WithMaxTicks(sc.MaxTicks))
	}

	sim, err := NewSimulation(elevators, requests, opts...)
	if err != nil {
		return nil, fmt.Errorf("build simulation %q: %w", sc.Name, err)
	}
	return sim, nil
}

func buildElevators(sc *config.Scenario, log zerolog.Logger) ([]*domain.Elevator, error) {
	var elevators []*domain.Elevator

	for i, ec := range sc.Elevators {
		admissionName := ec.Admission
		if admissionName == "" {
			admissionName = sc.Admission
		}
		policy, ok := domain.AdmissionByName(admissionName)
		if !ok {
			return nil, fmt.Errorf("elevator #%d: unknown admission %q", i+1, admissionName)
		}

		minFloor, maxFloor := ec.FloorRange()
		position := float64(minFloor)
		if ec.Position != nil {
			position = *ec.Position
		}

		opts := []domain.ElevatorOption{
			domain.WithFloorRange(minFloor, maxFloor),
			domain.WithPosition(position),
			domain.WithAdmission(policy),
			domain.WithLogger(log),
		}
		if ec.Speed != 0 {
			opts = append(opts, domain.WithSpeed(ec.Speed))
		}
		if ec.Capacity != 0 {
			opts = append(opts, domain.WithCapacity(ec.Capacity))
		}
		if ec.DwellTime != nil {
			opts = append(opts, domain.WithDoorDwellTime(*ec.DwellTime))
		}

		for _, name := range ec.Names(i) {
			e, err := domain.NewElevator(name, opts...)
			if err != nil {
				return nil, err
			}
			if ec.Target != nil {
				if err := e.SetTarget(*ec.Target); err != nil {
					return nil, fmt.Errorf("elevator %q: %w", name, err)
				}
			}
			elevators = append(elevators, e)
		}
	}

	return elevators, nil
}

// buildRequests merges the listed riders with the generated workload and
// numbers them in arrival order.
func buildRequests(sc *config.Scenario, workloads WorkloadFactory) ([]*domain.RideRequest, error) {
	requests := make([]*domain.RideRequest, 0, len(sc.Requests))
	for i, rc := range sc.Requests {
		r, err := domain.NewRideRequest(rc.Origin, rc.Direction, rc.Arrival)
		if err != nil {
			return nil, fmt.Errorf("request #%d: %w", i+1, err)
		}
		requests = append(requests, r)
	}

	if sc.Workload != nil {
		if workloads == nil {
			return nil, errors.New("scenario has a workload but no generator is configured")
		}
		gen, err := workloads(*sc.Workload)
		if err != nil {
			return nil, fmt.Errorf("workload: %w", err)
		}
		generated, err := gen.Generate()
		if err != nil {
			return nil, fmt.Errorf("workload: %w", err)
		}
		requests = append(requests, generated...)
	}

	slices.SortStableFunc(requests, func(a, b *domain.RideRequest) int {
		return cmp.Compare(a.ArrivalTime, b.ArrivalTime)
	})
	for i, r := range requests {
		r.ID = i + 1
	}
	return requests, nil
}
