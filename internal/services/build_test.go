package services

import (
	"elevator-sim/internal/config"
	"elevator-sim/internal/domain"
	"elevator-sim/internal/ports"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type fixedWorkload []*domain.RideRequest

func (f fixedWorkload) Generate() ([]*domain.RideRequest, error) { return f, nil }

func TestBuildSimulation(t *testing.T) {
	sc := &config.Scenario{
		Name:          "lobby",
		Scheduler:     "round-robin",
		TimeIncrement: 0.5,
		Elevators: []config.Elevator{
			{Name: "car", Count: 2, Capacity: 4},
			{Name: "express", MinFloor: ptr(5), MaxFloor: ptr(20), Target: ptr(12), Admission: "empty-car"},
		},
		Requests: []config.Request{
			{Origin: 3, Direction: 2, Arrival: 40},
			{Origin: 7, Direction: -1, Arrival: 10},
		},
		Workload: &config.Workload{Riders: 1, Duration: 100, MinFloor: 0, MaxFloor: 10},
	}

	generated := mustRide(t, 1, 4, 25)
	factory := func(cfg config.Workload) (ports.WorkloadGenerator, error) {
		if cfg.Riders != 1 {
			t.Fatalf("factory got riders = %d, want 1", cfg.Riders)
		}
		return fixedWorkload{generated}, nil
	}

	sim, err := BuildSimulation(sc, factory, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	elevators := sim.Elevators()
	if len(elevators) != 3 {
		t.Fatalf("elevators = %d, want 3", len(elevators))
	}
	for i, want := range []string{"car-1", "car-2", "express"} {
		if elevators[i].Name() != want {
			t.Fatalf("elevators[%d] = %q, want %q", i, elevators[i].Name(), want)
		}
	}
	if elevators[0].Capacity() != 4 {
		t.Fatalf("capacity = %d, want 4", elevators[0].Capacity())
	}

	express := elevators[2]
	if express.Position() != 5 || express.Target() != 12 || express.State() != domain.StateAscending {
		t.Fatalf("express at %v target %d state %s, want 5 / 12 / ASCENDING", express.Position(), express.Target(), express.State())
	}

	if sim.Pending() != 3 {
		t.Fatalf("pending = %d, want 3", sim.Pending())
	}
	if generated.ID != 2 {
		t.Fatalf("generated rider ID = %d, want 2 (second by arrival)", generated.ID)
	}
	if got := sim.Waiting(7); len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("floor 7 queue = %v, want rider 1", got)
	}
}

func TestBuildSimulationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(sc *config.Scenario)
		want   error
	}{
		{
			name:   "unknown scheduler",
			mutate: func(sc *config.Scenario) { sc.Scheduler = "elevator-music" },
			want:   ErrUnknownScheduler,
		},
		{
			name:   "no elevators",
			mutate: func(sc *config.Scenario) { sc.Elevators = nil },
			want:   config.ErrInvalidScenario,
		},
		{
			name:   "negative speed is rejected by the elevator",
			mutate: func(sc *config.Scenario) { sc.Elevators[0].Speed = -1 },
			want:   domain.ErrInvalidSpeed,
		},
		{
			name:   "target outside range",
			mutate: func(sc *config.Scenario) { sc.Elevators[0].Target = ptr(11) },
			want:   domain.ErrFloorOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := singleRiderScenario("broken")
			tt.mutate(sc)
			if _, err := BuildSimulation(sc, nil, zerolog.Nop()); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuildSimulationNeedsWorkloadFactory(t *testing.T) {
	sc := singleRiderScenario("generated")
	sc.Workload = &config.Workload{Riders: 5, Duration: 10, MinFloor: 0, MaxFloor: 3}

	if _, err := BuildSimulation(sc, nil, zerolog.Nop()); err == nil {
		t.Fatal("expected an error without a workload factory")
	}
}
