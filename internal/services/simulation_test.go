package services

import (
	"context"
	"elevator-sim/internal/domain"
	"elevator-sim/internal/ports"
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-6

func approx(a, b float64) bool { return math.Abs(a-b) < epsilon }

func mustElevator(t *testing.T, name string, opts ...domain.ElevatorOption) *domain.Elevator {
	t.Helper()
	e, err := domain.NewElevator(name, opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return e
}

func mustRide(t *testing.T, origin, direction int, arrival float64) *domain.RideRequest {
	t.Helper()
	r, err := domain.NewRideRequest(origin, direction, arrival)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return r
}

func mustSimulation(t *testing.T, elevators []*domain.Elevator, requests []*domain.RideRequest, opts ...SimulationOption) *Simulation {
	t.Helper()
	sim, err := NewSimulation(elevators, requests, opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return sim
}

func mustSetTarget(t *testing.T, e *domain.Elevator, floor int) {
	t.Helper()
	if err := e.SetTarget(floor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSimulationRoundRobinSingleElevator(t *testing.T) {
	e := mustElevator(t, "test1", domain.WithPosition(1))
	requests := []*domain.RideRequest{
		mustRide(t, 2, 2, 1),
		mustRide(t, 2, -2, 75),
	}
	sim := mustSimulation(t, []*domain.Elevator{e}, requests, WithScheduler(RoundRobinScheduler{}))

	steps := []struct {
		dt       float64
		clock    float64
		position float64
		state    domain.State
		riding   int
	}{
		{9, 9, 1.9, domain.StateAscending, 0},
		{2, 11, 2, domain.StateLoading, 1},
		{15, 26, 2.1, domain.StateAscending, 1},
		{15, 41, 3.6, domain.StateAscending, 1},
		{5, 46, 4, domain.StateLoading, 0},
		{15, 61, 4, domain.StateIdle, 0},
		{13.5, 74.5, 4, domain.StateIdle, 0},
		// The second rider shows up on floor 2 at t=75.
		{0.5, 75, 4, domain.StateIdle, 0},
		{0.5, 75.5, 3.95, domain.StateDescending, 0},
		{0.5, 76, 3.9, domain.StateDescending, 0},
		{15, 91, 2.4, domain.StateDescending, 0},
		{5, 96, 2, domain.StateLoading, 1},
		{10, 106, 2, domain.StateLoading, 1},
		{10, 116, 1.4, domain.StateDescending, 1},
		{10, 126, 0.4, domain.StateDescending, 1},
		{10, 136, 0, domain.StateLoading, 0},
		{10, 146, 0, domain.StateIdle, 0},
	}

	for i, step := range steps {
		if err := sim.Advance(step.dt); err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if !approx(sim.CurrentTime(), step.clock) {
			t.Fatalf("step %d: clock = %v, want %v", i, sim.CurrentTime(), step.clock)
		}
		if !approx(e.Position(), step.position) {
			t.Fatalf("step %d (t=%v): position = %v, want %v", i, step.clock, e.Position(), step.position)
		}
		if e.State() != step.state {
			t.Fatalf("step %d (t=%v): state = %s, want %s", i, step.clock, e.State(), step.state)
		}
		if got := len(e.Riding()); got != step.riding {
			t.Fatalf("step %d (t=%v): riding = %d, want %d", i, step.clock, got, step.riding)
		}
		if i < len(steps)-1 && sim.RunState() != RunRunning {
			t.Fatalf("step %d: run state = %s, want RUNNING", i, sim.RunState())
		}
	}

	if sim.RunState() != RunFinished {
		t.Fatalf("run state = %s, want FINISHED", sim.RunState())
	}

	first, second := requests[0], requests[1]
	if !approx(first.PickupTime, 25) || !approx(first.DropoffTime, 45) {
		t.Fatalf("first rider pickup/dropoff = %v/%v, want 25/45", first.PickupTime, first.DropoffTime)
	}
	if !approx(second.PickupTime, 110) || !approx(second.DropoffTime, 130) {
		t.Fatalf("second rider pickup/dropoff = %v/%v, want 110/130", second.PickupTime, second.DropoffTime)
	}
}

func TestSimulationTwoDisparateElevators(t *testing.T) {
	low := mustElevator(t, "test1", domain.WithPosition(1))
	high := mustElevator(t, "test2", domain.WithPosition(5))
	mustSetTarget(t, low, 3)
	mustSetTarget(t, high, 3)

	sim := mustSimulation(t, []*domain.Elevator{low, high}, []*domain.RideRequest{mustRide(t, 2, 2, 1)})

	if err := sim.Advance(10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(low.Position(), 2) || !approx(high.Position(), 4) {
		t.Fatalf("positions = %v/%v, want 2/4", low.Position(), high.Position())
	}
	if low.State() != domain.StateLoading {
		t.Fatalf("low state = %s, want LOADING", low.State())
	}

	if err := sim.Advance(10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(low.Position(), 2) || !approx(high.Position(), 3) {
		t.Fatalf("positions = %v/%v, want 2/3", low.Position(), high.Position())
	}
	if high.State() != domain.StateIdle {
		t.Fatalf("high state = %s, want IDLE", high.State())
	}
}

func TestSimulationOverloadedElevator(t *testing.T) {
	first := mustElevator(t, "test1", domain.WithPosition(2), domain.WithCapacity(3))
	second := mustElevator(t, "test2", domain.WithPosition(1), domain.WithCapacity(3))
	mustSetTarget(t, first, 5)
	mustSetTarget(t, second, 5)

	var requests []*domain.RideRequest
	for i := 0; i < 5; i++ {
		requests = append(requests, mustRide(t, 3, 2, 0))
	}
	sim := mustSimulation(t, []*domain.Elevator{first, second}, requests)

	if err := sim.Advance(15); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(first.Position(), 3) || !approx(second.Position(), 2.5) {
		t.Fatalf("positions = %v/%v, want 3/2.5", first.Position(), second.Position())
	}
	if len(first.Riding()) != 3 || sim.Pending() != 2 {
		t.Fatalf("riding = %d, pending = %d, want 3 and 2", len(first.Riding()), sim.Pending())
	}
	if got := sim.Waiting(3); len(got) != 2 || got[0] != requests[3] || got[1] != requests[4] {
		t.Fatalf("floor 3 queue = %v, want the last two riders in order", got)
	}
}

func TestSimulationTerminates(t *testing.T) {
	e := mustElevator(t, "solo")
	sim := mustSimulation(t, []*domain.Elevator{e}, []*domain.RideRequest{mustRide(t, 4, -3, 2)},
		WithScheduler(NearestFloorScheduler{}))

	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sim.RunState() != RunFinished {
		t.Fatalf("run state = %s, want FINISHED", sim.RunState())
	}
	if sim.Pending() != 0 || !e.IsIdle() {
		t.Fatalf("pending = %d, elevator state = %s", sim.Pending(), e.State())
	}
	if got := e.Completed(); len(got) != 1 || got[0].Status != domain.RideCompleted {
		t.Fatalf("completed = %v, want one delivered rider", got)
	}

	if err := sim.Advance(1); !errors.Is(err, ErrSimulationFinished) {
		t.Fatalf("advance after finish: err = %v, want ErrSimulationFinished", err)
	}
	if sim.RunState() != RunFinished {
		t.Fatalf("run state = %s, want FINISHED", sim.RunState())
	}
}

func TestSimulationEmptyFinishesAfterOneTick(t *testing.T) {
	sim := mustSimulation(t, []*domain.Elevator{mustElevator(t, "a")}, nil)
	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sim.Ticks() != 1 || !approx(sim.CurrentTime(), 1) {
		t.Fatalf("ticks = %d, clock = %v, want 1 and 1", sim.Ticks(), sim.CurrentTime())
	}
}

func TestSimulationRunRejectsRestart(t *testing.T) {
	sim := mustSimulation(t, []*domain.Elevator{mustElevator(t, "a")}, []*domain.RideRequest{mustRide(t, 1, 1, 50)})
	if err := sim.Advance(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sim.Run(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("err = %v, want ErrAlreadyStarted", err)
	}
}

func TestSimulationRejectsNegativeDelta(t *testing.T) {
	sim := mustSimulation(t, []*domain.Elevator{mustElevator(t, "a")}, nil)
	if err := sim.Advance(-0.5); !errors.Is(err, domain.ErrNegativeTimeDelta) {
		t.Fatalf("err = %v, want ErrNegativeTimeDelta", err)
	}
	if sim.RunState() != RunNotStarted {
		t.Fatalf("run state = %s, want NOT_STARTED", sim.RunState())
	}
}

func TestNewSimulationRejectsDuplicateElevator(t *testing.T) {
	e := mustElevator(t, "a")
	if _, err := NewSimulation([]*domain.Elevator{e, e}, nil); !errors.Is(err, ErrDuplicateElevator) {
		t.Fatalf("err = %v, want ErrDuplicateElevator", err)
	}
}

func TestSimulationTickLimit(t *testing.T) {
	// Nobody is sent to floor 7, so the rider waits forever.
	sim := mustSimulation(t, []*domain.Elevator{mustElevator(t, "a")}, []*domain.RideRequest{mustRide(t, 7, 1, 0)},
		WithMaxTicks(50))

	if err := sim.Run(context.Background()); !errors.Is(err, ErrTickLimit) {
		t.Fatalf("err = %v, want ErrTickLimit", err)
	}
	if sim.Ticks() != 50 {
		t.Fatalf("ticks = %d, want 50", sim.Ticks())
	}
}

func TestSimulationRunHonoursContext(t *testing.T) {
	sim := mustSimulation(t, []*domain.Elevator{mustElevator(t, "a")}, []*domain.RideRequest{mustRide(t, 7, 1, 0)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sim.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

type scriptedScheduler func(idle []*domain.Elevator, calls []domain.FloorCall, assign ports.AssignFunc) error

func (s scriptedScheduler) Schedule(idle []*domain.Elevator, calls []domain.FloorCall, assign ports.AssignFunc) error {
	return s(idle, calls, assign)
}

func TestSimulationRejectsDoubleAssignment(t *testing.T) {
	twice := scriptedScheduler(func(idle []*domain.Elevator, calls []domain.FloorCall, assign ports.AssignFunc) error {
		if err := assign(idle[0], calls[0].Floor); err != nil {
			return err
		}
		return assign(idle[0], calls[0].Floor)
	})

	sim := mustSimulation(t, []*domain.Elevator{mustElevator(t, "a")}, []*domain.RideRequest{mustRide(t, 3, 1, 0)},
		WithScheduler(twice))
	if err := sim.Advance(1); !errors.Is(err, ErrDuplicateAssignment) {
		t.Fatalf("err = %v, want ErrDuplicateAssignment", err)
	}
}

func TestSimulationRejectsAssigningBusyElevator(t *testing.T) {
	busy := mustElevator(t, "busy")
	mustSetTarget(t, busy, 9)

	rogue := scriptedScheduler(func(_ []*domain.Elevator, calls []domain.FloorCall, assign ports.AssignFunc) error {
		return assign(busy, calls[0].Floor)
	})

	sim := mustSimulation(t, []*domain.Elevator{busy, mustElevator(t, "idle")}, []*domain.RideRequest{mustRide(t, 3, 1, 0)},
		WithScheduler(rogue))
	if err := sim.Advance(1); !errors.Is(err, ErrNotIdle) {
		t.Fatalf("err = %v, want ErrNotIdle", err)
	}
}

func TestSimulationLooksAheadOneTick(t *testing.T) {
	var offered [][]domain.FloorCall
	record := scriptedScheduler(func(_ []*domain.Elevator, calls []domain.FloorCall, _ ports.AssignFunc) error {
		offered = append(offered, calls)
		return nil
	})

	sim := mustSimulation(t, []*domain.Elevator{mustElevator(t, "a")}, []*domain.RideRequest{mustRide(t, 3, 1, 2)},
		WithScheduler(record))

	// Ticks cover [0,1) and [1,2); the rider arrives at t=2, not before the end of either.
	for i := 0; i < 3; i++ {
		if err := sim.Advance(1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	want := domain.FloorCall{Floor: 3, Destination: 4}
	if len(offered) != 1 || len(offered[0]) != 1 || offered[0][0] != want {
		t.Fatalf("offered calls = %v, want [[%v]] on the third tick only", offered, want)
	}
}

func TestSimulationMixedRangeBank(t *testing.T) {
	tests := []struct {
		name      string
		scheduler ports.Scheduler
	}{
		{"nearest", NearestFloorScheduler{}},
		{"closest", ClosestFloorScheduler{}},
		{"round-robin", RoundRobinScheduler{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// "low" sits on the rider's floor but cannot reach floor 8.
			low := mustElevator(t, "low", domain.WithFloorRange(0, 5), domain.WithPosition(3))
			full := mustElevator(t, "full", domain.WithFloorRange(0, 10), domain.WithPosition(0))
			rider := mustRide(t, 3, 5, 0)

			sim := mustSimulation(t, []*domain.Elevator{low, full}, []*domain.RideRequest{rider},
				WithScheduler(tt.scheduler), WithMaxTicks(1000))
			if err := sim.Run(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if rider.Status != domain.RideCompleted {
				t.Fatalf("rider status = %s, want COMPLETED", rider.Status)
			}
			if got := full.Completed(); len(got) != 1 || got[0] != rider {
				t.Fatalf("full delivered %v, want the rider", got)
			}
			if got := low.Completed(); len(got) != 0 {
				t.Fatalf("low delivered %v, want nobody", got)
			}
		})
	}
}

func TestNewSimulationRejectsUnreachableRequest(t *testing.T) {
	low := mustElevator(t, "low", domain.WithFloorRange(0, 5))
	high := mustElevator(t, "high", domain.WithFloorRange(5, 10), domain.WithPosition(5))

	_, err := NewSimulation([]*domain.Elevator{low, high}, []*domain.RideRequest{mustRide(t, 2, 6, 0)})
	if !errors.Is(err, domain.ErrFloorOutOfRange) {
		t.Fatalf("err = %v, want ErrFloorOutOfRange", err)
	}
}

func TestNewSimulationNumbersRequests(t *testing.T) {
	e := mustElevator(t, "a")

	t.Run("unnumbered", func(t *testing.T) {
		requests := []*domain.RideRequest{mustRide(t, 1, 1, 0), mustRide(t, 2, 1, 0), mustRide(t, 3, 1, 0)}
		mustSimulation(t, []*domain.Elevator{e}, requests)
		for i, r := range requests {
			if r.ID != i+1 {
				t.Fatalf("request %d: ID = %d, want %d", i, r.ID, i+1)
			}
		}
	})

	t.Run("mixed", func(t *testing.T) {
		given := mustRide(t, 1, 1, 0)
		given.ID = 2
		first, last := mustRide(t, 2, 1, 0), mustRide(t, 3, 1, 0)
		mustSimulation(t, []*domain.Elevator{e}, []*domain.RideRequest{first, given, last})

		if given.ID != 2 || first.ID != 3 || last.ID != 4 {
			t.Fatalf("IDs = %d, %d, %d, want 3, 2, 4", first.ID, given.ID, last.ID)
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		a, b := mustRide(t, 1, 1, 0), mustRide(t, 2, 1, 0)
		a.ID, b.ID = 7, 7
		if _, err := NewSimulation([]*domain.Elevator{e}, []*domain.RideRequest{a, b}); !errors.Is(err, ErrDuplicateRequest) {
			t.Fatalf("err = %v, want ErrDuplicateRequest", err)
		}
	})
}

func invariantWorkload(t *testing.T) ([]*domain.Elevator, []*domain.RideRequest) {
	t.Helper()
	elevators := []*domain.Elevator{
		mustElevator(t, "a", domain.WithCapacity(2)),
		mustElevator(t, "b", domain.WithPosition(10), domain.WithCapacity(3)),
		mustElevator(t, "c", domain.WithPosition(5), domain.WithCapacity(1), domain.WithSpeed(0.25)),
	}

	var requests []*domain.RideRequest
	for i := 0; i < 60; i++ {
		origin := (i * 7) % 11
		destination := (i*3 + 5) % 11
		if destination == origin {
			destination = (destination + 1) % 11
		}
		requests = append(requests, mustRide(t, origin, destination-origin, float64(i*13%400)))
	}
	return elevators, requests
}

func TestSimulationInvariants(t *testing.T) {
	tests := []struct {
		name      string
		scheduler ports.Scheduler
	}{
		{"nearest", NearestFloorScheduler{}},
		{"closest", ClosestFloorScheduler{}},
		{"round-robin", RoundRobinScheduler{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			elevators, requests := invariantWorkload(t)
			sim := mustSimulation(t, elevators, requests, WithScheduler(tt.scheduler))

			total := sim.RequestCount()
			if total != len(requests) {
				t.Fatalf("request count = %d, want %d", total, len(requests))
			}

			for sim.RunState() != RunFinished {
				if sim.Ticks() > 100000 {
					t.Fatal("simulation did not finish")
				}
				if err := sim.Advance(1); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got := sim.RequestCount(); got != total {
					t.Fatalf("t=%v: request count = %d, want %d", sim.CurrentTime(), got, total)
				}
				for _, e := range elevators {
					if e.Position() < float64(e.MinFloor()) || e.Position() > float64(e.MaxFloor()) {
						t.Fatalf("t=%v: elevator %s at %v outside its range", sim.CurrentTime(), e.Name(), e.Position())
					}
					if len(e.Riding()) > e.Capacity() {
						t.Fatalf("t=%v: elevator %s carries %d, capacity %d", sim.CurrentTime(), e.Name(), len(e.Riding()), e.Capacity())
					}
				}
			}

			for _, r := range requests {
				if r.Status != domain.RideCompleted {
					t.Fatalf("request %v not delivered: %s", r, r.Status)
				}
				if r.PickupTime < r.ArrivalTime || r.DropoffTime < r.PickupTime {
					t.Fatalf("request %v: pickup %v dropoff %v out of order", r, r.PickupTime, r.DropoffTime)
				}
			}
		})
	}
}
