package domain

import (
	"math"
	"testing"
)

const epsilon = 1e-6

func approx(a, b float64) bool { return math.Abs(a-b) < epsilon }

func mustRide(t *testing.T, origin, direction int, arrival float64) *RideRequest {
	t.Helper()
	r, err := NewRideRequest(origin, direction, arrival)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return r
}

func mustElevator(t *testing.T, opts ...ElevatorOption) *Elevator {
	t.Helper()
	e, err := NewElevator("test", opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return e
}

func mustAdvance(t *testing.T, e *Elevator, dt float64, waiting WaitingRiders) {
	t.Helper()
	if err := e.Advance(dt, waiting); err != nil {
		t.Fatalf("advance(%v): unexpected error: %v", dt, err)
	}
}

func checkElevator(t *testing.T, e *Elevator, position float64, state State) {
	t.Helper()
	if !approx(e.Position(), position) {
		t.Fatalf("position = %v, want %v", e.Position(), position)
	}
	if e.State() != state {
		t.Fatalf("state = %s, want %s", e.State(), state)
	}
}
