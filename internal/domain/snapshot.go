package domain

import (
	"fmt"

	"github.com/tiendc/go-deepcopy"
)

// ElevatorSnapshot is a point-in-time copy of an elevator. The rider records
// are copies too, so holding a snapshot never observes later mutation.
type ElevatorSnapshot struct {
	Name        string
	MinFloor    int
	MaxFloor    int
	Position    float64
	Target      int
	State       State
	TimeInState float64
	Clock       float64
	Capacity    int
	Riding      []*RideRequest
	Completed   []*RideRequest
}

func (e *Elevator) Snapshot() (ElevatorSnapshot, error) {
	live := ElevatorSnapshot{
		Name:        e.name,
		MinFloor:    e.minFloor,
		MaxFloor:    e.maxFloor,
		Position:    e.position,
		Target:      e.target,
		State:       e.state,
		TimeInState: e.timeInState,
		Clock:       e.clock,
		Capacity:    e.capacity,
		Riding:      e.riding,
		Completed:   e.completed,
	}

	var snap ElevatorSnapshot
	if err := deepcopy.Copy(&snap, &live); err != nil {
		return ElevatorSnapshot{}, fmt.Errorf("snapshot elevator %q: %w", e.name, err)
	}
	return snap, nil
}
