package ports

import "elevator-sim/internal/domain"

// AssignFunc commits an idle elevator to a floor. The simulation owns it and
// rejects a second assignment to the same elevator within one scheduling call.
type AssignFunc func(e *domain.Elevator, floor int) error

// Contract for matching idle elevators with floors that have riders about to
// need a pickup. Calls come oldest head rider first. Elevators or calls left
// unmatched are reconsidered on the next tick.
type Scheduler interface {
	// Call assign at most once per elevator in idle, and only with a call
	// the elevator CanServe.
	Schedule(idle []*domain.Elevator, calls []domain.FloorCall, assign AssignFunc) error
}
