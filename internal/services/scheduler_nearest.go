package services

import (
	"elevator-sim/internal/domain"
	"elevator-sim/internal/ports"
	"fmt"
	"math"
)

// NearestFloorScheduler matches idle elevators to active floors using a greedy
// nearest-pair algorithm.
//
// Each step picks the (elevator, floor) pair with the smallest distance over
// everything still unmatched, assigns it, and removes both. It does not
// attempt a globally optimal matching. An elevator is never sent to a call it
// cannot serve.
type NearestFloorScheduler struct{}

func (NearestFloorScheduler) Schedule(idle []*domain.Elevator, calls []domain.FloorCall, assign ports.AssignFunc) error {
	remainingElevators := make(map[int]struct{}, len(idle))
	for i := range idle {
		remainingElevators[i] = struct{}{}
	}

	remainingFloors := make(map[int]domain.FloorCall, len(calls))
	for _, c := range calls {
		remainingFloors[c.Floor] = c
	}

	for len(remainingElevators) > 0 && len(remainingFloors) > 0 {
		bestElevator, bestFloor := -1, 0
		minDistance := math.Inf(1)

		// Select the closest pair (greedy step).
		for i := range idle {
			if _, ok := remainingElevators[i]; !ok {
				continue
			}
			e := idle[i]
			for f, c := range remainingFloors {
				if !e.CanServe(c) {
					continue
				}
				d := math.Abs(e.Position() - float64(f))
				// Tie-breaker keeps the matching deterministic: lower elevator index, then lower floor.
				if d < minDistance || (d == minDistance && (i < bestElevator || (i == bestElevator && f < bestFloor))) {
					minDistance = d
					bestElevator, bestFloor = i, f
				}
			}
		}

		if bestElevator < 0 {
			// Nobody left can reach any remaining floor.
			return nil
		}

		if err := assign(idle[bestElevator], bestFloor); err != nil {
			return fmt.Errorf("nearest floor: %w", err)
		}
		delete(remainingElevators, bestElevator)
		delete(remainingFloors, bestFloor)
	}

	return nil
}
