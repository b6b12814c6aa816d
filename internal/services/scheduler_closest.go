package services

import (
	"elevator-sim/internal/domain"
	"elevator-sim/internal/ports"
	"fmt"
	"math"
	"slices"
)

// ClosestFloorScheduler walks the idle elevators in order and sends each one
// to the closest call it can serve that nobody has claimed yet. Unlike NearestFloorScheduler
// the first elevator always chooses first, even when a later one is closer.
type ClosestFloorScheduler struct{}

func (ClosestFloorScheduler) Schedule(idle []*domain.Elevator, calls []domain.FloorCall, assign ports.AssignFunc) error {
	remaining := slices.Clone(calls)
	for _, e := range idle {
		if len(remaining) == 0 {
			break
		}

		best := -1
		minDistance := math.Inf(1)
		for j, c := range remaining {
			if !e.CanServe(c) {
				continue
			}
			// Ties go to the call listed first.
			if d := math.Abs(e.Position() - float64(c.Floor)); d < minDistance {
				minDistance = d
				best = j
			}
		}
		if best < 0 {
			continue
		}

		if err := assign(e, remaining[best].Floor); err != nil {
			return fmt.Errorf("closest floor: %w", err)
		}
		remaining = slices.Delete(remaining, best, best+1)
	}
	return nil
}
