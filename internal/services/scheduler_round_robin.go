package services

import (
	"elevator-sim/internal/domain"
	"elevator-sim/internal/ports"
	"fmt"
	"slices"
)

// RoundRobinScheduler hands the i-th idle elevator the i-th call, in the
// order the simulation lists them (oldest waiting rider first). A call the
// elevator cannot serve is skipped for that elevator and offered to the next
// one.
type RoundRobinScheduler struct{}

func (RoundRobinScheduler) Schedule(idle []*domain.Elevator, calls []domain.FloorCall, assign ports.AssignFunc) error {
	remaining := slices.Clone(calls)
	for _, e := range idle {
		idx := slices.IndexFunc(remaining, e.CanServe)
		if idx < 0 {
			continue
		}

		if err := assign(e, remaining[idx].Floor); err != nil {
			return fmt.Errorf("round robin: %w", err)
		}
		remaining = slices.Delete(remaining, idx, idx+1)
		if len(remaining) == 0 {
			break
		}
	}
	return nil
}
