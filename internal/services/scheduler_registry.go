package services

import (
	"elevator-sim/internal/ports"
	"fmt"
	"strings"
)

// SchedulerNames lists the names NewScheduler accepts.
var SchedulerNames = []string{"nearest", "closest", "round-robin", "none"}

// NewScheduler returns the scheduler registered under name. "none" yields a
// nil scheduler: elevators keep whatever targets they were built with.
func NewScheduler(name string) (ports.Scheduler, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "nearest":
		return NearestFloorScheduler{}, nil
	case "closest":
		return ClosestFloorScheduler{}, nil
	case "round-robin", "greedy":
		return RoundRobinScheduler{}, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("new scheduler %q: %w", name, ErrUnknownScheduler)
	}
}
