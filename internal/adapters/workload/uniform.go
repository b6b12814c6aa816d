package workload

import (
	"cmp"
	"elevator-sim/internal/config"
	"elevator-sim/internal/domain"
	"elevator-sim/internal/ports"
	"errors"
	"fmt"
	"math/rand"
	"slices"
)

// Uniform generates riders whose origin and destination are drawn uniformly
// from [MinFloor, MaxFloor] (never equal) and whose arrival is uniform over
// [0, Duration). The same seed always yields the same workload.
type Uniform struct {
	Riders   int
	Duration float64
	MinFloor int
	MaxFloor int
	Seed     int64
}

var _ ports.WorkloadGenerator = (*Uniform)(nil)

func NewUniform(cfg config.Workload) *Uniform {
	return &Uniform{
		Riders:   cfg.Riders,
		Duration: cfg.Duration,
		MinFloor: cfg.MinFloor,
		MaxFloor: cfg.MaxFloor,
		Seed:     cfg.Seed,
	}
}

// FromConfig adapts NewUniform to the generator factory the services expect.
func FromConfig(cfg config.Workload) (ports.WorkloadGenerator, error) {
	return NewUniform(cfg), nil
}

// Generate returns the workload sorted ascending by arrival.
func (u *Uniform) Generate() ([]*domain.RideRequest, error) {
	if u.MinFloor >= u.MaxFloor {
		return nil, fmt.Errorf("generate workload: floors [%d, %d]: %w", u.MinFloor, u.MaxFloor, domain.ErrInvalidFloorRange)
	}
	if u.Riders < 0 || u.Duration <= 0 {
		return nil, errors.New("generate workload: riders must be >= 0 and duration > 0")
	}

	rng := rand.New(rand.NewSource(u.Seed))
	floors := u.MaxFloor - u.MinFloor + 1

	requests := make([]*domain.RideRequest, 0, u.Riders)
	for i := 0; i < u.Riders; i++ {
		origin := u.MinFloor + rng.Intn(floors)
		destination := u.MinFloor + rng.Intn(floors)
		for destination == origin {
			destination = u.MinFloor + rng.Intn(floors)
		}
		arrival := rng.Float64() * u.Duration

		r, err := domain.NewRideRequest(origin, destination-origin, arrival)
		if err != nil {
			return nil, fmt.Errorf("generate workload: rider #%d: %w", i+1, err)
		}
		requests = append(requests, r)
	}

	slices.SortStableFunc(requests, func(a, b *domain.RideRequest) int {
		return cmp.Compare(a.ArrivalTime, b.ArrivalTime)
	})
	for i, r := range requests {
		r.ID = i + 1
	}
	return requests, nil
}
