package ports

import "elevator-sim/internal/domain"

// Contract for producing the rider workload of a run. Requests come back
// sorted ascending by arrival time.
type WorkloadGenerator interface {
	Generate() ([]*domain.RideRequest, error)
}
