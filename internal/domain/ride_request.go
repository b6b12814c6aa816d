package domain

import "fmt"

type RideStatus int

const (
	RideWaiting RideStatus = iota
	RideRiding
	RideCompleted
)

func (s RideStatus) String() string {
	switch s {
	case RideWaiting:
		return "WAITING"
	case RideRiding:
		return "RIDING"
	case RideCompleted:
		return "COMPLETED"
	default:
		return fmt.Sprintf("RideStatus(%d)", int(s))
	}
}

// RideRequest is one rider travelling from OriginFloor to DestinationFloor.
// Origin, direction and arrival are fixed at creation; the pickup and drop-off
// timestamps are filled in by the elevator that serves the rider.
type RideRequest struct {
	ID               int
	OriginFloor      int
	Direction        int
	DestinationFloor int
	ArrivalTime      float64
	PickupTime       float64
	DropoffTime      float64
	Status           RideStatus
}

func NewRideRequest(origin, direction int, arrival float64) (*RideRequest, error) {
	if direction == 0 {
		return nil, fmt.Errorf("new ride request: origin=%d: %w", origin, ErrInvalidDirection)
	}
	if arrival < 0 {
		return nil, fmt.Errorf("new ride request: arrival=%f: %w", arrival, ErrInvalidTimestamp)
	}

	return &RideRequest{
		OriginFloor:      origin,
		Direction:        direction,
		DestinationFloor: origin + direction,
		ArrivalTime:      arrival,
	}, nil
}

// MarkPickedUp records the moment the rider is aboard and the doors have closed.
func (r *RideRequest) MarkPickedUp(t float64) error {
	if r.Status != RideWaiting {
		return fmt.Errorf("pick up ride %d: status is %s: %w", r.ID, r.Status, ErrInvalidTimestamp)
	}
	if t < r.ArrivalTime {
		return fmt.Errorf("pick up ride %d: pickup %f before arrival %f: %w", r.ID, t, r.ArrivalTime, ErrInvalidTimestamp)
	}
	r.PickupTime = t
	r.Status = RideRiding
	return nil
}

func (r *RideRequest) MarkDroppedOff(t float64) error {
	if r.Status != RideRiding {
		return fmt.Errorf("drop off ride %d: status is %s: %w", r.ID, r.Status, ErrInvalidTimestamp)
	}
	if t < r.PickupTime {
		return fmt.Errorf("drop off ride %d: dropoff %f before pickup %f: %w", r.ID, t, r.PickupTime, ErrInvalidTimestamp)
	}
	r.DropoffTime = t
	r.Status = RideCompleted
	return nil
}

// WaitTime is the time between arriving at the origin floor and being picked up.
func (r *RideRequest) WaitTime() float64 {
	if r.Status == RideWaiting {
		return 0
	}
	return r.PickupTime - r.ArrivalTime
}

func (r *RideRequest) RideTime() float64 {
	if r.Status != RideCompleted {
		return 0
	}
	return r.DropoffTime - r.PickupTime
}

// TripTime is arrival to drop-off.
func (r *RideRequest) TripTime() float64 {
	if r.Status != RideCompleted {
		return 0
	}
	return r.DropoffTime - r.ArrivalTime
}

func (r *RideRequest) String() string {
	return fmt.Sprintf("RideRequest(id=%d origin=%d direction=%d destination=%d arrival=%f)",
		r.ID, r.OriginFloor, r.Direction, r.DestinationFloor, r.ArrivalTime)
}
