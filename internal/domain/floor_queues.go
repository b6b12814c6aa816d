package domain

import (
	"cmp"
	"slices"
)

// WaitingRiders is the view of the pending index an elevator needs while its
// doors are open: look at and take the rider at the front of a floor's queue.
type WaitingRiders interface {
	Head(floor int) (*RideRequest, bool)
	PopHead(floor int) (*RideRequest, bool)
}

// FloorCall is a floor with somebody waiting, and where the rider at the front
// of that floor's queue is going.
type FloorCall struct {
	Floor       int
	Destination int
}

// FloorQueues indexes waiting riders by origin floor. Each queue is ordered
// by arrival time; ties keep the order the requests were supplied in.
type FloorQueues struct {
	queues map[int][]*RideRequest
}

func NewFloorQueues(requests []*RideRequest) *FloorQueues {
	sorted := slices.Clone(requests)
	slices.SortStableFunc(sorted, func(a, b *RideRequest) int {
		return cmp.Compare(a.ArrivalTime, b.ArrivalTime)
	})

	q := &FloorQueues{queues: make(map[int][]*RideRequest)}
	for _, r := range sorted {
		q.queues[r.OriginFloor] = append(q.queues[r.OriginFloor], r)
	}
	return q
}

func (q *FloorQueues) Head(floor int) (*RideRequest, bool) {
	queue := q.queues[floor]
	if len(queue) == 0 {
		return nil, false
	}
	return queue[0], true
}

func (q *FloorQueues) PopHead(floor int) (*RideRequest, bool) {
	queue := q.queues[floor]
	if len(queue) == 0 {
		return nil, false
	}

	head := queue[0]
	queue[0] = nil
	if len(queue) == 1 {
		delete(q.queues, floor)
	} else {
		q.queues[floor] = queue[1:]
	}
	return head, true
}

func (q *FloorQueues) Len(floor int) int { return len(q.queues[floor]) }

// Total counts every rider still waiting on any floor.
func (q *FloorQueues) Total() int {
	n := 0
	for _, queue := range q.queues {
		n += len(queue)
	}
	return n
}

func (q *FloorQueues) Empty() bool { return q.Total() == 0 }

// Floors returns the floors that have at least one waiting rider, ascending.
func (q *FloorQueues) Floors() []int {
	floors := make([]int, 0, len(q.queues))
	for f, queue := range q.queues {
		if len(queue) > 0 {
			floors = append(floors, f)
		}
	}
	slices.Sort(floors)
	return floors
}

// Waiting returns a copy of the queue for floor, front first.
func (q *FloorQueues) Waiting(floor int) []*RideRequest {
	return slices.Clone(q.queues[floor])
}

// ActiveFloors returns the floors whose head rider arrives strictly before the
// given time, ordered by that rider's arrival (then by floor).
func (q *FloorQueues) ActiveFloors(before float64) []int {
	floors := make([]int, 0, len(q.queues))
	for f, queue := range q.queues {
		if len(queue) > 0 && queue[0].ArrivalTime < before {
			floors = append(floors, f)
		}
	}

	slices.SortFunc(floors, func(a, b int) int {
		if c := cmp.Compare(q.queues[a][0].ArrivalTime, q.queues[b][0].ArrivalTime); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return floors
}

// ActiveCalls is ActiveFloors with each floor's head rider destination.
func (q *FloorQueues) ActiveCalls(before float64) []FloorCall {
	floors := q.ActiveFloors(before)
	calls := make([]FloorCall, len(floors))
	for i, f := range floors {
		calls[i] = FloorCall{Floor: f, Destination: q.queues[f][0].DestinationFloor}
	}
	return calls
}
