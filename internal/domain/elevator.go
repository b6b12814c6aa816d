package domain

import (
	"fmt"
	"math"
	"slices"

	"github.com/rs/zerolog"
)

type State int

const (
	StateIdle State = iota
	StateAscending
	StateDescending
	StateLoading
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateAscending:
		return "ASCENDING"
	case StateDescending:
		return "DESCENDING"
	case StateLoading:
		return "LOADING"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Defaults for a newly built elevator.
const (
	DefaultMinFloor      = 0
	DefaultMaxFloor      = 10
	DefaultSpeed         = 0.1
	DefaultCapacity      = 15
	DefaultDoorDwellTime = 15.0
)

// A state may be entered this many times in a row without time passing
// before Advance gives up.
const maxZeroTimeSteps = 8

// Elevator is a single car moving continuously between integer floors.
//
// The car is driven only through SetTarget and Advance. Advance consumes
// simulated time state by state: a move that reaches a floor boundary splits
// the tick at the exact crossing time, opens the doors if anybody leaves or
// boards there, and spends the rest of the tick in whatever state follows.
type Elevator struct {
	name      string
	minFloor  int
	maxFloor  int
	position  float64
	target    int
	speed     float64
	capacity  int
	dwell     float64
	admission AdmissionPolicy

	state       State
	timeInState float64
	clock       float64

	riding    []*RideRequest
	completed []*RideRequest

	// Set when an idle car is targeted at the floor it stands on; the next
	// Advance opens the doors there without moving.
	stopPending bool

	log zerolog.Logger
}

type ElevatorOption func(*Elevator)

func WithFloorRange(minFloor, maxFloor int) ElevatorOption {
	return func(e *Elevator) {
		e.minFloor = minFloor
		e.maxFloor = maxFloor
	}
}

func WithPosition(position float64) ElevatorOption {
	return func(e *Elevator) { e.position = position }
}

func WithSpeed(speed float64) ElevatorOption {
	return func(e *Elevator) { e.speed = speed }
}

func WithCapacity(capacity int) ElevatorOption {
	return func(e *Elevator) { e.capacity = capacity }
}

func WithDoorDwellTime(dwell float64) ElevatorOption {
	return func(e *Elevator) { e.dwell = dwell }
}

func WithAdmission(policy AdmissionPolicy) ElevatorOption {
	return func(e *Elevator) { e.admission = policy }
}

func WithLogger(log zerolog.Logger) ElevatorOption {
	return func(e *Elevator) { e.log = log }
}

// WithRiders places riders in the car before the run starts. Riders that were
// still waiting are treated as picked up at their arrival time.
func WithRiders(riders ...*RideRequest) ElevatorOption {
	return func(e *Elevator) { e.riding = append(e.riding, riders...) }
}

func NewElevator(name string, opts ...ElevatorOption) (*Elevator, error) {
	e := &Elevator{
		name:      name,
		minFloor:  DefaultMinFloor,
		maxFloor:  DefaultMaxFloor,
		speed:     DefaultSpeed,
		capacity:  DefaultCapacity,
		dwell:     DefaultDoorDwellTime,
		admission: OpportunisticAdmission,
		state:     StateIdle,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.minFloor > e.maxFloor {
		return nil, fmt.Errorf("new elevator %q: range [%d, %d]: %w", name, e.minFloor, e.maxFloor, ErrInvalidFloorRange)
	}
	if e.speed <= 0 || math.IsNaN(e.speed) || math.IsInf(e.speed, 0) {
		return nil, fmt.Errorf("new elevator %q: speed=%f: %w", name, e.speed, ErrInvalidSpeed)
	}
	if e.capacity <= 0 {
		return nil, fmt.Errorf("new elevator %q: capacity=%d: %w", name, e.capacity, ErrInvalidCapacity)
	}
	if e.dwell < 0 || math.IsNaN(e.dwell) {
		return nil, fmt.Errorf("new elevator %q: dwell=%f: %w", name, e.dwell, ErrInvalidDwellTime)
	}
	if e.position < float64(e.minFloor) || e.position > float64(e.maxFloor) || math.IsNaN(e.position) {
		return nil, fmt.Errorf("new elevator %q: position=%f: %w", name, e.position, ErrFloorOutOfRange)
	}
	if len(e.riding) > e.capacity {
		return nil, fmt.Errorf("new elevator %q: %d riders aboard: %w", name, len(e.riding), ErrInvalidCapacity)
	}
	if e.admission == nil {
		e.admission = OpportunisticAdmission
	}

	e.target = int(math.Round(e.position))
	for _, r := range e.riding {
		if err := e.checkFloor(r.DestinationFloor); err != nil {
			return nil, fmt.Errorf("new elevator %q: rider %d: %w", name, r.ID, err)
		}
		if r.Status == RideWaiting {
			if err := r.MarkPickedUp(r.ArrivalTime); err != nil {
				return nil, fmt.Errorf("new elevator %q: %w", name, err)
			}
		}
	}

	return e, nil
}

func (e *Elevator) Name() string { return e.name }
func (e *Elevator) MinFloor() int { return e.minFloor }
func (e *Elevator) MaxFloor() int { return e.maxFloor }
func (e *Elevator) Position() float64 { return e.position }
func (e *Elevator) Target() int { return e.target }
func (e *Elevator) Speed() float64 { return e.speed }
func (e *Elevator) Capacity() int { return e.capacity }
func (e *Elevator) DoorDwellTime() float64 { return e.dwell }
func (e *Elevator) State() State { return e.state }
func (e *Elevator) TimeInState() float64 { return e.timeInState }
func (e *Elevator) Clock() float64 { return e.clock }
func (e *Elevator) IsIdle() bool { return e.state == StateIdle }

// Riding returns the riders currently aboard, in boarding order.
func (e *Elevator) Riding() []*RideRequest { return slices.Clone(e.riding) }

// Completed returns the riders this car has delivered, in drop-off order.
func (e *Elevator) Completed() []*RideRequest { return slices.Clone(e.completed) }

func (e *Elevator) serves(floor int) bool {
	return floor >= e.minFloor && floor <= e.maxFloor
}

// CanServe reports whether the car can both reach the call's floor and carry
// its head rider to the destination.
func (e *Elevator) CanServe(call FloorCall) bool {
	return e.serves(call.Floor) && e.serves(call.Destination)
}

func (e *Elevator) checkFloor(floor int) error {
	if !e.serves(floor) {
		return fmt.Errorf("elevator %q: floor %d outside [%d, %d]: %w", e.name, floor, e.minFloor, e.maxFloor, ErrFloorOutOfRange)
	}
	return nil
}

// SetTarget commits the car to travel to floor. An idle car picks its
// direction from the target; a moving car only ever extends its target
// further in the direction it is already travelling.
func (e *Elevator) SetTarget(floor int) error {
	if err := e.checkFloor(floor); err != nil {
		return fmt.Errorf("set target: %w", err)
	}

	switch e.state {
	case StateIdle:
		e.target = floor
		switch f := float64(floor); {
		case f > e.position:
			return e.setState(StateAscending)
		case f < e.position:
			return e.setState(StateDescending)
		default:
			e.stopPending = true
		}
	case StateAscending:
		e.target = max(e.target, floor)
	case StateDescending:
		e.target = min(e.target, floor)
	case StateLoading:
		// The stop in progress decides where the car goes next.
	}
	return nil
}

func (e *Elevator) setState(s State) error {
	if s == e.state {
		return fmt.Errorf("elevator %q: %s -> %s: %w", e.name, e.state, s, ErrSameState)
	}

	e.log.Debug().
		Str("elevator", e.name).
		Stringer("from", e.state).
		Stringer("to", s).
		Float64("time_in_state", e.timeInState).
		Float64("clock", e.clock).
		Float64("position", e.position).
		Msg("state change")

	e.state = s
	e.timeInState = 0
	return nil
}

func (e *Elevator) spend(dt float64) {
	e.timeInState += dt
	e.clock += dt
}

// Advance moves the car forward by dt of simulated time. waiting is the pending
// index consulted when the doors open; it may be nil for a car running alone.
func (e *Elevator) Advance(dt float64, waiting WaitingRiders) error {
	if dt < 0 || math.IsNaN(dt) {
		return fmt.Errorf("advance elevator %q: dt=%f: %w", e.name, dt, ErrNegativeTimeDelta)
	}

	err := e.drain(dt, func(remaining float64) (float64, error) {
		return e.step(remaining, waiting)
	})
	if err != nil {
		return fmt.Errorf("advance elevator %q: %w", e.name, err)
	}
	return nil
}

// drain hands dt to step until it is used up. step returns the time it left
// over; returning all of it more than maxZeroTimeSteps times in a row fails.
func (e *Elevator) drain(dt float64, step func(remaining float64) (float64, error)) error {
	remaining := dt
	zeroSteps := 0
	for remaining > 0 {
		leftover, err := step(remaining)
		if err != nil {
			return err
		}

		if leftover < remaining {
			zeroSteps = 0
		} else if zeroSteps++; zeroSteps > maxZeroTimeSteps {
			return fmt.Errorf("state %s at clock=%f: %w", e.state, e.clock, ErrRunawayTransition)
		}
		remaining = leftover
	}
	return nil
}

// step spends as much of dt as the current state allows and returns the time
// left over for the state that follows.
func (e *Elevator) step(dt float64, waiting WaitingRiders) (float64, error) {
	switch e.state {
	case StateAscending:
		return e.move(dt, 1, waiting)
	case StateDescending:
		return e.move(dt, -1, waiting)
	case StateLoading:
		return e.load(dt)
	case StateIdle:
		if e.stopPending {
			e.stopPending = false
			return e.openDoors(int(math.Round(e.position)), dt, waiting)
		}
		e.spend(dt)
		return 0, nil
	default:
		return 0, fmt.Errorf("elevator %q: unhandled state %s", e.name, e.state)
	}
}

func (e *Elevator) move(dt float64, dir float64, waiting WaitingRiders) (float64, error) {
	var (
		floor   int
		crossed bool
	)
	if dir > 0 {
		floor, crossed = CrossedFloorAscending(e.position, e.speed, dt)
	} else {
		floor, crossed = CrossedFloorDescending(e.position, e.speed, dt)
	}

	end := e.position + dir*e.speed*dt
	if !crossed {
		e.spend(dt)
		e.position = end
		return 0, nil
	}

	elapsed := CrossingTime(e.position, end, floor, dt)
	e.spend(elapsed)
	e.position = float64(floor)

	return e.openDoors(floor, dt-elapsed, waiting)
}

func (e *Elevator) load(dt float64) (float64, error) {
	need := max(0, e.dwell-e.timeInState)
	if dt < need {
		e.spend(dt)
		return 0, nil
	}

	e.spend(need)
	return dt - need, e.settle()
}

// openDoors handles the car reaching floor at the current clock. Riders bound
// for floor leave, waiting riders board in queue order while there is room, and
// the car either stops to load or carries on with the leftover time.
func (e *Elevator) openDoors(floor int, leftover float64, waiting WaitingRiders) (float64, error) {
	crossedAt := e.clock

	var departing []*RideRequest
	for _, r := range e.riding {
		if r.DestinationFloor == floor {
			departing = append(departing, r)
		}
	}

	stop := StopContext{
		Floor:     floor,
		CrossedAt: crossedAt,
		Remaining: len(e.riding) - len(departing),
		Capacity:  e.capacity,
	}

	var boarded []*RideRequest
	if waiting != nil {
		for {
			r, ok := waiting.Head(floor)
			if !ok || r.ArrivalTime >= crossedAt {
				break
			}
			if stop.Remaining+stop.Boarded >= e.capacity {
				break
			}
			if !e.admission(r, stop) {
				break
			}
			// A rider this car cannot deliver waits for one that can.
			if !e.serves(r.DestinationFloor) {
				break
			}

			waiting.PopHead(floor)
			boarded = append(boarded, r)
			stop.Boarded++
		}
	}

	if len(departing) == 0 && len(boarded) == 0 {
		if e.beyond(floor) {
			return leftover, nil
		}
		return leftover, e.settle()
	}

	e.riding = slices.DeleteFunc(e.riding, func(r *RideRequest) bool {
		return r.DestinationFloor == floor
	})
	for _, r := range departing {
		if err := r.MarkDroppedOff(crossedAt); err != nil {
			return 0, err
		}
		e.completed = append(e.completed, r)
	}

	for _, r := range boarded {
		if err := r.MarkPickedUp(crossedAt + e.dwell); err != nil {
			return 0, err
		}
		e.riding = append(e.riding, r)
		e.extendTarget(floor, r.DestinationFloor)
	}

	e.log.Debug().
		Str("elevator", e.name).
		Int("floor", floor).
		Float64("at", crossedAt).
		Int("departed", len(departing)).
		Int("boarded", len(boarded)).
		Int("aboard", len(e.riding)).
		Msg("doors open")

	return leftover, e.setState(StateLoading)
}

// beyond reports whether the target lies past floor in the direction of travel.
func (e *Elevator) beyond(floor int) bool {
	switch e.state {
	case StateAscending:
		return e.target > floor
	case StateDescending:
		return e.target < floor
	default:
		return false
	}
}

// extendTarget widens the commitment to cover a boarding rider's destination
// without ever pulling the target back. A car that was standing still takes
// its direction from the first rider.
func (e *Elevator) extendTarget(floor, destination int) {
	switch {
	case e.state == StateAscending:
		e.target = max(e.target, destination)
	case e.state == StateDescending:
		e.target = min(e.target, destination)
	case e.target == floor:
		e.target = destination
	case e.target > floor:
		e.target = max(e.target, destination)
	default:
		e.target = min(e.target, destination)
	}
}

// settle picks the state that follows a finished stop or an arrival at the
// target. Riders still aboard keep the car moving towards the nearest of
// their destinations.
func (e *Elevator) settle() error {
	if float64(e.target) == e.position && len(e.riding) > 0 {
		e.target = e.nearestDestination()
	}

	next := StateIdle
	switch t := float64(e.target); {
	case t > e.position:
		next = StateAscending
	case t < e.position:
		next = StateDescending
	}

	if next == e.state {
		return nil
	}
	return e.setState(next)
}

func (e *Elevator) nearestDestination() int {
	best := e.riding[0].DestinationFloor
	bestDist := math.Abs(float64(best) - e.position)
	for _, r := range e.riding[1:] {
		d := math.Abs(float64(r.DestinationFloor) - e.position)
		if d < bestDist || (d == bestDist && r.DestinationFloor < best) {
			best, bestDist = r.DestinationFloor, d
		}
	}
	return best
}
