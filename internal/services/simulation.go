package services

import (
	"context"
	"elevator-sim/internal/domain"
	"elevator-sim/internal/ports"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/rs/zerolog"
)

type RunState int

const (
	RunNotStarted RunState = iota
	RunRunning
	RunFinished
)

func (s RunState) String() string {
	switch s {
	case RunNotStarted:
		return "NOT_STARTED"
	case RunRunning:
		return "RUNNING"
	case RunFinished:
		return "FINISHED"
	default:
		return fmt.Sprintf("RunState(%d)", int(s))
	}
}

const (
	DefaultTimeIncrement = 1.0
	DefaultMaxTicks      = 10_000_000
)

// Simulation drives a bank of elevators through simulated time.
//
// Every request is indexed by origin floor when the simulation is built. Each
// tick consults the scheduler (if any) with the idle elevators and the floors
// whose head rider arrives within the tick, then advances every elevator in
// registration order. The run finishes once nobody is waiting and every
// elevator is idle.
type Simulation struct {
	elevators []*domain.Elevator
	pending   *domain.FloorQueues
	requests  int

	scheduler ports.Scheduler
	increment float64
	maxTicks  int

	clock float64
	ticks int
	state RunState

	log zerolog.Logger
}

type SimulationOption func(*Simulation)

// WithScheduler sets the strategy consulted at the start of every tick. A nil
// scheduler leaves elevators to the targets they were given up front.
func WithScheduler(s ports.Scheduler) SimulationOption {
	return func(sim *Simulation) { sim.scheduler = s }
}

// WithTimeIncrement sets the tick length used by Run.
func WithTimeIncrement(dt float64) SimulationOption {
	return func(sim *Simulation) { sim.increment = dt }
}

// WithMaxTicks bounds Run for configurations that can never finish, such as a
// rider waiting on a floor no elevator visits.
func WithMaxTicks(n int) SimulationOption {
	return func(sim *Simulation) { sim.maxTicks = n }
}

func WithLogger(log zerolog.Logger) SimulationOption {
	return func(sim *Simulation) { sim.log = log }
}

func NewSimulation(elevators []*domain.Elevator, requests []*domain.RideRequest, opts ...SimulationOption) (*Simulation, error) {
	sim := &Simulation{
		increment: DefaultTimeIncrement,
		maxTicks:  DefaultMaxTicks,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(sim)
	}

	if sim.increment <= 0 || math.IsNaN(sim.increment) || math.IsInf(sim.increment, 0) {
		return nil, fmt.Errorf("new simulation: increment=%f: %w", sim.increment, ErrInvalidIncrement)
	}

	seen := make(map[*domain.Elevator]struct{}, len(elevators))
	for _, e := range elevators {
		if e == nil {
			return nil, errors.New("new simulation: elevator must be non-nil")
		}
		if _, dup := seen[e]; dup {
			return nil, fmt.Errorf("new simulation: elevator %q: %w", e.Name(), ErrDuplicateElevator)
		}
		seen[e] = struct{}{}
	}

	ids := make(map[int]struct{}, len(requests))
	lastID := 0
	for i, r := range requests {
		if r == nil {
			return nil, fmt.Errorf("new simulation: request at index %d must be non-nil", i)
		}
		if r.Status != domain.RideWaiting {
			return nil, fmt.Errorf("new simulation: request %d is %s: %w", r.ID, r.Status, domain.ErrInvalidTimestamp)
		}
		if !reachable(elevators, r) {
			return nil, fmt.Errorf("new simulation: request at index %d from floor %d to %d: no elevator serves both: %w",
				i, r.OriginFloor, r.DestinationFloor, domain.ErrFloorOutOfRange)
		}
		if r.ID == 0 {
			continue
		}
		if _, dup := ids[r.ID]; dup {
			return nil, fmt.Errorf("new simulation: request %d: %w", r.ID, ErrDuplicateRequest)
		}
		ids[r.ID] = struct{}{}
		lastID = max(lastID, r.ID)
	}
	// Unnumbered requests continue after the highest given ID.
	for _, r := range requests {
		if r.ID == 0 {
			lastID++
			r.ID = lastID
		}
	}

	sim.elevators = slices.Clone(elevators)
	sim.pending = domain.NewFloorQueues(requests)
	sim.requests = len(requests)
	return sim, nil
}

func (s *Simulation) CurrentTime() float64 { return s.clock }
func (s *Simulation) RunState() RunState { return s.state }
func (s *Simulation) Ticks() int { return s.ticks }

// Elevators returns the registered elevators in registration order.
func (s *Simulation) Elevators() []*domain.Elevator { return slices.Clone(s.elevators) }

// Pending counts riders still waiting on any floor.
func (s *Simulation) Pending() int { return s.pending.Total() }

// Waiting returns the riders queued at floor, front first.
func (s *Simulation) Waiting(floor int) []*domain.RideRequest { return s.pending.Waiting(floor) }

// Snapshots copies every elevator's state, in registration order.
func (s *Simulation) Snapshots() ([]domain.ElevatorSnapshot, error) {
	snaps := make([]domain.ElevatorSnapshot, 0, len(s.elevators))
	for _, e := range s.elevators {
		snap, err := e.Snapshot()
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

func (s *Simulation) IdleElevators() []*domain.Elevator {
	idle := make([]*domain.Elevator, 0, len(s.elevators))
	for _, e := range s.elevators {
		if e.IsIdle() {
			idle = append(idle, e)
		}
	}
	return idle
}

// RequestCount counts every request the simulation knows about, wherever it
// currently is: waiting, aboard an elevator, or delivered.
func (s *Simulation) RequestCount() int {
	n := s.pending.Total()
	for _, e := range s.elevators {
		n += len(e.Riding()) + len(e.Completed())
	}
	return n
}

// Advance runs a single tick of length dt.
func (s *Simulation) Advance(dt float64) error {
	if s.state == RunFinished {
		return fmt.Errorf("advance simulation: clock=%f: %w", s.clock, ErrSimulationFinished)
	}
	if dt < 0 || math.IsNaN(dt) {
		return fmt.Errorf("advance simulation: dt=%f: %w", dt, domain.ErrNegativeTimeDelta)
	}

	if s.state == RunNotStarted {
		s.state = RunRunning
		s.log.Info().
			Int("elevators", len(s.elevators)).
			Int("requests", s.requests).
			Msg("simulation started")
	}

	if s.scheduler != nil {
		if err := s.schedule(dt); err != nil {
			return fmt.Errorf("advance simulation: clock=%f: %w", s.clock, err)
		}
	}

	for _, e := range s.elevators {
		if err := e.Advance(dt, s.pending); err != nil {
			return fmt.Errorf("advance simulation: clock=%f: %w", s.clock, err)
		}
	}

	s.clock += dt
	s.ticks++

	if s.pending.Empty() && s.allIdle() {
		s.state = RunFinished
		s.log.Info().
			Float64("clock", s.clock).
			Int("ticks", s.ticks).
			Msg("simulation finished")
	}
	return nil
}

// Run advances the simulation by the configured increment until it finishes.
// The context is checked between ticks.
func (s *Simulation) Run(ctx context.Context) error {
	if s.clock > 0 || s.state != RunNotStarted {
		return fmt.Errorf("run simulation: state=%s clock=%f: %w", s.state, s.clock, ErrAlreadyStarted)
	}

	for s.state != RunFinished {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run simulation: clock=%f: %w", s.clock, err)
		}
		if s.ticks >= s.maxTicks {
			return fmt.Errorf("run simulation: %d ticks, %d still waiting: %w", s.ticks, s.pending.Total(), ErrTickLimit)
		}
		if err := s.Advance(s.increment); err != nil {
			return fmt.Errorf("run simulation: %w", err)
		}
	}
	return nil
}

// schedule hands the scheduler the idle elevators and the calls whose head
// rider arrives before the end of the coming tick.
func (s *Simulation) schedule(dt float64) error {
	idle := s.IdleElevators()
	if len(idle) == 0 {
		return nil
	}
	calls := s.pending.ActiveCalls(s.clock + dt)
	if len(calls) == 0 {
		return nil
	}

	offered := make(map[*domain.Elevator]bool, len(idle))
	for _, e := range idle {
		offered[e] = false
	}

	assign := func(e *domain.Elevator, floor int) error {
		used, ok := offered[e]
		if !ok {
			return fmt.Errorf("assign floor %d: %w", floor, ErrNotIdle)
		}
		if used {
			return fmt.Errorf("assign elevator %q to floor %d: %w", e.Name(), floor, ErrDuplicateAssignment)
		}
		offered[e] = true

		s.log.Debug().
			Str("elevator", e.Name()).
			Int("floor", floor).
			Float64("clock", s.clock).
			Msg("assign")
		return e.SetTarget(floor)
	}

	if err := s.scheduler.Schedule(idle, calls, assign); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	return nil
}

func reachable(elevators []*domain.Elevator, r *domain.RideRequest) bool {
	call := domain.FloorCall{Floor: r.OriginFloor, Destination: r.DestinationFloor}
	return slices.ContainsFunc(elevators, func(e *domain.Elevator) bool { return e.CanServe(call) })
}

func (s *Simulation) allIdle() bool {
	for _, e := range s.elevators {
		if !e.IsIdle() {
			return false
		}
	}
	return true
}
