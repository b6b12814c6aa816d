package config

import (
	"bytes"
	"elevator-sim/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"
)

var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario describes one simulation run: the elevator bank, the riders, and
// how the run is driven. It decodes from YAML files and from JSON request
// bodies alike.
type Scenario struct {
	Name          string     `yaml:"name" json:"name"`
	Scheduler     string     `yaml:"scheduler" json:"scheduler"`
	Admission     string     `yaml:"admission,omitempty" json:"admission,omitempty"`
	TimeIncrement float64    `yaml:"time_increment,omitempty" json:"time_increment,omitempty"`
	MaxTicks      int        `yaml:"max_ticks,omitempty" json:"max_ticks,omitempty"`
	Elevators     []Elevator `yaml:"elevators" json:"elevators"`
	Requests      []Request  `yaml:"requests,omitempty" json:"requests,omitempty"`
	Workload      *Workload  `yaml:"workload,omitempty" json:"workload,omitempty"`
}

// Elevator configures one car, or Count identical cars named Name-1..Name-N.
// Unset fields take the elevator defaults.
type Elevator struct {
	Name      string   `yaml:"name" json:"name"`
	Count     int      `yaml:"count,omitempty" json:"count,omitempty"`
	MinFloor  *int     `yaml:"min_floor,omitempty" json:"min_floor,omitempty"`
	MaxFloor  *int     `yaml:"max_floor,omitempty" json:"max_floor,omitempty"`
	Position  *float64 `yaml:"position,omitempty" json:"position,omitempty"`
	Target    *int     `yaml:"target,omitempty" json:"target,omitempty"`
	Speed     float64  `yaml:"speed,omitempty" json:"speed,omitempty"`
	Capacity  int      `yaml:"capacity,omitempty" json:"capacity,omitempty"`
	DwellTime *float64 `yaml:"dwell_time,omitempty" json:"dwell_time,omitempty"`
	Admission string   `yaml:"admission,omitempty" json:"admission,omitempty"`
}

// Request is one explicitly listed rider.
type Request struct {
	Origin    int     `yaml:"origin" json:"origin"`
	Direction int     `yaml:"direction" json:"direction"`
	Arrival   float64 `yaml:"arrival" json:"arrival"`
}

// Workload asks for Riders random riders spread uniformly over Duration
// between MinFloor and MaxFloor.
type Workload struct {
	Riders   int     `yaml:"riders" json:"riders"`
	Duration float64 `yaml:"duration" json:"duration"`
	MinFloor int     `yaml:"min_floor" json:"min_floor"`
	MaxFloor int     `yaml:"max_floor" json:"max_floor"`
	Seed     int64   `yaml:"seed" json:"seed"`
}

// LoadScenario reads and validates a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario: read %q: %w", path, err)
	}

	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("load scenario %q: %w", path, err)
	}
	return sc, nil
}

// ParseScenario decodes and validates a YAML document. Unknown keys are
// rejected so a typo does not silently fall back to a default.
func ParseScenario(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse scenario: decode yaml: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return &sc, nil
}

// Validate checks the scenario for values that can never produce a run.
// Elevator-level limits (speed, capacity, floor range) are checked again
// when the elevators are built.
func (sc *Scenario) Validate() error {
	if len(sc.Elevators) == 0 {
		return fmt.Errorf("validate scenario %q: no elevators: %w", sc.Name, ErrInvalidScenario)
	}
	if sc.TimeIncrement < 0 {
		return fmt.Errorf("validate scenario %q: time_increment=%f: %w", sc.Name, sc.TimeIncrement, ErrInvalidScenario)
	}
	if sc.MaxTicks < 0 {
		return fmt.Errorf("validate scenario %q: max_ticks=%d: %w", sc.Name, sc.MaxTicks, ErrInvalidScenario)
	}
	if _, ok := domain.AdmissionByName(sc.Admission); !ok {
		return fmt.Errorf("validate scenario %q: admission %q: %w", sc.Name, sc.Admission, ErrInvalidScenario)
	}

	names := make(map[string]struct{})
	for i, e := range sc.Elevators {
		if e.Count < 0 {
			return fmt.Errorf("validate scenario %q: elevator #%d: count=%d: %w", sc.Name, i+1, e.Count, ErrInvalidScenario)
		}
		if _, ok := domain.AdmissionByName(e.Admission); !ok {
			return fmt.Errorf("validate scenario %q: elevator #%d: admission %q: %w", sc.Name, i+1, e.Admission, ErrInvalidScenario)
		}
		for _, name := range e.Names(i) {
			if _, dup := names[name]; dup {
				return fmt.Errorf("validate scenario %q: duplicate elevator name %q: %w", sc.Name, name, ErrInvalidScenario)
			}
			names[name] = struct{}{}
		}
	}

	for i, r := range sc.Requests {
		if r.Direction == 0 {
			return fmt.Errorf("validate scenario %q: request #%d: %w", sc.Name, i+1, domain.ErrInvalidDirection)
		}
		if r.Arrival < 0 {
			return fmt.Errorf("validate scenario %q: request #%d: arrival=%f: %w", sc.Name, i+1, r.Arrival, domain.ErrInvalidTimestamp)
		}
		if !sc.serves(r.Origin, r.Origin+r.Direction) {
			return fmt.Errorf("validate scenario %q: request #%d: no elevator serves floors %d to %d: %w",
				sc.Name, i+1, r.Origin, r.Origin+r.Direction, domain.ErrFloorOutOfRange)
		}
	}

	if w := sc.Workload; w != nil {
		if w.Riders < 0 || w.Duration <= 0 || w.MinFloor >= w.MaxFloor {
			return fmt.Errorf("validate scenario %q: workload riders=%d duration=%f floors=[%d, %d]: %w",
				sc.Name, w.Riders, w.Duration, w.MinFloor, w.MaxFloor, ErrInvalidScenario)
		}
		// Generated riders travel between any two floors of the range.
		if !sc.serves(w.MinFloor, w.MaxFloor) {
			return fmt.Errorf("validate scenario %q: workload floors=[%d, %d]: no elevator covers them: %w",
				sc.Name, w.MinFloor, w.MaxFloor, domain.ErrFloorOutOfRange)
		}
	}

	return nil
}

// serves reports whether a single car covers both floors.
func (sc *Scenario) serves(a, b int) bool {
	lo, hi := min(a, b), max(a, b)
	for _, e := range sc.Elevators {
		minFloor, maxFloor := e.FloorRange()
		if lo >= minFloor && hi <= maxFloor {
			return true
		}
	}
	return false
}

// FloorRange returns the entry's service range with the elevator defaults
// filled in.
func (e Elevator) FloorRange() (minFloor, maxFloor int) {
	minFloor, maxFloor = domain.DefaultMinFloor, domain.DefaultMaxFloor
	if e.MinFloor != nil {
		minFloor = *e.MinFloor
	}
	if e.MaxFloor != nil {
		maxFloor = *e.MaxFloor
	}
	return minFloor, maxFloor
}

// Names returns the names of the cars this entry expands to. index is the
// entry's position in the scenario and names an entry that has no name.
func (e Elevator) Names(index int) []string {
	base := e.Name
	if base == "" {
		base = fmt.Sprintf("elevator-%d", index+1)
	}
	if e.Count <= 1 {
		return []string{base}
	}

	names := make([]string, e.Count)
	for i := range names {
		names[i] = fmt.Sprintf("%s-%d", base, i+1)
	}
	return names
}

// Fingerprint identifies the scenario's content. Two scenarios with the same
// fingerprint produce the same run, so it keys cached reports.
func (sc *Scenario) Fingerprint() (string, error) {
	data, err := json.Marshal(sc)
	if err != nil {
		return "", fmt.Errorf("fingerprint scenario %q: %w", sc.Name, err)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data)), nil
}
