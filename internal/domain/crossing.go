package domain

import "math"

// CrossingTolerance absorbs floating point drift when deciding whether a
// continuous move reached the next floor boundary.
const CrossingTolerance = 1e-4

// CrossedFloorAscending reports whether moving up from position for dt at speed
// reaches the next floor above position, and which floor that is.
// Only the first boundary is reported; the caller continues from there.
func CrossedFloorAscending(position, speed, dt float64) (int, bool) {
	if dt <= 0 || speed <= 0 {
		return 0, false
	}
	next := math.Floor(position) + 1
	end := position + speed*dt
	if end+CrossingTolerance < next {
		return 0, false
	}
	return int(next), true
}

// CrossedFloorDescending is the mirror of CrossedFloorAscending.
func CrossedFloorDescending(position, speed, dt float64) (int, bool) {
	if dt <= 0 || speed <= 0 {
		return 0, false
	}
	next := math.Ceil(position) - 1
	end := position - speed*dt
	if end-CrossingTolerance > next {
		return 0, false
	}
	return int(next), true
}

// CrossingTime returns the part of dt that elapses before a move from position
// towards end reaches floor. The result is clamped to [0, dt].
func CrossingTime(position, end float64, floor int, dt float64) float64 {
	if end == position {
		return 0
	}
	delta := (float64(floor) - position) / (end - position) * dt
	return math.Max(0, math.Min(delta, dt))
}
