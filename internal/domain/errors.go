package domain

import "errors"

// Configuration faults: raised by the call that introduced the bad value.
var (
	ErrFloorOutOfRange   = errors.New("floor outside service range")
	ErrInvalidFloorRange = errors.New("min floor must not exceed max floor")
	ErrInvalidSpeed      = errors.New("speed must be positive")
	ErrInvalidCapacity   = errors.New("capacity must be positive")
	ErrInvalidDwellTime  = errors.New("door dwell time must not be negative")
	ErrInvalidDirection  = errors.New("ride direction must be nonzero")
	ErrInvalidTimestamp  = errors.New("invalid ride timestamp")
)

// Protocol faults: the caller used the state machine out of order.
var (
	ErrSameState         = errors.New("state transition to the current state")
	ErrNegativeTimeDelta = errors.New("time delta must not be negative")
	ErrRunawayTransition = errors.New("state repeated without consuming time")
)
