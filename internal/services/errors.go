package services

import "errors"

var (
	ErrSimulationFinished  = errors.New("simulation already finished")
	ErrAlreadyStarted      = errors.New("simulation already started")
	ErrDuplicateElevator   = errors.New("elevator registered twice")
	ErrDuplicateRequest    = errors.New("request ID used more than once")
	ErrDuplicateAssignment = errors.New("elevator assigned more than once in one scheduling call")
	ErrNotIdle             = errors.New("elevator was not offered as idle")
	ErrTickLimit           = errors.New("simulation exceeded tick limit")
	ErrUnknownScheduler    = errors.New("unknown scheduler")
	ErrInvalidIncrement    = errors.New("time increment must be positive")
)
