package domain

// StopContext describes an open-door stop while riders are being admitted.
type StopContext struct {
	Floor     int
	CrossedAt float64
	// Remaining riders who stay aboard after this stop's departures.
	Remaining int
	Boarded   int
	Capacity  int
}

// AdmissionPolicy decides whether the rider at the front of the floor queue may
// board. It runs after the arrival-time and capacity checks have passed; a false
// result ends boarding at this stop.
type AdmissionPolicy func(candidate *RideRequest, stop StopContext) bool

// OpportunisticAdmission boards anybody who is waiting.
func OpportunisticAdmission(*RideRequest, StopContext) bool { return true }

// EmptyCarAdmission only boards riders while the car has nobody else aboard
// after departures, serving each group in the order it was picked up.
func EmptyCarAdmission(_ *RideRequest, stop StopContext) bool {
	return stop.Remaining == 0
}

// AdmissionByName maps a configuration value to a policy.
func AdmissionByName(name string) (AdmissionPolicy, bool) {
	switch name {
	case "", "opportunistic":
		return OpportunisticAdmission, true
	case "empty-car", "first-come-first-serve":
		return EmptyCarAdmission, true
	default:
		return nil, false
	}
}
