package resources

import "golang.org/x/exp/constraints"

// DeathReason classifies which vital ran out. It is shown on the death screen.
type DeathReason string

const (
	ReasonOxygen DeathReason = "OXYGEN"
	ReasonEnergy DeathReason = "ENERGY"
	ReasonBoth   DeathReason = "BOTH"
	// ReasonLife is used when life drains to zero while oxygen and energy
	// were never depleted (e.g. a machine with a negative life rate).
	ReasonLife DeathReason = "LIFE"
)

// ZeroCrossing reports whether oxygen or energy sits exactly at zero and,
// if so, which of them.
func ZeroCrossing[T constraints.Unsigned](levels Resources[T]) (DeathReason, bool) {
	switch {
	case levels.Oxygen == 0 && levels.Energy == 0:
		return ReasonBoth, true
	case levels.Oxygen == 0:
		return ReasonOxygen, true
	case levels.Energy == 0:
		return ReasonEnergy, true
	}
	return "", false
}

// Merge combines two reasons observed on different ticks.
func (r DeathReason) Merge(o DeathReason) DeathReason {
	switch {
	case r == "" || r == ReasonLife:
		return o
	case o == "" || o == ReasonLife || o == r:
		return r
	}
	return ReasonBoth
}
