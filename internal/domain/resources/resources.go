// Package resources defines the oxygen/energy/life triple shared by the
// player's absolute levels and their per-tick rates of change.
// This package is PURE and must NOT import any infrastructure packages.
package resources

import "golang.org/x/exp/constraints"

// Kind names one component of the triple.
type Kind string

const (
	KindOxygen Kind = "OXYGEN"
	KindEnergy Kind = "ENERGY"
	KindLife   Kind = "LIFE"
)

// Order is the display order of the components. Resource bars, frames and
// fixtures all rely on it.
var Order = [3]Kind{KindOxygen, KindEnergy, KindLife}

// Resources is a component-wise numeric triple.
type Resources[T constraints.Integer] struct {
	Oxygen T `json:"oxygen" yaml:"oxygen"`
	Energy T `json:"energy" yaml:"energy"`
	Life   T `json:"life" yaml:"life"`
}

// Levels are absolute vitals. They saturate at 0 and at the type's maximum.
type Levels = Resources[uint8]

// Deltas are signed per-tick rates of change.
type Deltas = Resources[int16]

// MaxLevel is the highest representable absolute level.
const MaxLevel = ^uint8(0)

// Full returns levels with every component at MaxLevel.
func Full() Levels {
	return Levels{Oxygen: MaxLevel, Energy: MaxLevel, Life: MaxLevel}
}

// Add returns the component-wise sum using the type's ordinary arithmetic.
func (r Resources[T]) Add(o Resources[T]) Resources[T] {
	return Resources[T]{
		Oxygen: r.Oxygen + o.Oxygen,
		Energy: r.Energy + o.Energy,
		Life:   r.Life + o.Life,
	}
}

// Sub returns the component-wise difference using the type's ordinary arithmetic.
func (r Resources[T]) Sub(o Resources[T]) Resources[T] {
	return Resources[T]{
		Oxygen: r.Oxygen - o.Oxygen,
		Energy: r.Energy - o.Energy,
		Life:   r.Life - o.Life,
	}
}

// Get returns the component named by k.
func (r Resources[T]) Get(k Kind) T {
	switch k {
	case KindOxygen:
		return r.Oxygen
	case KindEnergy:
		return r.Energy
	default:
		return r.Life
	}
}

// Values returns the components in Order.
func (r Resources[T]) Values() [3]T {
	return [3]T{r.Oxygen, r.Energy, r.Life}
}

// SaturatingAdd adds two unsigned triples, clamping each component at the maximum.
func SaturatingAdd[T constraints.Unsigned](a, b Resources[T]) Resources[T] {
	return Resources[T]{
		Oxygen: satAdd(a.Oxygen, b.Oxygen),
		Energy: satAdd(a.Energy, b.Energy),
		Life:   satAdd(a.Life, b.Life),
	}
}

// SaturatingSub subtracts two unsigned triples, clamping each component at zero.
func SaturatingSub[T constraints.Unsigned](a, b Resources[T]) Resources[T] {
	return Resources[T]{
		Oxygen: satSub(a.Oxygen, b.Oxygen),
		Energy: satSub(a.Energy, b.Energy),
		Life:   satSub(a.Life, b.Life),
	}
}

// Apply adds signed deltas to unsigned levels. Every component of the
// result lies in [0, max(L)].
func Apply[L constraints.Unsigned, D constraints.Signed](levels Resources[L], d Resources[D]) Resources[L] {
	return Resources[L]{
		Oxygen: saturate(levels.Oxygen, d.Oxygen),
		Energy: saturate(levels.Energy, d.Energy),
		Life:   saturate(levels.Life, d.Life),
	}
}

func satAdd[T constraints.Unsigned](a, b T) T {
	if a > ^T(0)-b {
		return ^T(0)
	}
	return a + b
}

func satSub[T constraints.Unsigned](a, b T) T {
	if b > a {
		return 0
	}
	return a - b
}

func saturate[L constraints.Unsigned, D constraints.Signed](level L, delta D) L {
	if delta < 0 {
		dec := uint64(-int64(delta))
		if dec >= uint64(level) {
			return 0
		}
		return level - L(dec)
	}
	inc := uint64(delta)
	if inc >= uint64(^L(0)-level) {
		return ^L(0)
	}
	return level + L(inc)
}
