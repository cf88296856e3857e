// Package control implements the dataflow engine: typed signal ports,
// Blocks that read and write them, and TimeDomains that run a set of
// Blocks, in insertion order, once per tick.
package control

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Kind identifies which field of a Signal carries its payload.
type Kind uint8

const (
	KindFloat Kind = iota
	KindBool
	KindVec3
)

// Signal is the value carried by a port: a typed payload plus the
// timestamp at which it was written. Vector-valued signals (e.g. a 3-axis
// position or velocity) use Vec3 instead of forcing callers to hand-roll a
// [3]float64, mirroring how kinematic blocks in the reference hardware
// stack pass positions around.
type Signal struct {
	Kind      Kind
	Float     float64
	Bool      bool
	Vec3      mgl64.Vec3
	Timestamp time.Time
}

// FloatSignal builds a scalar Signal timestamped now.
func FloatSignal(v float64) Signal {
	return Signal{Kind: KindFloat, Float: v, Timestamp: time.Now()}
}

// BoolSignal builds a boolean Signal timestamped now.
func BoolSignal(v bool) Signal {
	return Signal{Kind: KindBool, Bool: v, Timestamp: time.Now()}
}

// Vec3Signal builds a 3-vector Signal timestamped now.
func Vec3Signal(v mgl64.Vec3) Signal {
	return Signal{Kind: KindVec3, Vec3: v, Timestamp: time.Now()}
}
