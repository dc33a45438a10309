// Package integrator implements the motion path and flowline integrator
// (spec component C10): first-order Euler stepping of a point under a
// plate's angular velocity, on the unit sphere.
package integrator

import (
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/geo"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/idkit"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/rotation"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/topology"
)

// Direction is Forward or Backward integration through simulated time.
type Direction int8

const (
	Forward Direction = 1
	Backward Direction = -1
)

func (d Direction) sign() float64 {
	if d == Backward {
		return -1
	}
	return 1
}

// AngularVelocityView answers a plate's instantaneous angular velocity at a
// tick: axis (need not be unit length; Integrate normalizes it) and rate in
// radians per tick. Absent means "no data for this plate at this tick",
// which Integrate treats as zero velocity, not an error.
type AngularVelocityView interface {
	TryGetAngularVelocity(plate idkit.PlateId, tick topology.Tick) (axis geo.Point3, ratePerTick float64, present bool)
}

// Method is the closed set of integration methods. Euler is the only one
// the spec defines.
type Method uint8

const (
	Euler Method = iota
)

// Spec configures one Integrate call.
type Spec struct {
	StepTicks int64
	MaxSteps  int
	Method    Method
}

// Sample is one point along a motion path.
type Sample struct {
	Tick      topology.Tick
	Position  geo.Point3
	Velocity  geo.Point3
	StepIndex int
}

// MotionPath is the full output of one Integrate call.
type MotionPath struct {
	PlateID   idkit.PlateId
	StartTick topology.Tick
	EndTick   topology.Tick
	Direction Direction
	Samples   []Sample
}

// Integrate steps startPoint under plate's angular velocity from startTick
// towards endTick (exclusive), per spec's half-open interval and
// first-order Euler/Rodrigues stepping. The first sample is the raw,
// un-renormalized startPoint; every later sample has been renormalized
// onto the unit sphere after its Rodrigues step.
func Integrate(plate idkit.PlateId, startPoint geo.Point3, startTick, endTick topology.Tick, direction Direction, kin AngularVelocityView, spec Spec) MotionPath {
	samples := make([]Sample, 0, spec.MaxSteps)
	pos := startPoint
	tick := startTick
	sign := direction.sign()

	for step := 0; step < spec.MaxSteps; step++ {
		if direction == Forward && !(tick < endTick) {
			break
		}
		if direction == Backward && !(tick > endTick) {
			break
		}

		var axis geo.Point3
		var rate float64
		var present bool
		if kin != nil {
			axis, rate, present = kin.TryGetAngularVelocity(plate, tick)
		}

		var velocity geo.Point3
		if present {
			unitAxis := axis.Normalized()
			omega := geo.Point3{X: unitAxis.X * rate, Y: unitAxis.Y * rate, Z: unitAxis.Z * rate}
			velocity = crossPoint(omega, pos)
		}

		samples = append(samples, Sample{Tick: tick, Position: pos, Velocity: velocity, StepIndex: step})

		if present {
			theta := rate * float64(spec.StepTicks) * sign
			pos = rotation.Rodrigues(pos, axis, theta).Normalized()
		}
		tick += topology.Tick(spec.StepTicks) * topology.Tick(direction)
	}

	return MotionPath{PlateID: plate, StartTick: startTick, EndTick: endTick, Direction: direction, Samples: samples}
}

func crossPoint(a, b geo.Point3) geo.Point3 {
	return geo.Point3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}
