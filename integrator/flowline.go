package integrator

import (
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/geo"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/idkit"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/internal/errs"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/topology"
)

// Side selects which of a boundary's two plates a flowline integrates
// under.
type Side uint8

const (
	Left Side = iota
	Right
)

// StepPolicy supplies the Euler step size for a flowline integration.
// FixedInterval is the only variant the spec names.
type StepPolicy interface {
	StepTicks() int64
}

// FixedInterval is a StepPolicy with a constant step size.
type FixedInterval int64

func (f FixedInterval) StepTicks() int64 { return int64(f) }

// resolvePlate picks plate_left or plate_right per side.
func resolvePlate(b topology.Boundary, side Side) idkit.PlateId {
	if side == Left {
		return b.PlateLeft
	}
	return b.PlateRight
}

// Flowline integrates a seed point under the plate on boundary's given
// side, from startTick to endTick. It is Integrate with the boundary-side
// plate resolved first.
func Flowline(view topology.View, boundaryID idkit.BoundaryId, side Side, seed geo.Point3, startTick, endTick topology.Tick, direction Direction, policy StepPolicy, kin AngularVelocityView, maxSteps int) (MotionPath, error) {
	b, ok := view.Boundary(boundaryID)
	if !ok {
		return MotionPath{}, errs.New(errs.KindValidation, "BoundaryNotFound", "flowline references an absent boundary", map[string]string{"boundary_id": boundaryID.String()})
	}
	plate := resolvePlate(b, side)
	spec := Spec{StepTicks: policy.StepTicks(), MaxSteps: maxSteps, Method: Euler}
	return Integrate(plate, seed, startTick, endTick, direction, kin, spec), nil
}

// SampleAlongPolyline3 resamples poly at constant arc-length spacing,
// starting at its first point, crossing segment boundaries correctly
// (a sample that falls past one segment's end continues consuming the
// next). Returns an empty slice if poly has fewer than 2 points or
// spacing is non-positive.
func SampleAlongPolyline3(poly geo.Polyline3, spacing float64) []geo.Point3 {
	if len(poly.Points) < 2 || spacing <= 0 {
		return nil
	}

	samples := []geo.Point3{poly.Points[0]}
	var traveled float64   // distance along the whole polyline consumed so far
	nextSample := spacing  // distance at which the next sample is due

	segStart := poly.Points[0]
	for i := 1; i < len(poly.Points); i++ {
		segEnd := poly.Points[i]
		segVec := segEnd.Sub(segStart)
		segLen := segVec.Norm()
		if segLen < 1e-300 {
			segStart = segEnd
			continue
		}

		segStartDist := traveled
		segEndDist := traveled + segLen
		for nextSample <= segEndDist {
			t := (nextSample - segStartDist) / segLen
			samples = append(samples, geo.Point3{
				X: segStart.X + segVec.X*t,
				Y: segStart.Y + segVec.Y*t,
				Z: segStart.Z + segVec.Z*t,
			})
			nextSample += spacing
		}

		traveled = segEndDist
		segStart = segEnd
	}

	return samples
}

// flowlineBundleSeed pairs a seed point with the index it was supplied at,
// so bundle operations can preserve input ordering through any internal
// processing.
type flowlineBundleSeed struct {
	index int
	point geo.Point3
}

// FlowlineBundle integrates one flowline per seed, preserving seeds' input
// order in the returned slice regardless of processing order.
func FlowlineBundle(view topology.View, boundaryID idkit.BoundaryId, side Side, seeds []geo.Point3, startTick, endTick topology.Tick, direction Direction, policy StepPolicy, kin AngularVelocityView, maxSteps int) ([]MotionPath, error) {
	indexed := make([]flowlineBundleSeed, len(seeds))
	for i, s := range seeds {
		indexed[i] = flowlineBundleSeed{index: i, point: s}
	}

	out := make([]MotionPath, len(seeds))
	for _, s := range indexed {
		path, err := Flowline(view, boundaryID, side, s.point, startTick, endTick, direction, policy, kin, maxSteps)
		if err != nil {
			return nil, err
		}
		out[s.index] = path
	}
	return out, nil
}
