package integrator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/geo"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/idkit"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/rotation"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/streamid"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/topology"
)

// constantAngularVelocity answers the same axis/rate for every plate and
// tick within [present) range.
type constantAngularVelocity struct {
	axis geo.Point3
	rate float64
}

func (c constantAngularVelocity) TryGetAngularVelocity(idkit.PlateId, topology.Tick) (geo.Point3, float64, bool) {
	return c.axis, c.rate, true
}

// perPlateAngularVelocity dispatches by plate id, used to give two plates
// on either side of a divergent boundary opposite rotation rates.
type perPlateAngularVelocity map[idkit.PlateId]constantAngularVelocity

func (m perPlateAngularVelocity) TryGetAngularVelocity(p idkit.PlateId, t topology.Tick) (geo.Point3, float64, bool) {
	v, ok := m[p]
	if !ok {
		return geo.Point3{}, 0, false
	}
	return v.TryGetAngularVelocity(p, t)
}

// E6: omega = 0.1 rad/tick about Z, start = (1,0,0), ticks [0,10), step 1.
// The tenth sample (index 9, at tick 9) should be within 0.01 of
// (cos 0.9, sin 0.9, 0).
func TestIntegrateMotionPathZRotation(t *testing.T) {
	plate := idkit.NewID[idkit.PlateId]()
	kin := constantAngularVelocity{axis: geo.Point3{Z: 1}, rate: 0.1}
	spec := Spec{StepTicks: 1, MaxSteps: 10, Method: Euler}

	path := Integrate(plate, geo.Point3{X: 1}, 0, 10, Forward, kin, spec)

	require.Len(t, path.Samples, 10)
	last := path.Samples[9]
	require.Equal(t, topology.Tick(9), last.Tick)

	wantX := math.Cos(0.9)
	wantY := math.Sin(0.9)
	require.InDelta(t, wantX, last.Position.X, 0.01)
	require.InDelta(t, wantY, last.Position.Y, 0.01)
	require.InDelta(t, 0, last.Position.Z, 0.01)
}

// The first sample is the raw start point, not renormalized.
func TestIntegrateFirstSampleIsRawStartPoint(t *testing.T) {
	plate := idkit.NewID[idkit.PlateId]()
	kin := constantAngularVelocity{axis: geo.Point3{Z: 1}, rate: 0.1}
	start := geo.Point3{X: 2, Y: 0, Z: 0} // deliberately off the unit sphere
	spec := Spec{StepTicks: 1, MaxSteps: 3, Method: Euler}

	path := Integrate(plate, start, 0, 3, Forward, kin, spec)
	require.Equal(t, start, path.Samples[0].Position)
	require.NotEqual(t, 1.0, path.Samples[0].Position.Norm())
	require.InDelta(t, 1.0, path.Samples[1].Position.Norm(), 1e-9)
}

// Integrating forward then backward over the same span returns within
// 1e-6 of the original start point, for constant-rotation kinematics.
func TestIntegrateForwardThenBackwardCloses(t *testing.T) {
	plate := idkit.NewID[idkit.PlateId]()
	kin := constantAngularVelocity{axis: geo.Point3{X: 0.3, Y: 0.4, Z: 1}, rate: 0.05}
	start := geo.Point3{X: 1, Y: 0, Z: 0}
	spec := Spec{StepTicks: 1, MaxSteps: 20, Method: Euler}

	forward := Integrate(plate, start, 0, 20, Forward, kin, spec)
	end := forward.Samples[len(forward.Samples)-1]
	// One more forward step to reach the position at tick 20.
	endPos := rodriguesStep(end, kin, spec.StepTicks, Forward)

	backward := Integrate(plate, endPos, 20, 0, Backward, kin, spec)
	returned := backward.Samples[len(backward.Samples)-1]
	finalPos := rodriguesStep(returned, kin, spec.StepTicks, Backward)

	require.InDelta(t, start.X, finalPos.X, 1e-6)
	require.InDelta(t, start.Y, finalPos.Y, 1e-6)
	require.InDelta(t, start.Z, finalPos.Z, 1e-6)
}

// rodriguesStep advances sample.Position by one more Euler/Rodrigues step
// under kin's angular velocity at sample.Tick, mirroring what Integrate
// does internally between samples. Used by the closure test to reach the
// exact boundary tick one loop iteration doesn't itself emit a sample for.
func rodriguesStep(sample Sample, kin AngularVelocityView, stepTicks int64, direction Direction) geo.Point3 {
	axis, rate, present := kin.TryGetAngularVelocity(idkit.PlateId{}, sample.Tick)
	if !present {
		return sample.Position
	}
	return rotation.Rodrigues(sample.Position, axis, rate*float64(stepTicks)*float64(direction)).Normalized()
}

// Absent kinematics means zero velocity and no movement.
func TestIntegrateAbsentKinematicsNoMovement(t *testing.T) {
	plate := idkit.NewID[idkit.PlateId]()
	start := geo.Point3{X: 1, Y: 0, Z: 0}
	spec := Spec{StepTicks: 1, MaxSteps: 5, Method: Euler}

	path := Integrate(plate, start, 0, 5, Forward, perPlateAngularVelocity{}, spec)
	for _, s := range path.Samples {
		require.Equal(t, geo.Point3{}, s.Velocity)
	}
	require.Equal(t, start, path.Samples[len(path.Samples)-1].Position)
}

// Divergent-boundary sanity: with opposite rotation rates, the Left and
// Right flowlines' displacement vectors from the shared seed point have a
// negative dot product (they move apart).
func TestFlowlineDivergentBoundarySanity(t *testing.T) {
	plateLeft := idkit.NewID[idkit.PlateId]()
	plateRight := idkit.NewID[idkit.PlateId]()
	boundaryID := idkit.NewID[idkit.BoundaryId]()

	seed := geo.Point3{X: 0, Y: 1, Z: 0}
	axis := geo.Point3{X: 0, Y: 0, Z: 1}
	kin := perPlateAngularVelocity{
		plateLeft:  {axis: axis, rate: 0.2},
		plateRight: {axis: axis, rate: -0.2},
	}

	view := flowlineTestView{
		boundaries: map[idkit.BoundaryId]topology.Boundary{
			boundaryID: {ID: boundaryID, PlateLeft: plateLeft, PlateRight: plateRight},
		},
	}

	spec := Spec{StepTicks: 1, MaxSteps: 5, Method: Euler}
	leftPath, err := Flowline(view, boundaryID, Left, seed, 0, 5, Forward, FixedInterval(1), kin, spec.MaxSteps)
	require.NoError(t, err)
	rightPath, err := Flowline(view, boundaryID, Right, seed, 0, 5, Forward, FixedInterval(1), kin, spec.MaxSteps)
	require.NoError(t, err)

	leftEnd := leftPath.Samples[len(leftPath.Samples)-1].Position
	rightEnd := rightPath.Samples[len(rightPath.Samples)-1].Position

	leftDisp := leftEnd.Sub(seed)
	rightDisp := rightEnd.Sub(seed)
	require.Less(t, leftDisp.Dot(rightDisp), 0.0)
}

// flowlineTestView is a minimal topology.View stub exposing only the
// boundary lookups Flowline needs.
type flowlineTestView struct {
	boundaries map[idkit.BoundaryId]topology.Boundary
}

func (v flowlineTestView) StreamIdentity() streamid.Identity    { return streamid.Identity{} }
func (v flowlineTestView) LastEventSequence() topology.Sequence { return 0 }
func (v flowlineTestView) Plate(idkit.PlateId) (topology.Plate, bool) {
	return topology.Plate{}, false
}
func (v flowlineTestView) Boundary(id idkit.BoundaryId) (topology.Boundary, bool) {
	b, ok := v.boundaries[id]
	return b, ok
}
func (v flowlineTestView) Junction(idkit.JunctionId) (topology.Junction, bool) {
	return topology.Junction{}, false
}
func (v flowlineTestView) AllPlates() map[idkit.PlateId]topology.Plate { return nil }
func (v flowlineTestView) AllBoundaries() map[idkit.BoundaryId]topology.Boundary {
	return v.boundaries
}
func (v flowlineTestView) AllJunctions() map[idkit.JunctionId]topology.Junction { return nil }

// SampleAlongPolyline3 resamples a simple two-segment path and keeps
// constant arc-length spacing across the segment join.
func TestSampleAlongPolyline3CrossesSegmentJoin(t *testing.T) {
	poly := geo.Polyline3{Points: []geo.Point3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 0},
	}}

	samples := SampleAlongPolyline3(poly, 0.5)
	require.Len(t, samples, 5) // 0, 0.5, 1.0 (join), 1.5, 2.0
	require.InDelta(t, 0, samples[0].X, 1e-9)
	require.InDelta(t, 0.5, samples[1].X, 1e-9)
	require.InDelta(t, 1.0, samples[2].X, 1e-9)
	require.InDelta(t, 0, samples[2].Y, 1e-9)
	require.InDelta(t, 1.0, samples[3].X, 1e-9)
	require.InDelta(t, 0.5, samples[3].Y, 1e-9)
	require.InDelta(t, 1.0, samples[4].Y, 1e-9)
}

func TestFlowlineBundlePreservesSeedOrder(t *testing.T) {
	plateLeft := idkit.NewID[idkit.PlateId]()
	plateRight := idkit.NewID[idkit.PlateId]()
	boundaryID := idkit.NewID[idkit.BoundaryId]()
	view := flowlineTestView{
		boundaries: map[idkit.BoundaryId]topology.Boundary{
			boundaryID: {ID: boundaryID, PlateLeft: plateLeft, PlateRight: plateRight},
		},
	}
	kin := perPlateAngularVelocity{plateLeft: {axis: geo.Point3{Z: 1}, rate: 0.1}}

	seeds := []geo.Point3{{X: 1}, {X: 0, Y: 1}, {X: -1}}
	paths, err := FlowlineBundle(view, boundaryID, Left, seeds, 0, 3, Forward, FixedInterval(1), kin, 3)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	for i, p := range paths {
		require.Equal(t, seeds[i], p.Samples[0].Position)
	}
}
