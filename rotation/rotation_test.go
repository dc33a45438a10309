package rotation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/geo"
)

func TestFromAxisAngleZeroAxisIsIdentity(t *testing.T) {
	q := FromAxisAngle(geo.Point3{}, 1.0)
	require.True(t, q.IsIdentity())
}

func TestFromAxisAngleIsUnitNorm(t *testing.T) {
	q := FromAxisAngle(geo.Point3{X: 1, Y: 2, Z: 3}, 0.7)
	require.InDelta(t, 1.0, q.Norm(), 1e-12)
}

func TestApplyQuarterTurnAboutZ(t *testing.T) {
	q := FromAxisAngle(geo.Point3{Z: 1}, math.Pi/2)
	p := q.Apply(geo.Point3{X: 1})
	require.InDelta(t, 0, p.X, 1e-9)
	require.InDelta(t, 1, p.Y, 1e-9)
	require.InDelta(t, 0, p.Z, 1e-9)
}

func TestInverseUndoesApply(t *testing.T) {
	q := FromAxisAngle(geo.Point3{X: 1, Y: 1}, 1.1)
	p := geo.Point3{X: 0.3, Y: -0.2, Z: 0.8}
	back := q.Inverse().Apply(q.Apply(p))
	require.InDelta(t, p.X, back.X, 1e-9)
	require.InDelta(t, p.Y, back.Y, 1e-9)
	require.InDelta(t, p.Z, back.Z, 1e-9)
}

func TestComposeMatchesSequentialApply(t *testing.T) {
	a := FromAxisAngle(geo.Point3{Z: 1}, 0.4)
	b := FromAxisAngle(geo.Point3{X: 1}, 0.9)
	p := geo.Point3{X: 0.5, Y: 0.1, Z: -0.3}

	viaCompose := Compose(a, b).Apply(p)
	viaSequential := a.Apply(b.Apply(p))

	require.InDelta(t, viaSequential.X, viaCompose.X, 1e-9)
	require.InDelta(t, viaSequential.Y, viaCompose.Y, 1e-9)
	require.InDelta(t, viaSequential.Z, viaCompose.Z, 1e-9)
}

func TestIdentityIsIdentity(t *testing.T) {
	require.True(t, Identity.IsIdentity())
}

func TestNonIdentityIsNotIdentity(t *testing.T) {
	q := FromAxisAngle(geo.Point3{Z: 1}, 0.01)
	require.False(t, q.IsIdentity())
}

func TestRodriguesMatchesQuaternionApply(t *testing.T) {
	axis := geo.Point3{X: 0.2, Y: 0.9, Z: -0.1}
	theta := 1.3
	p := geo.Point3{X: 0.6, Y: -0.4, Z: 0.2}

	viaRodrigues := Rodrigues(p, axis, theta)
	viaQuat := FromAxisAngle(axis, theta).Apply(p)

	require.InDelta(t, viaQuat.X, viaRodrigues.X, 1e-9)
	require.InDelta(t, viaQuat.Y, viaRodrigues.Y, 1e-9)
	require.InDelta(t, viaQuat.Z, viaRodrigues.Z, 1e-9)
}

func TestRodriguesZeroAxisReturnsInputUnchanged(t *testing.T) {
	p := geo.Point3{X: 1, Y: 2, Z: 3}
	require.Equal(t, p, Rodrigues(p, geo.Point3{}, 1.0))
}

func TestNormalizedZeroQuaternionReturnsIdentity(t *testing.T) {
	require.Equal(t, Identity, Quaternion{}.Normalized())
}
