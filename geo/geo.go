// Package geo defines the closed geometry union carried by topology events:
// Point2, Point3, Segment2, Polyline2, Polyline3, and PolygonRegion2. Each
// knows its own dimension and arc length.
package geo

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Kind discriminates the geometry union's variants. Values are stable and
// used as the canonical codec's variant index.
type Kind uint8

const (
	KindPoint2 Kind = iota
	KindPoint3
	KindSegment2
	KindPolyline2
	KindPolyline3
	KindPolygonRegion2
)

// Geometry is implemented by every variant in the closed union.
type Geometry interface {
	Kind() Kind
	Dimension() int
	Length() float64
}

// Point2 is a point in the plane.
type Point2 struct{ X, Y float64 }

func (Point2) Kind() Kind        { return KindPoint2 }
func (Point2) Dimension() int    { return 2 }
func (Point2) Length() float64   { return 0 }

// Point3 is a point in three-space, typically on the unit sphere.
type Point3 struct{ X, Y, Z float64 }

func (Point3) Kind() Kind      { return KindPoint3 }
func (Point3) Dimension() int  { return 3 }
func (Point3) Length() float64 { return 0 }

// Norm returns the Euclidean length of the position vector.
func (p Point3) Norm() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// Sub returns p - q.
func (p Point3) Sub(q Point3) Point3 {
	return Point3{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

// Dot returns the dot product p . q.
func (p Point3) Dot(q Point3) float64 {
	return p.X*q.X + p.Y*q.Y + p.Z*q.Z
}

// Normalized returns p scaled to unit length. Returns p unchanged if its
// norm is smaller than 1e-300.
func (p Point3) Normalized() Point3 {
	n := p.Norm()
	if n < 1e-300 {
		return p
	}
	return Point3{p.X / n, p.Y / n, p.Z / n}
}

// Segment2 is a straight line between two planar points.
type Segment2 struct{ A, B Point2 }

func (Segment2) Kind() Kind     { return KindSegment2 }
func (Segment2) Dimension() int { return 2 }
func (s Segment2) Length() float64 {
	dx, dy := s.B.X-s.A.X, s.B.Y-s.A.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Polyline2 is an ordered chain of planar points.
type Polyline2 struct{ Points []Point2 }

func (Polyline2) Kind() Kind     { return KindPolyline2 }
func (Polyline2) Dimension() int { return 2 }
func (p Polyline2) Length() float64 {
	if len(p.Points) == 0 {
		return math.NaN()
	}
	var total float64
	for i := 1; i < len(p.Points); i++ {
		dx := p.Points[i].X - p.Points[i-1].X
		dy := p.Points[i].Y - p.Points[i-1].Y
		total += math.Sqrt(dx*dx + dy*dy)
	}
	return total
}

// Polyline3 is an ordered chain of three-space points.
type Polyline3 struct{ Points []Point3 }

func (Polyline3) Kind() Kind     { return KindPolyline3 }
func (Polyline3) Dimension() int { return 3 }
func (p Polyline3) Length() float64 {
	if len(p.Points) == 0 {
		return math.NaN()
	}
	var total float64
	for i := 1; i < len(p.Points); i++ {
		d := p.Points[i].Sub(p.Points[i-1])
		total += d.Norm()
	}
	return total
}

// PolygonRegion2 is a closed planar region described by its boundary ring.
// The ring is implicitly closed (last point connects back to the first).
type PolygonRegion2 struct{ Ring []Point2 }

func (PolygonRegion2) Kind() Kind     { return KindPolygonRegion2 }
func (PolygonRegion2) Dimension() int { return 2 }

// Length returns the perimeter of the ring (NaN for an empty ring).
func (p PolygonRegion2) Length() float64 {
	n := len(p.Ring)
	if n == 0 {
		return math.NaN()
	}
	var total float64
	for i := 0; i < n; i++ {
		a := p.Ring[i]
		b := p.Ring[(i+1)%n]
		dx, dy := b.X-a.X, b.Y-a.Y
		total += math.Sqrt(dx*dx + dy*dy)
	}
	return total
}

// BoundingBox returns the ring's axis-aligned bounding box as
// (minX, minY, maxX, maxY). Returns all-zero for an empty ring.
func (p PolygonRegion2) BoundingBox() (minX, minY, maxX, maxY float64) {
	if len(p.Ring) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = p.Ring[0].X, p.Ring[0].Y
	maxX, maxY = minX, minY
	for _, pt := range p.Ring[1:] {
		minX, maxX = minMax(minX, maxX, pt.X)
		minY, maxY = minMax(minY, maxY, pt.Y)
	}
	return minX, minY, maxX, maxY
}

func minMax[T constraints.Float](curMin, curMax, v T) (T, T) {
	if v < curMin {
		curMin = v
	}
	if v > curMax {
		curMax = v
	}
	return curMin, curMax
}

// Contains reports whether point lies inside the ring, via a bounding-box
// fast-reject followed by the standard even-odd ray-casting test. Used by
// the reconstruction solver's lowest-plate-id-wins partition assignment.
func (p PolygonRegion2) Contains(point Point2) bool {
	n := len(p.Ring)
	if n < 3 {
		return false
	}
	if minX, minY, maxX, maxY := p.BoundingBox(); point.X < minX || point.X > maxX || point.Y < minY || point.Y > maxY {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := p.Ring[i], p.Ring[j]
		if ((pi.Y > point.Y) != (pj.Y > point.Y)) &&
			(point.X < (pj.X-pi.X)*(point.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}
	return inside
}
