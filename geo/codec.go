package geo

import (
	"fmt"

	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/codec"
)

// Wire structs mirror the public types but carry the `toarray` codec tag so
// they round-trip as positional CBOR arrays rather than string-keyed maps.

type point2Wire struct {
	_    struct{} `cbor:",toarray"`
	X, Y float64
}

type point3Wire struct {
	_       struct{} `cbor:",toarray"`
	X, Y, Z float64
}

type segment2Wire struct {
	_    struct{} `cbor:",toarray"`
	A, B point2Wire
}

type polyline2Wire struct {
	_      struct{} `cbor:",toarray"`
	Points []point2Wire
}

type polyline3Wire struct {
	_      struct{} `cbor:",toarray"`
	Points []point3Wire
}

type polygonRegion2Wire struct {
	_    struct{} `cbor:",toarray"`
	Ring []point2Wire
}

func toWire2(p Point2) point2Wire { return point2Wire{X: p.X, Y: p.Y} }
func fromWire2(w point2Wire) Point2 { return Point2{X: w.X, Y: w.Y} }
func toWire3(p Point3) point3Wire  { return point3Wire{X: p.X, Y: p.Y, Z: p.Z} }
func fromWire3(w point3Wire) Point3 { return Point3{X: w.X, Y: w.Y, Z: w.Z} }

// Encode canonically encodes any Geometry variant as a codec.Envelope
// tagged with its Kind.
func Encode(g Geometry) ([]byte, error) {
	switch v := g.(type) {
	case Point2:
		return codec.EncodeVariant(uint8(KindPoint2), toWire2(v))
	case Point3:
		return codec.EncodeVariant(uint8(KindPoint3), toWire3(v))
	case Segment2:
		return codec.EncodeVariant(uint8(KindSegment2), segment2Wire{A: toWire2(v.A), B: toWire2(v.B)})
	case Polyline2:
		pts := make([]point2Wire, len(v.Points))
		for i, p := range v.Points {
			pts[i] = toWire2(p)
		}
		return codec.EncodeVariant(uint8(KindPolyline2), polyline2Wire{Points: pts})
	case Polyline3:
		pts := make([]point3Wire, len(v.Points))
		for i, p := range v.Points {
			pts[i] = toWire3(p)
		}
		return codec.EncodeVariant(uint8(KindPolyline3), polyline3Wire{Points: pts})
	case PolygonRegion2:
		ring := make([]point2Wire, len(v.Ring))
		for i, p := range v.Ring {
			ring[i] = toWire2(p)
		}
		return codec.EncodeVariant(uint8(KindPolygonRegion2), polygonRegion2Wire{Ring: ring})
	default:
		return nil, fmt.Errorf("geo: encode: unsupported geometry type %T", g)
	}
}

// Decode reads back a Geometry previously produced by Encode.
func Decode(data []byte) (Geometry, error) {
	kind, payload, err := codec.DecodeVariant(data)
	if err != nil {
		return nil, err
	}
	switch Kind(kind) {
	case KindPoint2:
		var w point2Wire
		if err := codec.DecodePayload(payload, &w); err != nil {
			return nil, err
		}
		return fromWire2(w), nil
	case KindPoint3:
		var w point3Wire
		if err := codec.DecodePayload(payload, &w); err != nil {
			return nil, err
		}
		return fromWire3(w), nil
	case KindSegment2:
		var w segment2Wire
		if err := codec.DecodePayload(payload, &w); err != nil {
			return nil, err
		}
		return Segment2{A: fromWire2(w.A), B: fromWire2(w.B)}, nil
	case KindPolyline2:
		var w polyline2Wire
		if err := codec.DecodePayload(payload, &w); err != nil {
			return nil, err
		}
		pts := make([]Point2, len(w.Points))
		for i, p := range w.Points {
			pts[i] = fromWire2(p)
		}
		return Polyline2{Points: pts}, nil
	case KindPolyline3:
		var w polyline3Wire
		if err := codec.DecodePayload(payload, &w); err != nil {
			return nil, err
		}
		pts := make([]Point3, len(w.Points))
		for i, p := range w.Points {
			pts[i] = fromWire3(p)
		}
		return Polyline3{Points: pts}, nil
	case KindPolygonRegion2:
		var w polygonRegion2Wire
		if err := codec.DecodePayload(payload, &w); err != nil {
			return nil, err
		}
		ring := make([]Point2, len(w.Ring))
		for i, p := range w.Ring {
			ring[i] = fromWire2(p)
		}
		return PolygonRegion2{Ring: ring}, nil
	default:
		return nil, fmt.Errorf("geo: decode: unknown geometry kind %d", kind)
	}
}
