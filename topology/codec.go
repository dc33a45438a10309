package topology

import (
	"fmt"

	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/codec"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/geo"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/idkit"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/streamid"
)

// Wire payload structs: positional encoding, fixed field order.

type plateCreatedWire struct {
	_       struct{} `cbor:",toarray"`
	PlateID idkit.PlateId
}

type plateRetiredWire struct {
	_         struct{} `cbor:",toarray"`
	PlateID   idkit.PlateId
	Reason    string
	HasReason bool
}

type boundaryCreatedWire struct {
	_            struct{} `cbor:",toarray"`
	BoundaryID   idkit.BoundaryId
	PlateLeft    idkit.PlateId
	PlateRight   idkit.PlateId
	BoundaryType BoundaryType
	Geometry     []byte // nested geo.Encode output
}

type boundaryTypeChangedWire struct {
	_          struct{} `cbor:",toarray"`
	BoundaryID idkit.BoundaryId
	OldType    BoundaryType
	NewType    BoundaryType
}

type boundaryGeometryUpdatedWire struct {
	_           struct{} `cbor:",toarray"`
	BoundaryID  idkit.BoundaryId
	NewGeometry []byte
}

type boundaryRetiredWire struct {
	_          struct{} `cbor:",toarray"`
	BoundaryID idkit.BoundaryId
	Reason     string
	HasReason  bool
}

type junctionCreatedWire struct {
	_           struct{} `cbor:",toarray"`
	JunctionID  idkit.JunctionId
	BoundaryIDs []idkit.BoundaryId
	Location    [2]float64
}

type junctionUpdatedWire struct {
	_              struct{} `cbor:",toarray"`
	JunctionID     idkit.JunctionId
	NewBoundaryIDs []idkit.BoundaryId
	NewLocation    [2]float64
	HasNewLocation bool
}

type junctionRetiredWire struct {
	_          struct{} `cbor:",toarray"`
	JunctionID idkit.JunctionId
	Reason     string
	HasReason  bool
}

// eventBodyWire is every field that feeds the hash computation EXCEPT
// PreviousHash and Hash themselves (spec: "payload is the canonical-encoded
// event body excluding the two hash fields").
type eventBodyWire struct {
	_              struct{} `cbor:",toarray"`
	EventID        idkit.EventId
	Kind           Kind
	Tick           int64
	Sequence       int64
	StreamIdentity streamid.Wire
	Payload        []byte // kind-specific wire struct, canonically encoded
}

// stampedEventWire is what actually gets written to the KV store: the body
// plus the two hash fields the store computes.
type stampedEventWire struct {
	_            struct{} `cbor:",toarray"`
	Body         []byte // eventBodyWire, canonically encoded
	PreviousHash []byte
	Hash         []byte
}

func encodePayload(e Event) ([]byte, error) {
	switch e.Kind {
	case KindPlateCreated:
		p := e.Payload.(PlateCreatedPayload)
		return codec.Marshal(plateCreatedWire{PlateID: p.PlateID})
	case KindPlateRetired:
		p := e.Payload.(PlateRetiredPayload)
		return codec.Marshal(plateRetiredWire{PlateID: p.PlateID, Reason: p.Reason, HasReason: p.HasReason})
	case KindBoundaryCreated:
		p := e.Payload.(BoundaryCreatedPayload)
		geomBytes, err := geo.Encode(p.Geometry)
		if err != nil {
			return nil, err
		}
		return codec.Marshal(boundaryCreatedWire{
			BoundaryID: p.BoundaryID, PlateLeft: p.PlateLeft, PlateRight: p.PlateRight,
			BoundaryType: p.BoundaryType, Geometry: geomBytes,
		})
	case KindBoundaryTypeChanged:
		p := e.Payload.(BoundaryTypeChangedPayload)
		return codec.Marshal(boundaryTypeChangedWire{BoundaryID: p.BoundaryID, OldType: p.OldType, NewType: p.NewType})
	case KindBoundaryGeometryUpdated:
		p := e.Payload.(BoundaryGeometryUpdatedPayload)
		geomBytes, err := geo.Encode(p.NewGeometry)
		if err != nil {
			return nil, err
		}
		return codec.Marshal(boundaryGeometryUpdatedWire{BoundaryID: p.BoundaryID, NewGeometry: geomBytes})
	case KindBoundaryRetired:
		p := e.Payload.(BoundaryRetiredPayload)
		return codec.Marshal(boundaryRetiredWire{BoundaryID: p.BoundaryID, Reason: p.Reason, HasReason: p.HasReason})
	case KindJunctionCreated:
		p := e.Payload.(JunctionCreatedPayload)
		return codec.Marshal(junctionCreatedWire{
			JunctionID: p.JunctionID, BoundaryIDs: p.BoundaryIDs, Location: [2]float64{p.Location.X, p.Location.Y},
		})
	case KindJunctionUpdated:
		p := e.Payload.(JunctionUpdatedPayload)
		return codec.Marshal(junctionUpdatedWire{
			JunctionID: p.JunctionID, NewBoundaryIDs: p.NewBoundaryIDs,
			NewLocation: [2]float64{p.NewLocation.X, p.NewLocation.Y}, HasNewLocation: p.HasNewLocation,
		})
	case KindJunctionRetired:
		p := e.Payload.(JunctionRetiredPayload)
		return codec.Marshal(junctionRetiredWire{JunctionID: p.JunctionID, Reason: p.Reason, HasReason: p.HasReason})
	default:
		return nil, fmt.Errorf("topology: encode: unknown event kind %d", e.Kind)
	}
}

func decodePayload(kind Kind, payload []byte) (any, error) {
	switch kind {
	case KindPlateCreated:
		var w plateCreatedWire
		if err := codec.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return PlateCreatedPayload{PlateID: w.PlateID}, nil
	case KindPlateRetired:
		var w plateRetiredWire
		if err := codec.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return PlateRetiredPayload{PlateID: w.PlateID, Reason: w.Reason, HasReason: w.HasReason}, nil
	case KindBoundaryCreated:
		var w boundaryCreatedWire
		if err := codec.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		g, err := geo.Decode(w.Geometry)
		if err != nil {
			return nil, err
		}
		return BoundaryCreatedPayload{
			BoundaryID: w.BoundaryID, PlateLeft: w.PlateLeft, PlateRight: w.PlateRight,
			BoundaryType: w.BoundaryType, Geometry: g,
		}, nil
	case KindBoundaryTypeChanged:
		var w boundaryTypeChangedWire
		if err := codec.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return BoundaryTypeChangedPayload{BoundaryID: w.BoundaryID, OldType: w.OldType, NewType: w.NewType}, nil
	case KindBoundaryGeometryUpdated:
		var w boundaryGeometryUpdatedWire
		if err := codec.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		g, err := geo.Decode(w.NewGeometry)
		if err != nil {
			return nil, err
		}
		return BoundaryGeometryUpdatedPayload{BoundaryID: w.BoundaryID, NewGeometry: g}, nil
	case KindBoundaryRetired:
		var w boundaryRetiredWire
		if err := codec.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return BoundaryRetiredPayload{BoundaryID: w.BoundaryID, Reason: w.Reason, HasReason: w.HasReason}, nil
	case KindJunctionCreated:
		var w junctionCreatedWire
		if err := codec.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return JunctionCreatedPayload{
			JunctionID: w.JunctionID, BoundaryIDs: w.BoundaryIDs,
			Location: geo.Point2{X: w.Location[0], Y: w.Location[1]},
		}, nil
	case KindJunctionUpdated:
		var w junctionUpdatedWire
		if err := codec.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return JunctionUpdatedPayload{
			JunctionID: w.JunctionID, NewBoundaryIDs: w.NewBoundaryIDs,
			NewLocation: geo.Point2{X: w.NewLocation[0], Y: w.NewLocation[1]}, HasNewLocation: w.HasNewLocation,
		}, nil
	case KindJunctionRetired:
		var w junctionRetiredWire
		if err := codec.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return JunctionRetiredPayload{JunctionID: w.JunctionID, Reason: w.Reason, HasReason: w.HasReason}, nil
	default:
		return nil, fmt.Errorf("topology: decode: unknown event kind %d", kind)
	}
}

// EncodeBody canonically encodes every field of e except PreviousHash and
// Hash — exactly the bytes the hash-chain formula's "payload" term covers.
func EncodeBody(e Event) ([]byte, error) {
	payload, err := encodePayload(e)
	if err != nil {
		return nil, err
	}
	return codec.Marshal(eventBodyWire{
		EventID:        e.EventID,
		Kind:           e.Kind,
		Tick:           int64(e.Tick),
		Sequence:       int64(e.Sequence),
		StreamIdentity: e.StreamIdentity.ToWire(),
		Payload:        payload,
	})
}

// EncodeStamped canonically encodes the full persisted form: body plus the
// two store-computed hash fields. This is what gets written to the KV
// store at the event's key.
func EncodeStamped(e Event) ([]byte, error) {
	body, err := EncodeBody(e)
	if err != nil {
		return nil, err
	}
	return codec.Marshal(stampedEventWire{Body: body, PreviousHash: e.PreviousHash, Hash: e.Hash})
}

// DecodeStamped reverses EncodeStamped, raising a decode error (to be
// treated as corruption by the caller) if data is malformed.
func DecodeStamped(data []byte) (Event, error) {
	var sw stampedEventWire
	if err := codec.Unmarshal(data, &sw); err != nil {
		return Event{}, err
	}
	var bw eventBodyWire
	if err := codec.Unmarshal(sw.Body, &bw); err != nil {
		return Event{}, err
	}
	payload, err := decodePayload(bw.Kind, bw.Payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		EventID:        bw.EventID,
		Kind:           bw.Kind,
		Tick:           Tick(bw.Tick),
		Sequence:       Sequence(bw.Sequence),
		StreamIdentity: streamid.FromWire(bw.StreamIdentity),
		PreviousHash:   sw.PreviousHash,
		Hash:           sw.Hash,
		Payload:        payload,
	}, nil
}
