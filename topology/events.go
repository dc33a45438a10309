// Package topology defines the event envelope, the closed set of topology
// event kinds, and the materialized TopologyState those events fold into.
package topology

import (
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/geo"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/idkit"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/streamid"
)

// Kind discriminates the closed set of topology event kinds. Values are
// stable and used as the canonical codec's variant index.
type Kind uint8

const (
	KindPlateCreated Kind = iota
	KindPlateRetired
	KindBoundaryCreated
	KindBoundaryTypeChanged
	KindBoundaryGeometryUpdated
	KindBoundaryRetired
	KindJunctionCreated
	KindJunctionUpdated
	KindJunctionRetired
)

// BoundaryType is the closed set of boundary kinds.
type BoundaryType uint8

const (
	Divergent BoundaryType = iota
	Convergent
	Transform
)

// Tick is simulated time: a signed 64-bit integer with numeric total order.
// Genesis is 0.
type Tick int64

// Sequence is the monotone per-stream position of an event in its log.
type Sequence int64

// PlateCreatedPayload is PlateCreated's payload.
type PlateCreatedPayload struct {
	PlateID idkit.PlateId
}

// PlateRetiredPayload is PlateRetired's payload.
type PlateRetiredPayload struct {
	PlateID idkit.PlateId
	Reason  string // empty means "no reason given"
	HasReason bool
}

// BoundaryCreatedPayload is BoundaryCreated's payload.
type BoundaryCreatedPayload struct {
	BoundaryID   idkit.BoundaryId
	PlateLeft    idkit.PlateId
	PlateRight   idkit.PlateId
	BoundaryType BoundaryType
	Geometry     geo.Geometry
}

// BoundaryTypeChangedPayload is BoundaryTypeChanged's payload.
type BoundaryTypeChangedPayload struct {
	BoundaryID idkit.BoundaryId
	OldType    BoundaryType
	NewType    BoundaryType
}

// BoundaryGeometryUpdatedPayload is BoundaryGeometryUpdated's payload.
type BoundaryGeometryUpdatedPayload struct {
	BoundaryID  idkit.BoundaryId
	NewGeometry geo.Geometry
}

// BoundaryRetiredPayload is BoundaryRetired's payload.
type BoundaryRetiredPayload struct {
	BoundaryID idkit.BoundaryId
	Reason     string
	HasReason  bool
}

// JunctionCreatedPayload is JunctionCreated's payload.
type JunctionCreatedPayload struct {
	JunctionID  idkit.JunctionId
	BoundaryIDs []idkit.BoundaryId
	Location    geo.Point2
}

// JunctionUpdatedPayload is JunctionUpdated's payload.
type JunctionUpdatedPayload struct {
	JunctionID     idkit.JunctionId
	NewBoundaryIDs []idkit.BoundaryId
	NewLocation    geo.Point2
	HasNewLocation bool
}

// JunctionRetiredPayload is JunctionRetired's payload.
type JunctionRetiredPayload struct {
	JunctionID idkit.JunctionId
	Reason     string
	HasReason  bool
}

// Event is the common envelope every topology event carries, plus its
// kind-specific Payload (one of the *Payload structs above).
type Event struct {
	EventID        idkit.EventId
	Kind           Kind
	Tick           Tick
	Sequence       Sequence
	StreamIdentity streamid.Identity
	PreviousHash   []byte // empty for genesis
	Hash           []byte // computed by the store, never trusted from callers
	Payload        any
}
