package topology

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/geo"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/idkit"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/streamid"
)

func testIdentity() streamid.Identity {
	return streamid.Identity{Variant: "science", Branch: "trunk", Level: 0, Domain: "geo.plates", Model: "m0"}
}

func TestNewStateIsEmpty(t *testing.T) {
	s := New(testIdentity())
	require.Empty(t, s.AllPlates())
	require.Empty(t, s.AllBoundaries())
	require.Empty(t, s.AllJunctions())
	require.Equal(t, Sequence(0), s.LastEventSequence())
}

func TestCloneIsIndependentOfOriginal(t *testing.T) {
	s := New(testIdentity())
	plateID := idkit.NewID[idkit.PlateId]()
	s.Plates[plateID] = Plate{ID: plateID}

	clone := s.Clone()
	clone.Plates[plateID] = Plate{ID: plateID, Retired: true}

	require.False(t, s.Plates[plateID].Retired)
	require.True(t, clone.Plates[plateID].Retired)
}

func TestCloneDeepCopiesJunctionBoundaryIDs(t *testing.T) {
	s := New(testIdentity())
	boundaryID := idkit.NewID[idkit.BoundaryId]()
	junctionID := idkit.NewID[idkit.JunctionId]()
	s.Junctions[junctionID] = Junction{ID: junctionID, BoundaryIDs: []idkit.BoundaryId{boundaryID}}

	clone := s.Clone()
	clone.Junctions[junctionID].BoundaryIDs[0] = idkit.NewID[idkit.BoundaryId]()

	require.Equal(t, boundaryID, s.Junctions[junctionID].BoundaryIDs[0])
}

func TestViewAccessorsDelegateToState(t *testing.T) {
	s := New(testIdentity())
	plateID := idkit.NewID[idkit.PlateId]()
	s.Plates[plateID] = Plate{ID: plateID}

	var v View = s
	require.Equal(t, testIdentity(), v.StreamIdentity())
	p, ok := v.Plate(plateID)
	require.True(t, ok)
	require.Equal(t, plateID, p.ID)

	_, ok = v.Plate(idkit.NewID[idkit.PlateId]())
	require.False(t, ok)
}

func TestEncodeBodyDecodeStampedRoundTripsPlateCreated(t *testing.T) {
	plateID := idkit.NewID[idkit.PlateId]()
	e := Event{
		EventID:        idkit.NewID[idkit.EventId](),
		Kind:           KindPlateCreated,
		Tick:           5,
		Sequence:       1,
		StreamIdentity: testIdentity(),
		Payload:        PlateCreatedPayload{PlateID: plateID},
	}
	body, err := EncodeBody(e)
	require.NoError(t, err)
	require.NotEmpty(t, body)

	e.PreviousHash = []byte{1, 2, 3}
	e.Hash = []byte{4, 5, 6}
	stamped, err := EncodeStamped(e)
	require.NoError(t, err)

	decoded, err := DecodeStamped(stamped)
	require.NoError(t, err)
	require.Equal(t, e.EventID, decoded.EventID)
	require.Equal(t, e.Tick, decoded.Tick)
	require.Equal(t, e.Sequence, decoded.Sequence)
	require.True(t, e.StreamIdentity.Equal(decoded.StreamIdentity))
	require.Equal(t, e.PreviousHash, decoded.PreviousHash)
	require.Equal(t, e.Hash, decoded.Hash)
	require.Equal(t, PlateCreatedPayload{PlateID: plateID}, decoded.Payload)
}

func TestEncodeBodyDecodeStampedRoundTripsBoundaryCreatedWithGeometry(t *testing.T) {
	boundaryID := idkit.NewID[idkit.BoundaryId]()
	plateA := idkit.NewID[idkit.PlateId]()
	plateB := idkit.NewID[idkit.PlateId]()
	geom := geo.Polyline3{Points: []geo.Point3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1}}}

	e := Event{
		EventID:        idkit.NewID[idkit.EventId](),
		Kind:           KindBoundaryCreated,
		Tick:           0,
		Sequence:       1,
		StreamIdentity: testIdentity(),
		Payload: BoundaryCreatedPayload{
			BoundaryID: boundaryID, PlateLeft: plateA, PlateRight: plateB,
			BoundaryType: Convergent, Geometry: geom,
		},
	}
	stamped, err := EncodeStamped(e)
	require.NoError(t, err)

	decoded, err := DecodeStamped(stamped)
	require.NoError(t, err)
	payload := decoded.Payload.(BoundaryCreatedPayload)
	require.Equal(t, boundaryID, payload.BoundaryID)
	require.Equal(t, Convergent, payload.BoundaryType)
	require.Equal(t, geom, payload.Geometry)
}

func TestDecodeStampedRejectsCorruptBytes(t *testing.T) {
	_, err := DecodeStamped([]byte("not cbor"))
	require.Error(t, err)
}

func TestEncodeStateDecodeStateRoundTrips(t *testing.T) {
	s := New(testIdentity())
	s.LastEventSequence = 9
	plateID := idkit.NewID[idkit.PlateId]()
	s.Plates[plateID] = Plate{ID: plateID, Retired: true, RetiredReason: "subducted", HasRetiredReason: true}

	boundaryID := idkit.NewID[idkit.BoundaryId]()
	s.Boundaries[boundaryID] = Boundary{
		ID: boundaryID, PlateLeft: plateID, PlateRight: idkit.NewID[idkit.PlateId](),
		Type: Divergent, Geometry: geo.Point2{X: 1, Y: 2},
	}

	junctionID := idkit.NewID[idkit.JunctionId]()
	s.Junctions[junctionID] = Junction{ID: junctionID, BoundaryIDs: []idkit.BoundaryId{boundaryID}, Location: geo.Point2{X: 3, Y: 4}}
	s.Violations = []string{"BoundarySeparatesTwoPlates"}

	data, err := EncodeState(s)
	require.NoError(t, err)

	decoded, err := DecodeState(data)
	require.NoError(t, err)
	require.True(t, s.Identity.Equal(decoded.Identity))
	require.Equal(t, s.LastEventSequence, decoded.LastEventSequence)
	require.Equal(t, s.Plates[plateID], decoded.Plates[plateID])
	require.Equal(t, s.Boundaries[boundaryID].Geometry, decoded.Boundaries[boundaryID].Geometry)
	require.Equal(t, s.Junctions[junctionID].Location, decoded.Junctions[junctionID].Location)
	require.Equal(t, s.Violations, decoded.Violations)
}

func TestEncodeStateIsDeterministicAcrossMapIterationOrder(t *testing.T) {
	s := New(testIdentity())
	for i := 0; i < 8; i++ {
		id := idkit.NewID[idkit.PlateId]()
		s.Plates[id] = Plate{ID: id}
	}
	d1, err := EncodeState(s)
	require.NoError(t, err)
	d2, err := EncodeState(s)
	require.NoError(t, err)
	require.Equal(t, d1, d2)
}
