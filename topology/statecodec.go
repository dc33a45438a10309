package topology

import (
	"bytes"
	"sort"

	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/codec"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/geo"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/idkit"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/streamid"
)

// Map fields in State are Go maps, whose iteration order is randomized by
// design. The canonical codec therefore never encodes them as CBOR maps:
// it sorts each collection by its ID's raw bytes first and encodes the
// result as a plain ordered array, so two equal states always produce
// byte-identical output regardless of map iteration order.

type plateWire struct {
	_                struct{} `cbor:",toarray"`
	ID               idkit.PlateId
	Retired          bool
	RetiredReason    string
	HasRetiredReason bool
}

type boundaryWire struct {
	_                struct{} `cbor:",toarray"`
	ID               idkit.BoundaryId
	PlateLeft        idkit.PlateId
	PlateRight       idkit.PlateId
	Type             BoundaryType
	Geometry         []byte
	Retired          bool
	RetiredReason    string
	HasRetiredReason bool
}

type junctionWire struct {
	_                struct{} `cbor:",toarray"`
	ID               idkit.JunctionId
	BoundaryIDs      []idkit.BoundaryId
	Location         [2]float64
	Retired          bool
	RetiredReason    string
	HasRetiredReason bool
}

type stateWire struct {
	_                 struct{} `cbor:",toarray"`
	Identity          streamid.Wire
	LastEventSequence int64
	Plates            []plateWire
	Boundaries        []boundaryWire
	Junctions         []junctionWire
	Violations        []string
}

func idBytes16(b [16]byte) []byte { return b[:] }

// EncodeState canonically encodes s, with all three entity maps sorted by
// ID byte order first.
func EncodeState(s *State) ([]byte, error) {
	plateIDs := make([]idkit.PlateId, 0, len(s.Plates))
	for id := range s.Plates {
		plateIDs = append(plateIDs, id)
	}
	sort.Slice(plateIDs, func(i, j int) bool {
		return bytes.Compare(idBytes16(plateIDs[i]), idBytes16(plateIDs[j])) < 0
	})
	plates := make([]plateWire, len(plateIDs))
	for i, id := range plateIDs {
		p := s.Plates[id]
		plates[i] = plateWire{ID: p.ID, Retired: p.Retired, RetiredReason: p.RetiredReason, HasRetiredReason: p.HasRetiredReason}
	}

	boundaryIDs := make([]idkit.BoundaryId, 0, len(s.Boundaries))
	for id := range s.Boundaries {
		boundaryIDs = append(boundaryIDs, id)
	}
	sort.Slice(boundaryIDs, func(i, j int) bool {
		return bytes.Compare(idBytes16(boundaryIDs[i]), idBytes16(boundaryIDs[j])) < 0
	})
	boundaries := make([]boundaryWire, len(boundaryIDs))
	for i, id := range boundaryIDs {
		b := s.Boundaries[id]
		geomBytes, err := geo.Encode(b.Geometry)
		if err != nil {
			return nil, err
		}
		boundaries[i] = boundaryWire{
			ID: b.ID, PlateLeft: b.PlateLeft, PlateRight: b.PlateRight, Type: b.Type,
			Geometry: geomBytes, Retired: b.Retired, RetiredReason: b.RetiredReason, HasRetiredReason: b.HasRetiredReason,
		}
	}

	junctionIDs := make([]idkit.JunctionId, 0, len(s.Junctions))
	for id := range s.Junctions {
		junctionIDs = append(junctionIDs, id)
	}
	sort.Slice(junctionIDs, func(i, j int) bool {
		return bytes.Compare(idBytes16(junctionIDs[i]), idBytes16(junctionIDs[j])) < 0
	})
	junctions := make([]junctionWire, len(junctionIDs))
	for i, id := range junctionIDs {
		j := s.Junctions[id]
		junctions[i] = junctionWire{
			ID: j.ID, BoundaryIDs: j.BoundaryIDs, Location: [2]float64{j.Location.X, j.Location.Y},
			Retired: j.Retired, RetiredReason: j.RetiredReason, HasRetiredReason: j.HasRetiredReason,
		}
	}

	return codec.Marshal(stateWire{
		Identity:          s.Identity.ToWire(),
		LastEventSequence: int64(s.LastEventSequence),
		Plates:            plates,
		Boundaries:        boundaries,
		Junctions:         junctions,
		Violations:        s.Violations,
	})
}

// DecodeState reverses EncodeState.
func DecodeState(data []byte) (*State, error) {
	var w stateWire
	if err := codec.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	s := New(streamid.FromWire(w.Identity))
	s.LastEventSequence = Sequence(w.LastEventSequence)
	s.Violations = w.Violations
	for _, p := range w.Plates {
		s.Plates[p.ID] = Plate{ID: p.ID, Retired: p.Retired, RetiredReason: p.RetiredReason, HasRetiredReason: p.HasRetiredReason}
	}
	for _, b := range w.Boundaries {
		g, err := geo.Decode(b.Geometry)
		if err != nil {
			return nil, err
		}
		s.Boundaries[b.ID] = Boundary{
			ID: b.ID, PlateLeft: b.PlateLeft, PlateRight: b.PlateRight, Type: b.Type,
			Geometry: g, Retired: b.Retired, RetiredReason: b.RetiredReason, HasRetiredReason: b.HasRetiredReason,
		}
	}
	for _, j := range w.Junctions {
		s.Junctions[j.ID] = Junction{
			ID: j.ID, BoundaryIDs: j.BoundaryIDs, Location: geo.Point2{X: j.Location[0], Y: j.Location[1]},
			Retired: j.Retired, RetiredReason: j.RetiredReason, HasRetiredReason: j.HasRetiredReason,
		}
	}
	return s, nil
}
