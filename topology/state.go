package topology

import (
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/geo"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/idkit"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/streamid"
)

// Plate is a materialized plate entity.
type Plate struct {
	ID             idkit.PlateId
	Retired        bool
	RetiredReason  string
	HasRetiredReason bool
}

// Boundary is a materialized boundary entity separating two plates.
type Boundary struct {
	ID               idkit.BoundaryId
	PlateLeft        idkit.PlateId
	PlateRight       idkit.PlateId
	Type             BoundaryType
	Geometry         geo.Geometry
	Retired          bool
	RetiredReason    string
	HasRetiredReason bool
}

// Junction is a materialized junction entity where boundaries meet.
type Junction struct {
	ID               idkit.JunctionId
	BoundaryIDs      []idkit.BoundaryId
	Location         geo.Point2
	Retired          bool
	RetiredReason    string
	HasRetiredReason bool
}

// State is the folded snapshot of one stream's topology at some point in
// its log. Maps are exclusively owned by State; views taken of it must not
// outlive it.
type State struct {
	Identity          streamid.Identity
	LastEventSequence Sequence
	Plates            map[idkit.PlateId]Plate
	Boundaries        map[idkit.BoundaryId]Boundary
	Junctions         map[idkit.JunctionId]Junction
	Violations        []string
}

// New returns an empty State for identity, ready to be folded into.
func New(identity streamid.Identity) *State {
	return &State{
		Identity:   identity,
		Plates:     make(map[idkit.PlateId]Plate),
		Boundaries: make(map[idkit.BoundaryId]Boundary),
		Junctions:  make(map[idkit.JunctionId]Junction),
	}
}

// Clone deep-copies s so callers can fold further events onto it (used by
// the materializer's snapshot-accelerated replay) without mutating a
// cached snapshot.
func (s *State) Clone() *State {
	clone := &State{
		Identity:          s.Identity,
		LastEventSequence: s.LastEventSequence,
		Plates:            make(map[idkit.PlateId]Plate, len(s.Plates)),
		Boundaries:        make(map[idkit.BoundaryId]Boundary, len(s.Boundaries)),
		Junctions:         make(map[idkit.JunctionId]Junction, len(s.Junctions)),
		Violations:        append([]string(nil), s.Violations...),
	}
	for k, v := range s.Plates {
		clone.Plates[k] = v
	}
	for k, v := range s.Boundaries {
		b := v
		clone.Boundaries[k] = b
	}
	for k, v := range s.Junctions {
		j := v
		j.BoundaryIDs = append([]idkit.BoundaryId(nil), v.BoundaryIDs...)
		clone.Junctions[k] = j
	}
	return clone
}

// View is the read-only capability contract other components (solver,
// integrator, frame service) consume instead of a concrete *State.
type View interface {
	StreamIdentity() streamid.Identity
	LastEventSequence() Sequence
	Plate(id idkit.PlateId) (Plate, bool)
	Boundary(id idkit.BoundaryId) (Boundary, bool)
	Junction(id idkit.JunctionId) (Junction, bool)
	AllPlates() map[idkit.PlateId]Plate
	AllBoundaries() map[idkit.BoundaryId]Boundary
	AllJunctions() map[idkit.JunctionId]Junction
}

func (s *State) StreamIdentity() streamid.Identity  { return s.Identity }
func (s *State) LastEventSequence() Sequence        { return s.LastEventSequence }

func (s *State) Plate(id idkit.PlateId) (Plate, bool) {
	p, ok := s.Plates[id]
	return p, ok
}

func (s *State) Boundary(id idkit.BoundaryId) (Boundary, bool) {
	b, ok := s.Boundaries[id]
	return b, ok
}

func (s *State) Junction(id idkit.JunctionId) (Junction, bool) {
	j, ok := s.Junctions[id]
	return j, ok
}

func (s *State) AllPlates() map[idkit.PlateId]Plate         { return s.Plates }
func (s *State) AllBoundaries() map[idkit.BoundaryId]Boundary { return s.Boundaries }
func (s *State) AllJunctions() map[idkit.JunctionId]Junction { return s.Junctions }
