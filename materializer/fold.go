package materializer

import (
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/internal/errs"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/topology"
)

// fold applies one event to s in place, per the effect table: each event
// kind either inserts a new entity or mutates an existing one, and every
// mutation of an absent or already-retired entity is an error. fold never
// runs the invariant checker itself; callers run it once per materialize
// call, after the whole batch has been folded.
func fold(s *topology.State, e topology.Event) error {
	switch e.Kind {
	case topology.KindPlateCreated:
		p := e.Payload.(topology.PlateCreatedPayload)
		if _, exists := s.Plates[p.PlateID]; exists {
			return errs.New(errs.KindInvariant, "PlateAlreadyExists", "plate id already exists", map[string]string{"plate_id": p.PlateID.String()})
		}
		s.Plates[p.PlateID] = topology.Plate{ID: p.PlateID}

	case topology.KindPlateRetired:
		p := e.Payload.(topology.PlateRetiredPayload)
		plate, ok := s.Plates[p.PlateID]
		if !ok {
			return errs.New(errs.KindInvariant, "PlateNotFound", "plate retired event references an absent plate", map[string]string{"plate_id": p.PlateID.String()})
		}
		plate.Retired = true
		plate.RetiredReason = p.Reason
		plate.HasRetiredReason = p.HasReason
		s.Plates[p.PlateID] = plate

	case topology.KindBoundaryCreated:
		b := e.Payload.(topology.BoundaryCreatedPayload)
		if _, exists := s.Boundaries[b.BoundaryID]; exists {
			return errs.New(errs.KindInvariant, "BoundaryAlreadyExists", "boundary id already exists", map[string]string{"boundary_id": b.BoundaryID.String()})
		}
		if _, ok := s.Plates[b.PlateLeft]; !ok {
			return errs.New(errs.KindInvariant, "BoundaryUnknownPlate", "boundary references an unknown plate_left", map[string]string{"boundary_id": b.BoundaryID.String(), "plate_id": b.PlateLeft.String()})
		}
		if _, ok := s.Plates[b.PlateRight]; !ok {
			return errs.New(errs.KindInvariant, "BoundaryUnknownPlate", "boundary references an unknown plate_right", map[string]string{"boundary_id": b.BoundaryID.String(), "plate_id": b.PlateRight.String()})
		}
		s.Boundaries[b.BoundaryID] = topology.Boundary{
			ID: b.BoundaryID, PlateLeft: b.PlateLeft, PlateRight: b.PlateRight,
			Type: b.BoundaryType, Geometry: b.Geometry,
		}

	case topology.KindBoundaryTypeChanged:
		c := e.Payload.(topology.BoundaryTypeChangedPayload)
		boundary, ok := s.Boundaries[c.BoundaryID]
		if !ok {
			return errs.New(errs.KindInvariant, "BoundaryNotFound", "boundary type change references an absent boundary", map[string]string{"boundary_id": c.BoundaryID.String()})
		}
		if boundary.Retired {
			return errs.New(errs.KindInvariant, "BoundaryRetired", "boundary type change on a retired boundary", map[string]string{"boundary_id": c.BoundaryID.String()})
		}
		boundary.Type = c.NewType
		s.Boundaries[c.BoundaryID] = boundary

	case topology.KindBoundaryGeometryUpdated:
		u := e.Payload.(topology.BoundaryGeometryUpdatedPayload)
		boundary, ok := s.Boundaries[u.BoundaryID]
		if !ok {
			return errs.New(errs.KindInvariant, "BoundaryNotFound", "boundary geometry update references an absent boundary", map[string]string{"boundary_id": u.BoundaryID.String()})
		}
		if boundary.Retired {
			return errs.New(errs.KindInvariant, "BoundaryRetired", "boundary geometry update on a retired boundary", map[string]string{"boundary_id": u.BoundaryID.String()})
		}
		boundary.Geometry = u.NewGeometry
		s.Boundaries[u.BoundaryID] = boundary

	case topology.KindBoundaryRetired:
		r := e.Payload.(topology.BoundaryRetiredPayload)
		boundary, ok := s.Boundaries[r.BoundaryID]
		if !ok {
			return errs.New(errs.KindInvariant, "BoundaryNotFound", "boundary retired event references an absent boundary", map[string]string{"boundary_id": r.BoundaryID.String()})
		}
		boundary.Retired = true
		boundary.RetiredReason = r.Reason
		boundary.HasRetiredReason = r.HasReason
		s.Boundaries[r.BoundaryID] = boundary

	case topology.KindJunctionCreated:
		j := e.Payload.(topology.JunctionCreatedPayload)
		if _, exists := s.Junctions[j.JunctionID]; exists {
			return errs.New(errs.KindInvariant, "JunctionAlreadyExists", "junction id already exists", map[string]string{"junction_id": j.JunctionID.String()})
		}
		for _, bid := range j.BoundaryIDs {
			if _, ok := s.Boundaries[bid]; !ok {
				return errs.New(errs.KindInvariant, "JunctionUnknownBoundary", "junction references an unknown boundary", map[string]string{"junction_id": j.JunctionID.String(), "boundary_id": bid.String()})
			}
		}
		s.Junctions[j.JunctionID] = topology.Junction{ID: j.JunctionID, BoundaryIDs: j.BoundaryIDs, Location: j.Location}

	case topology.KindJunctionUpdated:
		u := e.Payload.(topology.JunctionUpdatedPayload)
		junction, ok := s.Junctions[u.JunctionID]
		if !ok {
			return errs.New(errs.KindInvariant, "JunctionNotFound", "junction update references an absent junction", map[string]string{"junction_id": u.JunctionID.String()})
		}
		if junction.Retired {
			return errs.New(errs.KindInvariant, "JunctionRetired", "junction update on a retired junction", map[string]string{"junction_id": u.JunctionID.String()})
		}
		if u.NewBoundaryIDs != nil {
			for _, bid := range u.NewBoundaryIDs {
				if _, ok := s.Boundaries[bid]; !ok {
					return errs.New(errs.KindInvariant, "JunctionUnknownBoundary", "junction update references an unknown boundary", map[string]string{"junction_id": u.JunctionID.String(), "boundary_id": bid.String()})
				}
			}
			junction.BoundaryIDs = u.NewBoundaryIDs
		}
		if u.HasNewLocation {
			junction.Location = u.NewLocation
		}
		s.Junctions[u.JunctionID] = junction

	case topology.KindJunctionRetired:
		r := e.Payload.(topology.JunctionRetiredPayload)
		junction, ok := s.Junctions[r.JunctionID]
		if !ok {
			return errs.New(errs.KindInvariant, "JunctionNotFound", "junction retired event references an absent junction", map[string]string{"junction_id": r.JunctionID.String()})
		}
		junction.Retired = true
		junction.RetiredReason = r.Reason
		junction.HasRetiredReason = r.HasReason
		s.Junctions[r.JunctionID] = junction
	}

	s.LastEventSequence = e.Sequence
	return nil
}
