// Package invariant validates a materialized topology.State with three
// ordered checks: boundary plate references (both exist, left != right),
// junction boundary references, and FR-016 (no active junction references a
// retired boundary). Check stops at the first violation; CheckAll reports
// every one.
package invariant

import (
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/idkit"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/internal/errs"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/topology"
)

// Check runs every check in spec order, returning the first violation as a
// *errs.Coded, or nil if the state is valid. Callers that need every
// violation rather than the first (as the materializer does to fill
// State.Violations) should use CheckAll instead.
func Check(s *topology.State) error {
	if v := firstViolation(s); v != nil {
		return v
	}
	return nil
}

// CheckAll runs every check without stopping early, returning a message
// per violation found. The materializer calls it once after folding to
// populate State.Violations, and fails the whole operation if the returned
// slice is non-empty.
func CheckAll(s *topology.State) []string {
	var msgs []string
	for _, b := range s.Boundaries {
		if b.Retired {
			continue
		}
		if _, ok := s.Plates[b.PlateLeft]; !ok {
			msgs = append(msgs, "BoundarySeparatesTwoPlates: boundary "+b.ID.String()+" has unknown plate_left")
			continue
		}
		if _, ok := s.Plates[b.PlateRight]; !ok {
			msgs = append(msgs, "BoundarySeparatesTwoPlates: boundary "+b.ID.String()+" has unknown plate_right")
			continue
		}
		if b.PlateLeft == b.PlateRight {
			msgs = append(msgs, "BoundarySeparatesTwoPlates: boundary "+b.ID.String()+" has plate_left == plate_right")
		}
	}
	for _, j := range s.Junctions {
		if j.Retired {
			continue
		}
		for _, bid := range j.BoundaryIDs {
			if _, ok := s.Boundaries[bid]; !ok {
				msgs = append(msgs, "JunctionReferencesUnknownBoundary: junction "+j.ID.String()+" references "+bid.String())
			}
		}
	}
	for _, b := range s.Boundaries {
		if !b.Retired {
			continue
		}
		for _, j := range s.Junctions {
			if j.Retired {
				continue
			}
			for _, bid := range j.BoundaryIDs {
				if bid == b.ID {
					msgs = append(msgs, "FR-016-RetiredBoundaryReferenced: junction "+j.ID.String()+" references retired boundary "+b.ID.String())
				}
			}
		}
	}
	return msgs
}

// firstViolation implements the same three-check order as CheckAll, but
// returns immediately on the first failure; Check is built on it.
func firstViolation(s *topology.State) error {
	for _, b := range s.Boundaries {
		if b.Retired {
			continue
		}
		if _, ok := s.Plates[b.PlateLeft]; !ok {
			return errs.New(errs.KindInvariant, "BoundarySeparatesTwoPlates", "boundary plate_left does not exist",
				map[string]string{"boundary_id": b.ID.String(), "plate_id": b.PlateLeft.String()})
		}
		if _, ok := s.Plates[b.PlateRight]; !ok {
			return errs.New(errs.KindInvariant, "BoundarySeparatesTwoPlates", "boundary plate_right does not exist",
				map[string]string{"boundary_id": b.ID.String(), "plate_id": b.PlateRight.String()})
		}
		if b.PlateLeft == b.PlateRight {
			return errs.New(errs.KindInvariant, "BoundarySeparatesTwoPlates", "boundary's two plate refs are identical",
				map[string]string{"boundary_id": b.ID.String(), "plate_id": b.PlateLeft.String()})
		}
	}
	for _, j := range s.Junctions {
		if j.Retired {
			continue
		}
		for _, bid := range j.BoundaryIDs {
			if _, ok := s.Boundaries[bid]; !ok {
				return errs.New(errs.KindInvariant, "JunctionReferencesUnknownBoundary", "junction references unknown boundary",
					map[string]string{"junction_id": j.ID.String(), "boundary_id": bid.String()})
			}
		}
	}
	retiredReferenced := func() (idkit.JunctionId, idkit.BoundaryId, bool) {
		for _, b := range s.Boundaries {
			if !b.Retired {
				continue
			}
			for _, j := range s.Junctions {
				if j.Retired {
					continue
				}
				for _, bid := range j.BoundaryIDs {
					if bid == b.ID {
						return j.ID, b.ID, true
					}
				}
			}
		}
		return idkit.JunctionId{}, idkit.BoundaryId{}, false
	}
	if jid, bid, found := retiredReferenced(); found {
		return errs.New(errs.KindInvariant, "FR-016-RetiredBoundaryReferenced", "a non-retired junction references a retired boundary",
			map[string]string{"junction_id": jid.String(), "boundary_id": bid.String()})
	}
	return nil
}
