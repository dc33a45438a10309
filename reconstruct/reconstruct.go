// Package reconstruct implements the reconstruction solver (spec component
// C9): given a materialized topology and an external kinematics view, it
// deterministically reconstructs boundaries and features at a target tick
// with full provenance and a deterministic cache key.
package reconstruct

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/codec"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/geo"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/idkit"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/rotation"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/streamid"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/topology"
)

// KinematicsView is the read-only capability contract the solver
// consumes instead of a concrete kinematics model — the model
// itself (a real plate-motion model) is external to this module.
type KinematicsView interface {
	// TryGetRotation returns plate's incremental rotation at tick and true,
	// or (identity, false) if the view has no data for (plate, tick). The
	// solver substitutes identity on false rather than failing.
	TryGetRotation(plate idkit.PlateId, tick topology.Tick) (rotation.Quaternion, bool)
}

// PartitionView resolves which plates' regions contain a 2-D point, for
// feature plate-assignment. Like KinematicsView, true geometry/partition
// computation is external; this module only consumes the result.
type PartitionView interface {
	// PlatesContaining returns every plate id whose partition region
	// contains p, in no particular order. An empty result means no
	// partition claims p.
	PlatesContaining(p geo.Point2) []idkit.PlateId
}

// Policy carries the reconstruction run's documented, non-inferred
// choices: the fields that land verbatim in the result's provenance.
type Policy struct {
	ReferenceFrame      string
	InterpolationMethod string
	SolverVersion       string
}

// PlateAssignment records how a feature's plate provenance was decided.
// Method is a stable string rather than a closed enum (see DESIGN.md):
// new assignment strategies can be added without a breaking type change.
type PlateAssignment struct {
	Method     string
	Confidence float64
}

const (
	// MethodDocumentedPolicy is used for boundaries, whose provenance is
	// plate_left by fixed policy, never inferred from geometry.
	MethodDocumentedPolicy = "documented-policy"
	// MethodLowestPlateIDWins is used for features assigned by partition
	// containment with the lowest-id tie-break.
	MethodLowestPlateIDWins = "lowest-plate-id-wins"
	// MethodPreexisting is used when an input feature already carried
	// provenance, which this solver never overrides.
	MethodPreexisting = "preexisting"
	// MethodUnsupportedGeometry marks a feature whose geometry class is
	// not eligible for assignment; it passes through with null provenance.
	MethodUnsupportedGeometry = "unsupported-geometry"
)

// KinematicsProvenance records the reference frame and interpolation
// method used, verbatim from Policy.
type KinematicsProvenance struct {
	ReferenceFrame      string
	InterpolationMethod string
}

// StreamProvenance carries the two streams' canonical identity strings —
// not content hashes, since identity already changes when level/model
// change.
type StreamProvenance struct {
	TopologyStreamHash   string
	KinematicsStreamHash string
}

// QueryMetadata records the query parameters a result was produced under.
type QueryMetadata struct {
	QueryTick     topology.Tick
	SolverVersion string
}

// Provenance is the full provenance record attached to one reconstruction
// result.
type Provenance struct {
	SourceBoundaryIDs []idkit.BoundaryId
	Kinematics        KinematicsProvenance
	Stream            StreamProvenance
	Query             QueryMetadata
}

// Metadata carries the deterministic cache key.
type Metadata struct {
	CacheKey string
}

// ReconstructedBoundary is one boundary placed at the target tick, with
// its fixed (not inferred) plate provenance.
type ReconstructedBoundary struct {
	ID              idkit.BoundaryId
	PlateLeft       idkit.PlateId
	PlateRight      idkit.PlateId
	Type            topology.BoundaryType
	Geometry        geo.Geometry
	PlateProvenance idkit.PlateId
	Assignment      PlateAssignment
}

// BoundaryResult is the output of ReconstructBoundaries.
type BoundaryResult struct {
	Boundaries []ReconstructedBoundary
	Provenance Provenance
	Metadata   Metadata
}

// InputFeature is a feature to reconstruct. HasProvenance true means
// PlateProvenance was already assigned upstream and must never be
// overridden.
type InputFeature struct {
	ID              idkit.FeatureId
	Geometry        geo.Geometry
	PlateProvenance idkit.PlateId
	HasProvenance   bool
}

// ReconstructedFeature is one feature placed at the target tick with its
// resolved (or passed-through) plate provenance.
type ReconstructedFeature struct {
	ID              idkit.FeatureId
	Geometry        geo.Geometry
	PlateProvenance idkit.PlateId
	HasProvenance   bool
	Assignment      PlateAssignment
}

// FeatureResult is the output of ReconstructFeatures.
type FeatureResult struct {
	Features   []ReconstructedFeature
	Provenance Provenance
	Metadata   Metadata
}

// Solver reconstructs boundaries and features from a topology view and a
// kinematics view. Instances are per-call and hold no mutable state.
type Solver struct{}

// New returns a Solver.
func New() *Solver { return &Solver{} }

func idLess16(a, b [16]byte) bool { return bytes.Compare(a[:], b[:]) < 0 }

// ReconstructBoundaries places every non-retired boundary of view at
// targetTick, in ascending boundary-ID byte order, with plate_provenance
// fixed to plate_left by documented policy.
func (s *Solver) ReconstructBoundaries(view topology.View, kin KinematicsView, kinematicsStream streamid.Identity, policy Policy, targetTick topology.Tick) BoundaryResult {
	all := view.AllBoundaries()
	ids := make([]idkit.BoundaryId, 0, len(all))
	for id, b := range all {
		if b.Retired {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return idLess16(ids[i], ids[j]) })

	out := make([]ReconstructedBoundary, 0, len(ids))
	for _, id := range ids {
		b := all[id]
		geometry := rotateGeometry(b.Geometry, b.PlateLeft, kin, targetTick)
		out = append(out, ReconstructedBoundary{
			ID: b.ID, PlateLeft: b.PlateLeft, PlateRight: b.PlateRight, Type: b.Type,
			Geometry:        geometry,
			PlateProvenance: b.PlateLeft,
			Assignment:      PlateAssignment{Method: MethodDocumentedPolicy, Confidence: 1.0},
		})
	}

	prov := Provenance{
		SourceBoundaryIDs: ids,
		Kinematics:        KinematicsProvenance{ReferenceFrame: policy.ReferenceFrame, InterpolationMethod: policy.InterpolationMethod},
		Stream:            StreamProvenance{TopologyStreamHash: view.StreamIdentity().Canonical(), KinematicsStreamHash: kinematicsStream.Canonical()},
		Query:             QueryMetadata{QueryTick: targetTick, SolverVersion: policy.SolverVersion},
	}
	return BoundaryResult{
		Boundaries: out,
		Provenance: prov,
		Metadata:   Metadata{CacheKey: cacheKey(view.StreamIdentity(), kinematicsStream, policy, targetTick)},
	}
}

// ReconstructFeatures places each of features at targetTick, resolving
// plate provenance for unassigned 2-D point/polyline features via
// partition containment (lowest plate id wins on overlap), and never
// overriding a feature that already carries provenance. Input order is
// preserved in the output.
func (s *Solver) ReconstructFeatures(view topology.View, kin KinematicsView, partition PartitionView, kinematicsStream streamid.Identity, policy Policy, targetTick topology.Tick, features []InputFeature) FeatureResult {
	out := make([]ReconstructedFeature, len(features))
	for i, f := range features {
		rf := ReconstructedFeature{ID: f.ID, PlateProvenance: f.PlateProvenance, HasProvenance: f.HasProvenance}

		if f.HasProvenance {
			rf.Assignment = PlateAssignment{Method: MethodPreexisting, Confidence: 1.0}
			rf.Geometry = rotateGeometry(f.Geometry, f.PlateProvenance, kin, targetTick)
			out[i] = rf
			continue
		}

		plate, confidence, assigned := assignPlate(f.Geometry, partition)
		if !assigned {
			rf.Assignment = PlateAssignment{Method: MethodUnsupportedGeometry, Confidence: 0}
			rf.Geometry = f.Geometry
			out[i] = rf
			continue
		}

		rf.PlateProvenance = plate
		rf.HasProvenance = true
		rf.Assignment = PlateAssignment{Method: MethodLowestPlateIDWins, Confidence: confidence}
		rf.Geometry = rotateGeometry(f.Geometry, plate, kin, targetTick)
		out[i] = rf
	}

	prov := Provenance{
		Kinematics: KinematicsProvenance{ReferenceFrame: policy.ReferenceFrame, InterpolationMethod: policy.InterpolationMethod},
		Stream:     StreamProvenance{TopologyStreamHash: view.StreamIdentity().Canonical(), KinematicsStreamHash: kinematicsStream.Canonical()},
		Query:      QueryMetadata{QueryTick: targetTick, SolverVersion: policy.SolverVersion},
	}
	return FeatureResult{
		Features:   out,
		Provenance: prov,
		Metadata:   Metadata{CacheKey: cacheKey(view.StreamIdentity(), kinematicsStream, policy, targetTick)},
	}
}

// representativePoint returns the point used to test partition containment
// for a feature's geometry. Only Point2 and Polyline2 are supported, per
// spec; any other geometry class is not eligible for assignment.
func representativePoint(g geo.Geometry) (geo.Point2, bool) {
	switch v := g.(type) {
	case geo.Point2:
		return v, true
	case geo.Polyline2:
		if len(v.Points) == 0 {
			return geo.Point2{}, false
		}
		return v.Points[0], true
	default:
		return geo.Point2{}, false
	}
}

// assignPlate resolves plate provenance for geometry via partition by
// lowest-plate-id-wins tie-break on overlap. confidence is 1.0 when
// exactly one plate claims the representative point, and 0.5 when more
// than one plate overlaps and a tie-break was needed — an overlap means
// the assignment is less certain than a clean single-region hit.
func assignPlate(g geo.Geometry, partition PartitionView) (idkit.PlateId, float64, bool) {
	if partition == nil {
		return idkit.PlateId{}, 0, false
	}
	pt, ok := representativePoint(g)
	if !ok {
		return idkit.PlateId{}, 0, false
	}
	candidates := partition.PlatesContaining(pt)
	if len(candidates) == 0 {
		return idkit.PlateId{}, 0, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if idLess16(c, best) {
			best = c
		}
	}
	confidence := 1.0
	if len(candidates) > 1 {
		confidence = 0.5
	}
	return best, confidence, true
}

// rotateGeometry applies plate's rotation at targetTick to g, substituting
// the identity rotation when the kinematics view has no entry (documented
// fallback, never an error).
func rotateGeometry(g geo.Geometry, plate idkit.PlateId, kin KinematicsView, targetTick topology.Tick) geo.Geometry {
	q := rotation.Identity
	if kin != nil {
		if r, ok := kin.TryGetRotation(plate, targetTick); ok {
			q = r
		}
	}
	if q.IsIdentity() {
		return g
	}
	return applyRotation(g, q)
}

func applyRotation(g geo.Geometry, q rotation.Quaternion) geo.Geometry {
	switch v := g.(type) {
	case geo.Point3:
		return q.Apply(v)
	case geo.Polyline3:
		pts := make([]geo.Point3, len(v.Points))
		for i, p := range v.Points {
			pts[i] = q.Apply(p)
		}
		return geo.Polyline3{Points: pts}
	default:
		// 2-D geometry classes (Point2, Polyline2, Segment2,
		// PolygonRegion2) are map-space, not sphere-space; rotation does
		// not apply to them.
		return g
	}
}

type cacheKeyWire struct {
	_                   struct{} `cbor:",toarray"`
	TopologyStream      streamid.Wire
	KinematicsStream    streamid.Wire
	ReferenceFrame      string
	InterpolationMethod string
	SolverVersion       string
	TargetTick          int64
}

// cacheKey computes metadata.cache_key: a deterministic function of the
// two stream identities, the policy, and the target tick, via the same
// canonical codec used for persisted state, then SHA-256-hashed to a fixed-
// width hex string.
func cacheKey(topologyStream, kinematicsStream streamid.Identity, policy Policy, targetTick topology.Tick) string {
	encoded, err := codec.Marshal(cacheKeyWire{
		TopologyStream:      topologyStream.ToWire(),
		KinematicsStream:    kinematicsStream.ToWire(),
		ReferenceFrame:      policy.ReferenceFrame,
		InterpolationMethod: policy.InterpolationMethod,
		SolverVersion:       policy.SolverVersion,
		TargetTick:          int64(targetTick),
	})
	if err != nil {
		// cacheKeyWire is a fixed, always-encodable shape; a failure here
		// indicates a codec-level bug, not a data problem a caller can act
		// on differently than any other cache-key consumer.
		panic("reconstruct: cache key encode: " + err.Error())
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}
