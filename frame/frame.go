// Package frame implements the reference-frame service (spec component
// C11): composing transforms between the mantle frame, the absolute
// frame, and per-plate anchor frames, plus frame-chain validation,
// canonicalization, and the mantle net-rotation calculator.
package frame

import (
	"sort"

	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/idkit"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/internal/errs"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/rotation"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/topology"
)

// Kind is the closed set of reference frames.
type Kind uint8

const (
	KindMantle Kind = iota
	KindAbsolute
	KindPlateAnchor
)

// Frame identifies a reference frame. Plate is meaningful only when Kind
// is KindPlateAnchor.
type Frame struct {
	Kind  Kind
	Plate idkit.PlateId
}

// Mantle returns the mantle frame.
func Mantle() Frame { return Frame{Kind: KindMantle} }

// Absolute returns the absolute (true-polar-wander-corrected) frame.
func Absolute() Frame { return Frame{Kind: KindAbsolute} }

// PlateAnchor returns the anchor frame co-rotating with plate.
func PlateAnchor(plate idkit.PlateId) Frame { return Frame{Kind: KindPlateAnchor, Plate: plate} }

// Equal reports whether f and other name the same frame.
func (f Frame) Equal(other Frame) bool {
	if f.Kind != other.Kind {
		return false
	}
	if f.Kind == KindPlateAnchor {
		return f.Plate == other.Plate
	}
	return true
}

// Validity reports whether a composed transform rests entirely on present
// data or had to substitute identity for a missing input.
type Validity uint8

const (
	Valid Validity = iota
	PartialOrAbsent
)

// Provenance records how a transform_between result was derived.
type Provenance struct {
	// Path is the frame sequence the transform was composed through,
	// always starting at from and ending at to.
	Path []Frame
	// UsedTPWModel is true whenever a TPWModel was supplied and from or to
	// is Absolute. It is set even when the model has no rotation at the
	// tick (that leg collapses to identity) or a model link overrides the
	// Absolute frame's rotation.
	UsedTPWModel bool
	// MissingKinematicsPlates lists plate anchors along Path whose
	// kinematics view had no entry at the query tick.
	MissingKinematicsPlates []idkit.PlateId
}

// KinematicsView answers a plate's absolute rotation at a tick. Distinct
// from reconstruct.KinematicsView and integrator.AngularVelocityView —
// each consumer gets its own narrow capability contract.
type KinematicsView interface {
	TryGetRotation(plate idkit.PlateId, tick topology.Tick) (rotation.Quaternion, bool)
}

// AreaView supplies plate area weights for the mantle net-rotation
// calculator. When nil, NetRotation falls back to uniform weighting.
type AreaView interface {
	TryGetArea(plate idkit.PlateId) (area float64, present bool)
}

// TPWModel answers the true-polar-wander rotation at a tick: the
// Mantle->Absolute transform. When absent (tpw is nil to TransformBetween),
// the Absolute<->Mantle leg collapses to identity.
type TPWModel interface {
	GetRotationAt(tick topology.Tick) (rotation.Quaternion, bool)
}

// plateToMantle returns the PlateAnchor(plate)->Mantle rotation and
// whether the kinematics view actually had an entry for it.
func plateToMantle(plate idkit.PlateId, tick topology.Tick, kin KinematicsView) (rotation.Quaternion, bool) {
	if kin == nil {
		return rotation.Identity, false
	}
	q, present := kin.TryGetRotation(plate, tick)
	if !present {
		return rotation.Identity, false
	}
	return q, true
}

// modelOverride returns the Transform of the last link in model whose
// BaseFrame equals f and whose ValidityRange (nil counts as always-valid)
// covers tick, if any. A FrameDefinition lets a caller pin a frame's
// ->Mantle rotation explicitly instead of deriving it from kinematics or
// a TPW model; later links take precedence over earlier ones.
func modelOverride(model *FrameDefinition, f Frame, tick topology.Tick) (rotation.Quaternion, bool) {
	if model == nil {
		return rotation.Identity, false
	}
	found := false
	var q rotation.Quaternion
	for _, link := range model.Links {
		if !link.BaseFrame.Equal(f) {
			continue
		}
		if link.ValidityRange != nil && (tick < link.ValidityRange.Start || tick > link.ValidityRange.End) {
			continue
		}
		q, found = link.Transform, true
	}
	return q, found
}

// toMantle returns the f->Mantle rotation, whether it rested on present
// data, and the plate (if any) whose kinematics were missing. model, when
// non-nil, may override the default rule for f (see modelOverride).
func toMantle(f Frame, tick topology.Tick, model *FrameDefinition, kin KinematicsView, tpw TPWModel) (rotation.Quaternion, bool, idkit.PlateId, bool) {
	if q, ok := modelOverride(model, f, tick); ok {
		return q, true, idkit.PlateId{}, false
	}
	switch f.Kind {
	case KindMantle:
		return rotation.Identity, true, idkit.PlateId{}, false
	case KindPlateAnchor:
		q, present := plateToMantle(f.Plate, tick, kin)
		return q, present, f.Plate, !present
	case KindAbsolute:
		if tpw == nil {
			return rotation.Identity, true, idkit.PlateId{}, false
		}
		q, present := tpw.GetRotationAt(tick)
		if !present {
			return rotation.Identity, false, idkit.PlateId{}, false
		}
		// q is Mantle->Absolute; Absolute->Mantle is its inverse.
		return q.Inverse(), true, idkit.PlateId{}, false
	default:
		return rotation.Identity, true, idkit.PlateId{}, false
	}
}

// TransformBetween composes the rotation carrying coordinates from frame
// from to frame to at tick, per spec:
//
//	Mantle->Mantle = identity. PlateAnchor->Mantle = plate rotation at
//	tick. Mantle->PlateAnchor = inverse. PlateAnchor->PlateAnchor =
//	compose. Absolute<->Mantle: identity when tpw is absent, otherwise
//	the TPW rotation at tick.
//
// model is an optional FrameDefinition whose links pin a frame's ->Mantle
// rotation directly rather than deriving it from kin/tpw; pass nil to
// always use the default rules. Missing kinematics for a requested plate
// anchor never fails the call; it substitutes identity for that leg and
// is reported via validity and provenance.
func TransformBetween(from, to Frame, tick topology.Tick, model *FrameDefinition, kin KinematicsView, tpw TPWModel) (rotation.Quaternion, Validity, Provenance) {
	fromToMantle, fromOK, fromMissingPlate, fromMissing := toMantle(from, tick, model, kin, tpw)
	toToMantle, toOK, toMissingPlate, toMissing := toMantle(to, tick, model, kin, tpw)

	result := rotation.Compose(toToMantle.Inverse(), fromToMantle)

	validity := Valid
	if !fromOK || !toOK {
		validity = PartialOrAbsent
	}

	prov := Provenance{
		Path:         []Frame{from, Mantle(), to},
		UsedTPWModel: tpw != nil && (from.Kind == KindAbsolute || to.Kind == KindAbsolute),
	}
	if fromMissing {
		prov.MissingKinematicsPlates = append(prov.MissingKinematicsPlates, fromMissingPlate)
	}
	if toMissing {
		prov.MissingKinematicsPlates = append(prov.MissingKinematicsPlates, toMissingPlate)
	}

	return result, validity, prov
}

// TickRange is an inclusive [Start, End] validity window.
type TickRange struct {
	Start, End topology.Tick
}

func (r TickRange) overlaps(o TickRange) bool {
	return r.Start <= o.End && o.Start <= r.End
}

func (r TickRange) adjacentTo(o TickRange) bool {
	return r.End+1 == o.Start || o.End+1 == r.Start
}

func (r TickRange) union(o TickRange) TickRange {
	start, end := r.Start, r.End
	if o.Start < start {
		start = o.Start
	}
	if o.End > end {
		end = o.End
	}
	return TickRange{Start: start, End: end}
}

// FrameChainLink is one link of a FrameDefinition: a transform anchored
// at BaseFrame, optionally scoped to a validity window.
type FrameChainLink struct {
	BaseFrame     Frame
	Transform     rotation.Quaternion
	ValidityRange *TickRange
	SequenceHint  *topology.Sequence
}

// FrameDefinition is an ordered sequence of FrameChainLink plus free-form
// metadata that canonicalize must preserve.
type FrameDefinition struct {
	Links    []FrameChainLink
	Metadata map[string]string
}

// ValidateDefinition rejects an empty chain (ChainEmpty).
func ValidateDefinition(def FrameDefinition) error {
	if len(def.Links) == 0 {
		return errs.New(errs.KindValidation, "ChainEmpty", "frame definition has no links", nil)
	}
	return nil
}

// Canonicalize drops identity links and merges consecutive links that
// share a base frame, have transforms equal within 1e-12 per quaternion
// component, and have overlapping, adjacent or absent validity ranges
// (ranges merge by union). Definition metadata is preserved. Merging
// requires matching transforms, not just a shared base frame, so
// canonicalization never silently discards a distinct rotation two links
// happen to share a base frame with.
func Canonicalize(def FrameDefinition) FrameDefinition {
	out := FrameDefinition{Metadata: def.Metadata}

	var kept []FrameChainLink
	for _, link := range def.Links {
		if link.Transform.IsIdentity() {
			continue
		}
		kept = append(kept, link)
	}

	var merged []FrameChainLink
	for _, link := range kept {
		if n := len(merged); n > 0 {
			last := &merged[n-1]
			if last.BaseFrame.Equal(link.BaseFrame) && sameTransform(last.Transform, link.Transform) {
				if mergedRange, ok := mergeRanges(last.ValidityRange, link.ValidityRange); ok {
					last.ValidityRange = mergedRange
					continue
				}
			}
		}
		l := link
		merged = append(merged, l)
	}

	out.Links = merged
	return out
}

func sameTransform(a, b rotation.Quaternion) bool {
	const eps = 1e-12
	return absf(a.X-b.X) < eps && absf(a.Y-b.Y) < eps && absf(a.Z-b.Z) < eps && absf(a.W-b.W) < eps
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// mergeRanges merges two validity ranges if they are adjacent or either
// is absent (nil means "always valid", which absorbs anything).
func mergeRanges(a, b *TickRange) (*TickRange, bool) {
	if a == nil || b == nil {
		return nil, true
	}
	if a.overlaps(*b) || a.adjacentTo(*b) {
		u := a.union(*b)
		return &u, true
	}
	return nil, false
}

// ValidateTemporalConsistency rejects TemporalOverlap: two links sharing
// a base frame whose validity ranges overlap (exact endpoint equality
// without the adjacency rule still counts as overlap; true adjacency,
// end+1 == next start, does not).
func ValidateTemporalConsistency(links []FrameChainLink) error {
	byBase := make(map[Frame][]FrameChainLink)
	for _, l := range links {
		byBase[l.BaseFrame] = append(byBase[l.BaseFrame], l)
	}

	for base, group := range byBase {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				ri, rj := group[i].ValidityRange, group[j].ValidityRange
				if ri == nil || rj == nil {
					return errs.New(errs.KindPolicy, "TemporalOverlap", "validity ranges overlap", map[string]string{
						"base_frame_kind": kindString(base.Kind),
					})
				}
				if ri.overlaps(*rj) && !ri.adjacentTo(*rj) {
					return errs.New(errs.KindPolicy, "TemporalOverlap", "validity ranges overlap", map[string]string{
						"base_frame_kind": kindString(base.Kind),
					})
				}
			}
		}
	}
	return nil
}

func kindString(k Kind) string {
	switch k {
	case KindMantle:
		return "mantle"
	case KindAbsolute:
		return "absolute"
	case KindPlateAnchor:
		return "plate_anchor"
	default:
		return "unknown"
	}
}

// NetRotation computes the mantle frame's net rotation at tick: a
// weighted quaternion average over every plate present in topo with a
// kinematics entry at tick. Weights come from areas (skipping plates
// areas reports missing or non-positive for) or, if areas is nil, uniform
// weighting over every plate with a kinematics entry.
func NetRotation(topo topology.View, kin KinematicsView, areas AreaView, tick topology.Tick) rotation.Quaternion {
	plates := sortedPlateIDs(topo)

	type weighted struct {
		q rotation.Quaternion
		w float64
	}
	var terms []weighted

	for _, p := range plates {
		q, present := plateToMantle(p, tick, kin)
		if !present {
			continue
		}
		weight := 1.0
		if areas != nil {
			area, ok := areas.TryGetArea(p)
			if !ok || area <= 0 {
				continue
			}
			weight = area
		}
		terms = append(terms, weighted{q: q, w: weight})
	}

	if len(terms) == 0 {
		return rotation.Identity
	}

	ref := terms[0].q
	var sum rotation.Quaternion
	for _, t := range terms {
		q := t.q
		// Flip to ref's hemisphere so opposite-sign-but-equal rotations
		// don't cancel each other in the weighted sum.
		if q.X*ref.X+q.Y*ref.Y+q.Z*ref.Z+q.W*ref.W < 0 {
			q = rotation.Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: -q.W}
		}
		sum.X += t.w * q.X
		sum.Y += t.w * q.Y
		sum.Z += t.w * q.Z
		sum.W += t.w * q.W
	}
	return sum.Normalized()
}

// GetMantleFrameTransform returns the inverse of NetRotation: composing
// the two gives identity, which is the transform that removes the net
// mantle rotation from a position already expressed in the mantle frame.
func GetMantleFrameTransform(topo topology.View, kin KinematicsView, areas AreaView, tick topology.Tick) rotation.Quaternion {
	return NetRotation(topo, kin, areas, tick).Inverse()
}

func sortedPlateIDs(topo topology.View) []idkit.PlateId {
	all := topo.AllPlates()
	ids := make([]idkit.PlateId, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return idLess(ids[i], ids[j]) })
	return ids
}

func idLess(a, b idkit.PlateId) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
