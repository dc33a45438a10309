package frame

import (
	"sort"

	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/codec"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/idkit"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/rotation"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/topology"
)

// Wire structs mirror the public frame types with the `toarray` tag, so a
// canonicalized FrameDefinition round-trips byte-for-byte the same way
// events and snapshots do (SPEC_FULL.md Supplement 4).

type frameWire struct {
	_     struct{} `cbor:",toarray"`
	Kind  uint8
	Plate idkit.PlateId
}

type quaternionWire struct {
	_          struct{} `cbor:",toarray"`
	X, Y, Z, W float64
}

type tickRangeWire struct {
	_          struct{} `cbor:",toarray"`
	Present    bool
	Start, End int64
}

type frameChainLinkWire struct {
	_               struct{} `cbor:",toarray"`
	BaseFrame       frameWire
	Transform       quaternionWire
	ValidityRange   tickRangeWire
	HasSequenceHint bool
	SequenceHint    int64
}

type frameDefinitionWire struct {
	_            struct{} `cbor:",toarray"`
	Links        []frameChainLinkWire
	MetadataKeys []string
	MetadataVals []string
}

func toFrameWire(f Frame) frameWire { return frameWire{Kind: uint8(f.Kind), Plate: f.Plate} }
func fromFrameWire(w frameWire) Frame { return Frame{Kind: Kind(w.Kind), Plate: w.Plate} }

func toQuatWire(q rotation.Quaternion) quaternionWire {
	return quaternionWire{X: q.X, Y: q.Y, Z: q.Z, W: q.W}
}

func fromQuatWire(w quaternionWire) rotation.Quaternion {
	return rotation.Quaternion{X: w.X, Y: w.Y, Z: w.Z, W: w.W}
}

func toRangeWire(r *TickRange) tickRangeWire {
	if r == nil {
		return tickRangeWire{}
	}
	return tickRangeWire{Present: true, Start: int64(r.Start), End: int64(r.End)}
}

func fromRangeWire(w tickRangeWire) *TickRange {
	if !w.Present {
		return nil
	}
	return &TickRange{Start: tickFromInt64(w.Start), End: tickFromInt64(w.End)}
}

// EncodeDefinition canonically encodes def. Metadata keys are sorted so
// the same metadata map always encodes to the same bytes regardless of Go
// map iteration order.
func EncodeDefinition(def FrameDefinition) ([]byte, error) {
	links := make([]frameChainLinkWire, len(def.Links))
	for i, l := range def.Links {
		w := frameChainLinkWire{
			BaseFrame:     toFrameWire(l.BaseFrame),
			Transform:     toQuatWire(l.Transform),
			ValidityRange: toRangeWire(l.ValidityRange),
		}
		if l.SequenceHint != nil {
			w.HasSequenceHint = true
			w.SequenceHint = int64(*l.SequenceHint)
		}
		links[i] = w
	}

	keys, vals := sortedMetadata(def.Metadata)
	return codec.Marshal(frameDefinitionWire{Links: links, MetadataKeys: keys, MetadataVals: vals})
}

// DecodeDefinition reads back a FrameDefinition previously produced by
// EncodeDefinition.
func DecodeDefinition(data []byte) (FrameDefinition, error) {
	var w frameDefinitionWire
	if err := codec.Unmarshal(data, &w); err != nil {
		return FrameDefinition{}, err
	}

	links := make([]FrameChainLink, len(w.Links))
	for i, lw := range w.Links {
		link := FrameChainLink{
			BaseFrame:     fromFrameWire(lw.BaseFrame),
			Transform:     fromQuatWire(lw.Transform),
			ValidityRange: fromRangeWire(lw.ValidityRange),
		}
		if lw.HasSequenceHint {
			seq := sequenceFromInt64(lw.SequenceHint)
			link.SequenceHint = &seq
		}
		links[i] = link
	}

	var metadata map[string]string
	if len(w.MetadataKeys) > 0 {
		metadata = make(map[string]string, len(w.MetadataKeys))
		for i, k := range w.MetadataKeys {
			metadata[k] = w.MetadataVals[i]
		}
	}

	return FrameDefinition{Links: links, Metadata: metadata}, nil
}

func tickFromInt64(v int64) topology.Tick { return topology.Tick(v) }

func sequenceFromInt64(v int64) topology.Sequence { return topology.Sequence(v) }

func sortStrings(s []string) { sort.Strings(s) }

func sortedMetadata(m map[string]string) (keys, vals []string) {
	if len(m) == 0 {
		return nil, nil
	}
	keys = make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortStrings(keys)
	vals = make([]string, len(keys))
	for i, k := range keys {
		vals[i] = m[k]
	}
	return keys, vals
}
