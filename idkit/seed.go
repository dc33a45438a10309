package idkit

import (
	"encoding/binary"

	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/streamid"
)

const (
	fnvOffsetBasis64 uint64 = 14695981039346656037
	fnvPrime64       uint64 = 1099511628211
)

// AlgorithmName is the name of the derivation algorithm, exposed verbatim in
// SeedAudit records so traces stay reproducible across implementations.
const AlgorithmName = "FNV1a-StreamIdentity-v2"

// SeedAudit is the reproducibility record for one derivation call.
type SeedAudit struct {
	ScenarioSeed uint64
	Stream       streamid.Identity
	Algorithm    string
	DerivedSeed  uint64
}

// DeriveSeed computes a 64-bit seed from (scenarioSeed, stream) using
// FNV-1a over the scenario seed followed by each stream field in fixed
// order (variant, branch, level, domain, model), each length-prefixed to
// prevent concatenation collisions — e.g. ("a","bc") must not hash the same
// as ("ab","c"). Fails loudly (returns an error) on an invalid identity.
func DeriveSeed(scenarioSeed uint64, stream streamid.Identity) (SeedAudit, error) {
	if err := stream.Validate(); err != nil {
		return SeedAudit{}, err
	}

	h := fnvOffsetBasis64
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], scenarioSeed)
	h = fnvMixBytes(h, buf[:])

	h = fnvMixField(h, stream.Variant)
	h = fnvMixField(h, stream.Branch)
	h = fnvMixUint32(h, uint32(stream.Level))
	h = fnvMixField(h, stream.Domain)
	h = fnvMixField(h, stream.Model)

	return SeedAudit{
		ScenarioSeed: scenarioSeed,
		Stream:       stream,
		Algorithm:    AlgorithmName,
		DerivedSeed:  h,
	}, nil
}

func fnvMixBytes(h uint64, data []byte) uint64 {
	for _, b := range data {
		h ^= uint64(b)
		h *= fnvPrime64
	}
	return h
}

// fnvMixField prepends the field's UTF-8 byte length as a 4-byte
// little-endian integer before mixing its bytes — the mandatory length
// prefix that prevents adjacent-field concatenation collisions.
func fnvMixField(h uint64, field string) uint64 {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(field)))
	h = fnvMixBytes(h, lenBuf[:])
	return fnvMixBytes(h, []byte(field))
}

// fnvMixUint32 mixes a 32-bit integer field (the stream level) the same
// length-prefixed way as a string field: its byte length (4) as a 4-byte
// little-endian integer, then the value's own 4-byte little-endian form.
func fnvMixUint32(h uint64, v uint32) uint64 {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(len(buf)))
	h = fnvMixBytes(h, buf[:])
	binary.LittleEndian.PutUint32(buf[:], v)
	return fnvMixBytes(h, buf[:])
}
