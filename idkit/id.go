// Package idkit implements deterministic, UUIDv7-shaped identifiers and the
// scenario-to-stream seed derivation used to make those identifiers
// reproducible for a given scenario.
package idkit

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// PlateId, BoundaryId, JunctionId, EventId, and FeatureId are distinct
// nominal 128-bit identifier types over the same underlying bit layout. Go's
// type system already forbids comparing a PlateId to a BoundaryId without an
// explicit conversion, which is the "no cross-type equality" requirement.
type (
	PlateId    [16]byte
	BoundaryId [16]byte
	JunctionId [16]byte
	EventId    [16]byte
	FeatureId  [16]byte
)

func (id PlateId) String() string    { return format(id[:]) }
func (id BoundaryId) String() string { return format(id[:]) }
func (id JunctionId) String() string { return format(id[:]) }
func (id EventId) String() string    { return format(id[:]) }
func (id FeatureId) String() string  { return format(id[:]) }

func format(b []byte) string {
	return hex.EncodeToString(b[0:4]) + "-" + hex.EncodeToString(b[4:6]) + "-" +
		hex.EncodeToString(b[6:8]) + "-" + hex.EncodeToString(b[8:10]) + "-" +
		hex.EncodeToString(b[10:16])
}

// rawID is the constraint satisfied by every nominal ID type above: all
// share the underlying [16]byte layout, which is what lets the generic
// constructors below build any of them from the same byte-assembly logic.
type rawID interface {
	~[16]byte
}

// NewID returns a fresh, time-sortable, cryptographically random ID of type
// T. The 48-bit big-endian millisecond prefix gives approximate insertion
// ordering; correctness of the system never depends on it, only on event
// sequence numbers.
func NewID[T rawID]() T {
	return T(buildRaw(cryptoStream{}, nowMillis(), true))
}

// NewSeededID derives an ID of type T entirely from stream: the 48-bit time
// prefix is zero and the remaining 74 non-version/variant bits come from
// stream, so the result is a pure function of (stream state, call count).
// This is the constructor scenario replay must use for reproducibility.
func NewSeededID[T rawID](stream Stream) T {
	return T(buildRaw(stream, 0, false))
}

func nowMillis() uint64 {
	return uint64(time.Now().UnixMilli())
}

// buildRaw assembles the 16-byte UUIDv7-shaped buffer: bytes 0-5 are the
// 48-bit ms time prefix (from timeMillis if useRealTime, else zero), bytes
// 6-15 are drawn from stream, and the version/variant nibbles are then
// stamped in place with google/uuid's own bit-twiddling (SetVersion/
// SetVariant) rather than hand-rolled masks.
func buildRaw(stream Stream, timeMillis uint64, useRealTime bool) [16]byte {
	var raw [16]byte
	if useRealTime {
		var tb [8]byte
		binary.BigEndian.PutUint64(tb[:], timeMillis)
		copy(raw[0:6], tb[2:8])
	}

	d := &byteDrawer{s: stream}
	copy(raw[6:16], d.bytes(10))

	u := uuid.UUID(raw)
	u.SetVersion(7)
	u.SetVariant(uuid.RFC4122)
	return [16]byte(u)
}

// Empty values: the zero value of every ID type above is already the
// all-zero 16 bytes, usable as a well-known "absent" sentinel.
