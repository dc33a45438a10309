// Package eventstore implements the hash-chained, tick-stamped,
// append-only event log (spec component C3): per-stream key isolation,
// canonical serialization via topology.EncodeStamped, and corruption
// detection on read.
package eventstore

import (
	"fmt"

	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/streamid"
)

const eventKeyWidth = 20

// eventKey returns the KV key for one event: "{stream}:E:{seq:020d}".
// Lexicographic order over this prefix equals numeric sequence order
// because the sequence is zero-padded to a fixed width.
func eventKey(stream streamid.Identity, sequence int64) []byte {
	return []byte(fmt.Sprintf("%s:E:%0*d", stream.Canonical(), eventKeyWidth, sequence))
}

// eventPrefix returns the KV key prefix covering every event of stream.
func eventPrefix(stream streamid.Identity) []byte {
	return []byte(stream.Canonical() + ":E:")
}
