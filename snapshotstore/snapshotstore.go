// Package snapshotstore implements the snapshot cache (spec component C4)
// used by the materializer to accelerate replay: a snapshot binds a
// canonically-encoded topology.State to the sequence and tick it was
// materialized at, keyed so a forward scan of the stream's own prefix,
// stopped at the target tick's key, finds the latest snapshot at or before
// that tick without touching a different stream's entries.
package snapshotstore

import (
	"encoding/binary"
	"fmt"

	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/kv"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/streamid"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/topology"
)

const tickKeyWidth = 20

// snapshotKey returns "{stream}:SNAP:{tick:020d}". Ticks are signed; the
// zero-padded decimal form only sorts correctly for non-negative ticks,
// which the materialized domain never produces (genesis tick is 0).
func snapshotKey(stream streamid.Identity, tick topology.Tick) []byte {
	return []byte(fmt.Sprintf("%s:SNAP:%0*d", stream.Canonical(), tickKeyWidth, int64(tick)))
}

func snapshotPrefix(stream streamid.Identity) []byte {
	return []byte(stream.Canonical() + ":SNAP:")
}

// Store persists materialized-state snapshots for later replay
// acceleration. It holds no state of its own beyond the underlying kv.Store.
type Store struct {
	kv kv.Store
}

// New builds a Store over kvStore.
func New(kvStore kv.Store) *Store {
	return &Store{kv: kvStore}
}

// recordWire is the on-disk form: the tick the snapshot was taken at, plus
// the canonically-encoded state. The tick is also in the key;
// GetLatestBefore returns it from the record rather than parsing the key.
type recordWire struct {
	tick  topology.Tick
	state []byte
}

func encodeRecord(r recordWire) []byte {
	buf := make([]byte, 8+len(r.state))
	binary.BigEndian.PutUint64(buf[:8], uint64(r.tick))
	copy(buf[8:], r.state)
	return buf
}

func decodeRecord(data []byte) (recordWire, error) {
	if len(data) < 8 {
		return recordWire{}, fmt.Errorf("snapshotstore: malformed record: too short")
	}
	return recordWire{
		tick:  topology.Tick(binary.BigEndian.Uint64(data[:8])),
		state: data[8:],
	}, nil
}

// Save persists s as the snapshot for its stream at its LastEventSequence's
// tick. Callers pass the tick explicitly because State does not track "the
// tick of the last folded event" on its own (only the sequence).
func (st *Store) Save(stream streamid.Identity, tick topology.Tick, s *topology.State) error {
	encoded, err := topology.EncodeState(s)
	if err != nil {
		return fmt.Errorf("snapshotstore: encode state: %w", err)
	}
	return st.kv.Put(snapshotKey(stream, tick), encodeRecord(recordWire{tick: tick, state: encoded}))
}

// Get returns the snapshot stored for stream at exactly tick, if any.
func (st *Store) Get(stream streamid.Identity, tick topology.Tick) (*topology.State, bool, error) {
	raw, ok, err := st.kv.TryGet(snapshotKey(stream, tick))
	if err != nil {
		return nil, false, fmt.Errorf("snapshotstore: get: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	rec, err := decodeRecord(raw)
	if err != nil {
		return nil, false, err
	}
	s, err := topology.DecodeState(rec.state)
	if err != nil {
		return nil, false, fmt.Errorf("snapshotstore: decode state: %w", err)
	}
	return s, true, nil
}

// GetLatestBefore returns the latest snapshot for stream whose tick is <=
// targetTick, by scanning stream's key prefix in ascending order and keeping
// the last entry whose key is not past targetTick's. It never returns a snapshot from a
// different stream: the scan is bounded by stream's own key prefix.
func (st *Store) GetLatestBefore(stream streamid.Identity, targetTick topology.Tick) (*topology.State, topology.Tick, bool, error) {
	boundKey := snapshotKey(stream, targetTick)
	it := st.kv.SeekPrefix(snapshotPrefix(stream))
	defer it.Close()

	var bestKey, bestValue []byte
	for it.Valid() {
		if string(it.Key()) > string(boundKey) {
			break
		}
		bestKey = append([]byte(nil), it.Key()...)
		bestValue = append([]byte(nil), it.Value()...)
		it.Next()
	}
	if bestKey == nil {
		return nil, 0, false, nil
	}

	rec, err := decodeRecord(bestValue)
	if err != nil {
		return nil, 0, false, err
	}
	s, err := topology.DecodeState(rec.state)
	if err != nil {
		return nil, 0, false, fmt.Errorf("snapshotstore: decode state: %w", err)
	}
	return s, rec.tick, true, nil
}
