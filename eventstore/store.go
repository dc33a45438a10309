package eventstore

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"iter"
	"time"

	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/internal/errs"
	applog "github.com/GiantCroissant-Lunar/fantasim-world-sub002/log"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/kv"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/metrics"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/streamid"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/topology"
)

// TickPolicy governs what happens when an appended event's tick is smaller
// than the stream's current last tick.
type TickPolicy uint8

const (
	// Allow (the default) permits any tick, monotone or not.
	Allow TickPolicy = iota
	// Warn permits non-monotone ticks but reports them via Reporter.
	Warn
	// Reject fails the append on a non-monotone tick.
	Reject
)

// Reporter receives non-fatal warnings, such as a Warn-policy tick
// regression. Nil is a valid Reporter: warnings are simply dropped.
type Reporter interface {
	Warnf(format string, args ...any)
}

// AppendOptions configures one Append call.
type AppendOptions struct {
	TickPolicy TickPolicy
	Reporter   Reporter
}

// Store is the hash-chained event store. It holds no per-stream state of
// its own between calls — all chain state (last sequence, last hash, last
// tick) is recovered from the KV store at the start of every Append.
type Store struct {
	kv      kv.Store
	log     applog.Logger
	metrics *metrics.Store
}

// New builds a Store over kvStore. log and m may be nil/zero-valued
// defaults (log.NewNoOpLogger(), metrics built with a nil Registerer).
func New(kvStore kv.Store, logger applog.Logger, m *metrics.Store) *Store {
	if logger == nil {
		logger = applog.NewNoOpLogger()
	}
	if m == nil {
		m, _ = metrics.NewStore("eventstore", nil)
	}
	return &Store{kv: kvStore, log: logger, metrics: m}
}

// GetLastSequence returns the largest sequence present for stream, or
// (0, false, nil) if the stream has no events yet.
func (s *Store) GetLastSequence(stream streamid.Identity) (int64, bool, error) {
	key, _, ok, err := s.kv.SeekLastUnderPrefix(eventPrefix(stream))
	if err != nil {
		return 0, false, fmt.Errorf("eventstore: get last sequence: %w", err)
	}
	if !ok {
		return 0, false, nil
	}
	seq, err := parseSequenceFromKey(stream, key)
	if err != nil {
		return 0, false, err
	}
	return seq, true, nil
}

func parseSequenceFromKey(stream streamid.Identity, key []byte) (int64, error) {
	prefix := eventPrefix(stream)
	if len(key) != len(prefix)+eventKeyWidth {
		return 0, fmt.Errorf("eventstore: malformed event key %q", key)
	}
	var seq int64
	for _, b := range key[len(prefix):] {
		if b < '0' || b > '9' {
			return 0, fmt.Errorf("eventstore: malformed event key %q", key)
		}
		seq = seq*10 + int64(b-'0')
	}
	return seq, nil
}

// lastTickAndHash reads the event at lastSeq to recover the chain tail
// (last tick, last hash) Append needs. It is only called for a stream that
// has events; a missing event at lastSeq is reported as an error.
func (s *Store) lastTickAndHash(stream streamid.Identity, lastSeq int64) (topology.Tick, []byte, error) {
	key := eventKey(stream, lastSeq)
	raw, ok, err := s.kv.TryGet(key)
	if err != nil {
		return 0, nil, fmt.Errorf("eventstore: read last event: %w", err)
	}
	if !ok {
		return 0, nil, fmt.Errorf("eventstore: last-sequence sentinel points at missing event %d", lastSeq)
	}
	ev, err := topology.DecodeStamped(raw)
	if err != nil {
		return 0, nil, errs.Wrap(errs.KindCorruption, "EventDecodeFailure", "failed to decode last event", map[string]string{
			"stream": stream.Canonical(), "sequence": fmt.Sprint(lastSeq),
		}, err)
	}
	return ev.Tick, ev.Hash, nil
}

// computeHash implements hash = H(tick || stream_canonical || previous_hash || payload).
func computeHash(tick topology.Tick, stream streamid.Identity, previousHash, payload []byte) []byte {
	h := sha256.New()
	var tickBuf [8]byte
	binary.BigEndian.PutUint64(tickBuf[:], uint64(tick))
	h.Write(tickBuf[:])
	h.Write([]byte(stream.Canonical()))
	h.Write(previousHash)
	h.Write(payload)
	return h.Sum(nil)
}

// Append stamps and writes events in order, enforcing strict sequence
// monotonicity and the tick policy, recomputing the hash chain — any
// caller-provided Hash/PreviousHash values are discarded. The whole batch
// either commits or none of it does: partial application on error would
// leave a torn chain a reader could not distinguish from corruption.
func (s *Store) Append(ctx context.Context, stream streamid.Identity, events []topology.Event, opts AppendOptions) error {
	if s.metrics != nil {
		start := time.Now()
		defer func() { s.metrics.AppendDuration.Observe(time.Since(start).Seconds()) }()
	}
	if err := stream.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	lastSeq, hasLast, err := s.GetLastSequence(stream)
	if err != nil {
		return err
	}
	var prevHash []byte
	var lastTick topology.Tick
	if hasLast {
		lastTick, prevHash, err = s.lastTickAndHash(stream, lastSeq)
		if err != nil {
			return err
		}
	}
	nextSeq := int64(0)
	if hasLast {
		nextSeq = lastSeq + 1
	}

	stamped := make([]topology.Event, 0, len(events))
	for _, e := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if int64(e.Sequence) != nextSeq {
			if s.metrics != nil {
				s.metrics.SequenceRejects.Inc()
			}
			return errs.New(errs.KindPolicy, "SequenceGapOrDuplicate", "event sequence does not follow the stream's last sequence",
				map[string]string{"expected": fmt.Sprint(nextSeq), "got": fmt.Sprint(e.Sequence)})
		}

		if hasLast && e.Tick < lastTick {
			switch opts.TickPolicy {
			case Reject:
				return errs.New(errs.KindPolicy, "TickNonMonotone", "tick regressed under Reject policy",
					map[string]string{"previous_tick": fmt.Sprint(lastTick), "new_tick": fmt.Sprint(e.Tick)})
			case Warn:
				if opts.Reporter != nil {
					opts.Reporter.Warnf("eventstore: tick regressed from %d to %d on stream %s", lastTick, e.Tick, stream.Canonical())
				}
				s.log.Warn("tick regressed", applog.Stream(stream.Canonical()), applog.F("previous_tick", int64(lastTick)), applog.F("new_tick", int64(e.Tick)))
			case Allow:
				// no-op
			}
		}

		e.StreamIdentity = stream
		e.PreviousHash = prevHash
		body, err := topology.EncodeBody(e)
		if err != nil {
			return fmt.Errorf("eventstore: encode event body: %w", err)
		}
		e.Hash = computeHash(e.Tick, stream, prevHash, body)

		stamped = append(stamped, e)
		prevHash = e.Hash
		lastTick = e.Tick
		hasLast = true
		nextSeq++
	}

	// All-or-nothing: write every event, sentinel (highest sequence) last,
	// so a process crash mid-batch leaves the highest-numbered key absent
	// and is detectable as a short read on the next GetLastSequence call
	// rather than as silent partial application.
	for _, e := range stamped {
		raw, err := topology.EncodeStamped(e)
		if err != nil {
			return fmt.Errorf("eventstore: encode stamped event: %w", err)
		}
		if err := s.kv.Put(eventKey(stream, int64(e.Sequence)), raw); err != nil {
			return fmt.Errorf("eventstore: put event: %w", err)
		}
	}

	if s.metrics != nil {
		s.metrics.AppendedEvents.Add(float64(len(stamped)))
	}
	s.log.Info("appended events", applog.Stream(stream.Canonical()), applog.F("count", len(stamped)))
	return nil
}

// Read yields stream's events from fromSequence (inclusive) in ascending
// sequence order, re-verifying the hash chain on every event: a decode
// failure or a hash/previous-hash mismatch is yielded as the second value
// and iteration stops there.
func (s *Store) Read(stream streamid.Identity, fromSequence int64) iter.Seq2[topology.Event, error] {
	return func(yield func(topology.Event, error) bool) {
		it := s.kv.SeekPrefix(eventPrefix(stream))
		defer it.Close()

		var prevHash []byte
		first := true
		for it.Valid() {
			seq, err := parseSequenceFromKey(stream, it.Key())
			if err != nil {
				yield(topology.Event{}, err)
				return
			}
			if seq < fromSequence {
				it.Next()
				continue
			}

			ev, err := topology.DecodeStamped(it.Value())
			if err != nil {
				yield(topology.Event{}, errs.Wrap(errs.KindCorruption, "EventDecodeFailure", "failed to decode event", map[string]string{
					"stream": stream.Canonical(), "sequence": fmt.Sprint(seq),
				}, err))
				return
			}

			if !first && !bytesEqual(ev.PreviousHash, prevHash) {
				if s.metrics != nil {
					s.metrics.HashMismatches.Inc()
				}
				yield(topology.Event{}, errs.New(errs.KindCorruption, "PreviousHashMismatch", "previous_hash does not match predecessor's hash",
					map[string]string{"stream": stream.Canonical(), "sequence": fmt.Sprint(seq)}))
				return
			}
			if first && fromSequence == 0 && len(ev.PreviousHash) != 0 {
				yield(topology.Event{}, errs.New(errs.KindCorruption, "GenesisPreviousHashNotEmpty", "genesis event has a non-empty previous_hash",
					map[string]string{"stream": stream.Canonical()}))
				return
			}

			body, err := topology.EncodeBody(ev)
			if err != nil {
				yield(topology.Event{}, fmt.Errorf("eventstore: re-encode event body: %w", err))
				return
			}
			recomputed := computeHash(ev.Tick, stream, ev.PreviousHash, body)
			if !bytesEqual(recomputed, ev.Hash) {
				if s.metrics != nil {
					s.metrics.HashMismatches.Inc()
				}
				yield(topology.Event{}, errs.New(errs.KindCorruption, "HashMismatch", "recomputed hash does not match stored hash",
					map[string]string{"stream": stream.Canonical(), "sequence": fmt.Sprint(seq)}))
				return
			}

			if !yield(ev, nil) {
				return
			}
			prevHash = ev.Hash
			first = false
			it.Next()
		}
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
