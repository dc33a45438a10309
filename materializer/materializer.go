// Package materializer folds a stream's events into a topology.State at a
// target sequence or tick (spec component C5), optionally accelerated by a
// snapshot store, and validates the result with the invariant checker.
package materializer

import (
	"context"
	"fmt"

	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/eventstore"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/internal/errs"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/invariant"
	applog "github.com/GiantCroissant-Lunar/fantasim-world-sub002/log"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/metrics"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/snapshotstore"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/streamid"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/topology"
)

// TickMode selects the cutoff strategy materialize_at_tick uses.
type TickMode uint8

const (
	// ScanAll reads every event from the resume point and applies only
	// those with tick <= target; it never breaks early and is correct
	// regardless of whether ticks are monotone.
	ScanAll TickMode = iota
	// BreakOnFirstBeyondTick stops at the first event whose tick exceeds
	// target. Only safe when the stream's ticks are monotone in sequence
	// order — callers must know this independently (see CapabilityHint).
	BreakOnFirstBeyondTick
	// Auto asks a CapabilityHint whether the stream is tick-monotone from
	// genesis; true selects BreakOnFirstBeyondTick, false (or no hint)
	// selects ScanAll.
	Auto
)

// CapabilityHint answers whether a stream's ticks are known to be monotone
// from genesis, letting Auto mode choose the cheaper cutoff strategy
// without risking incorrect results on a stream that replays out of order.
type CapabilityHint interface {
	IsTickMonotoneFromGenesis(stream streamid.Identity) bool
}

// NoHint is the zero CapabilityHint: every stream is treated as
// non-monotone, so Auto always behaves like ScanAll. This is the safe
// default.
type NoHint struct{}

func (NoHint) IsTickMonotoneFromGenesis(streamid.Identity) bool { return false }

// Materializer folds events from an event store, optionally resuming from
// a snapshot store, into a topology.State. Instances are per-call and hold
// no mutable state of their own.
type Materializer struct {
	events      *eventstore.Store
	snapshots   *snapshotstore.Store // optional; nil disables snapshot acceleration
	hint        CapabilityHint
	log         applog.Logger
	metrics     *metrics.Materializer
}

// New builds a Materializer. snapshots may be nil to disable snapshot
// acceleration; hint may be nil to fall back to NoHint; logger/m may be nil
// for no-op defaults.
func New(events *eventstore.Store, snapshots *snapshotstore.Store, hint CapabilityHint, logger applog.Logger, m *metrics.Materializer) *Materializer {
	if hint == nil {
		hint = NoHint{}
	}
	if logger == nil {
		logger = applog.NewNoOpLogger()
	}
	if m == nil {
		m, _ = metrics.NewMaterializer("materializer", nil)
	}
	return &Materializer{events: events, snapshots: snapshots, hint: hint, log: logger, metrics: m}
}

const noTickCutoff = topology.Tick(1<<62 - 1)

// Materialize folds every event of stream into a state.
func (mz *Materializer) Materialize(ctx context.Context, stream streamid.Identity) (*topology.State, error) {
	return mz.materializeAtSequence(ctx, stream, nil)
}

// MaterializeAtSequence folds events with sequence <= targetSeq.
func (mz *Materializer) MaterializeAtSequence(ctx context.Context, stream streamid.Identity, targetSeq topology.Sequence) (*topology.State, error) {
	ts := targetSeq
	return mz.materializeAtSequence(ctx, stream, &ts)
}

// MaterializeAtTick folds events with tick <= targetTick, per mode.
func (mz *Materializer) MaterializeAtTick(ctx context.Context, stream streamid.Identity, targetTick topology.Tick, mode TickMode) (*topology.State, error) {
	breakEarly := false
	switch mode {
	case BreakOnFirstBeyondTick:
		breakEarly = true
	case Auto:
		breakEarly = mz.hint.IsTickMonotoneFromGenesis(stream)
	case ScanAll:
		breakEarly = false
	}
	return mz.materializeAtTickInner(ctx, stream, targetTick, breakEarly)
}

// materializeAtSequence is the shared engine for Materialize and
// MaterializeAtSequence; targetSeq nil means "no cutoff, fold everything".
func (mz *Materializer) materializeAtSequence(ctx context.Context, stream streamid.Identity, targetSeq *topology.Sequence) (*topology.State, error) {
	state, fromSeq, err := mz.resumeState(stream, noTickCutoff, false)
	if err != nil {
		return nil, err
	}
	if targetSeq != nil && fromSeq > *targetSeq+1 {
		// The snapshot already includes events past targetSeq; fold from genesis.
		state, fromSeq = topology.New(stream), 0
	}

	for ev, err := range mz.events.Read(stream, int64(fromSeq)) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err != nil {
			return nil, err
		}
		if targetSeq != nil && ev.Sequence > *targetSeq {
			break
		}
		if err := fold(state, ev); err != nil {
			return nil, err
		}
	}

	return mz.finish(state, stream)
}

func (mz *Materializer) materializeAtTickInner(ctx context.Context, stream streamid.Identity, targetTick topology.Tick, breakEarly bool) (*topology.State, error) {
	state, fromSeq, err := mz.resumeState(stream, targetTick, true)
	if err != nil {
		return nil, err
	}

	for ev, err := range mz.events.Read(stream, int64(fromSeq)) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err != nil {
			return nil, err
		}
		if ev.Tick > targetTick {
			if breakEarly {
				break
			}
			continue
		}
		if err := fold(state, ev); err != nil {
			return nil, err
		}
	}

	return mz.finish(state, stream)
}

// resumeState looks up the latest usable snapshot (bounded by targetTick
// when useTickBound is true) and returns the state to fold onto plus the
// sequence to resume reading from. The resume boundary is always the
// snapshot's last_event_sequence + 1, never a tick — this is what makes
// replay correct in the presence of back-in-time events (spec E5).
func (mz *Materializer) resumeState(stream streamid.Identity, targetTick topology.Tick, useTickBound bool) (*topology.State, topology.Sequence, error) {
	if mz.snapshots == nil {
		return topology.New(stream), 0, nil
	}

	var snap *topology.State
	var ok bool
	var err error
	if useTickBound {
		snap, _, ok, err = mz.snapshots.GetLatestBefore(stream, targetTick)
	} else {
		snap, _, ok, err = mz.snapshots.GetLatestBefore(stream, noTickCutoff)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("materializer: snapshot lookup: %w", err)
	}
	if !ok {
		return topology.New(stream), 0, nil
	}
	if mz.metrics != nil {
		mz.metrics.SnapshotHits.Inc()
	}
	return snap.Clone(), snap.LastEventSequence + 1, nil
}

func (mz *Materializer) finish(state *topology.State, stream streamid.Identity) (*topology.State, error) {
	state.Violations = invariant.CheckAll(state)
	if len(state.Violations) > 0 {
		if mz.metrics != nil {
			mz.metrics.InvariantViolations.Inc()
		}
		return state, errs.New(errs.KindInvariant, "MaterializeInvariantViolation", "materialized state violates one or more invariants",
			map[string]string{"stream": stream.Canonical(), "violation_count": fmt.Sprint(len(state.Violations))})
	}
	return state, nil
}
