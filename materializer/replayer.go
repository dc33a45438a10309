package materializer

import (
	"context"
	"iter"

	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/streamid"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/topology"
)

// Replayer is a streaming variant of MaterializeAtTick: instead of
// returning one final state, it yields the event just folded together with
// the running state, for callers (internally, StreamCatalog warmup) that
// want to observe a stream's evolution without buffering the whole result.
// It does not run the invariant checker; callers needing a validated
// result should use Materializer.MaterializeAtTick instead.
type Replayer struct {
	mz *Materializer
}

// NewReplayer wraps mz for streaming replay.
func NewReplayer(mz *Materializer) *Replayer {
	return &Replayer{mz: mz}
}

// Replay folds stream's events with tick <= targetTick under mode,
// yielding (event, state) after each successful fold. state is the same
// instance across iterations and must not be retained or mutated by the
// consumer past the current iteration step.
func (r *Replayer) Replay(ctx context.Context, stream streamid.Identity, targetTick topology.Tick, mode TickMode) iter.Seq2[topology.Event, *topology.State] {
	return func(yield func(topology.Event, *topology.State) bool) {
		breakEarly := false
		switch mode {
		case BreakOnFirstBeyondTick:
			breakEarly = true
		case Auto:
			breakEarly = r.mz.hint.IsTickMonotoneFromGenesis(stream)
		case ScanAll:
			breakEarly = false
		}

		state, fromSeq, err := r.mz.resumeState(stream, targetTick, true)
		if err != nil {
			return
		}

		for ev, err := range r.mz.events.Read(stream, int64(fromSeq)) {
			if ctx.Err() != nil || err != nil {
				return
			}
			if ev.Tick > targetTick {
				if breakEarly {
					return
				}
				continue
			}
			if err := fold(state, ev); err != nil {
				return
			}
			if !yield(ev, state) {
				return
			}
		}
	}
}
