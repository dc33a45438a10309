// Package streamcatalog implements a read-only registry over a KV store's
// stream-prefix key space: the set of known streams and, for each, its
// last event sequence and last tick. Not required by any spec.md
// operation, but useful for anything that needs to enumerate what streams
// exist without guessing their identities in advance.
package streamcatalog

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/kv"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/materializer"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/streamid"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/topology"
)

// Entry describes one known stream's position.
type Entry struct {
	Stream            streamid.Identity
	LastEventSequence topology.Sequence
	LastTick          topology.Tick
}

// Catalog is the built registry, keyed by canonical stream string.
type Catalog struct {
	entries map[string]Entry
}

// Lookup returns the Entry for stream's canonical form, if known.
func (c *Catalog) Lookup(stream streamid.Identity) (Entry, bool) {
	e, ok := c.entries[stream.Canonical()]
	return e, ok
}

// Streams returns every known stream identity, in no particular order.
func (c *Catalog) Streams() []streamid.Identity {
	out := make([]streamid.Identity, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.Stream)
	}
	return out
}

// Len reports how many streams are known.
func (c *Catalog) Len() int { return len(c.entries) }

// maxTick is the warmup replay's upper bound: large enough that no real
// event tick exceeds it, so ScanAll effectively visits every event.
const maxTick = topology.Tick(math.MaxInt64)

// Build scans store's entire key space once to discover every stream with
// at least one event, then uses replayer to stream through each discovered
// stream and record its last tick. This is the only internal consumer of
// materializer.Replayer; the blocking Materializer.MaterializeAtTick
// remains the one spec-mandated entry point for everything else.
func Build(ctx context.Context, store kv.Store, replayer *materializer.Replayer) (*Catalog, error) {
	lastSeq := make(map[string]streamid.Identity)
	seqByStream := make(map[string]topology.Sequence)

	it := store.SeekPrefix(nil)
	defer it.Close()
	for it.Valid() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		stream, kind, num, ok := parseEventKey(string(it.Key()))
		if ok && kind == "E" {
			canon := stream.Canonical()
			lastSeq[canon] = stream
			seq := topology.Sequence(num)
			if seq > seqByStream[canon] {
				seqByStream[canon] = seq
			}
		}
		it.Next()
	}

	entries := make(map[string]Entry, len(lastSeq))
	for canon, stream := range lastSeq {
		var lastTick topology.Tick
		for ev := range replayer.Replay(ctx, stream, maxTick, materializer.ScanAll) {
			lastTick = ev.Tick
		}
		entries[canon] = Entry{
			Stream:            stream,
			LastEventSequence: seqByStream[canon],
			LastTick:          lastTick,
		}
	}

	return &Catalog{entries: entries}, nil
}

// parseEventKey recognizes "S:{variant}:{branch}:L{level}:{domain}:M{model}:E:{seq}"
// keys and extracts the stream identity, the key kind ("E" here; "SNAP"
// keys are ignored — Build derives last tick by replay, not by parsing
// snapshot keys), and the trailing numeric field.
func parseEventKey(key string) (stream streamid.Identity, kind string, num int64, ok bool) {
	parts := strings.Split(key, ":")
	if len(parts) != 8 || parts[0] != "S" {
		return streamid.Identity{}, "", 0, false
	}
	if parts[6] != "E" {
		return streamid.Identity{}, "", 0, false
	}
	if !strings.HasPrefix(parts[3], "L") || !strings.HasPrefix(parts[5], "M") {
		return streamid.Identity{}, "", 0, false
	}

	level, err := strconv.Atoi(strings.TrimPrefix(parts[3], "L"))
	if err != nil {
		return streamid.Identity{}, "", 0, false
	}
	n, err := strconv.ParseInt(parts[7], 10, 64)
	if err != nil {
		return streamid.Identity{}, "", 0, false
	}

	stream = streamid.Identity{
		Variant: parts[1],
		Branch:  parts[2],
		Level:   level,
		Domain:  parts[4],
		Model:   strings.TrimPrefix(parts[5], "M"),
	}
	return stream, "E", n, true
}
