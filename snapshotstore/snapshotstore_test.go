package snapshotstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/idkit"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/kv"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/streamid"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/topology"
)

func testStream(variant string) streamid.Identity {
	return streamid.Identity{Variant: variant, Branch: "main", Level: 0, Domain: "test.scenario", Model: "m1"}
}

func stateWithSequence(stream streamid.Identity, seq topology.Sequence) *topology.State {
	s := topology.New(stream)
	s.LastEventSequence = seq
	plateID := idkit.NewID[idkit.PlateId]()
	s.Plates[plateID] = topology.Plate{ID: plateID}
	return s
}

func TestSaveAndGetExactTick(t *testing.T) {
	st := New(kv.NewMemStore())
	stream := testStream("alpha")
	s := stateWithSequence(stream, 5)

	require.NoError(t, st.Save(stream, 100, s))
	got, ok, err := st.Get(stream, 100)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, s.LastEventSequence, got.LastEventSequence)

	_, ok, err = st.Get(stream, 101)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGetLatestBeforeReturnsClosestAtOrBelowTarget(t *testing.T) {
	st := New(kv.NewMemStore())
	stream := testStream("alpha")

	require.NoError(t, st.Save(stream, 10, stateWithSequence(stream, 1)))
	require.NoError(t, st.Save(stream, 50, stateWithSequence(stream, 5)))
	require.NoError(t, st.Save(stream, 200, stateWithSequence(stream, 20)))

	s, tick, ok, err := st.GetLatestBefore(stream, 75)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, topology.Tick(50), tick)
	require.Equal(t, topology.Sequence(5), s.LastEventSequence)

	s, tick, ok, err = st.GetLatestBefore(stream, 50)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, topology.Tick(50), tick)
	require.Equal(t, topology.Sequence(5), s.LastEventSequence)

	_, _, ok, err = st.GetLatestBefore(stream, 9)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSnapshotsRespectStreamBoundary(t *testing.T) {
	st := New(kv.NewMemStore())
	alpha := testStream("alpha")
	beta := testStream("beta")

	require.NoError(t, st.Save(alpha, 100, stateWithSequence(alpha, 1)))

	_, _, ok, err := st.GetLatestBefore(beta, 1000)
	require.NoError(t, err)
	require.False(t, ok)
}
