package frame

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/geo"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/idkit"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/rotation"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/topology"
)

func TestEncodeDecodeDefinitionRoundTrips(t *testing.T) {
	plate := idkit.NewID[idkit.PlateId]()
	seq := topology.Sequence(7)
	def := FrameDefinition{
		Links: []FrameChainLink{
			{
				BaseFrame:     PlateAnchor(plate),
				Transform:     rotation.FromAxisAngle(geo.Point3{Z: 1}, 0.42),
				ValidityRange: &TickRange{Start: 0, End: 100},
				SequenceHint:  &seq,
			},
			{
				BaseFrame: Mantle(),
				Transform: rotation.Identity,
			},
		},
		Metadata: map[string]string{"source": "calibration-run-7", "author": "geo-team"},
	}

	data, err := EncodeDefinition(def)
	require.NoError(t, err)

	decoded, err := DecodeDefinition(data)
	require.NoError(t, err)

	require.Len(t, decoded.Links, 2)
	require.True(t, decoded.Links[0].BaseFrame.Equal(PlateAnchor(plate)))
	require.Equal(t, def.Links[0].Transform, decoded.Links[0].Transform)
	require.NotNil(t, decoded.Links[0].ValidityRange)
	require.Equal(t, *def.Links[0].ValidityRange, *decoded.Links[0].ValidityRange)
	require.NotNil(t, decoded.Links[0].SequenceHint)
	require.Equal(t, seq, *decoded.Links[0].SequenceHint)

	require.True(t, decoded.Links[1].BaseFrame.Equal(Mantle()))
	require.Nil(t, decoded.Links[1].ValidityRange)
	require.Nil(t, decoded.Links[1].SequenceHint)

	require.Equal(t, "calibration-run-7", decoded.Metadata["source"])
	require.Equal(t, "geo-team", decoded.Metadata["author"])
}

func TestEncodeDefinitionDeterministic(t *testing.T) {
	def := FrameDefinition{
		Links:    []FrameChainLink{{BaseFrame: Mantle(), Transform: rotation.FromAxisAngle(geo.Point3{X: 1}, 0.1)}},
		Metadata: map[string]string{"b": "2", "a": "1"},
	}
	d1, err := EncodeDefinition(def)
	require.NoError(t, err)
	d2, err := EncodeDefinition(def)
	require.NoError(t, err)
	require.Equal(t, d1, d2)
}

func TestCanonicalizedDefinitionRoundTrips(t *testing.T) {
	transform := rotation.FromAxisAngle(geo.Point3{Y: 1}, 0.33)
	def := FrameDefinition{Links: []FrameChainLink{
		{BaseFrame: Mantle(), Transform: rotation.Identity},
		{BaseFrame: Mantle(), Transform: transform, ValidityRange: &TickRange{Start: 0, End: 9}},
		{BaseFrame: Mantle(), Transform: transform, ValidityRange: &TickRange{Start: 10, End: 19}},
	}}

	canon := Canonicalize(def)
	data, err := EncodeDefinition(canon)
	require.NoError(t, err)
	decoded, err := DecodeDefinition(data)
	require.NoError(t, err)

	require.Len(t, decoded.Links, 1)
	require.Equal(t, topology.Tick(0), decoded.Links[0].ValidityRange.Start)
	require.Equal(t, topology.Tick(19), decoded.Links[0].ValidityRange.End)
}
