package streamid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func valid() Identity {
	return Identity{Variant: "science", Branch: "trunk", Level: 0, Domain: "geo.plates", Model: "m0"}
}

func TestValidateAcceptsWellFormedIdentity(t *testing.T) {
	require.NoError(t, valid().Validate())
}

func TestValidateRejectsEmptyVariant(t *testing.T) {
	id := valid()
	id.Variant = ""
	require.Error(t, id.Validate())
}

func TestValidateRejectsEmptyBranch(t *testing.T) {
	id := valid()
	id.Branch = ""
	require.Error(t, id.Validate())
}

func TestValidateRejectsNegativeLevel(t *testing.T) {
	id := valid()
	id.Level = -1
	require.Error(t, id.Validate())
}

func TestValidateRejectsEmptyModel(t *testing.T) {
	id := valid()
	id.Model = ""
	require.Error(t, id.Validate())
}

func TestValidateRejectsMalformedDomain(t *testing.T) {
	for _, domain := range []string{"", ".", "geo..plates", "geo.", ".geo", "geo plates"} {
		id := valid()
		id.Domain = domain
		require.Error(t, id.Validate(), domain)
	}
}

func TestValidateAcceptsMultiSegmentDomain(t *testing.T) {
	id := valid()
	id.Domain = "geo.plates.boundary_02"
	require.NoError(t, id.Validate())
}

func TestCanonicalFormat(t *testing.T) {
	id := Identity{Variant: "science", Branch: "trunk", Level: 3, Domain: "geo.plates", Model: "m0"}
	require.Equal(t, "S:science:trunk:L3:geo.plates:Mm0", id.Canonical())
	require.Equal(t, id.Canonical(), id.String())
}

func TestEqualComparesCanonicalForm(t *testing.T) {
	a := valid()
	b := valid()
	require.True(t, a.Equal(b))

	b.Level = 1
	require.False(t, a.Equal(b))
}

func TestWireRoundTrip(t *testing.T) {
	id := valid()
	got := FromWire(id.ToWire())
	require.Equal(t, id, got)
}
