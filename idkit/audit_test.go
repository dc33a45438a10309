package idkit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/log"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/streamid"
)

type recordingLogger struct {
	entries *[]string
}

func newRecordingLogger() (log.Logger, *[]string) {
	entries := make([]string, 0)
	return recordingLogger{entries: &entries}, &entries
}

func (l recordingLogger) With(fields ...log.Field) log.Logger { return l }
func (l recordingLogger) Debug(msg string, fields ...log.Field) {}
func (l recordingLogger) Info(msg string, fields ...log.Field) {
	*l.entries = append(*l.entries, msg)
}
func (l recordingLogger) Warn(msg string, fields ...log.Field)  {}
func (l recordingLogger) Error(msg string, fields ...log.Field) {}

func testStreamIdentity() streamid.Identity {
	return streamid.Identity{Variant: "science", Branch: "trunk", Level: 0, Domain: "geo.plates", Model: "m0"}
}

func TestDeriveSeedLoggedEmitsOneAuditLine(t *testing.T) {
	logger, entries := newRecordingLogger()
	audit, err := DeriveSeedLogged(42, testStreamIdentity(), logger)
	require.NoError(t, err)
	require.Equal(t, AlgorithmName, audit.Algorithm)
	require.Len(t, *entries, 1)
	require.Equal(t, "seed derived", (*entries)[0])
}

func TestDeriveSeedLoggedMatchesUnloggedDerivation(t *testing.T) {
	logger, _ := newRecordingLogger()
	logged, err := DeriveSeedLogged(7, testStreamIdentity(), logger)
	require.NoError(t, err)
	plain, err := DeriveSeed(7, testStreamIdentity())
	require.NoError(t, err)
	require.Equal(t, plain.DerivedSeed, logged.DerivedSeed)
}

func TestDeriveSeedLoggedToleratesNilLogger(t *testing.T) {
	_, err := DeriveSeedLogged(1, testStreamIdentity(), nil)
	require.NoError(t, err)
}

func TestDeriveSeedLoggedPropagatesInvalidIdentity(t *testing.T) {
	logger, entries := newRecordingLogger()
	_, err := DeriveSeedLogged(1, streamid.Identity{}, logger)
	require.Error(t, err)
	require.Len(t, *entries, 0)
}
