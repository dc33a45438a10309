package kv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutThenTryGet(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Put([]byte("a"), []byte("1")))
	v, ok, err := s.TryGet([]byte("a"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("1"), v)
}

func TestTryGetAbsentKeyReturnsFalseNoError(t *testing.T) {
	s := NewMemStore()
	v, ok, err := s.TryGet([]byte("missing"))
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, v)
}

func TestPutOverwritesExistingKey(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Put([]byte("a"), []byte("1")))
	require.NoError(t, s.Put([]byte("a"), []byte("2")))
	v, ok, _ := s.TryGet([]byte("a"))
	require.True(t, ok)
	require.Equal(t, []byte("2"), v)
}

func TestDeleteRemovesKey(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Put([]byte("a"), []byte("1")))
	require.NoError(t, s.Delete([]byte("a")))
	_, ok, _ := s.TryGet([]byte("a"))
	require.False(t, ok)
}

func TestDeleteAbsentKeyIsNotError(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Delete([]byte("never-existed")))
}

func TestSeekPrefixReturnsKeysInAscendingOrder(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Put([]byte("x:3"), []byte("c")))
	require.NoError(t, s.Put([]byte("x:1"), []byte("a")))
	require.NoError(t, s.Put([]byte("x:2"), []byte("b")))
	require.NoError(t, s.Put([]byte("y:1"), []byte("other")))

	it := s.SeekPrefix([]byte("x:"))
	defer it.Close()

	var keys []string
	for it.Valid() {
		keys = append(keys, string(it.Key()))
		it.Next()
	}
	require.Equal(t, []string{"x:1", "x:2", "x:3"}, keys)
}

func TestSeekPrefixEmptyPrefixScansEverything(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Put([]byte("a"), []byte("1")))
	require.NoError(t, s.Put([]byte("b"), []byte("2")))

	it := s.SeekPrefix(nil)
	defer it.Close()
	count := 0
	for it.Valid() {
		count++
		it.Next()
	}
	require.Equal(t, 2, count)
}

func TestSeekPrefixNoMatchesIsImmediatelyInvalid(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Put([]byte("a"), []byte("1")))
	it := s.SeekPrefix([]byte("zzz"))
	defer it.Close()
	require.False(t, it.Valid())
}

func TestSeekLastUnderPrefixReturnsLexicographicallyLargest(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Put([]byte("x:00000000000000000001"), []byte("a")))
	require.NoError(t, s.Put([]byte("x:00000000000000000009"), []byte("b")))
	require.NoError(t, s.Put([]byte("x:00000000000000000005"), []byte("c")))
	require.NoError(t, s.Put([]byte("y:00000000000000000099"), []byte("other")))

	key, value, ok, err := s.SeekLastUnderPrefix([]byte("x:"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "x:00000000000000000009", string(key))
	require.Equal(t, []byte("b"), value)
}

func TestSeekLastUnderPrefixNoMatchReturnsNotOK(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Put([]byte("y:1"), []byte("other")))
	_, _, ok, err := s.SeekLastUnderPrefix([]byte("x:"))
	require.NoError(t, err)
	require.False(t, ok)
}
