// Package kv defines the ordered, byte-keyed key-value abstraction the
// event store, snapshot store, and stream catalog are built on. The core
// requires only this interface; a physical storage engine (pebble, mdbx,
// leveldb — anything with the same Reader/Writer/iterator shape) is an
// external collaborator, not something this package implements.
package kv

// Writer supports single-key atomic mutation. Durability is a property of
// the backend, not of this interface.
type Writer interface {
	// Put sets value for key, last-writer-wins, atomically.
	Put(key, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key []byte) error
}

// Reader supports point lookups.
type Reader interface {
	// TryGet returns (value, true, nil) if key is present, or (nil, false,
	// nil) if absent. A non-nil error indicates a backend failure, not
	// absence.
	TryGet(key []byte) ([]byte, bool, error)
}

// Iterator walks key-value pairs under a prefix in ascending lexicographic
// key order. A freshly seeked Iterator may already be invalid (empty
// range); callers must check Valid before the first Key/Value call.
type Iterator interface {
	// Valid reports whether the iterator currently points at an entry.
	Valid() bool
	// Key returns the current entry's key. Only valid while Valid() is true.
	Key() []byte
	// Value returns the current entry's value. Only valid while Valid() is true.
	Value() []byte
	// Next advances to the following entry.
	Next()
	// Close releases any resources held by the iterator.
	Close() error
}

// Store is the ordered KV abstraction consumed by every component above
// C1: put/get/delete, ascending prefix iteration, and a direct lookup of
// the last key under a prefix.
type Store interface {
	Reader
	Writer

	// SeekPrefix returns an Iterator over all keys sharing prefix, in
	// ascending lexicographic order.
	SeekPrefix(prefix []byte) Iterator

	// SeekLastUnderPrefix returns the lexicographically last key-value pair
	// sharing prefix, or ok=false if none exists. Within one stream's event
	// or snapshot key space, lexicographic order agrees with numeric
	// sequence/tick order (both are zero-padded decimal), so "last key"
	// means "largest sequence" or "largest tick".
	SeekLastUnderPrefix(prefix []byte) (key, value []byte, ok bool, err error)
}
