// Package codec implements the canonical, schema-versioned binary encoding
// used for every persisted value: events, geometry, TopologyState, and
// snapshots. Encoding the same logical value twice must always produce
// byte-identical output, and decoding a message with unexpected trailing
// data must fail loudly rather than silently truncate — both properties the
// hash chain in eventstore depends on.
//
// Concrete struct payloads use the `cbor:",toarray"` struct tag so they
// serialize as a positional array (fixed field order) instead of a
// string-keyed map — the Go-idiomatic way to get "no string keys, stable
// numeric field order" out of a CBOR codec. Sum types encoded through
// EncodeVariant (geometry) are wrapped in an Envelope [version, kind,
// payload], so the variant index directly follows the schema version.
package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Version is the schema version stamped into every top-level encoded
// message. Bumped only for breaking payload changes; additive fields do not
// require a bump.
type Version uint16

// CurrentVersion is the version this build writes and expects to read.
const CurrentVersion Version = 1

var encMode = mustEncMode()
var decMode = mustDecMode()

func mustEncMode() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	opts.ShortestFloat = cbor.ShortestFloatNone // always full 64-bit float precision
	opts.NaNConvert = cbor.NaNConvert7e00
	opts.InfConvert = cbor.InfConvertFloat64
	m, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: invalid encode options: %v", err))
	}
	return m
}

func mustDecMode() cbor.DecMode {
	opts := cbor.DecOptions{
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
	}
	m, err := opts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("codec: invalid decode options: %v", err))
	}
	return m
}

// Marshal canonically encodes v. Calling Marshal twice on equal values
// always returns byte-identical output.
func Marshal(v any) ([]byte, error) {
	b, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal: %w", err)
	}
	return b, nil
}

// Unmarshal decodes data into v. Unknown trailing struct fields, duplicate
// map keys, and unconsumed trailing bytes are all decode errors: a
// corrupted or truncated message must never decode silently.
func Unmarshal(data []byte, v any) error {
	if err := decMode.Unmarshal(data, v); err != nil {
		return fmt.Errorf("codec: unmarshal: %w", err)
	}
	return nil
}

// Envelope wraps a versioned, tagged payload: a sum type's wire form.
// Kind is the variant's stable index; Payload is that variant's own
// toarray-encoded bytes.
type Envelope struct {
	_       struct{} `cbor:",toarray"`
	Version Version
	Kind    uint8
	Payload cbor.RawMessage
}

// EncodeVariant builds an Envelope around payload, itself canonically
// encoded, tagged with kind.
func EncodeVariant(kind uint8, payload any) ([]byte, error) {
	raw, err := encMode.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("codec: encode variant payload: %w", err)
	}
	env := Envelope{Version: CurrentVersion, Kind: kind, Payload: raw}
	return Marshal(env)
}

// DecodeVariant reads back an Envelope's kind and raw payload bytes,
// leaving the caller to decode Payload into the concrete type for that
// kind.
func DecodeVariant(data []byte) (kind uint8, payload []byte, err error) {
	var env Envelope
	if err := Unmarshal(data, &env); err != nil {
		return 0, nil, err
	}
	if env.Version != CurrentVersion {
		return 0, nil, fmt.Errorf("codec: unsupported envelope version %d", env.Version)
	}
	return env.Kind, env.Payload, nil
}

// DecodePayload decodes raw payload bytes (as produced inside an Envelope)
// into v, applying the same strict decode options as Unmarshal.
func DecodePayload(payload []byte, v any) error {
	return Unmarshal(payload, v)
}

// Optional represents the spec's "tag + absent|present" optional encoding:
// a concrete struct, instead of a Go pointer, so canonical encoding never
// has to special-case nil.
type Optional[T any] struct {
	_       struct{} `cbor:",toarray"`
	Present bool
	Value   T
}

// Some wraps a present value.
func Some[T any](v T) Optional[T] { return Optional[T]{Present: true, Value: v} }

// None returns an absent optional.
func None[T any]() Optional[T] { return Optional[T]{} }

// Get returns the value and whether it was present.
func (o Optional[T]) Get() (T, bool) { return o.Value, o.Present }
