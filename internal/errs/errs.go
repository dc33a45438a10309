// Package errs provides the coded-error taxonomy shared across the store,
// materializer, invariant checker, integrator, and frame service.
package errs

import "fmt"

// Kind classifies a failure per the taxonomy in the system design: the
// caller branches on Kind, not on the underlying Go type.
type Kind string

const (
	KindValidation Kind = "validation"
	KindPolicy     Kind = "policy"
	KindInvariant  Kind = "invariant"
	KindCorruption Kind = "corruption"
)

// Coded is an error carrying a machine-readable code, a Kind, and the
// identifiers needed to locate the offending entity.
type Coded struct {
	Kind Kind
	Code string
	Msg  string
	Ids  map[string]string
	Wrapped error
}

func (e *Coded) Error() string {
	if len(e.Ids) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("%s: %s %v", e.Code, e.Msg, e.Ids)
}

func (e *Coded) Unwrap() error { return e.Wrapped }

// New builds a Coded error with no wrapped cause.
func New(kind Kind, code, msg string, ids map[string]string) *Coded {
	return &Coded{Kind: kind, Code: code, Msg: msg, Ids: ids}
}

// Wrap builds a Coded error around an existing cause.
func Wrap(kind Kind, code, msg string, ids map[string]string, cause error) *Coded {
	return &Coded{Kind: kind, Code: code, Msg: msg, Ids: ids, Wrapped: cause}
}
