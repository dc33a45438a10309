// Package streamid defines StreamIdentity, the fully-qualified namespace for
// one event log (variant/branch/level/domain/model), and its canonical
// string form used both as a KV key prefix and as provenance content.
package streamid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/internal/errs"
)

// Identity identifies one event stream. All fields are required; Domain
// must parse as a dotted identifier (seg ("." seg)*, seg = [A-Za-z0-9_]+).
type Identity struct {
	Variant string
	Branch  string
	Level   int
	Domain  string
	Model   string
}

// Validate checks field non-emptiness, Level non-negativity, and Domain's
// dotted-identifier grammar.
func (id Identity) Validate() error {
	if id.Variant == "" {
		return errs.New(errs.KindValidation, "IdentityFieldEmpty", "variant is empty", nil)
	}
	if id.Branch == "" {
		return errs.New(errs.KindValidation, "IdentityFieldEmpty", "branch is empty", nil)
	}
	if id.Level < 0 {
		return errs.New(errs.KindValidation, "IdentityFieldInvalid", "level must be non-negative", map[string]string{
			"level": strconv.Itoa(id.Level),
		})
	}
	if id.Model == "" {
		return errs.New(errs.KindValidation, "IdentityFieldEmpty", "model is empty", nil)
	}
	if !isDottedIdentifier(id.Domain) {
		return errs.New(errs.KindValidation, "IdentityDomainInvalid", "domain is not a dotted identifier", map[string]string{
			"domain": id.Domain,
		})
	}
	return nil
}

func isDottedIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, seg := range strings.Split(s, ".") {
		if seg == "" {
			return false
		}
		for _, r := range seg {
			if !isSegRune(r) {
				return false
			}
		}
	}
	return true
}

func isSegRune(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z':
		return true
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_':
		return true
	default:
		return false
	}
}

// Canonical returns the canonical string form "S:{variant}:{branch}:L{level}:{domain}:M{model}".
// This is both the KV key prefix for the stream and its content-addressed
// "hash" for provenance (streams are identified by identity, not by a
// separate content digest).
func (id Identity) Canonical() string {
	return fmt.Sprintf("S:%s:%s:L%d:%s:M%s", id.Variant, id.Branch, id.Level, id.Domain, id.Model)
}

func (id Identity) String() string { return id.Canonical() }

// Equal reports whether two identities denote the same stream.
func (id Identity) Equal(other Identity) bool {
	return id.Canonical() == other.Canonical()
}
