package streamid

// Wire is the canonical positional encoding of an Identity: fixed field
// order (variant, branch, level, domain, model), no string-keyed map.
type Wire struct {
	_       struct{} `cbor:",toarray"`
	Variant string
	Branch  string
	Level   int64
	Domain  string
	Model   string
}

// ToWire converts id to its canonical wire form.
func (id Identity) ToWire() Wire {
	return Wire{Variant: id.Variant, Branch: id.Branch, Level: int64(id.Level), Domain: id.Domain, Model: id.Model}
}

// FromWire converts a decoded Wire back to an Identity.
func FromWire(w Wire) Identity {
	return Identity{Variant: w.Variant, Branch: w.Branch, Level: int(w.Level), Domain: w.Domain, Model: w.Model}
}
