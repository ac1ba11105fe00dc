// Package access implements the tenant-scoped access-resolution engine:
// role classification, tenant selection, decision composition, and the
// query predicates that narrow store queries for scoped callers.
package access

// Decision is the tagged result of an access resolution: an unconditional
// deny, an unconditional grant, or a predicate restricting the visible set.
type Decision struct {
	kind      decisionKind
	predicate Predicate
}

type decisionKind int

const (
	kindDeny decisionKind = iota
	kindGrant
	kindScope
)

// Deny returns an unconditional deny decision.
func Deny() Decision {
	return Decision{kind: kindDeny}
}

// Grant returns an unconditional grant decision.
func Grant() Decision {
	return Decision{kind: kindGrant}
}

// Scope returns a decision that restricts visibility to records matching p.
func Scope(p Predicate) Decision {
	return Decision{kind: kindScope, predicate: p}
}

// Denied reports whether the decision is an unconditional deny.
func (d Decision) Denied() bool { return d.kind == kindDeny }

// Granted reports whether the decision is an unconditional grant.
func (d Decision) Granted() bool { return d.kind == kindGrant }

// Predicate returns the scope predicate and true when the decision is a
// scope; otherwise nil and false.
func (d Decision) Predicate() (Predicate, bool) {
	if d.kind != kindScope {
		return nil, false
	}
	return d.predicate, true
}

// Or combines two decisions: any grant wins, a deny is the identity, and two
// scopes union into a single OR predicate.
func (d Decision) Or(other Decision) Decision {
	switch {
	case d.kind == kindGrant || other.kind == kindGrant:
		return Grant()
	case d.kind == kindDeny:
		return other
	case other.kind == kindDeny:
		return d
	default:
		return Scope(Or(d.predicate, other.predicate))
	}
}
