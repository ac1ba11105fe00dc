package access

import (
	"fmt"

	"github.com/cartforge/cartforge/internal/domain/tenant"
)

// Predicate is a structured query filter. The store adapter compiles
// predicates to its native query language; Matches provides an in-memory
// evaluation over a field map for stores and tests that hold records as
// documents.
//
// The language covers field equality, field-in-set, field existence, and
// boolean AND/OR composition.
type Predicate interface {
	// Matches evaluates the predicate against a document.
	Matches(doc map[string]any) bool
}

// FieldEquals matches records whose field equals the value.
type FieldEquals struct {
	Field string
	Value any
}

// FieldIn matches records whose field equals any member of Values.
type FieldIn struct {
	Field  string
	Values []any
}

// FieldExists matches on field presence: Present true requires a non-null
// value, false requires the field to be absent or null.
type FieldExists struct {
	Field   string
	Present bool
}

// AndPredicate matches when every member matches.
type AndPredicate struct {
	Preds []Predicate
}

// OrPredicate matches when any member matches.
type OrPredicate struct {
	Preds []Predicate
}

// Eq builds a field-equality predicate.
func Eq(field string, value any) Predicate {
	return FieldEquals{Field: field, Value: value}
}

// In builds a field-in-set predicate.
func In(field string, values []any) Predicate {
	return FieldIn{Field: field, Values: values}
}

// Missing builds a predicate matching records where the field is absent.
func Missing(field string) Predicate {
	return FieldExists{Field: field, Present: false}
}

// And composes predicates conjunctively.
func And(preds ...Predicate) Predicate {
	return AndPredicate{Preds: preds}
}

// Or composes predicates disjunctively.
func Or(preds ...Predicate) Predicate {
	return OrPredicate{Preds: preds}
}

// NoMatch returns a predicate matching zero records. Used by the list-scope
// resolver for callers with no visibility: listing must never fall open.
func NoMatch() Predicate {
	return FieldEquals{Field: "id", Value: "-1"}
}

// TenantIn builds a predicate matching records whose tenant is any of ids.
func TenantIn(ids []tenant.ID) Predicate {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id.Value()
	}
	return In("tenant", values)
}

func (p FieldEquals) Matches(doc map[string]any) bool {
	v, ok := doc[p.Field]
	if !ok || v == nil {
		return false
	}
	return normalize(v) == normalize(p.Value)
}

func (p FieldIn) Matches(doc map[string]any) bool {
	v, ok := doc[p.Field]
	if !ok || v == nil {
		return false
	}
	n := normalize(v)
	for _, candidate := range p.Values {
		if n == normalize(candidate) {
			return true
		}
	}
	return false
}

func (p FieldExists) Matches(doc map[string]any) bool {
	v, ok := doc[p.Field]
	present := ok && v != nil && normalize(v) != ""
	return present == p.Present
}

func (p AndPredicate) Matches(doc map[string]any) bool {
	for _, pred := range p.Preds {
		if !pred.Matches(doc) {
			return false
		}
	}
	return true
}

func (p OrPredicate) Matches(doc map[string]any) bool {
	for _, pred := range p.Preds {
		if pred.Matches(doc) {
			return true
		}
	}
	return false
}

// normalize flattens comparable values to strings so numeric and string
// forms of the same tenant id compare equal.
func normalize(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case tenant.ID:
		return t.String()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
