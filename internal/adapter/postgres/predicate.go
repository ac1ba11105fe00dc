package postgres

import (
	"fmt"
	"strings"

	"github.com/cartforge/cartforge/internal/access"
	"github.com/cartforge/cartforge/internal/domain/tenant"
)

// cartColumns maps predicate field names to cart table expressions. Every
// expression yields text so one comparison form covers uuid, bigint and text
// columns; NULL columns compare as no-match, which is the scoping semantics
// the resolver expects.
var cartColumns = map[string]string{
	"id":       "id::text",
	"tenant":   "tenant_id::text",
	"customer": "customer_id",
	"secret":   "secret",
}

// compileCartPredicate renders an access predicate as a SQL condition over
// the carts table, appending bind values to args. Unknown fields fail the
// whole query rather than silently matching everything.
func compileCartPredicate(p access.Predicate, args *[]any) (string, error) {
	switch pred := p.(type) {
	case access.FieldEquals:
		col, ok := cartColumns[pred.Field]
		if !ok {
			return "", fmt.Errorf("unsupported predicate field %q", pred.Field)
		}
		*args = append(*args, valueText(pred.Value))
		return fmt.Sprintf("%s = $%d", col, len(*args)), nil

	case access.FieldIn:
		col, ok := cartColumns[pred.Field]
		if !ok {
			return "", fmt.Errorf("unsupported predicate field %q", pred.Field)
		}
		values := make([]string, len(pred.Values))
		for i, v := range pred.Values {
			values[i] = valueText(v)
		}
		*args = append(*args, values)
		return fmt.Sprintf("%s = ANY($%d)", col, len(*args)), nil

	case access.FieldExists:
		col, ok := cartColumns[pred.Field]
		if !ok {
			return "", fmt.Errorf("unsupported predicate field %q", pred.Field)
		}
		if pred.Present {
			return fmt.Sprintf("%s IS NOT NULL", col), nil
		}
		return fmt.Sprintf("%s IS NULL", col), nil

	case access.AndPredicate:
		return compileJunction(pred.Preds, " AND ", "TRUE", args)

	case access.OrPredicate:
		return compileJunction(pred.Preds, " OR ", "FALSE", args)

	default:
		return "", fmt.Errorf("unsupported predicate type %T", p)
	}
}

func compileJunction(preds []access.Predicate, sep, empty string, args *[]any) (string, error) {
	if len(preds) == 0 {
		return empty, nil
	}
	parts := make([]string, len(preds))
	for i, p := range preds {
		part, err := compileCartPredicate(p, args)
		if err != nil {
			return "", err
		}
		parts[i] = part
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

// valueText flattens a bind value to its text form, matching the in-memory
// normalization so both evaluation paths agree on equality.
func valueText(v any) string {
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
