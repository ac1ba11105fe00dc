package postgres

import (
	"testing"

	"github.com/cartforge/cartforge/internal/access"
	"github.com/cartforge/cartforge/internal/domain/tenant"
)

func TestCompileCartPredicate(t *testing.T) {
	tests := []struct {
		name     string
		pred     access.Predicate
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "id equality",
			pred:     access.Eq("id", "c1"),
			wantSQL:  "id::text = $1",
			wantArgs: []any{"c1"},
		},
		{
			name:     "tenant equality normalizes numeric id",
			pred:     access.Eq("tenant", tenant.ParseID("42")),
			wantSQL:  "tenant_id::text = $1",
			wantArgs: []any{"42"},
		},
		{
			name:     "secret equality",
			pred:     access.Eq("secret", "s-1"),
			wantSQL:  "secret = $1",
			wantArgs: []any{"s-1"},
		},
		{
			name:     "tenant in set",
			pred:     access.TenantIn([]tenant.ID{tenant.ParseID("1"), tenant.ParseID("2")}),
			wantSQL:  "tenant_id::text = ANY($1)",
			wantArgs: []any{[]string{"1", "2"}},
		},
		{
			name:    "tenant absent",
			pred:    access.Missing("tenant"),
			wantSQL: "tenant_id::text IS NULL",
		},
		{
			name:     "scope intersection",
			pred:     access.And(access.Eq("id", "c1"), access.Eq("customer", "u1")),
			wantSQL:  "(id::text = $1 AND customer_id = $2)",
			wantArgs: []any{"c1", "u1"},
		},
		{
			name:     "widened tenant scope",
			pred:     access.Or(access.Eq("tenant", tenant.ParseID("7")), access.Missing("tenant")),
			wantSQL:  "(tenant_id::text = $1 OR tenant_id::text IS NULL)",
			wantArgs: []any{"7"},
		},
		{
			name:     "zero-result filter",
			pred:     access.NoMatch(),
			wantSQL:  "id::text = $1",
			wantArgs: []any{"-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var args []any
			got, err := compileCartPredicate(tt.pred, &args)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			if got != tt.wantSQL {
				t.Errorf("sql = %q, want %q", got, tt.wantSQL)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args = %v, want %v", args, tt.wantArgs)
			}
			for i, want := range tt.wantArgs {
				switch w := want.(type) {
				case []string:
					g, ok := args[i].([]string)
					if !ok || len(g) != len(w) {
						t.Fatalf("arg %d = %v, want %v", i, args[i], want)
					}
					for j := range w {
						if g[j] != w[j] {
							t.Errorf("arg %d[%d] = %q, want %q", i, j, g[j], w[j])
						}
					}
				default:
					if args[i] != want {
						t.Errorf("arg %d = %v, want %v", i, args[i], want)
					}
				}
			}
		})
	}
}

func TestCompileCartPredicateRejectsUnknownField(t *testing.T) {
	var args []any
	if _, err := compileCartPredicate(access.Eq("password", "x"), &args); err == nil {
		t.Error("unknown fields must fail the query, not fall open")
	}
	if _, err := compileCartPredicate(access.In("password", []any{"x"}), &args); err == nil {
		t.Error("unknown fields must fail the query, not fall open")
	}
}

func TestCompileEmptyJunctions(t *testing.T) {
	var args []any
	got, err := compileCartPredicate(access.And(), &args)
	if err != nil || got != "TRUE" {
		t.Errorf("empty AND = %q, %v; want TRUE", got, err)
	}
	got, err = compileCartPredicate(access.Or(), &args)
	if err != nil || got != "FALSE" {
		t.Errorf("empty OR = %q, %v; want FALSE", got, err)
	}
}
