package cart

import (
	"errors"
	"testing"

	"github.com/cartforge/cartforge/internal/domain"
)

func line(id, product, variant string, qty int) Item {
	return Item{ID: id, Product: product, Variant: variant, Quantity: qty}
}

func TestAddConsolidatesMatchingLine(t *testing.T) {
	items := []Item{line("a", "tee", "", 2)}

	out, err := Add(items, Item{Product: "tee", Quantity: 3}, nil)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("lines = %d, want 1", len(out))
	}
	if out[0].Quantity != 5 {
		t.Errorf("quantity = %d, want 5", out[0].Quantity)
	}
	if out[0].ID != "a" {
		t.Errorf("consolidation must keep the existing line id, got %q", out[0].ID)
	}
	if items[0].Quantity != 2 {
		t.Error("input slice must not be mutated")
	}
}

func TestAddAppendsDistinctLine(t *testing.T) {
	items := []Item{line("a", "tee", "", 1)}

	out, err := Add(items, Item{Product: "tee", Variant: "tee-l", Quantity: 1}, nil)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("lines = %d, want 2", len(out))
	}
	if out[1].ID == "" {
		t.Error("appended line must receive an id")
	}

	out, err = Add(out, Item{Product: "mug", Quantity: 1}, nil)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("lines = %d, want 3", len(out))
	}
}

func TestAddValidation(t *testing.T) {
	if _, err := Add(nil, Item{Product: "tee", Quantity: 0}, nil); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("zero quantity: err = %v, want ErrValidation", err)
	}
	if _, err := Add(nil, Item{Product: "tee", Quantity: -1}, nil); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("negative quantity: err = %v, want ErrValidation", err)
	}
	if _, err := Add(nil, Item{Quantity: 1}, nil); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing product: err = %v, want ErrValidation", err)
	}
}

func TestIncrementDecrement(t *testing.T) {
	items := []Item{line("a", "tee", "", 2), line("b", "mug", "", 1)}

	out, err := Increment(items, "a")
	if err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if out[0].Quantity != 3 {
		t.Errorf("quantity = %d, want 3", out[0].Quantity)
	}

	out, err = Decrement(out, "a")
	if err != nil {
		t.Fatalf("Decrement: %v", err)
	}
	if out[0].Quantity != 2 {
		t.Errorf("quantity = %d, want 2", out[0].Quantity)
	}

	// Decrement at one removes the line instead of leaving zero.
	out, err = Decrement(items, "b")
	if err != nil {
		t.Fatalf("Decrement: %v", err)
	}
	if FindItem(out, "b") >= 0 {
		t.Error("line must be removed when quantity would reach zero")
	}
	if len(out) != 1 {
		t.Errorf("lines = %d, want 1", len(out))
	}

	if _, err := Increment(items, "ghost"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing id: err = %v, want ErrValidation", err)
	}
	if _, err := Decrement(items, "ghost"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing id: err = %v, want ErrValidation", err)
	}
}

func TestSetQuantity(t *testing.T) {
	items := []Item{line("a", "tee", "", 2)}

	out, err := SetQuantity(items, "a", 7)
	if err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if out[0].Quantity != 7 {
		t.Errorf("quantity = %d, want 7", out[0].Quantity)
	}

	for _, qty := range []int{0, -3} {
		out, err = SetQuantity(items, "a", qty)
		if err != nil {
			t.Fatalf("SetQuantity(%d): %v", qty, err)
		}
		if len(out) != 0 {
			t.Errorf("SetQuantity(%d) left %d lines, want removal", qty, len(out))
		}
	}

	if _, err := SetQuantity(items, "ghost", 1); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing id: err = %v, want ErrValidation", err)
	}
}

func TestRemove(t *testing.T) {
	items := []Item{line("a", "tee", "", 5), line("b", "mug", "", 1)}

	out, err := Remove(items, "a")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(out) != 1 || out[0].ID != "b" {
		t.Errorf("remove left %v, want only line b", out)
	}

	if _, err := Remove(items, "ghost"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing id: err = %v, want ErrValidation", err)
	}
}

func TestMerge(t *testing.T) {
	dst := []Item{line("a", "tee", "", 2), line("b", "mug", "", 1)}
	src := []Item{line("x", "tee", "", 1), line("y", "cap", "", 4), line("z", "bad", "", 0)}

	out := Merge(dst, src, nil)
	if len(out) != 3 {
		t.Fatalf("lines = %d, want 3", len(out))
	}
	if out[0].Quantity != 3 {
		t.Errorf("tee quantity = %d, want 3", out[0].Quantity)
	}
	if out[1].Quantity != 1 {
		t.Errorf("untouched mug quantity = %d, want 1", out[1].Quantity)
	}
	if out[2].Product != "cap" || out[2].Quantity != 4 {
		t.Errorf("appended line = %+v, want cap x4", out[2])
	}
	if out[2].ID == "x" || out[2].ID == "y" {
		t.Error("appended line must receive a fresh id")
	}

	// Zero-quantity source entries are dropped, never carried over.
	if FindItem(out, "z") >= 0 || len(out) != 3 {
		t.Error("invalid source entries must be skipped")
	}

	// Destination order is stable across merges.
	if out[0].ID != "a" || out[1].ID != "b" {
		t.Error("destination line order must be preserved")
	}
}

func TestMergeEmptySides(t *testing.T) {
	dst := []Item{line("a", "tee", "", 2)}

	if out := Merge(dst, nil, nil); len(out) != 1 || out[0].Quantity != 2 {
		t.Errorf("merge with empty source changed destination: %v", out)
	}
	if out := Merge(nil, dst, nil); len(out) != 1 || out[0].Quantity != 2 {
		t.Errorf("merge into empty destination = %v, want one line", out)
	}
}

func TestCustomMatcher(t *testing.T) {
	// A matcher extending equality to a custom field keeps engraved items
	// on separate lines.
	engraving := func(existing, candidate Item) bool {
		if !DefaultMatcher(existing, candidate) {
			return false
		}
		return existing.Custom["engraving"] == candidate.Custom["engraving"]
	}

	items := []Item{{ID: "a", Product: "mug", Quantity: 1, Custom: map[string]any{"engraving": "Jo"}}}

	out, err := Add(items, Item{Product: "mug", Quantity: 1, Custom: map[string]any{"engraving": "Sam"}}, engraving)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("lines = %d, want 2 distinct engravings", len(out))
	}

	out, err = Add(out, Item{Product: "mug", Quantity: 2, Custom: map[string]any{"engraving": "Jo"}}, engraving)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(out) != 2 || out[0].Quantity != 3 {
		t.Errorf("matching engraving must consolidate, got %v", out)
	}
}
