package cart

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cartforge/cartforge/internal/domain"
)

// Matcher decides whether a candidate item is "the same" as an existing one
// for consolidation purposes. A matcher must be reflexive and symmetric, and
// must never match across differing product ids.
type Matcher func(existing, candidate Item) bool

// DefaultMatcher matches when product ids are equal and both variants are
// absent or both variant ids are equal.
func DefaultMatcher(existing, candidate Item) bool {
	return existing.Product == candidate.Product && existing.Variant == candidate.Variant
}

// Add consolidates item into items: a matching entry has its quantity
// increased by item.Quantity, otherwise a new entry is appended. The input
// slice is not mutated. Quantity must be a positive integer.
func Add(items []Item, item Item, match Matcher) ([]Item, error) {
	if item.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be a positive integer", domain.ErrValidation)
	}
	if item.Product == "" {
		return nil, fmt.Errorf("%w: product is required", domain.ErrValidation)
	}
	if match == nil {
		match = DefaultMatcher
	}

	out := cloneItems(items)
	for i := range out {
		if match(out[i], item) {
			out[i].Quantity += item.Quantity
			return out, nil
		}
	}

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	return append(out, item), nil
}

// Increment raises the quantity of the identified item by one. A missing
// item id is a validation error, not an implicit create.
func Increment(items []Item, itemID string) ([]Item, error) {
	idx := FindItem(items, itemID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: cart item not found", domain.ErrValidation)
	}
	out := cloneItems(items)
	out[idx].Quantity++
	return out, nil
}

// Decrement lowers the quantity of the identified item by one, removing the
// item entirely when the quantity would reach zero.
func Decrement(items []Item, itemID string) ([]Item, error) {
	idx := FindItem(items, itemID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: cart item not found", domain.ErrValidation)
	}
	out := cloneItems(items)
	if out[idx].Quantity <= 1 {
		return append(out[:idx], out[idx+1:]...), nil
	}
	out[idx].Quantity--
	return out, nil
}

// SetQuantity replaces the quantity of the identified item. Zero or negative
// removes the item.
func SetQuantity(items []Item, itemID string, quantity int) ([]Item, error) {
	idx := FindItem(items, itemID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: cart item not found", domain.ErrValidation)
	}
	out := cloneItems(items)
	if quantity <= 0 {
		return append(out[:idx], out[idx+1:]...), nil
	}
	out[idx].Quantity = quantity
	return out, nil
}

// Remove deletes the identified item unconditionally, regardless of quantity.
func Remove(items []Item, itemID string) ([]Item, error) {
	idx := FindItem(items, itemID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: cart item not found", domain.ErrValidation)
	}
	out := cloneItems(items)
	return append(out[:idx], out[idx+1:]...), nil
}

// Merge folds every source item into dst using the matcher: quantities
// combine on match, unmatched items are appended in source order. Untouched
// destination items keep their content and order. Merging the same source
// twice into the same destination doubles quantities; exactly-once invocation
// is the caller's responsibility.
func Merge(dst, src []Item, match Matcher) []Item {
	if match == nil {
		match = DefaultMatcher
	}
	out := cloneItems(dst)
	for _, item := range src {
		if item.Quantity <= 0 {
			continue
		}
		merged := false
		for i := range out {
			if match(out[i], item) {
				out[i].Quantity += item.Quantity
				merged = true
				break
			}
		}
		if !merged {
			appended := item
			appended.ID = uuid.NewString()
			out = append(out, appended)
		}
	}
	return out
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
