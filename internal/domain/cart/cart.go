// Package cart defines the shopping cart model and the item consolidation
// rules that keep a cart's item list canonical under partial updates.
package cart

import (
	"time"

	"github.com/cartforge/cartforge/internal/domain/tenant"
)

// Status is derived at read time, never stored.
type Status string

const (
	StatusActive    Status = "active"
	StatusPurchased Status = "purchased"
	StatusAbandoned Status = "abandoned"
)

// Item is one consolidated line in a cart. Quantity is strictly positive for
// as long as the item exists; an item whose quantity would reach zero is
// removed instead.
type Item struct {
	ID       string         `json:"id"`
	Product  string         `json:"product"`
	Variant  string         `json:"variant,omitempty"`
	Quantity int            `json:"quantity"`
	Custom   map[string]any `json:"custom,omitempty"`
}

// Cart is the canonical cart record. Tenant is populated by the creation
// callback and required from then on under the strict tenancy policy.
// Secret is set only for guest-created carts and exposed once, at creation.
type Cart struct {
	ID          string     `json:"id"`
	Tenant      tenant.ID  `json:"tenant,omitempty"`
	Customer    string     `json:"customer,omitempty"`
	Secret      string     `json:"secret,omitempty"`
	Items       []Item     `json:"items"`
	Subtotal    int64      `json:"subtotal"`
	Currency    string     `json:"currency"`
	PurchasedAt *time.Time `json:"purchased_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsGuest reports whether the cart has no owning customer.
func (c *Cart) IsGuest() bool {
	return c != nil && c.Customer == ""
}

// Status derives the cart's lifecycle state: purchased once a purchase
// timestamp is set, abandoned after abandonAfter of inactivity, active
// otherwise. abandonAfter <= 0 disables abandonment.
func (c *Cart) Status(now time.Time, abandonAfter time.Duration) Status {
	if c.PurchasedAt != nil {
		return StatusPurchased
	}
	if abandonAfter > 0 && now.Sub(c.UpdatedAt) > abandonAfter {
		return StatusAbandoned
	}
	return StatusActive
}

// FindItem returns the index of the item with the given id, or -1.
func FindItem(items []Item, itemID string) int {
	for i := range items {
		if items[i].ID == itemID {
			return i
		}
	}
	return -1
}
