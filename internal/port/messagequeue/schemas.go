package messagequeue

import "time"

// CartEventPayload is the schema for all carts.* messages.
type CartEventPayload struct {
	CartID    string    `json:"cart_id"`
	Tenant    string    `json:"tenant,omitempty"`
	Customer  string    `json:"customer,omitempty"`
	ItemCount int       `json:"item_count"`
	Subtotal  int64     `json:"subtotal"`
	Currency  string    `json:"currency"`
	At        time.Time `json:"at"`
}

// CartMergedPayload is the schema for carts.merged messages.
type CartMergedPayload struct {
	CartEventPayload
	SourceCartID string `json:"source_cart_id"`
	MergedItems  int    `json:"merged_items"`
}
