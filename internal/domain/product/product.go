// Package product defines the minimal product and variant models needed to
// reprice cart items. Catalog management beyond price lookup lives outside
// this service.
package product

import "time"

// Product is a sellable item with per-currency prices in minor units.
type Product struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Prices    map[string]int64 `json:"prices"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Variant is one purchasable variation of a product. A variant price, when
// present for the requested currency, overrides the product price.
type Variant struct {
	ID        string           `json:"id"`
	ProductID string           `json:"product_id"`
	Name      string           `json:"name"`
	Prices    map[string]int64 `json:"prices,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Price returns the product price for the currency.
func (p *Product) Price(currency string) (int64, bool) {
	v, ok := p.Prices[currency]
	return v, ok
}

// Price returns the variant price for the currency.
func (v *Variant) Price(currency string) (int64, bool) {
	price, ok := v.Prices[currency]
	return price, ok
}
