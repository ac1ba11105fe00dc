package service

import (
	"context"
	"fmt"

	"github.com/cartforge/cartforge/internal/domain"
	"github.com/cartforge/cartforge/internal/domain/cart"
	"github.com/cartforge/cartforge/internal/port/database"
)

// PricingService recomputes cart subtotals from current catalog prices.
type PricingService struct {
	store database.Store
}

// NewPricingService creates a new PricingService.
func NewPricingService(store database.Store) *PricingService {
	return &PricingService{store: store}
}

// Subtotal prices every item at its current catalog price in the given
// currency and returns the sum in minor units. A variant price, when present,
// overrides the product price. Missing prices are validation errors.
func (s *PricingService) Subtotal(ctx context.Context, items []cart.Item, currency string) (int64, error) {
	var total int64
	for _, item := range items {
		unit, err := s.unitPrice(ctx, item, currency)
		if err != nil {
			return 0, err
		}
		total += unit * int64(item.Quantity)
	}
	return total, nil
}

func (s *PricingService) unitPrice(ctx context.Context, item cart.Item, currency string) (int64, error) {
	if item.Variant != "" {
		v, err := s.store.GetVariant(ctx, item.Variant)
		if err != nil {
			return 0, fmt.Errorf("variant %s: %w", item.Variant, err)
		}
		if price, ok := v.Price(currency); ok {
			return price, nil
		}
	}

	p, err := s.store.GetProduct(ctx, item.Product)
	if err != nil {
		return 0, fmt.Errorf("product %s: %w", item.Product, err)
	}
	price, ok := p.Price(currency)
	if !ok {
		return 0, fmt.Errorf("%w: product %s has no %s price", domain.ErrValidation, item.Product, currency)
	}
	return price, nil
}
