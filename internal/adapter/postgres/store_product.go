package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cartforge/cartforge/internal/domain/product"
)

func (s *Store) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	var (
		p          product.Product
		pricesJSON []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, prices FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &pricesJSON)
	if err != nil {
		return nil, notFoundWrap(err, "get product %s", id)
	}
	if err := json.Unmarshal(pricesJSON, &p.Prices); err != nil {
		return nil, fmt.Errorf("unmarshal product %s prices: %w", id, err)
	}
	return &p, nil
}

func (s *Store) GetVariant(ctx context.Context, id string) (*product.Variant, error) {
	var (
		v          product.Variant
		pricesJSON []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, product_id, name, prices FROM variants WHERE id = $1`, id,
	).Scan(&v.ID, &v.ProductID, &v.Name, &pricesJSON)
	if err != nil {
		return nil, notFoundWrap(err, "get variant %s", id)
	}
	if err := json.Unmarshal(pricesJSON, &v.Prices); err != nil {
		return nil, fmt.Errorf("unmarshal variant %s prices: %w", id, err)
	}
	return &v, nil
}
