package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/cartforge/cartforge/internal/access"
	"github.com/cartforge/cartforge/internal/domain/cart"
	"github.com/cartforge/cartforge/internal/domain/tenant"
)

// Read scans exclude the secret column. Secret checks compile into the WHERE
// clause through the access predicate, and the secret itself is only ever
// returned by CreateCart.
const cartColumnsSQL = `id, tenant_id, customer_id, items, subtotal, currency, purchased_at, created_at, updated_at`

func (s *Store) CreateCart(ctx context.Context, c *cart.Cart) error {
	itemsJSON, err := json.Marshal(orEmptyItems(c.Items))
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}

	var tenantID any
	if !c.Tenant.IsZero() {
		tenantID = c.Tenant.Value()
	}

	err = s.pool.QueryRow(ctx, `
		INSERT INTO carts (id, tenant_id, customer_id, secret, items, subtotal, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		c.ID, tenantID, nullIfEmpty(c.Customer), nullIfEmpty(c.Secret), itemsJSON, c.Subtotal, c.Currency,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create cart: %w", err)
	}
	return nil
}

func (s *Store) FindCarts(ctx context.Context, pred access.Predicate, limit int) ([]cart.Cart, error) {
	where := "TRUE"
	var args []any
	if pred != nil {
		compiled, err := compileCartPredicate(pred, &args)
		if err != nil {
			return nil, fmt.Errorf("find carts: %w", err)
		}
		where = compiled
	}

	query := fmt.Sprintf(`SELECT %s FROM carts WHERE %s ORDER BY created_at DESC`, cartColumnsSQL, where)
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find carts: %w", err)
	}
	defer rows.Close()

	var carts []cart.Cart
	for rows.Next() {
		c, err := scanCart(rows)
		if err != nil {
			return nil, err
		}
		carts = append(carts, c)
	}
	return carts, rows.Err()
}

func (s *Store) CountCarts(ctx context.Context, pred access.Predicate) (int, error) {
	where := "TRUE"
	var args []any
	if pred != nil {
		compiled, err := compileCartPredicate(pred, &args)
		if err != nil {
			return 0, fmt.Errorf("count carts: %w", err)
		}
		where = compiled
	}

	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM carts WHERE `+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count carts: %w", err)
	}
	return n, nil
}

func (s *Store) UpdateCartItems(ctx context.Context, id string, items []cart.Item, subtotal int64) error {
	itemsJSON, err := json.Marshal(orEmptyItems(items))
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE carts SET items = $2, subtotal = $3, updated_at = now()
		WHERE id = $1`,
		id, itemsJSON, subtotal)
	return execExpectOne(tag, err, "update cart %s items", id)
}

func (s *Store) MergeCartItems(ctx context.Context, dstID string, items []cart.Item, subtotal int64, srcID string) error {
	itemsJSON, err := json.Marshal(orEmptyItems(items))
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("merge cart %s: %w", dstID, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE carts SET items = $2, subtotal = $3, updated_at = now()
		WHERE id = $1`,
		dstID, itemsJSON, subtotal)
	if err := execExpectOne(tag, err, "merge cart %s items", dstID); err != nil {
		return err
	}

	tag, err = tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, srcID)
	if err := execExpectOne(tag, err, "delete merged cart %s", srcID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("merge cart %s: %w", dstID, err)
	}
	return nil
}

func (s *Store) MarkCartPurchased(ctx context.Context, id, customerID string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE carts
		SET purchased_at = $2,
		    customer_id = COALESCE(customer_id, $3),
		    updated_at = now()
		WHERE id = $1 AND purchased_at IS NULL`,
		id, at, nullIfEmpty(customerID))
	return execExpectOne(tag, err, "mark cart %s purchased", id)
}

func (s *Store) SetCartCustomer(ctx context.Context, id, customerID string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE carts SET customer_id = $2, updated_at = now()
		WHERE id = $1`,
		id, customerID)
	return execExpectOne(tag, err, "set cart %s customer", id)
}

func (s *Store) DeleteCart(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete cart %s", id)
}

func (s *Store) ListStaleCarts(ctx context.Context, cutoff time.Time, limit int) ([]cart.Cart, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM carts
		WHERE purchased_at IS NULL AND updated_at < $1
		ORDER BY updated_at ASC
		LIMIT $2`, cartColumnsSQL),
		cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale carts: %w", err)
	}
	defer rows.Close()

	var carts []cart.Cart
	for rows.Next() {
		c, err := scanCart(rows)
		if err != nil {
			return nil, err
		}
		carts = append(carts, c)
	}
	return carts, rows.Err()
}

func scanCart(row scannable) (cart.Cart, error) {
	var (
		c         cart.Cart
		tenantID  *int64
		customer  *string
		itemsJSON []byte
	)
	if err := row.Scan(&c.ID, &tenantID, &customer, &itemsJSON, &c.Subtotal, &c.Currency, &c.PurchasedAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return cart.Cart{}, fmt.Errorf("scan cart: %w", err)
	}
	if tenantID != nil {
		c.Tenant = tenant.ParseID(strconv.FormatInt(*tenantID, 10))
	}
	c.Customer = orDefault(customer)
	if err := json.Unmarshal(itemsJSON, &c.Items); err != nil {
		return cart.Cart{}, fmt.Errorf("unmarshal cart %s items: %w", c.ID, err)
	}
	return c, nil
}

func orEmptyItems(items []cart.Item) []cart.Item {
	if items == nil {
		return []cart.Item{}
	}
	return items
}
