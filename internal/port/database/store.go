// Package database defines the record store port (interface).
package database

import (
	"context"
	"time"

	"github.com/cartforge/cartforge/internal/access"
	"github.com/cartforge/cartforge/internal/domain/cart"
	"github.com/cartforge/cartforge/internal/domain/product"
	"github.com/cartforge/cartforge/internal/domain/tenant"
	"github.com/cartforge/cartforge/internal/domain/user"
)

// Store is the port interface for record persistence. Cart queries accept an
// access predicate so scoped visibility is enforced by the store, atomically
// with the query, instead of post-filtering loaded records.
type Store interface {
	// Carts
	CreateCart(ctx context.Context, c *cart.Cart) error
	FindCarts(ctx context.Context, pred access.Predicate, limit int) ([]cart.Cart, error)
	CountCarts(ctx context.Context, pred access.Predicate) (int, error)
	// UpdateCartItems persists a recomputed item list and subtotal as one unit.
	UpdateCartItems(ctx context.Context, id string, items []cart.Item, subtotal int64) error
	// MergeCartItems persists the merged item list on the destination and
	// deletes the source in one transaction. A failure leaves both carts
	// untouched so the caller can retry without double-counting.
	MergeCartItems(ctx context.Context, dstID string, items []cart.Item, subtotal int64, srcID string) error
	// MarkCartPurchased stamps the purchase timestamp and owning customer.
	MarkCartPurchased(ctx context.Context, id, customerID string, at time.Time) error
	// SetCartCustomer transfers ownership of a guest cart.
	SetCartCustomer(ctx context.Context, id, customerID string) error
	DeleteCart(ctx context.Context, id string) error
	// ListStaleCarts returns unpurchased carts untouched since the cutoff.
	ListStaleCarts(ctx context.Context, cutoff time.Time, limit int) ([]cart.Cart, error)

	// Tenants
	CreateTenant(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error)
	GetTenant(ctx context.Context, id tenant.ID) (*tenant.Tenant, error)
	GetTenantByDomain(ctx context.Context, domain string) (*tenant.Tenant, error)
	ListTenants(ctx context.Context) ([]tenant.Tenant, error)

	// Users
	CreateUser(ctx context.Context, u *user.User) error
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)

	// Catalog (price lookup only)
	GetProduct(ctx context.Context, id string) (*product.Product, error)
	GetVariant(ctx context.Context, id string) (*product.Variant, error)
}
