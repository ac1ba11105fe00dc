package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cartforge/cartforge/internal/access"
	"github.com/cartforge/cartforge/internal/config"
	"github.com/cartforge/cartforge/internal/domain"
	"github.com/cartforge/cartforge/internal/domain/cart"
	"github.com/cartforge/cartforge/internal/domain/tenant"
	"github.com/cartforge/cartforge/internal/port/database"
	"github.com/cartforge/cartforge/internal/port/messagequeue"
)

// CartService owns cart lifecycle and item consolidation. Every operation
// resolves access before touching the store, and every item mutation
// repersists the whole item list with a freshly computed subtotal.
type CartService struct {
	store   database.Store
	gates   *access.CartGates
	pricing *PricingService
	tenants *TenantService
	queue   messagequeue.Queue // nil disables event publishing
	match   cart.Matcher
	cfg     config.Carts
}

// NewCartService creates a new CartService. matcher nil selects the default
// product+variant comparator; queue nil disables events.
func NewCartService(
	store database.Store,
	gates *access.CartGates,
	pricing *PricingService,
	tenants *TenantService,
	queue messagequeue.Queue,
	matcher cart.Matcher,
	cfg config.Carts,
) *CartService {
	if matcher == nil {
		matcher = cart.DefaultMatcher
	}
	return &CartService{
		store:   store,
		gates:   gates,
		pricing: pricing,
		tenants: tenants,
		queue:   queue,
		match:   matcher,
		cfg:     cfg,
	}
}

// ItemInput is the caller-facing shape of a cart item mutation.
type ItemInput struct {
	Product  string         `json:"product"`
	Variant  string         `json:"variant,omitempty"`
	Quantity int            `json:"quantity"`
	Custom   map[string]any `json:"custom,omitempty"`
}

// CreateCartRequest is the input for cart creation.
type CreateCartRequest struct {
	// Tenant may be supplied explicitly by admin callers; otherwise it is
	// resolved from request signals by the assignment callback.
	Tenant   string      `json:"tenant,omitempty"`
	Currency string      `json:"currency,omitempty"`
	Items    []ItemInput `json:"items,omitempty"`
}

// CreateCart creates a cart for the caller. Guest carts receive a write-once
// secret, returned only on this response. Under the strict tenancy policy
// creation fails when no tenant can be resolved; nothing is persisted.
func (s *CartService) CreateCart(ctx context.Context, rc access.RequestContext, req CreateCartRequest) (*cart.Cart, error) {
	d, err := s.gates.Create(ctx, rc)
	if err != nil {
		return nil, err
	}
	if !d.Granted() {
		return nil, domain.ErrForbidden
	}

	tenantID, err := s.populateTenant(ctx, rc, req.Tenant)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	var items []cart.Item
	for _, in := range req.Items {
		items, err = cart.Add(items, itemFromInput(in), s.match)
		if err != nil {
			return nil, err
		}
	}

	subtotal, err := s.pricing.Subtotal(ctx, items, currency)
	if err != nil {
		return nil, err
	}

	c := &cart.Cart{
		ID:       uuid.NewString(),
		Tenant:   tenantID,
		Items:    items,
		Subtotal: subtotal,
		Currency: currency,
	}
	if rc.User != nil {
		c.Customer = rc.User.ID
	} else {
		c.Secret = uuid.NewString()
	}

	if err := s.store.CreateCart(ctx, c); err != nil {
		return nil, err
	}

	s.publish(ctx, messagequeue.SubjectCartCreated, s.eventPayload(c))
	return c, nil
}

// populateTenant resolves the tenant for a new cart: explicit value, then
// the selected-tenant signal (validated against the store), then the domain
// signal. Runs on create only; an already-supplied tenant is kept as-is.
func (s *CartService) populateTenant(ctx context.Context, rc access.RequestContext, explicit string) (tenant.ID, error) {
	if explicit != "" {
		id := tenant.ParseID(explicit)
		ok, err := s.tenants.Exists(ctx, id)
		if err != nil {
			return tenant.ID{}, err
		}
		if !ok {
			return tenant.ID{}, fmt.Errorf("%w: unknown tenant %q", domain.ErrValidation, explicit)
		}
		return id, nil
	}

	if selected, ok := rc.SelectedTenant(); ok {
		exists, err := s.tenants.Exists(ctx, selected)
		if err != nil {
			return tenant.ID{}, err
		}
		if exists {
			return selected, nil
		}
		// Invalid selection falls through to domain resolution.
	}

	if dom, ok := rc.TenantDomain(); ok {
		t, err := s.tenants.GetByDomain(ctx, dom)
		if err == nil {
			return t.ID, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return tenant.ID{}, err
		}
	}

	if s.cfg.RequireTenant {
		return tenant.ID{}, fmt.Errorf("%w: cart must belong to a tenant", domain.ErrValidation)
	}
	return tenant.ID{}, nil
}

// GetCart returns a cart visible to the caller under the read gate.
func (s *CartService) GetCart(ctx context.Context, rc access.RequestContext, id string) (*cart.Cart, error) {
	d, err := s.gates.Read(ctx, rc)
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, d, id)
}

// ListCarts returns the admin list view, narrowed by the list-scope filter.
func (s *CartService) ListCarts(ctx context.Context, rc access.RequestContext, limit int) ([]cart.Cart, error) {
	return s.store.FindCarts(ctx, s.gates.ListFilter(rc), limit)
}

// AddItem consolidates an item into the cart: a matching line gains the
// quantity, otherwise a new line is appended.
func (s *CartService) AddItem(ctx context.Context, rc access.RequestContext, cartID string, in ItemInput) (*cart.Cart, error) {
	return s.mutateItems(ctx, rc, cartID, messagequeue.SubjectCartItemAdded, func(items []cart.Item) ([]cart.Item, error) {
		return cart.Add(items, itemFromInput(in), s.match)
	})
}

// IncrementItem raises an item's quantity by one.
func (s *CartService) IncrementItem(ctx context.Context, rc access.RequestContext, cartID, itemID string) (*cart.Cart, error) {
	return s.mutateItems(ctx, rc, cartID, messagequeue.SubjectCartItemAdded, func(items []cart.Item) ([]cart.Item, error) {
		return cart.Increment(items, itemID)
	})
}

// DecrementItem lowers an item's quantity by one, removing it at zero.
func (s *CartService) DecrementItem(ctx context.Context, rc access.RequestContext, cartID, itemID string) (*cart.Cart, error) {
	return s.mutateItems(ctx, rc, cartID, messagequeue.SubjectCartItemRemoved, func(items []cart.Item) ([]cart.Item, error) {
		return cart.Decrement(items, itemID)
	})
}

// SetItemQuantity replaces an item's quantity; zero removes the item.
func (s *CartService) SetItemQuantity(ctx context.Context, rc access.RequestContext, cartID, itemID string, quantity int) (*cart.Cart, error) {
	return s.mutateItems(ctx, rc, cartID, messagequeue.SubjectCartItemAdded, func(items []cart.Item) ([]cart.Item, error) {
		return cart.SetQuantity(items, itemID, quantity)
	})
}

// RemoveItem deletes an item unconditionally.
func (s *CartService) RemoveItem(ctx context.Context, rc access.RequestContext, cartID, itemID string) (*cart.Cart, error) {
	return s.mutateItems(ctx, rc, cartID, messagequeue.SubjectCartItemRemoved, func(items []cart.Item) ([]cart.Item, error) {
		return cart.Remove(items, itemID)
	})
}

// ClearCart removes every item.
func (s *CartService) ClearCart(ctx context.Context, rc access.RequestContext, cartID string) (*cart.Cart, error) {
	return s.mutateItems(ctx, rc, cartID, messagequeue.SubjectCartCleared, func([]cart.Item) ([]cart.Item, error) {
		return nil, nil
	})
}

// MergeCarts folds the source cart's items into the destination and deletes
// the source. Typical use is folding a guest cart into an authenticated
// user's cart at login: the guest secret in the request grants read access
// to the source. The update and delete commit as one transaction, so a
// failed attempt leaves both carts intact and a retry starts clean. A
// completed merge is not idempotent against the same destination, which is
// why callers guard retries with an idempotency key.
func (s *CartService) MergeCarts(ctx context.Context, rc access.RequestContext, dstID, srcID string) (*cart.Cart, error) {
	if dstID == srcID {
		return nil, fmt.Errorf("%w: cannot merge a cart into itself", domain.ErrValidation)
	}

	updateDecision, err := s.gates.Update(ctx, rc)
	if err != nil {
		return nil, err
	}
	dst, err := s.fetch(ctx, updateDecision, dstID)
	if err != nil {
		return nil, err
	}
	if dst.PurchasedAt != nil {
		return nil, fmt.Errorf("%w: cart already purchased", domain.ErrValidation)
	}

	readDecision, err := s.gates.Read(ctx, rc)
	if err != nil {
		return nil, err
	}
	src, err := s.fetch(ctx, readDecision, srcID)
	if err != nil {
		return nil, err
	}

	merged := cart.Merge(dst.Items, src.Items, s.match)
	subtotal, err := s.pricing.Subtotal(ctx, merged, dst.Currency)
	if err != nil {
		return nil, err
	}

	if err := s.store.MergeCartItems(ctx, dst.ID, merged, subtotal, src.ID); err != nil {
		return nil, err
	}

	dst.Items = merged
	dst.Subtotal = subtotal

	payload := messagequeue.CartMergedPayload{
		CartEventPayload: s.eventPayload(dst),
		SourceCartID:     src.ID,
		MergedItems:      len(src.Items),
	}
	s.publish(ctx, messagequeue.SubjectCartMerged, payload)
	return dst, nil
}

// ClaimCart transfers an unowned guest cart to the authenticated caller.
// The caller proves access through the guest secret.
func (s *CartService) ClaimCart(ctx context.Context, rc access.RequestContext, cartID string) (*cart.Cart, error) {
	if rc.User == nil {
		return nil, domain.ErrForbidden
	}

	d, err := s.gates.Update(ctx, rc)
	if err != nil {
		return nil, err
	}
	c, err := s.fetch(ctx, d, cartID)
	if err != nil {
		return nil, err
	}
	if c.Customer == rc.User.ID {
		return c, nil
	}
	if c.Customer != "" {
		return nil, fmt.Errorf("%w: cart already has an owner", domain.ErrValidation)
	}

	if err := s.store.SetCartCustomer(ctx, c.ID, rc.User.ID); err != nil {
		return nil, err
	}
	c.Customer = rc.User.ID
	return c, nil
}

// DeleteCart removes a cart visible to the caller under the delete gate.
func (s *CartService) DeleteCart(ctx context.Context, rc access.RequestContext, id string) error {
	d, err := s.gates.Delete(ctx, rc)
	if err != nil {
		return err
	}
	c, err := s.fetch(ctx, d, id)
	if err != nil {
		return err
	}
	return s.store.DeleteCart(ctx, c.ID)
}

// MarkPurchased stamps a purchase: it is invoked by the payment adapter
// through a trusted in-process contract, not through the caller gates.
func (s *CartService) MarkPurchased(ctx context.Context, cartID, customerID string) error {
	now := time.Now().UTC()
	if err := s.store.MarkCartPurchased(ctx, cartID, customerID, now); err != nil {
		return err
	}
	carts, err := s.store.FindCarts(ctx, access.Eq("id", cartID), 1)
	if err == nil && len(carts) == 1 {
		s.publish(ctx, messagequeue.SubjectCartPurchased, s.eventPayload(&carts[0]))
	}
	return nil
}

// Status derives the lifecycle state of a cart under the configured
// abandonment threshold.
func (s *CartService) Status(c *cart.Cart) cart.Status {
	return c.Status(time.Now().UTC(), s.cfg.AbandonAfter)
}

// mutateItems is the read-modify-write path shared by all item operations:
// fetch under the update gate, compute the new list, reprice, persist list
// and subtotal as one unit. Concurrent mutations of the same cart are
// last-writer-wins; stricter semantics require a version check at the store
// boundary.
func (s *CartService) mutateItems(ctx context.Context, rc access.RequestContext, cartID, subject string, apply func([]cart.Item) ([]cart.Item, error)) (*cart.Cart, error) {
	d, err := s.gates.Update(ctx, rc)
	if err != nil {
		return nil, err
	}
	c, err := s.fetch(ctx, d, cartID)
	if err != nil {
		return nil, err
	}
	if c.PurchasedAt != nil {
		return nil, fmt.Errorf("%w: cart already purchased", domain.ErrValidation)
	}

	items, err := apply(c.Items)
	if err != nil {
		return nil, err
	}

	subtotal, err := s.pricing.Subtotal(ctx, items, c.Currency)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateCartItems(ctx, c.ID, items, subtotal); err != nil {
		return nil, err
	}

	c.Items = items
	c.Subtotal = subtotal
	s.publish(ctx, subject, s.eventPayload(c))
	return c, nil
}

// fetch loads a single cart through an access decision. The decision's
// predicate is intersected with the id match so the store enforces scope
// atomically with the lookup; a non-visible cart reads as not found.
func (s *CartService) fetch(ctx context.Context, d access.Decision, id string) (*cart.Cart, error) {
	if d.Denied() {
		return nil, domain.ErrForbidden
	}
	pred := access.Eq("id", id)
	if p, ok := d.Predicate(); ok {
		pred = access.And(pred, p)
	}
	carts, err := s.store.FindCarts(ctx, pred, 1)
	if err != nil {
		return nil, err
	}
	if len(carts) == 0 {
		return nil, domain.ErrNotFound
	}
	return &carts[0], nil
}

func (s *CartService) eventPayload(c *cart.Cart) messagequeue.CartEventPayload {
	return messagequeue.CartEventPayload{
		CartID:    c.ID,
		Tenant:    c.Tenant.String(),
		Customer:  c.Customer,
		ItemCount: len(c.Items),
		Subtotal:  c.Subtotal,
		Currency:  c.Currency,
		At:        time.Now().UTC(),
	}
}

// publish emits a cart event best-effort; delivery failures are logged, not
// surfaced to the caller.
func (s *CartService) publish(ctx context.Context, subject string, payload any) {
	if s.queue == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		slog.Warn("cart event publish failed", "subject", subject, "error", err)
	}
}

func itemFromInput(in ItemInput) cart.Item {
	return cart.Item{
		Product:  in.Product,
		Variant:  in.Variant,
		Quantity: in.Quantity,
		Custom:   in.Custom,
	}
}
