package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cartforge/cartforge/internal/access"
	"github.com/cartforge/cartforge/internal/domain"
	"github.com/cartforge/cartforge/internal/domain/cart"
	"github.com/cartforge/cartforge/internal/domain/product"
	"github.com/cartforge/cartforge/internal/domain/tenant"
	"github.com/cartforge/cartforge/internal/domain/user"
	"github.com/cartforge/cartforge/internal/port/messagequeue"
)

// memStore is an in-memory Store used by the service tests. Cart queries
// evaluate predicates with Matches over the same field names the SQL
// adapter compiles them to.
type memStore struct {
	mu        sync.Mutex
	carts     map[string]*cart.Cart
	tenants   map[string]*tenant.Tenant
	tenantSeq int64
	users     map[string]*user.User
	products  map[string]*product.Product
	variants  map[string]*product.Variant
}

func newMemStore() *memStore {
	return &memStore{
		carts:    make(map[string]*cart.Cart),
		tenants:  make(map[string]*tenant.Tenant),
		users:    make(map[string]*user.User),
		products: make(map[string]*product.Product),
		variants: make(map[string]*product.Variant),
	}
}

func cartDoc(c *cart.Cart) map[string]any {
	doc := map[string]any{"id": c.ID}
	if !c.Tenant.IsZero() {
		doc["tenant"] = c.Tenant
	}
	if c.Customer != "" {
		doc["customer"] = c.Customer
	}
	if c.Secret != "" {
		doc["secret"] = c.Secret
	}
	return doc
}

func cloneCart(c *cart.Cart) cart.Cart {
	out := *c
	out.Items = append([]cart.Item(nil), c.Items...)
	return out
}

// readCart mirrors the SQL adapter's read scans, which never return the
// secret column. Secret checks run inside the predicate match instead.
func readCart(c *cart.Cart) cart.Cart {
	out := cloneCart(c)
	out.Secret = ""
	return out
}

func (s *memStore) CreateCart(_ context.Context, c *cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	stored := cloneCart(c)
	s.carts[c.ID] = &stored
	return nil
}

func (s *memStore) FindCarts(_ context.Context, pred access.Predicate, limit int) ([]cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []cart.Cart
	for _, c := range s.carts {
		if pred == nil || pred.Matches(cartDoc(c)) {
			out = append(out, readCart(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) CountCarts(ctx context.Context, pred access.Predicate) (int, error) {
	carts, err := s.FindCarts(ctx, pred, 0)
	if err != nil {
		return 0, err
	}
	return len(carts), nil
}

func (s *memStore) UpdateCartItems(_ context.Context, id string, items []cart.Item, subtotal int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Items = append([]cart.Item(nil), items...)
	c.Subtotal = subtotal
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memStore) MergeCartItems(_ context.Context, dstID string, items []cart.Item, subtotal int64, srcID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dst, ok := s.carts[dstID]
	if !ok {
		return domain.ErrNotFound
	}
	if _, ok := s.carts[srcID]; !ok {
		return domain.ErrNotFound
	}
	dst.Items = append([]cart.Item(nil), items...)
	dst.Subtotal = subtotal
	dst.UpdatedAt = time.Now().UTC()
	delete(s.carts, srcID)
	return nil
}

func (s *memStore) MarkCartPurchased(_ context.Context, id, customerID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[id]
	if !ok {
		return domain.ErrNotFound
	}
	if c.PurchasedAt != nil {
		return fmt.Errorf("%w: cart already purchased", domain.ErrConflict)
	}
	c.PurchasedAt = &at
	if customerID != "" {
		c.Customer = customerID
	}
	c.UpdatedAt = at
	return nil
}

func (s *memStore) SetCartCustomer(_ context.Context, id, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Customer = customerID
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memStore) DeleteCart(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.carts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.carts, id)
	return nil
}

func (s *memStore) ListStaleCarts(_ context.Context, cutoff time.Time, limit int) ([]cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []cart.Cart
	for _, c := range s.carts {
		if c.PurchasedAt == nil && c.UpdatedAt.Before(cutoff) {
			out = append(out, readCart(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) CreateTenant(_ context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenantSeq++
	now := time.Now().UTC()
	t := &tenant.Tenant{
		ID:        tenant.ParseID(strconv.FormatInt(s.tenantSeq, 10)),
		Name:      req.Name,
		Domain:    req.Domain,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.tenants[t.ID.String()] = t
	out := *t
	return &out, nil
}

func (s *memStore) GetTenant(_ context.Context, id tenant.ID) (*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[id.String()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *t
	return &out, nil
}

func (s *memStore) GetTenantByDomain(_ context.Context, dom string) (*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tenants {
		if t.Domain == dom {
			out := *t
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) ListTenants(_ context.Context) ([]tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]tenant.Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (s *memStore) CreateUser(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return fmt.Errorf("%w: email already registered", domain.ErrConflict)
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	stored := *u
	s.users[u.ID] = &stored
	return nil
}

func (s *memStore) GetUser(_ context.Context, id string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (s *memStore) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) GetProduct(_ context.Context, id string) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (s *memStore) GetVariant(_ context.Context, id string) (*product.Variant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.variants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *v
	return &out, nil
}

func (s *memStore) addProduct(id string, prices map[string]int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[id] = &product.Product{ID: id, Name: id, Prices: prices}
}

func (s *memStore) addVariant(id, productID string, prices map[string]int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variants[id] = &product.Variant{ID: id, ProductID: productID, Name: id, Prices: prices}
}

// memQueue records published events for assertions.
type memQueue struct {
	mu       sync.Mutex
	messages []queuedMessage
}

type queuedMessage struct {
	Subject string
	Data    []byte
}

func (q *memQueue) Publish(_ context.Context, subject string, data []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = append(q.messages, queuedMessage{Subject: subject, Data: data})
	return nil
}

func (q *memQueue) Subscribe(context.Context, string, messagequeue.Handler) (func(), error) {
	return func() {}, nil
}

func (q *memQueue) Close() error { return nil }

func (q *memQueue) subjects() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, len(q.messages))
	for i, m := range q.messages {
		out[i] = m.Subject
	}
	return out
}
