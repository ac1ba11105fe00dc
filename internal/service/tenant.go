package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cartforge/cartforge/internal/domain"
	"github.com/cartforge/cartforge/internal/domain/tenant"
	"github.com/cartforge/cartforge/internal/port/cache"
	"github.com/cartforge/cartforge/internal/port/database"
)

// TenantService manages tenant lookup and lifecycle. Reads on the cart hot
// path (id validation during tenant assignment, domain resolution) go
// through the cache.
type TenantService struct {
	store    database.Store
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewTenantService creates a new TenantService. cache may be nil.
func NewTenantService(store database.Store, c cache.Cache, cacheTTL time.Duration) *TenantService {
	return &TenantService{store: store, cache: c, cacheTTL: cacheTTL}
}

// Create validates and creates a new tenant.
func (s *TenantService) Create(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: tenant name is required", domain.ErrValidation)
	}
	t, err := s.store.CreateTenant(ctx, req)
	if err != nil {
		return nil, err
	}
	if t.Domain != "" {
		s.evict(ctx, keyTenantDomain(t.Domain))
	}
	return t, nil
}

// Get returns a tenant by ID, cache-first.
func (s *TenantService) Get(ctx context.Context, id tenant.ID) (*tenant.Tenant, error) {
	return s.cached(ctx, keyTenantID(id), func() (*tenant.Tenant, error) {
		return s.store.GetTenant(ctx, id)
	})
}

// GetByDomain returns the first tenant whose domain matches, cache-first.
func (s *TenantService) GetByDomain(ctx context.Context, dom string) (*tenant.Tenant, error) {
	return s.cached(ctx, keyTenantDomain(dom), func() (*tenant.Tenant, error) {
		return s.store.GetTenantByDomain(ctx, dom)
	})
}

// List returns all tenants.
func (s *TenantService) List(ctx context.Context) ([]tenant.Tenant, error) {
	return s.store.ListTenants(ctx)
}

// Exists reports whether an enabled tenant with the given id exists.
func (s *TenantService) Exists(ctx context.Context, id tenant.ID) (bool, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return t.Enabled, nil
}

func (s *TenantService) cached(ctx context.Context, key string, load func() (*tenant.Tenant, error)) (*tenant.Tenant, error) {
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var t tenant.Tenant
			if uerr := json.Unmarshal(data, &t); uerr == nil {
				return &t, nil
			}
			s.evict(ctx, key)
		}
	}

	t, err := load()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, merr := json.Marshal(t); merr == nil {
			if serr := s.cache.Set(ctx, key, data, s.cacheTTL); serr != nil {
				slog.Debug("tenant cache set failed", "key", key, "error", serr)
			}
		}
	}
	return t, nil
}

func (s *TenantService) evict(ctx context.Context, key string) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, key)
	}
}

func keyTenantID(id tenant.ID) string   { return "tenant:id:" + id.String() }
func keyTenantDomain(dom string) string { return "tenant:domain:" + dom }
