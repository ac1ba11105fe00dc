package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cartforge/cartforge/internal/domain/tenant"
)

func (s *Store) CreateTenant(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
	var (
		t  tenant.Tenant
		id int64
	)
	err := s.pool.QueryRow(ctx, `
		INSERT INTO tenants (name, domain) VALUES ($1, $2)
		RETURNING id, name, COALESCE(domain, ''), enabled, created_at, updated_at`,
		req.Name, nullIfEmpty(req.Domain),
	).Scan(&id, &t.Name, &t.Domain, &t.Enabled, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}
	t.ID = tenant.ParseID(strconv.FormatInt(id, 10))
	return &t, nil
}

func (s *Store) GetTenant(ctx context.Context, id tenant.ID) (*tenant.Tenant, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(domain, ''), enabled, created_at, updated_at
		FROM tenants WHERE id::text = $1`,
		id.String())
	t, err := scanTenant(row)
	if err != nil {
		return nil, notFoundWrap(err, "get tenant %s", id)
	}
	return t, nil
}

func (s *Store) GetTenantByDomain(ctx context.Context, dom string) (*tenant.Tenant, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(domain, ''), enabled, created_at, updated_at
		FROM tenants WHERE domain = $1
		ORDER BY id ASC LIMIT 1`,
		dom)
	t, err := scanTenant(row)
	if err != nil {
		return nil, notFoundWrap(err, "get tenant by domain %s", dom)
	}
	return t, nil
}

func (s *Store) ListTenants(ctx context.Context) ([]tenant.Tenant, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, COALESCE(domain, ''), enabled, created_at, updated_at
		FROM tenants ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []tenant.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, *t)
	}
	return tenants, rows.Err()
}

func scanTenant(row scannable) (*tenant.Tenant, error) {
	var (
		t  tenant.Tenant
		id int64
	)
	if err := row.Scan(&id, &t.Name, &t.Domain, &t.Enabled, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.ID = tenant.ParseID(strconv.FormatInt(id, 10))
	return &t, nil
}
