package http

import (
	"net/http"
	"time"

	"github.com/cartforge/cartforge/internal/adapter/otel"
	"github.com/cartforge/cartforge/internal/domain/cart"
	"github.com/cartforge/cartforge/internal/domain/tenant"
	"github.com/cartforge/cartforge/internal/service"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// Handlers bundles the services exposed over HTTP.
type Handlers struct {
	carts   *service.CartService
	auth    *service.AuthService
	tenants *service.TenantService
	metrics *otel.Metrics
}

// NewHandlers creates the HTTP handler set. metrics must be non-nil; wire a
// no-op meter provider when export is disabled.
func NewHandlers(carts *service.CartService, auth *service.AuthService, tenants *service.TenantService, metrics *otel.Metrics) *Handlers {
	return &Handlers{
		carts:   carts,
		auth:    auth,
		tenants: tenants,
		metrics: metrics,
	}
}

func (h *Handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// cartResponse is the wire shape of a cart. The guest secret is included only
// in the creation response; every later read omits it.
type cartResponse struct {
	ID          string      `json:"id"`
	Tenant      string      `json:"tenant,omitempty"`
	Customer    string      `json:"customer,omitempty"`
	Secret      string      `json:"secret,omitempty"`
	Items       []cart.Item `json:"items"`
	Subtotal    int64       `json:"subtotal"`
	Currency    string      `json:"currency"`
	Status      cart.Status `json:"status"`
	PurchasedAt *time.Time  `json:"purchased_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (h *Handlers) cartView(c *cart.Cart, includeSecret bool) cartResponse {
	resp := cartResponse{
		ID:          c.ID,
		Customer:    c.Customer,
		Items:       c.Items,
		Subtotal:    c.Subtotal,
		Currency:    c.Currency,
		Status:      h.carts.Status(c),
		PurchasedAt: c.PurchasedAt,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if !c.Tenant.IsZero() {
		resp.Tenant = c.Tenant.String()
	}
	if includeSecret {
		resp.Secret = c.Secret
	}
	if resp.Items == nil {
		resp.Items = []cart.Item{}
	}
	return resp
}

func (h *Handlers) cartViews(carts []cart.Cart) []cartResponse {
	out := make([]cartResponse, 0, len(carts))
	for i := range carts {
		out = append(out, h.cartView(&carts[i], false))
	}
	return out
}

// tenantResponse omits internal timestamps that storefront clients never use.
type tenantResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func tenantView(t *tenant.Tenant) tenantResponse {
	return tenantResponse{
		ID:        t.ID.String(),
		Name:      t.Name,
		Domain:    t.Domain,
		CreatedAt: t.CreatedAt,
	}
}
