package http

import (
	"net/http"

	"github.com/cartforge/cartforge/internal/domain/tenant"
)

func (h *Handlers) listTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenants.List(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	out := make([]tenantResponse, 0, len(tenants))
	for i := range tenants {
		out = append(out, tenantView(&tenants[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getTenant(w http.ResponseWriter, r *http.Request) {
	id := tenant.ParseID(urlParam(r, "id"))
	if id.IsZero() {
		writeError(w, http.StatusBadRequest, "invalid tenant id")
		return
	}

	t, err := h.tenants.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusOK, tenantView(t))
}

func (h *Handlers) createTenant(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tenant.CreateRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	if !requireField(w, req.Name, "name") {
		return
	}

	t, err := h.tenants.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusCreated, tenantView(t))
}
