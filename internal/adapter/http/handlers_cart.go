package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cartforge/cartforge/internal/adapter/otel"
	"github.com/cartforge/cartforge/internal/domain"
	"github.com/cartforge/cartforge/internal/middleware"
	"github.com/cartforge/cartforge/internal/service"
)

const defaultListLimit = 50

// writeCartError translates a service error into an HTTP response and counts
// denials for the access metrics.
func (h *Handlers) writeCartError(r *http.Request, w http.ResponseWriter, err error, fallbackMsg string) {
	if errors.Is(err, domain.ErrForbidden) {
		h.metrics.AccessDenied.Add(r.Context(), 1)
	}
	writeDomainError(w, err, fallbackMsg)
}

func (h *Handlers) createCart(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[service.CreateCartRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}

	ctx, span := otel.StartCartSpan(r.Context(), "create", "")
	defer span.End()

	c, err := h.carts.CreateCart(ctx, middleware.RequestContextFrom(ctx), req)
	if err != nil {
		h.writeCartError(r, w, err, "cart not found")
		return
	}

	h.metrics.CartsCreated.Add(ctx, 1)
	h.metrics.CartSubtotal.Record(ctx, c.Subtotal)
	writeJSON(w, http.StatusCreated, h.cartView(c, true))
}

func (h *Handlers) getCart(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	if !requireField(w, id, "cart id") {
		return
	}

	ctx, span := otel.StartCartSpan(r.Context(), "get", id)
	defer span.End()

	c, err := h.carts.GetCart(ctx, middleware.RequestContextFrom(ctx), id)
	if err != nil {
		h.writeCartError(r, w, err, "cart not found")
		return
	}
	writeJSON(w, http.StatusOK, h.cartView(c, false))
}

func (h *Handlers) listCarts(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	carts, err := h.carts.ListCarts(r.Context(), middleware.RequestContextFrom(r.Context()), limit)
	if err != nil {
		h.writeCartError(r, w, err, "carts not found")
		return
	}
	writeJSON(w, http.StatusOK, h.cartViews(carts))
}

func (h *Handlers) deleteCart(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	if !requireField(w, id, "cart id") {
		return
	}

	ctx, span := otel.StartCartSpan(r.Context(), "delete", id)
	defer span.End()

	if err := h.carts.DeleteCart(ctx, middleware.RequestContextFrom(ctx), id); err != nil {
		h.writeCartError(r, w, err, "cart not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) addItem(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	in, ok := readJSON[service.ItemInput](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	if !requireField(w, in.Product, "product") {
		return
	}

	ctx, span := otel.StartCartSpan(r.Context(), "add_item", id)
	defer span.End()

	c, err := h.carts.AddItem(ctx, middleware.RequestContextFrom(ctx), id, in)
	if err != nil {
		h.writeCartError(r, w, err, "cart not found")
		return
	}
	h.recordMutation(r, c.Subtotal)
	writeJSON(w, http.StatusOK, h.cartView(c, false))
}

func (h *Handlers) incrementItem(w http.ResponseWriter, r *http.Request) {
	id, itemID := urlParam(r, "id"), urlParam(r, "itemID")

	ctx, span := otel.StartCartSpan(r.Context(), "increment_item", id)
	defer span.End()

	c, err := h.carts.IncrementItem(ctx, middleware.RequestContextFrom(ctx), id, itemID)
	if err != nil {
		h.writeCartError(r, w, err, "cart not found")
		return
	}
	h.recordMutation(r, c.Subtotal)
	writeJSON(w, http.StatusOK, h.cartView(c, false))
}

func (h *Handlers) decrementItem(w http.ResponseWriter, r *http.Request) {
	id, itemID := urlParam(r, "id"), urlParam(r, "itemID")

	ctx, span := otel.StartCartSpan(r.Context(), "decrement_item", id)
	defer span.End()

	c, err := h.carts.DecrementItem(ctx, middleware.RequestContextFrom(ctx), id, itemID)
	if err != nil {
		h.writeCartError(r, w, err, "cart not found")
		return
	}
	h.recordMutation(r, c.Subtotal)
	writeJSON(w, http.StatusOK, h.cartView(c, false))
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handlers) setItemQuantity(w http.ResponseWriter, r *http.Request) {
	id, itemID := urlParam(r, "id"), urlParam(r, "itemID")
	req, ok := readJSON[setQuantityRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}

	ctx, span := otel.StartCartSpan(r.Context(), "set_quantity", id)
	defer span.End()

	c, err := h.carts.SetItemQuantity(ctx, middleware.RequestContextFrom(ctx), id, itemID, req.Quantity)
	if err != nil {
		h.writeCartError(r, w, err, "cart not found")
		return
	}
	h.recordMutation(r, c.Subtotal)
	writeJSON(w, http.StatusOK, h.cartView(c, false))
}

func (h *Handlers) removeItem(w http.ResponseWriter, r *http.Request) {
	id, itemID := urlParam(r, "id"), urlParam(r, "itemID")

	ctx, span := otel.StartCartSpan(r.Context(), "remove_item", id)
	defer span.End()

	c, err := h.carts.RemoveItem(ctx, middleware.RequestContextFrom(ctx), id, itemID)
	if err != nil {
		h.writeCartError(r, w, err, "cart not found")
		return
	}
	h.recordMutation(r, c.Subtotal)
	writeJSON(w, http.StatusOK, h.cartView(c, false))
}

func (h *Handlers) clearCart(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")

	ctx, span := otel.StartCartSpan(r.Context(), "clear", id)
	defer span.End()

	c, err := h.carts.ClearCart(ctx, middleware.RequestContextFrom(ctx), id)
	if err != nil {
		h.writeCartError(r, w, err, "cart not found")
		return
	}
	h.recordMutation(r, c.Subtotal)
	writeJSON(w, http.StatusOK, h.cartView(c, false))
}

type mergeRequest struct {
	Source string `json:"source"`
}

func (h *Handlers) mergeCart(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	req, ok := readJSON[mergeRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	if !requireField(w, req.Source, "source") {
		return
	}

	ctx, span := otel.StartMergeSpan(r.Context(), id, req.Source)
	defer span.End()

	c, err := h.carts.MergeCarts(ctx, middleware.RequestContextFrom(ctx), id, req.Source)
	if err != nil {
		h.writeCartError(r, w, err, "cart not found")
		return
	}
	h.metrics.CartsMerged.Add(ctx, 1)
	h.metrics.CartSubtotal.Record(ctx, c.Subtotal)
	writeJSON(w, http.StatusOK, h.cartView(c, false))
}

func (h *Handlers) claimCart(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")

	ctx, span := otel.StartCartSpan(r.Context(), "claim", id)
	defer span.End()

	c, err := h.carts.ClaimCart(ctx, middleware.RequestContextFrom(ctx), id)
	if err != nil {
		h.writeCartError(r, w, err, "cart not found")
		return
	}
	writeJSON(w, http.StatusOK, h.cartView(c, false))
}

func (h *Handlers) recordMutation(r *http.Request, subtotal int64) {
	h.metrics.ItemMutations.Add(r.Context(), 1)
	h.metrics.CartSubtotal.Record(r.Context(), subtotal)
}
