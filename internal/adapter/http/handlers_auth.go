package http

import (
	"net/http"

	"github.com/cartforge/cartforge/internal/domain/user"
)

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[user.CreateRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}

	u, err := h.auth.Register(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "user not found")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[user.LoginRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	if !requireField(w, req.Email, "email") || !requireField(w, req.Password, "password") {
		return
	}

	resp, err := h.auth.Login(r.Context(), req)
	if err != nil {
		// A uniform message for unknown email and wrong password.
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
