package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cartforge/cartforge/internal/access"
	"github.com/cartforge/cartforge/internal/middleware"
)

func TestSignalsFromCookies(t *testing.T) {
	var rc access.RequestContext
	handler := middleware.Signals(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc = middleware.RequestContextFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/carts?secret=s-123", http.NoBody)
	req.AddCookie(&http.Cookie{Name: middleware.CookieSelectedTenant, Value: "7"})
	req.AddCookie(&http.Cookie{Name: middleware.CookieTenantDomain, Value: "acme.example.com"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if selected, ok := rc.SelectedTenant(); !ok || selected.String() != "7" {
		t.Errorf("selected tenant = %v, %v; want 7", selected, ok)
	}
	if dom, ok := rc.TenantDomain(); !ok || dom != "acme.example.com" {
		t.Errorf("tenant domain = %q, %v; want acme.example.com", dom, ok)
	}
	if rc.Secret != "s-123" {
		t.Errorf("secret = %q, want s-123", rc.Secret)
	}
}

func TestSignalsHeaderFallback(t *testing.T) {
	var rc access.RequestContext
	handler := middleware.Signals(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc = middleware.RequestContextFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/carts", http.NoBody)
	req.Header.Set(middleware.CookieSelectedTenant, "3")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if selected, ok := rc.SelectedTenant(); !ok || selected.String() != "3" {
		t.Errorf("selected tenant = %v, %v; want 3", selected, ok)
	}
}

func TestSignalsAbsent(t *testing.T) {
	var rc access.RequestContext
	handler := middleware.Signals(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc = middleware.RequestContextFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/carts", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if _, ok := rc.SelectedTenant(); ok {
		t.Error("no signal must mean no selection")
	}
	if rc.Secret != "" {
		t.Error("no query parameter must mean no secret")
	}
	if rc.User != nil {
		t.Error("no auth must mean guest")
	}
}
