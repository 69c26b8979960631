package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gitshopapp/storefront/internal/config"
)

func TestRequireSameOrigin(t *testing.T) {
	t.Parallel()

	h := &Handlers{config: &config.Config{BaseURL: "https://shop.example.com"}}
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		method     string
		target     string
		origin     string
		referer    string
		wantStatus int
	}{
		{name: "matching origin", method: http.MethodPost, target: "https://shop.example.com/cart/add", origin: "https://shop.example.com", wantStatus: http.StatusNoContent},
		{name: "matching referer only", method: http.MethodPost, target: "https://shop.example.com/orders/1/cancel", referer: "https://shop.example.com/orders/1", wantStatus: http.StatusNoContent},
		{name: "configured host behind proxy", method: http.MethodPost, target: "http://10.0.0.5:8080/checkout", origin: "https://shop.example.com", wantStatus: http.StatusNoContent},
		{name: "request host with port", method: http.MethodPost, target: "http://localhost:8080/cart/add", origin: "http://localhost:8080", wantStatus: http.StatusNoContent},
		{name: "missing origin and referer", method: http.MethodPost, target: "https://shop.example.com/cart/add", wantStatus: http.StatusForbidden},
		{name: "cross origin", method: http.MethodPost, target: "https://shop.example.com/cart/add", origin: "https://attacker.example", wantStatus: http.StatusForbidden},
		{name: "cross origin referer", method: http.MethodPost, target: "https://shop.example.com/checkout", origin: "https://shop.example.com", referer: "https://attacker.example/page", wantStatus: http.StatusForbidden},
		{name: "opaque origin", method: http.MethodPost, target: "https://shop.example.com/checkout", origin: "null", wantStatus: http.StatusForbidden},
		{name: "read only request", method: http.MethodGet, target: "https://shop.example.com/orders", wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			rec := httptest.NewRecorder()
			h.RequireSameOrigin(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	h := &Handlers{}
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	h.SecurityHeaders(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	for header, want := range map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Content-Security-Policy": contentSecurityPolicy,
	} {
		if got := rec.Header().Get(header); got != want {
			t.Fatalf("%s = %q, want %q", header, got, want)
		}
	}
}
