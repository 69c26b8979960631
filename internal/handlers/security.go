package handlers

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/getsentry/sentry-go/attribute"

	"github.com/gitshopapp/storefront/internal/observability"
)

// contentSecurityPolicy allows same-origin assets. form-action also covers the
// redirect that follows a form post, so the checkout form may land on Stripe.
const contentSecurityPolicy = "default-src 'self'; img-src 'self' data:; style-src 'self'; script-src 'self'; frame-ancestors 'none'; base-uri 'self'; form-action 'self' https://checkout.stripe.com"

var securityHeaders = map[string]string{
	"X-Content-Type-Options":       "nosniff",
	"X-Frame-Options":              "DENY",
	"Referrer-Policy":              "strict-origin-when-cross-origin",
	"Cross-Origin-Opener-Policy":   "same-origin",
	"Cross-Origin-Resource-Policy": "same-origin",
	"Content-Security-Policy":      contentSecurityPolicy,
}

func (h *Handlers) SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for name, value := range securityHeaders {
			w.Header().Set(name, value)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSameOrigin rejects cart, checkout, cancel and download posts that
// were not submitted from one of the storefront's own pages.
func (h *Handlers) RequireSameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		if reason := h.crossOriginReason(r); reason != "" {
			observability.Count(ctx, "security.same_origin.blocked", attribute.String("reason", reason))
			h.loggerFromContext(ctx).Warn("blocked cross-origin form post",
				"reason", reason,
				"origin", r.Header.Get("Origin"),
				"referer", r.Referer(),
			)
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// crossOriginReason returns why r fails the same-origin check, or "" when it
// passes. Origin and Referer must both name an allowed host when present, and
// at least one must be present.
func (h *Handlers) crossOriginReason(r *http.Request) string {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	referer := strings.TrimSpace(r.Referer())
	if origin == "" && referer == "" {
		return "missing_origin_and_referer"
	}

	allowed := h.allowedHosts(r)
	if origin != "" && !allowed[urlHost(origin)] {
		return "invalid_origin"
	}
	if referer != "" && !allowed[urlHost(referer)] {
		return "invalid_referer"
	}
	return ""
}

// allowedHosts is the request's own host plus the configured public host,
// which differ behind a proxy.
func (h *Handlers) allowedHosts(r *http.Request) map[string]bool {
	hosts := map[string]bool{}
	if host := requestHost(r.Host); host != "" {
		hosts[host] = true
	}
	if h.config != nil {
		if host := urlHost(h.config.BaseURL); host != "" {
			hosts[host] = true
		}
	}
	return hosts
}

func requestHost(hostport string) string {
	hostport = strings.TrimSpace(hostport)
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		hostport = host
	}
	return strings.ToLower(hostport)
}

// urlHost returns the lower-cased hostname of raw, or "" when raw is not an
// absolute URL.
func urlHost(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
