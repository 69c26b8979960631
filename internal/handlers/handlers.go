package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/gitshopapp/storefront/internal/blobstore"
	"github.com/gitshopapp/storefront/internal/catalog"
	"github.com/gitshopapp/storefront/internal/config"
	"github.com/gitshopapp/storefront/internal/docstore"
	"github.com/gitshopapp/storefront/internal/invoice"
	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/services"
	"github.com/gitshopapp/storefront/internal/session"
	"github.com/gitshopapp/storefront/ui/views"
)

const (
	maxWebhookBodyBytes = 1 << 20 // 1 MB
	maxFormBodyBytes    = 64 << 10
)

// Handlers provides HTTP request handlers for the storefront.
type Handlers struct {
	config         *config.Config
	store          docstore.Store
	catalog        *catalog.StorefrontConfig
	sessionManager *session.Manager
	checkout       *services.CheckoutService
	orders         *services.OrderService
	stripeService  *services.StripeService
	stripeRouter   *StripeEventRouter
	support        *services.SupportService
	downloads      *services.DownloadService
	blobs          *blobstore.FileStore
	invoiceOptions invoice.Options
	logger         *slog.Logger
}

type Dependencies struct {
	Config          *config.Config
	Store           docstore.Store
	Catalog         *catalog.StorefrontConfig
	SessionManager  *session.Manager
	CheckoutService *services.CheckoutService
	OrderService    *services.OrderService
	StripeService   *services.StripeService
	StripeRouter    *StripeEventRouter
	SupportService  *services.SupportService
	DownloadService *services.DownloadService
	Blobs           *blobstore.FileStore
	InvoiceOptions  invoice.Options
	Logger          *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("handlers dependencies: store is required")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("handlers dependencies: catalog is required")
	}
	if deps.SessionManager == nil {
		return nil, fmt.Errorf("handlers dependencies: sessionManager is required")
	}
	if deps.CheckoutService == nil {
		return nil, fmt.Errorf("handlers dependencies: checkoutService is required")
	}
	if deps.OrderService == nil {
		return nil, fmt.Errorf("handlers dependencies: orderService is required")
	}
	if deps.StripeService == nil {
		return nil, fmt.Errorf("handlers dependencies: stripeService is required")
	}
	if deps.StripeRouter == nil {
		return nil, fmt.Errorf("handlers dependencies: stripeRouter is required")
	}
	if deps.SupportService == nil {
		return nil, fmt.Errorf("handlers dependencies: supportService is required")
	}
	if deps.DownloadService == nil {
		return nil, fmt.Errorf("handlers dependencies: downloadService is required")
	}
	if deps.Blobs == nil {
		return nil, fmt.Errorf("handlers dependencies: blobs is required")
	}

	return &Handlers{
		config:         deps.Config,
		store:          deps.Store,
		catalog:        deps.Catalog,
		sessionManager: deps.SessionManager,
		checkout:       deps.CheckoutService,
		orders:         deps.OrderService,
		stripeService:  deps.StripeService,
		stripeRouter:   deps.StripeRouter,
		support:        deps.SupportService,
		downloads:      deps.DownloadService,
		blobs:          deps.Blobs,
		invoiceOptions: deps.InvoiceOptions,
		logger:         logger.With("component", "handlers"),
	}, nil
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	if err := h.store.Ping(ctx); err != nil {
		logger.Error("document store health check failed", "error", err)
		http.Error(w, "Document store unhealthy", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	}); err != nil {
		logger.Error("failed to encode health response", "error", err)
	}
}

// SessionMiddleware adds the shopper session to the request context.
func (h *Handlers) SessionMiddleware(next http.Handler) http.Handler {
	return h.sessionManager.Middleware(next)
}

func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "Page not found", "The page you are looking for does not exist.", "")
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

// page builds the shared layout props for the current request.
func (h *Handlers) page(r *http.Request, title string) views.Page {
	page := views.Page{Title: title}
	if h.catalog != nil {
		page.ShopName = h.catalog.Shop.Name
		for _, p := range h.catalog.Pages {
			page.FooterLinks = append(page.FooterLinks, views.Link{Href: "/pages/" + url.PathEscape(p.Slug), Label: p.Title})
		}
	}
	page.CartCount = cartQuantity(h.sessionFromRequest(r.Context(), r))
	page.Flash = toastMessage(r.URL.Query().Get("toast"))
	return page
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, name string, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := component.Render(r.Context(), w); err != nil {
		h.loggerFromContext(r.Context()).Error("failed to render "+name, "error", err)
		if status == http.StatusOK {
			http.Error(w, "Failed to render "+name, http.StatusInternalServerError)
		}
	}
}

func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, status int, title, message, retryURL string) {
	h.render(w, r, status, "error page", views.ErrorPage(views.ErrorPageProps{
		Page:     h.page(r, title),
		Title:    title,
		Message:  message,
		RetryURL: retryURL,
	}))
}

func (h *Handlers) currencySymbol() string {
	if h.catalog == nil {
		return "$"
	}
	return h.catalog.Shop.CurrencySymbol()
}

func toastMessage(key string) string {
	switch key {
	case "added":
		return "Added to your cart."
	case "removed":
		return "Removed from your cart."
	case "cancelled":
		return "Your order has been cancelled."
	case "confirmed":
		return "This order is already confirmed."
	default:
		return ""
	}
}

func SecureCookiesFromConfig(cfg *config.Config) bool {
	if cfg == nil {
		return false
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL != "" {
		if parsed, err := url.Parse(baseURL); err == nil {
			return strings.EqualFold(parsed.Scheme, "https")
		}
	}

	return cfg.Port == "443" || cfg.Port == "8443"
}
