package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gitshopapp/storefront/internal/services"
	"github.com/gitshopapp/storefront/ui/components/cart"
	"github.com/gitshopapp/storefront/ui/views"
)

func (h *Handlers) Products(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "products page", views.ProductsPage(views.ProductsPageProps{
		Page:           h.page(r, "Products"),
		Products:       h.catalog.ActiveProducts(),
		CurrencySymbol: h.currencySymbol(),
	}))
}

func (h *Handlers) Cart(w http.ResponseWriter, r *http.Request) {
	page := h.page(r, "Cart")
	props := views.CartPageProps{Page: page, Offline: h.checkout.Offline()}

	if sess := h.sessionFromRequest(r.Context(), r); sess != nil && len(sess.Cart) > 0 {
		quote, err := h.checkout.Quote(sess.Cart)
		if err != nil {
			h.loggerFromContext(r.Context()).Warn("failed to price cart", "error", err)
			props.Page.Error = "Some items in your cart are no longer available. Remove them to continue."
		} else {
			summary := cart.FromQuote(quote, h.currencySymbol())
			summary.Editable = true
			summary.ShippingNote = services.ShippingSummary(h.catalog.Shop.Shipping.Carrier, quote.ShippingCents)
			props.Summary = &summary
		}
	}

	h.render(w, r, http.StatusOK, "cart page", views.CartPage(props))
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	sku := strings.TrimSpace(r.FormValue("sku"))
	product, ok := h.catalog.Product(sku)
	if !ok || !product.Active {
		http.Error(w, "Unknown product", http.StatusBadRequest)
		return
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(r.FormValue("quantity")))
	if err != nil || quantity <= 0 {
		quantity = 1
	}

	sess := h.sessionFromRequest(ctx, r)
	if sess == nil {
		http.Error(w, "Session unavailable", http.StatusServiceUnavailable)
		return
	}
	sess.AddToCart(sku, quantity)
	if err := h.sessionManager.UpdateSession(ctx, r, sess); err != nil {
		h.loggerFromContext(ctx).Warn("failed to update cart", "error", err, "sku", sku)
		http.Error(w, "Could not update cart", http.StatusServiceUnavailable)
		return
	}

	http.Redirect(w, r, "/cart?toast=added", http.StatusSeeOther)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	sess := h.sessionFromRequest(ctx, r)
	if sess == nil {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}
	sess.RemoveFromCart(strings.TrimSpace(r.FormValue("sku")))
	if err := h.sessionManager.UpdateSession(ctx, r, sess); err != nil {
		h.loggerFromContext(ctx).Warn("failed to update cart", "error", err)
		http.Error(w, "Could not update cart", http.StatusServiceUnavailable)
		return
	}

	http.Redirect(w, r, "/cart?toast=removed", http.StatusSeeOther)
}
