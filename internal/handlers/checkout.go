package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gitshopapp/storefront/internal/invoice"
	"github.com/gitshopapp/storefront/internal/services"
	"github.com/gitshopapp/storefront/internal/stripe"
	"github.com/gitshopapp/storefront/ui/views"
)

func (h *Handlers) StartCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	sess := h.sessionFromRequest(ctx, r)
	if sess == nil || len(sess.Cart) == 0 {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}

	redirectURL, err := h.checkout.StartCheckout(ctx, sess.ShopperID, sess.Cart)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCart):
			http.Redirect(w, r, "/cart", http.StatusSeeOther)
		case errors.Is(err, services.ErrInvalidInput):
			logger.Warn("checkout rejected cart", "error", err)
			h.renderError(w, r, http.StatusBadRequest, "Checkout unavailable", "Some items in your cart cannot be ordered. Please review your cart.", "/cart")
		default:
			logger.Error("failed to start checkout", "error", err)
			h.renderError(w, r, http.StatusBadGateway, "Checkout unavailable", "We could not start checkout. Please try again in a moment.", "/cart")
		}
		return
	}

	http.Redirect(w, r, redirectURL, http.StatusSeeOther)
}

// CheckoutSuccess confirms the order for the checkout session in the query.
func (h *Handlers) CheckoutSuccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)
	ref := r.URL.Query().Get("session_id")
	retryURL := "/checkout/success?session_id=" + url.QueryEscape(ref)

	confirmation, err := h.checkout.CompleteCheckout(ctx, ref)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCheckoutConfirmed):
			http.Redirect(w, r, "/orders?toast=confirmed", http.StatusSeeOther)
		case errors.Is(err, stripe.ErrNotPaid):
			h.renderError(w, r, http.StatusPaymentRequired, "Payment not completed", "Your payment has not completed yet. Refresh this page once it has.", retryURL)
		case errors.Is(err, services.ErrCheckoutRejected):
			logger.Error("checkout cannot be confirmed", "error", err, "ref", ref)
			h.renderError(w, r, http.StatusUnprocessableEntity, "Order needs attention", "Your payment was received but we could not record the order. Please contact support with reference "+ref+".", "/support")
		case errors.Is(err, services.ErrCheckoutNotFound):
			h.renderError(w, r, http.StatusNotFound, "Checkout not found", "We could not find this checkout.", "")
		default:
			logger.Error("failed to complete checkout", "error", err, "ref", ref)
			h.renderError(w, r, http.StatusServiceUnavailable, "Order not confirmed yet", "We could not confirm your order right now. Please try again in a moment.", retryURL)
		}
		return
	}

	h.clearCart(r)

	order := confirmation.Order
	inv, err := invoice.Build(order, h.invoiceOptions)
	if err != nil {
		logger.Error("failed to build invoice", "error", err, "order_id", order.OrderID)
		http.Error(w, "Failed to render confirmation", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	props := views.ConfirmationPageProps{
		Page:    h.page(r, "Order confirmation"),
		Order:   order,
		Invoice: inv,
	}
	if confirmation.SaveErr != nil {
		status = http.StatusServiceUnavailable
		props.RetryURL = retryURL
		w.Header().Set("Retry-After", "5")
	}
	h.render(w, r, status, "confirmation page", views.ConfirmationPage(props))
}

func (h *Handlers) clearCart(r *http.Request) {
	ctx := r.Context()
	sess := h.sessionFromRequest(ctx, r)
	if sess == nil || len(sess.Cart) == 0 {
		return
	}
	sess.Cart = nil
	if err := h.sessionManager.UpdateSession(ctx, r, sess); err != nil {
		h.loggerFromContext(ctx).Warn("failed to clear cart after checkout", "error", err)
	}
}
