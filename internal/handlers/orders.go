package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/gitshopapp/storefront/internal/invoice"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/orders"
	ordercomponents "github.com/gitshopapp/storefront/ui/components/orders"
	"github.com/gitshopapp/storefront/ui/views"
)

const orderDateLayout = "Jan 2, 2006"

// orderErrorStatus maps order lifecycle errors to a status code and a message
// the shopper can act on.
func orderErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, orders.ErrValidation):
		return http.StatusBadRequest, strings.TrimPrefix(err.Error(), orders.ErrValidation.Error()+": ")
	case errors.Is(err, orders.ErrNotFound):
		return http.StatusNotFound, "We could not find that order."
	case errors.Is(err, orders.ErrStaleState):
		return http.StatusConflict, "This order has already been cancelled."
	case errors.Is(err, orders.ErrTransientWrite):
		return http.StatusServiceUnavailable, "We could not save your changes. Please try again in a moment."
	case errors.Is(err, orders.ErrInvalidDocument):
		return http.StatusInternalServerError, "This order could not be loaded. Please contact support."
	default:
		return http.StatusInternalServerError, "Something went wrong. Please try again."
	}
}

func (h *Handlers) Orders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.orders.ListForShopper(ctx, h.shopperID(r))
	if err != nil {
		h.loggerFromContext(ctx).Error("failed to list orders", "error", err)
		status, message := orderErrorStatus(err)
		h.renderError(w, r, status, "Orders unavailable", message, "/orders")
		return
	}

	symbol := h.currencySymbol()
	rows := make([]views.OrderRow, 0, len(list))
	for _, order := range list {
		rows = append(rows, views.OrderRow{
			ID:          order.ID,
			OrderID:     order.OrderID,
			PaymentID:   order.PaymentID,
			Status:      order.Status,
			StatusLabel: invoice.StatusLabel(order.Status),
			Total:       invoice.FormatMoney(order.Amount, symbol),
			PlacedAt:    order.CreatedAt.Format(orderDateLayout),
		})
	}

	h.render(w, r, http.StatusOK, "orders page", views.OrdersPage(views.OrdersPageProps{
		Page:   h.page(r, "My orders"),
		Orders: rows,
	}))
}

func (h *Handlers) OrderDetail(w http.ResponseWriter, r *http.Request) {
	order, ok := h.loadOrder(w, r)
	if !ok {
		return
	}
	h.renderOrderDetail(w, r, http.StatusOK, order, ordercomponents.CancelFormProps{}, "")
}

// CancelOrder handles the cancel form. Failures re-render the order with the
// current stored state and the submitted values.
func (h *Handlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)
	id := mux.Vars(r)["id"]

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	reason := r.FormValue("reason")
	notes := r.FormValue("notes")

	_, err := h.orders.Cancel(ctx, id, h.shopperID(r), reason, notes)
	if err == nil {
		http.Redirect(w, r, "/orders/"+url.PathEscape(id)+"?toast=cancelled", http.StatusSeeOther)
		return
	}

	status, message := orderErrorStatus(err)
	if status == http.StatusNotFound || status == http.StatusInternalServerError {
		logger.Error("failed to cancel order", "error", err, "id", id)
		h.renderError(w, r, status, "Order unavailable", message, "")
		return
	}
	logger.Warn("order cancellation rejected", "error", err, "id", id, "status", status)

	current, getErr := h.orders.GetForShopper(ctx, id, h.shopperID(r))
	if getErr != nil {
		getStatus, getMessage := orderErrorStatus(getErr)
		h.renderError(w, r, getStatus, "Order unavailable", getMessage, "")
		return
	}

	form := ordercomponents.CancelFormProps{Selected: reason, Notes: notes}
	pageError := ""
	if status == http.StatusBadRequest {
		form.Error = message
	} else {
		pageError = message
	}
	h.renderOrderDetail(w, r, status, current, form, pageError)
}

func (h *Handlers) Invoice(w http.ResponseWriter, r *http.Request) {
	order, ok := h.loadOrder(w, r)
	if !ok {
		return
	}
	inv, err := invoice.Build(order, h.invoiceOptions)
	if err != nil {
		h.loggerFromContext(r.Context()).Error("failed to build invoice", "error", err, "id", order.ID)
		http.Error(w, "Failed to render invoice", http.StatusInternalServerError)
		return
	}

	h.render(w, r, http.StatusOK, "invoice page", views.InvoicePage(views.InvoicePageProps{
		Page:        h.page(r, "Invoice "+order.OrderID),
		Invoice:     inv,
		DownloadURL: "/orders/" + url.PathEscape(order.ID) + "/invoice.txt",
	}))
}

func (h *Handlers) InvoiceText(w http.ResponseWriter, r *http.Request) {
	order, ok := h.loadOrder(w, r)
	if !ok {
		return
	}
	inv, err := invoice.Build(order, h.invoiceOptions)
	if err != nil {
		h.loggerFromContext(r.Context()).Error("failed to build invoice", "error", err, "id", order.ID)
		http.Error(w, "Failed to render invoice", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, inv.Filename()))
	if err := invoice.WriteText(w, inv); err != nil {
		h.loggerFromContext(r.Context()).Error("failed to write invoice", "error", err, "id", order.ID)
	}
}

func (h *Handlers) loadOrder(w http.ResponseWriter, r *http.Request) (*models.Order, bool) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]
	order, err := h.orders.GetForShopper(ctx, id, h.shopperID(r))
	if err != nil {
		status, message := orderErrorStatus(err)
		if status >= http.StatusInternalServerError {
			h.loggerFromContext(ctx).Error("failed to load order", "error", err, "id", id)
		}
		h.renderError(w, r, status, "Order unavailable", message, "")
		return nil, false
	}
	return order, true
}

func (h *Handlers) renderOrderDetail(w http.ResponseWriter, r *http.Request, status int, order *models.Order, form ordercomponents.CancelFormProps, pageError string) {
	inv, err := invoice.Build(order, h.invoiceOptions)
	if err != nil {
		h.loggerFromContext(r.Context()).Error("failed to build invoice", "error", err, "id", order.ID)
		http.Error(w, "Failed to render order", http.StatusInternalServerError)
		return
	}

	page := h.page(r, "Order "+order.OrderID)
	page.Error = pageError
	form.Reasons = orders.CancellationReasons()

	h.render(w, r, status, "order page", views.OrderDetailPage(views.OrderDetailPageProps{
		Page:    page,
		Order:   order,
		Invoice: inv,
		Cancel:  form,
	}))
}
