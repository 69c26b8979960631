package handlers

import (
	"context"
	"net/http"

	"github.com/gitshopapp/storefront/internal/session"
)

// sessionFromRequest prefers the session SessionMiddleware stored on ctx and
// falls back to the cookie lookup. It returns nil for an anonymous request.
func (h *Handlers) sessionFromRequest(ctx context.Context, r *http.Request) *session.Data {
	if sess := session.GetSessionFromContext(ctx); sess != nil {
		return sess
	}
	if h.sessionManager == nil {
		return nil
	}
	sess, err := h.sessionManager.GetSession(ctx, r)
	if err != nil {
		return nil
	}
	return sess
}

// shopperID is the owner key for orders. Empty means no session.
func (h *Handlers) shopperID(r *http.Request) string {
	if sess := h.sessionFromRequest(r.Context(), r); sess != nil {
		return sess.ShopperID
	}
	return ""
}

func cartQuantity(sess *session.Data) int {
	if sess == nil {
		return 0
	}
	total := 0
	for _, item := range sess.Cart {
		total += item.Quantity
	}
	return total
}
