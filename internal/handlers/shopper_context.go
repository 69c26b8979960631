package handlers

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/observability"
)

// ShopperContext tags the request logger and meter with the shopper and the
// matched route. It runs after SessionMiddleware.
func (h *Handlers) ShopperContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		attrs := []attribute.Builder{
			attribute.String("http.request_id", requestID(r)),
			attribute.String("http.method", r.Method),
		}
		if route := routeLabel(r); route != "" {
			attrs = append(attrs, attribute.String("http.route", route))
		}

		if sess := h.sessionFromRequest(ctx, r); sess != nil {
			attrs = append(attrs,
				attribute.String("shopper.id", sess.ShopperID),
				attribute.Int("cart.items", cartQuantity(sess)),
			)
			ctx = logging.With(ctx, h.logger, "shopper_id", sess.ShopperID)
		}

		meter := sentry.NewMeter(ctx).WithCtx(ctx)
		meter.SetAttributes(attrs...)
		ctx = observability.WithMeter(ctx, meter)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
