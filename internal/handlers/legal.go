package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gitshopapp/storefront/ui/views"
)

// ContentPage renders a catalog page such as terms, privacy or refund policy.
func (h *Handlers) ContentPage(w http.ResponseWriter, r *http.Request) {
	content, ok := h.catalog.Page(mux.Vars(r)["slug"])
	if !ok {
		h.NotFound(w, r)
		return
	}

	h.render(w, r, http.StatusOK, content.Slug+" page", views.ContentPage(views.ContentPageProps{
		Page:    h.page(r, content.Title),
		Content: content,
	}))
}

func (h *Handlers) FAQ(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "faq page", views.FAQPage(views.FAQPageProps{
		Page:    h.page(r, "FAQ"),
		Entries: h.catalog.FAQ,
	}))
}
