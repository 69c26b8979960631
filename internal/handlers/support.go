package handlers

import (
	"net/http"
	"strings"

	"github.com/gitshopapp/storefront/ui/views"
)

const maxSupportMessageLength = 500

func (h *Handlers) Support(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "support page", views.SupportPage(views.SupportPageProps{
		Page:     h.page(r, "Support"),
		Greeting: h.support.Greeting(),
	}))
}

// SupportMessage answers a single chat message with the best canned reply.
func (h *Handlers) SupportMessage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	message := strings.TrimSpace(r.FormValue("message"))
	page := h.page(r, "Support")
	props := views.SupportPageProps{Page: page, Greeting: h.support.Greeting()}

	switch {
	case message == "":
		props.Page.Error = "Type a question to get an answer."
		h.render(w, r, http.StatusBadRequest, "support page", views.SupportPage(props))
		return
	case len(message) > maxSupportMessageLength:
		props.Page.Error = "Please keep questions under 500 characters."
		h.render(w, r, http.StatusBadRequest, "support page", views.SupportPage(props))
		return
	}

	reply := h.support.Reply(message)
	h.loggerFromContext(r.Context()).Debug("support reply", "matched", reply.Matched)
	props.Messages = []views.SupportMessage{{Question: reply.Question, Answer: reply.Answer}}
	h.render(w, r, http.StatusOK, "support page", views.SupportPage(props))
}
