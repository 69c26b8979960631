package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"path"

	"github.com/gorilla/mux"

	"github.com/gitshopapp/storefront/internal/blobstore"
	"github.com/gitshopapp/storefront/internal/services"
	"github.com/gitshopapp/storefront/ui/views"
)

func (h *Handlers) Downloads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")

	items, err := h.downloads.List(ctx, query, category)
	if err != nil {
		h.loggerFromContext(ctx).Error("failed to list downloads", "error", err)
		h.renderError(w, r, http.StatusInternalServerError, "Downloads unavailable", "We could not load the downloads right now.", "/downloads")
		return
	}

	rows := make([]views.DownloadRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, views.DownloadRow{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Category:    item.Category,
			Count:       item.Count,
		})
	}

	h.render(w, r, http.StatusOK, "downloads page", views.DownloadsPage(views.DownloadsPageProps{
		Page:       h.page(r, "Downloads"),
		Items:      rows,
		Categories: h.downloads.Categories(),
		Query:      query,
		Category:   category,
	}))
}

// DownloadLink issues a time-limited URL for the download and redirects to it.
func (h *Handlers) DownloadLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	link, err := h.downloads.Link(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrDownloadNotFound) {
			h.NotFound(w, r)
			return
		}
		h.loggerFromContext(ctx).Error("failed to create download link", "error", err, "download_id", id)
		h.renderError(w, r, http.StatusServiceUnavailable, "Download unavailable", "We could not prepare this file. Please try again.", "/downloads")
		return
	}

	http.Redirect(w, r, link, http.StatusSeeOther)
}

// DownloadFile serves the blob named by a signed token.
func (h *Handlers) DownloadFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	file, info, err := h.blobs.Open(ctx, r.URL.Query().Get("token"))
	if err != nil {
		switch {
		case errors.Is(err, blobstore.ErrExpiredToken):
			h.renderError(w, r, http.StatusGone, "Link expired", "This download link has expired. Request a new one from the downloads page.", "/downloads")
		case errors.Is(err, blobstore.ErrInvalidToken):
			http.Error(w, "Invalid download link", http.StatusForbidden)
		case errors.Is(err, blobstore.ErrNotFound), errors.Is(err, fs.ErrNotExist):
			h.NotFound(w, r)
		default:
			logger.Error("failed to open download", "error", err)
			http.Error(w, "Download failed", http.StatusInternalServerError)
		}
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			logger.Warn("failed to close download", "error", closeErr)
		}
	}()

	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(info.Name())+`"`)
	w.Header().Set("Cache-Control", "private, no-store")
	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}
