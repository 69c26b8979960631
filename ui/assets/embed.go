// Package assets embeds the storefront stylesheet, script and icons.
package assets

import (
	"embed"
	"net/http"
	"strings"
)

//go:embed css js img
var FS embed.FS

// Handler serves FS under prefix. Directory listings are hidden and files
// are cached for a day.
func Handler(prefix string) http.Handler {
	files := http.StripPrefix(prefix, http.FileServer(http.FS(FS)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == prefix || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(w, r)
	})
}
