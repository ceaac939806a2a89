package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/starford/cognitio/internal/cheatsheet"
	"github.com/starford/cognitio/internal/models"
)

// AssetHandler serves raw files, such as images referenced by a cheatsheet,
// from inside the configured roots.
type AssetHandler struct {
	svc *cheatsheet.Service
}

// NewAssetHandler creates an AssetHandler.
func NewAssetHandler(svc *cheatsheet.Service) *AssetHandler {
	return &AssetHandler{svc: svc}
}

// ServeFile handles GET /asset?path=. The path must be absolute, inside a
// configured root and must not pass through hidden entries below that root.
func (h *AssetHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	path := pathParam(r)
	if path == "" || !filepath.IsAbs(path) {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'path' must be an absolute path"))
		return
	}
	path = filepath.Clean(path)

	targets, err := h.svc.Resolve(path)
	if err != nil {
		writeError(w, "serve asset", err)
		return
	}
	root, _ := h.svc.Root(path)
	rel, _ := filepath.Rel(root, path)
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part != "." && models.IsHidden(part) {
			writeJSON(w, http.StatusForbidden, errorBody("hidden files are not served"))
			return
		}
	}
	if targets[0].IsDir {
		writeJSON(w, http.StatusBadRequest, errorBody("path is a directory"))
		return
	}
	http.ServeFile(w, r, targets[0].Path)
}
