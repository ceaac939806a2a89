package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/cognitio/internal/cheatsheet"
)

// Launcher opens a file in the user's editor without waiting for it.
type Launcher interface {
	Start(path string) error
	Target(path string) string
}

// Handler holds API route handlers.
type Handler struct {
	svc      *cheatsheet.Service
	launcher Launcher
}

// NewHandler creates a new Handler.
func NewHandler(svc *cheatsheet.Service, launcher Launcher) *Handler {
	return &Handler{svc: svc, launcher: launcher}
}

func pathParam(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("path"))
}

// Tree handles GET /tree.
func (h *Handler) Tree(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, TreeResponse{Roots: h.svc.Tree()})
}

// Expand handles GET /tree/expand?path=.
func (h *Handler) Expand(w http.ResponseWriter, r *http.Request) {
	path := pathParam(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'path' is required"))
		return
	}
	node, err := h.svc.Expand(path)
	if err != nil {
		writeError(w, "expand", err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// Lookup handles GET /lookup/{id}.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	id := strings.ToLower(chi.URLParam(r, "id"))
	targets, err := h.svc.Resolve(id)
	if err != nil {
		writeError(w, "lookup", err)
		return
	}
	writeJSON(w, http.StatusOK, LookupResponse{ID: id, Targets: targets})
}

// Cheatsheet handles GET /cheatsheet?path=.
func (h *Handler) Cheatsheet(w http.ResponseWriter, r *http.Request) {
	path := pathParam(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'path' is required"))
		return
	}
	cs, err := h.svc.Read(path)
	if err != nil {
		writeError(w, "read cheatsheet", err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

// Section handles GET /section?path=.
func (h *Handler) Section(w http.ResponseWriter, r *http.Request) {
	path := pathParam(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'path' is required"))
		return
	}
	contents, err := h.svc.LoadSection(path)
	if err != nil {
		writeError(w, "load section", err)
		return
	}
	writeJSON(w, http.StatusOK, ContentsResponse{Cheatsheets: contents})
}

// Load handles POST /cheatsheets/load.
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req LoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	writeJSON(w, http.StatusOK, ContentsResponse{Cheatsheets: h.svc.Load(req.Files)})
}

// Search handles GET /search?q=&limit=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	if results == nil {
		results = []SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Config handles GET /config.
func (h *Handler) Config(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Config())
}

// Edit handles POST /edit. The body may be empty, which opens the
// configuration file.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	if h.launcher == nil {
		writeJSON(w, http.StatusNotImplemented, errorBody("editing is not available"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	var req EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	target := ""
	if req.Path != "" {
		targets, err := h.svc.Resolve(req.Path)
		if err != nil {
			writeError(w, "edit", err)
			return
		}
		if len(targets) > 1 {
			writeJSON(w, http.StatusConflict, LookupResponse{ID: req.Path, Targets: targets})
			return
		}
		target = targets[0].Path
	}

	if err := h.launcher.Start(target); err != nil {
		writeError(w, "edit", err)
		return
	}
	writeJSON(w, http.StatusAccepted, EditResponse{Path: h.launcher.Target(target)})
}
