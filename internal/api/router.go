package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/cognitio/internal/cheatsheet"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// launcher, if nil, makes POST /edit answer 501.
func NewRouter(svc *cheatsheet.Service, launcher Launcher, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, launcher)
	ah := NewAssetHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Forest.
	r.Get("/tree", h.Tree)
	r.Get("/tree/expand", h.Expand)
	r.Get("/lookup/{id}", h.Lookup)

	// Cheatsheets.
	r.Get("/cheatsheet", h.Cheatsheet)
	r.Get("/section", h.Section)
	r.Post("/cheatsheets/load", h.Load)
	r.Get("/asset", ah.ServeFile)

	// Search.
	r.Get("/search", h.Search)

	// Configuration and editor.
	r.Get("/config", h.Config)
	r.Post("/edit", h.Edit)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
