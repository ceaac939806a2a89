package api

import (
	"github.com/starford/cognitio/internal/index"
	"github.com/starford/cognitio/internal/models"
	"github.com/starford/cognitio/internal/tree"
)

// LoadRequest is the request body for POST /cheatsheets/load.
type LoadRequest struct {
	Files []string `json:"files"`
}

// EditRequest is the request body for POST /edit. An empty path opens the
// configuration file.
type EditRequest struct {
	Path string `json:"path"`
}

// EditResponse reports which file was handed to the editor.
type EditResponse struct {
	Path string `json:"path"`
}

// TreeResponse wraps the forest.
type TreeResponse struct {
	Roots []tree.Directory `json:"roots"`
}

// LookupResponse lists every target sharing a shorthand id.
type LookupResponse struct {
	ID      string        `json:"id"`
	Targets []tree.Target `json:"targets"`
}

// ContentsResponse maps file names without extension to their content.
type ContentsResponse struct {
	Cheatsheets map[string]string `json:"cheatsheets"`
}

// Cheatsheet is the full cheatsheet response type (aliased from the domain layer).
type Cheatsheet = models.Cheatsheet

// SearchResult is a single search hit (aliased from the index layer).
type SearchResult = index.SearchResult

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}
