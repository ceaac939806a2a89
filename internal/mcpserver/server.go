// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Cognitio cheatsheets for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/cognitio/internal/cheatsheet"
	"github.com/starford/cognitio/internal/render"
	"github.com/starford/cognitio/internal/tree"
)

const (
	formatURI = "cognitio://cheatsheet-format"
	configURI = "cognitio://config"

	defaultSearchLimit = 20
)

// Server wraps the MCP server with Cognitio tools.
type Server struct {
	mcp *server.MCPServer
	svc *cheatsheet.Service
}

// New creates a new MCP server with all Cognitio tools registered.
func New(svc *cheatsheet.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Cognitio",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_cheatsheets",
		mcp.WithDescription("Show the cheatsheet forest with shorthand ids. "+
			"Pass a directory path to expand one level below it."),
		mcp.WithString("path", mcp.Description("Optional absolute directory path to expand")),
	), s.listCheatsheets)

	s.mcp.AddTool(mcp.NewTool("read_cheatsheet",
		mcp.WithDescription("Read a cheatsheet by absolute path or shorthand id. "+
			"A directory reference returns every cheatsheet directly inside it."),
		mcp.WithString("ref", mcp.Required(), mcp.Description("Absolute path or shorthand id (e.g. shbava)")),
	), s.readCheatsheet)

	s.mcp.AddTool(mcp.NewTool("lookup_shorthand",
		mcp.WithDescription("Resolve a shorthand id to every matching file or directory."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Shorthand id")),
	), s.lookupShorthand)

	s.mcp.AddTool(mcp.NewTool("search_cheatsheets",
		mcp.WithDescription("Full-text search through cheatsheet titles, sections, tags and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchCheatsheets)

	s.mcp.AddTool(mcp.NewTool("get_cheatsheet_format",
		mcp.WithDescription("Returns how Cognitio reads titles, sections, tags and shorthand ids. "+
			"Call this before writing a new cheatsheet."),
	), s.getCheatsheetFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Cheatsheet Format",
			mcp.WithResourceDescription("How Markdown files are turned into cheatsheets."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	s.mcp.AddResource(
		mcp.NewResource(configURI, "Configuration",
			mcp.WithResourceDescription("The active Cognitio configuration."),
			mcp.WithMIMEType("application/json"),
		),
		s.readConfigResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listCheatsheets(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := strings.TrimSpace(req.GetString("path", ""))
	if path == "" {
		out := render.Forest(s.svc.Tree())
		if out == "" {
			return mcp.NewToolResultText("no cheatsheet roots configured"), nil
		}
		return mcp.NewToolResultText(out), nil
	}
	node, err := s.svc.Expand(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(render.Directory(node)), nil
}

func (s *Server) readCheatsheet(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("ref")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	targets, err := s.svc.Resolve(ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(targets) > 1 {
		return mcp.NewToolResultError(fmt.Sprintf("%q is ambiguous:\n%s", ref, joinPaths(targets))), nil
	}

	target := targets[0]
	if !target.IsDir {
		cs, err := s.svc.Read(target.Path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(cs.Content), nil
	}

	contents, err := s.svc.LoadSection(target.Path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(contents) == 0 {
		return mcp.NewToolResultText("no cheatsheets in " + target.Path), nil
	}
	names := make([]string, 0, len(contents))
	for name := range contents {
		names = append(names, name)
	}
	slices.Sort(names)
	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "<!-- %s -->\n%s", name, contents[name])
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) lookupShorthand(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	targets, err := s.svc.Resolve(strings.ToLower(id))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(targets, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchCheatsheets(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(query, req.GetInt("limit", defaultSearchLimit))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getCheatsheetFormat(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(CheatsheetFormat), nil
}

func (s *Server) readFormatResource(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     CheatsheetFormat,
		},
	}, nil
}

func (s *Server) readConfigResource(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out, err := json.MarshalIndent(s.svc.Config(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcpserver: encode config: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      configURI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}

func joinPaths(targets []tree.Target) string {
	paths := make([]string, len(targets))
	for i, t := range targets {
		paths[i] = t.Path
	}
	return strings.Join(paths, "\n")
}
