package mcp

import (
	"context"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/clarity/internal/config"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"data_summary": {
		def:     summaryToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSummary },
	},
	"data_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"data_export_category": {
		def:     exportCategoryToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExportCategory },
	},
	"data_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
	"data_get": {
		def:     getToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGet },
	},
	"data_put": {
		def:     putToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePut },
	},
	"data_clear": {
		def:     clearToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleClear },
	},
	"backup_create": {
		def:     backupToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBackup },
	},
	"backup_restore": {
		def:     restoreToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRestore },
	},
	"idea_add": {
		def:     ideaAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleIdeaAdd },
	},
	"idea_list": {
		def:     ideaListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleIdeaList },
	},
	"idea_favorite": {
		def:     ideaFavoriteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleIdeaFavorite },
	},
	"idea_delete": {
		def:     ideaDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleIdeaDelete },
	},
	"generate_ideas": {
		def:     generateIdeasToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGenerateIdeas },
	},
	"generate_post": {
		def:     generatePostToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGeneratePost },
	},
	"generate_instant": {
		def:     generateInstantToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGenerateInstant },
	},
	"content_score": {
		def:     contentScoreToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleContentScore },
	},
	"connection_test": {
		def:     connectionTestToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleConnectionTest },
	},
}

// AllToolNames returns every tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with Clarity tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(deps Deps, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"clarity",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(deps)

	disabled := make(map[string]bool, len(cfg.DisabledTools))
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(deps Deps, cfg *config.Config, version string) error {
	s := NewServer(deps, cfg, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
