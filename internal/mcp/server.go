package mcp

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/siftlabs/sift/internal/classify"
	"github.com/siftlabs/sift/internal/config"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"capture", "review", "knowledge"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"capture_ingest": {
		def:     ingestToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleIngest },
	},
	"capture_fetch": {
		def:     fetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetch },
	},
	"capture_discard": {
		def:     discardToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDiscard },
	},
	"capture_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"review_queue": {
		def:     queueToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleQueue },
	},
	"review_skip": {
		def:     skipToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSkip },
	},
	"review_batch_skip": {
		def:     batchSkipToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBatchSkip },
	},
	"review_correct": {
		def:     correctToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCorrect },
	},
	"knowledge_search": {
		def:     knowledgeSearchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleKnowledgeSearch },
	},
	"knowledge_link": {
		def:     knowledgeLinkToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleKnowledgeLink },
	},
	"knowledge_unlink": {
		def:     knowledgeUnlinkToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleKnowledgeUnlink },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
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

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "capture_ingest" → "capture").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		typ := GetTypeForTool(name)
		if typeSet[typ] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with Sift tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, classifier classify.Classifier, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"sift",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, classifier)

	// Build set of disabled tools: first expand types, then add individual tools
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
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
func Run(db *sql.DB, cfg *config.Config, classifier classify.Classifier, version string) error {
	s := NewServer(db, cfg, classifier, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
