package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/siftlabs/sift/internal/capture"
	"github.com/siftlabs/sift/internal/classify"
	"github.com/siftlabs/sift/internal/config"
	"github.com/siftlabs/sift/internal/errors"
	"github.com/siftlabs/sift/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db         *sql.DB
	cfg        *config.Config
	classifier classify.Classifier
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, classifier classify.Classifier) *Handlers {
	return &Handlers{db: db, cfg: cfg, classifier: classifier}
}

// Request types for each tool

// IngestRequest represents the arguments for capture_ingest.
type IngestRequest struct {
	RawText string `json:"raw_text"`
}

// IDRequest represents the arguments for tools addressing one capture.
type IDRequest struct {
	ID string `json:"id"`
}

// ExportRequest represents the arguments for capture_export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
}

// QueueRequest represents the arguments for review_queue.
type QueueRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// BatchSkipRequest represents the arguments for review_batch_skip.
type BatchSkipRequest struct {
	IDs []string `json:"ids"`
}

// CorrectRequest represents the arguments for review_correct.
type CorrectRequest struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Note        string `json:"note"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Priority    int    `json:"priority,omitempty"`
	Project     string `json:"project,omitempty"`
	Domain      string `json:"domain,omitempty"`
	URL         string `json:"url,omitempty"`
	EditedText  string `json:"edited_text,omitempty"`
}

// KnowledgeSearchRequest represents the arguments for knowledge_search.
type KnowledgeSearchRequest struct {
	TaskID string `json:"task_id"`
}

// LinkRequest represents the arguments for knowledge_link and knowledge_unlink.
type LinkRequest struct {
	TaskID string `json:"task_id"`
	ItemID string `json:"item_id"`
}

// Handler implementations

// HandleIngest handles the capture_ingest tool call.
func (h *Handlers) HandleIngest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IngestRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Ingest(ctx, h.db, h.cfg, h.classifier, ops.IngestInput{
		RawText: input.RawText,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFetch handles the capture_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Fetch(ctx, h.db, ops.FetchInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDiscard handles the capture_discard tool call.
func (h *Handlers) HandleDiscard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Discard(ctx, h.db, ops.DiscardInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the capture_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.db, h.cfg, ops.ExportInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleQueue handles the review_queue tool call.
func (h *Handlers) HandleQueue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[QueueRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Queue(ctx, h.db, ops.QueueInput{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSkip handles the review_skip tool call.
func (h *Handlers) HandleSkip(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Skip(ctx, h.db, ops.SkipInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleBatchSkip handles the review_batch_skip tool call.
func (h *Handlers) HandleBatchSkip(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BatchSkipRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.BatchSkip(ctx, h.db, ops.BatchSkipInput{IDs: input.IDs})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCorrect handles the review_correct tool call.
func (h *Handlers) HandleCorrect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CorrectRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Correct(ctx, h.db, ops.CorrectInput{
		ID:       input.ID,
		Category: input.Category,
		Note:     input.Note,
		Fields: capture.Fields{
			Name:        input.Name,
			Description: input.Description,
			Priority:    input.Priority,
			Project:     input.Project,
			Domain:      input.Domain,
			URL:         input.URL,
		},
		EditedText: input.EditedText,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleKnowledgeSearch handles the knowledge_search tool call.
func (h *Handlers) HandleKnowledgeSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[KnowledgeSearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.KnowledgeSearch(ctx, h.db, ops.KnowledgeSearchInput{TaskID: input.TaskID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleKnowledgeLink handles the knowledge_link tool call.
func (h *Handlers) HandleKnowledgeLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LinkRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Link(ctx, h.db, ops.LinkInput{TaskID: input.TaskID, ItemID: input.ItemID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleKnowledgeUnlink handles the knowledge_unlink tool call.
func (h *Handlers) HandleKnowledgeUnlink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LinkRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Unlink(ctx, h.db, ops.LinkInput{TaskID: input.TaskID, ItemID: input.ItemID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if siftErr, ok := err.(*errors.SiftError); ok {
		errorObj := map[string]any{
			"code":    siftErr.Code,
			"message": siftErr.Message,
			"status":  siftErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if siftErr.Code != errors.ErrInternal && siftErr.Details != nil {
			errorObj["details"] = siftErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
