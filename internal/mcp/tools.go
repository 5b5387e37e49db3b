package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var ingestToolDef = mcp.NewTool("capture_ingest",
	mcp.WithDescription("Capture a free-text thought. The text is classified, auto-filed into the matching record table when confidence is high, or queued for review otherwise. The raw text is always preserved."),
	mcp.WithString("raw_text",
		mcp.Required(),
		mcp.Description("The raw capture text, e.g. 'book a venue for the launch event'"),
	),
)

var fetchToolDef = mcp.NewTool("capture_fetch",
	mcp.WithDescription("Fetch the full audit view of one capture: raw text, suggested category, confidence, review status, destination record, and correction note."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Capture id (ULID)"),
	),
)

var discardToolDef = mcp.NewTool("capture_discard",
	mcp.WithDescription("Permanently delete a capture row. This is a hard delete of the audit entry; any materialized destination record is left in place."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Capture id (ULID)"),
	),
)

var exportToolDef = mcp.NewTool("capture_export",
	mcp.WithDescription("Export all captures to a CSV file, oldest first. Columns: timestamp, raw_text, category, confidence, status, destination, correction_note."),
	mcp.WithString("path",
		mcp.Description("Destination .csv path. Must be directly inside ~/.sift/exports or a configured allowed path. Defaults to ~/.sift/exports/captures-<timestamp>.csv"),
	),
)

var queueToolDef = mcp.NewTool("review_queue",
	mcp.WithDescription("List captures awaiting review, newest first, with suggested category and confidence band."),
	mcp.WithNumber("limit",
		mcp.Description("Page size (default 20, max 100)"),
	),
	mcp.WithNumber("offset",
		mcp.Description("Pagination offset (default 0)"),
	),
)

var skipToolDef = mcp.NewTool("review_skip",
	mcp.WithDescription("Dismiss a queued capture without filing it anywhere. Terminal: the capture stays in the audit log but never re-surfaces for review."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Capture id (ULID)"),
	),
)

var batchSkipToolDef = mcp.NewTool("review_batch_skip",
	mcp.WithDescription("Skip several queued captures in one call. Items are processed independently; one failure does not roll back the others. Returns one result per id, in request order."),
	mcp.WithArray("ids",
		mcp.Required(),
		mcp.Description("Capture ids to skip (max 50)"),
		mcp.Items(map[string]any{"type": "string"}),
	),
)

var correctToolDef = mcp.NewTool("review_correct",
	mcp.WithDescription("Resolve a queued capture by filing it under a human-chosen category. A correction note is required for the audit trail. The stored raw text is never rewritten."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Capture id (ULID)"),
	),
	mcp.WithString("category",
		mcp.Required(),
		mcp.Description("Target category: task, project, person, learning, health, content, or question"),
	),
	mcp.WithString("note",
		mcp.Required(),
		mcp.Description("Why the capture is being filed this way"),
	),
	mcp.WithString("name",
		mcp.Description("Record name (required for task, project, person, and content)"),
	),
	mcp.WithString("description",
		mcp.Description("Record description or content"),
	),
	mcp.WithNumber("priority",
		mcp.Description("Task priority 1-5"),
	),
	mcp.WithString("project",
		mcp.Description("Parent project name for tasks; resolved case-insensitively, created if absent"),
	),
	mcp.WithString("domain",
		mcp.Description("Project domain grouping"),
	),
	mcp.WithString("url",
		mcp.Description("URL for content items"),
	),
	mcp.WithString("edited_text",
		mcp.Description("Optional cleaned-up text fed to the destination record instead of the raw capture text"),
	),
)

var knowledgeSearchToolDef = mcp.NewTool("knowledge_search",
	mcp.WithDescription("Rank stored knowledge items by relevance to a task. Items already linked to the task surface first; zero-relevance items are dropped."),
	mcp.WithString("task_id",
		mcp.Required(),
		mcp.Description("Task id to search against"),
	),
)

var knowledgeLinkToolDef = mcp.NewTool("knowledge_link",
	mcp.WithDescription("Attach a knowledge item to a task."),
	mcp.WithString("task_id",
		mcp.Required(),
		mcp.Description("Task id"),
	),
	mcp.WithString("item_id",
		mcp.Required(),
		mcp.Description("Knowledge item id"),
	),
)

var knowledgeUnlinkToolDef = mcp.NewTool("knowledge_unlink",
	mcp.WithDescription("Detach a knowledge item from a task."),
	mcp.WithString("task_id",
		mcp.Required(),
		mcp.Description("Task id"),
	),
	mcp.WithString("item_id",
		mcp.Required(),
		mcp.Description("Knowledge item id"),
	),
)
