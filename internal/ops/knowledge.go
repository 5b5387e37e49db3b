package ops

import (
	"context"
	"database/sql"

	"github.com/siftlabs/sift/internal/db"
	"github.com/siftlabs/sift/internal/errors"
	"github.com/siftlabs/sift/internal/relevance"
)

// KnowledgeSearchInput contains parameters for the KnowledgeSearch operation.
type KnowledgeSearchInput struct {
	TaskID string
}

// TaskSummary is the task view echoed back with a knowledge search.
type TaskSummary struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	ProjectID *string `json:"project_id,omitempty"`
}

// KnowledgeSearchOutput contains the result of the KnowledgeSearch operation.
type KnowledgeSearchOutput struct {
	Task        TaskSummary        `json:"task"`
	Items       []relevance.Scored `json:"items"`
	LinkedCount int                `json:"linked_count"`
}

// KnowledgeSearch ranks stored knowledge items against a task. Items the
// task is already linked to surface first regardless of score.
func KnowledgeSearch(ctx context.Context, database *sql.DB, input KnowledgeSearchInput) (*KnowledgeSearchOutput, error) {
	if input.TaskID == "" {
		return nil, errors.NewInvalidRequest("task id is required")
	}

	task, err := db.GetTask(ctx, database, input.TaskID)
	if err != nil {
		return nil, err
	}

	items, err := db.ListKnowledgeItems(ctx, database)
	if err != nil {
		return nil, err
	}

	linked, err := db.ListLinkedItemIDs(ctx, database, task.ID)
	if err != nil {
		return nil, err
	}

	ranked := relevance.Rank(*task, items, linked)

	linkedCount := 0
	for _, s := range ranked {
		if s.IsLinked {
			linkedCount++
		}
	}

	return &KnowledgeSearchOutput{
		Task: TaskSummary{
			ID:        task.ID,
			Name:      task.Name,
			ProjectID: task.ProjectID,
		},
		Items:       ranked,
		LinkedCount: linkedCount,
	}, nil
}

// LinkInput contains parameters for the Link and Unlink operations.
type LinkInput struct {
	TaskID string
	ItemID string
}

// LinkOutput contains the result of the Link and Unlink operations.
type LinkOutput struct {
	TaskID string `json:"task_id"`
	ItemID string `json:"item_id"`
	Linked bool   `json:"linked"`
}

// Link attaches a knowledge item to a task. Both sides must exist; linking
// an already linked pair reports INVALID_REQUEST.
func Link(ctx context.Context, database *sql.DB, input LinkInput) (*LinkOutput, error) {
	if err := validateLinkInput(input); err != nil {
		return nil, err
	}

	// Verify both endpoints before touching the link table so a bad id
	// reports NOT_FOUND rather than a foreign key failure.
	if _, err := db.GetTask(ctx, database, input.TaskID); err != nil {
		return nil, err
	}
	if err := knowledgeItemExists(ctx, database, input.ItemID); err != nil {
		return nil, err
	}

	if err := db.InsertLink(ctx, database, input.TaskID, input.ItemID); err != nil {
		return nil, err
	}

	return &LinkOutput{TaskID: input.TaskID, ItemID: input.ItemID, Linked: true}, nil
}

// Unlink detaches a knowledge item from a task. Absent links report
// NOT_FOUND.
func Unlink(ctx context.Context, database *sql.DB, input LinkInput) (*LinkOutput, error) {
	if err := validateLinkInput(input); err != nil {
		return nil, err
	}

	if err := db.DeleteLink(ctx, database, input.TaskID, input.ItemID); err != nil {
		return nil, err
	}

	return &LinkOutput{TaskID: input.TaskID, ItemID: input.ItemID, Linked: false}, nil
}

func validateLinkInput(input LinkInput) error {
	if input.TaskID == "" {
		return errors.NewInvalidRequest("task id is required")
	}
	if input.ItemID == "" {
		return errors.NewInvalidRequest("knowledge item id is required")
	}
	return nil
}

// knowledgeItemExists checks that a knowledge item row exists.
func knowledgeItemExists(ctx context.Context, database *sql.DB, itemID string) error {
	var one int
	err := database.QueryRowContext(ctx, "SELECT 1 FROM knowledge_items WHERE id = ?", itemID).Scan(&one)
	if err == sql.ErrNoRows {
		return errors.NewNotFound(itemID)
	}
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
