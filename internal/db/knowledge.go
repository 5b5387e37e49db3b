package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/siftlabs/sift/internal/capture"
	"github.com/siftlabs/sift/internal/errors"
)

// InsertKnowledgeItem stores a knowledge item row. The pipeline itself
// never mutates knowledge items; this exists for seeding and tests.
func InsertKnowledgeItem(ctx context.Context, db *sql.DB, item *capture.KnowledgeItem) error {
	now := time.Now().Unix()
	if item.CreatedAt == 0 {
		item.CreatedAt = now
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO knowledge_items (id, type, content, url, project_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, item.ID, item.Type, item.Content, toNullString(item.URL), toNullString(item.ProjectID), item.CreatedAt)
	if err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// ListKnowledgeItems returns all knowledge items, oldest first, as the
// candidate set for relevance scoring.
func ListKnowledgeItems(ctx context.Context, db *sql.DB) ([]capture.KnowledgeItem, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, type, content, url, project_id, created_at
		FROM knowledge_items
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var items []capture.KnowledgeItem
	for rows.Next() {
		var (
			item      capture.KnowledgeItem
			url       sql.NullString
			projectID sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.Type, &item.Content, &url, &projectID, &item.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		item.URL = fromNullString(url)
		item.ProjectID = fromNullString(projectID)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return items, nil
}

// ListLinkedItemIDs returns the set of knowledge item ids linked to a task.
func ListLinkedItemIDs(ctx context.Context, db *sql.DB, taskID string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT knowledge_item_id FROM task_knowledge_links WHERE task_id = ?
	`, taskID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	linked := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.NewInternal(err)
		}
		linked[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return linked, nil
}

// InsertLink records a task-knowledge link. The pair is unique; linking an
// already linked item reports INVALID_REQUEST.
func InsertLink(ctx context.Context, db *sql.DB, taskID, itemID string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO task_knowledge_links (task_id, knowledge_item_id, created_at)
		VALUES (?, ?, ?)
	`, taskID, itemID, time.Now().Unix())
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewInvalidRequest(fmt.Sprintf("knowledge item %s already linked to task %s", itemID, taskID))
		}
		return errors.NewInternal(err)
	}

	return nil
}

// DeleteLink removes a task-knowledge link.
func DeleteLink(ctx context.Context, db *sql.DB, taskID, itemID string) error {
	result, err := db.ExecContext(ctx, `
		DELETE FROM task_knowledge_links WHERE task_id = ? AND knowledge_item_id = ?
	`, taskID, itemID)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(fmt.Sprintf("link %s -> %s", taskID, itemID))
	}

	return nil
}
