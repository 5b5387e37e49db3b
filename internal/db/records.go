package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/siftlabs/sift/internal/capture"
	"github.com/siftlabs/sift/internal/errors"
)

// Project is a stored project row.
type Project struct {
	ID        string
	Name      string
	NameNorm  string
	Domain    *string
	CreatedAt int64
}

// UpsertProject resolves or creates a project by normalized name.
// The unique index on name_norm plus ON CONFLICT makes concurrent
// resolve-or-create for the same name converge on a single row: the loser
// of the race gets the winner's id back instead of a duplicate project.
func UpsertProject(ctx context.Context, db *sql.DB, id, name, domain string) (string, error) {
	nameNorm := capture.Normalize(name)
	if nameNorm == "" {
		return "", errors.NewInvalidRequest("project name must not be empty")
	}
	now := time.Now().Unix()

	var domainNS sql.NullString
	if domain != "" {
		domainNS = sql.NullString{String: domain, Valid: true}
	}

	// DO UPDATE SET name_norm = name_norm is a no-op write that lets
	// RETURNING yield the surviving row's id on conflict.
	query := `
		INSERT INTO projects (id, name, name_norm, domain, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name_norm) DO UPDATE SET name_norm = name_norm
		RETURNING id
	`

	var resolvedID string
	err := db.QueryRowContext(ctx, query, id, name, nameNorm, domainNS, now).Scan(&resolvedID)
	if err != nil {
		return "", errors.NewInternal(err)
	}

	return resolvedID, nil
}

// GetProjectByName retrieves a project by case-insensitive name match.
func GetProjectByName(ctx context.Context, db *sql.DB, name string) (*Project, error) {
	nameNorm := capture.Normalize(name)

	var (
		p      Project
		domain sql.NullString
	)
	err := db.QueryRowContext(ctx, `
		SELECT id, name, name_norm, domain, created_at
		FROM projects WHERE name_norm = ?
	`, nameNorm).Scan(&p.ID, &p.Name, &p.NameNorm, &domain, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(name)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	p.Domain = fromNullString(domain)

	return &p, nil
}

// CountProjects returns the number of project rows.
func CountProjects(ctx context.Context, db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&count); err != nil {
		return 0, errors.NewInternal(err)
	}
	return count, nil
}

// InsertTask stores a task row.
func InsertTask(ctx context.Context, db *sql.DB, t *capture.Task) error {
	now := time.Now().Unix()
	if t.CreatedAt == 0 {
		t.CreatedAt = now
	}

	var priority sql.NullInt64
	if t.Priority != 0 {
		priority = sql.NullInt64{Int64: int64(t.Priority), Valid: true}
	}
	var description sql.NullString
	if t.Description != "" {
		description = sql.NullString{String: t.Description, Valid: true}
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO tasks (id, name, description, priority, project_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.ID, t.Name, description, priority, toNullString(t.ProjectID), t.CreatedAt)
	if err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// GetTask retrieves a task by id.
func GetTask(ctx context.Context, db *sql.DB, id string) (*capture.Task, error) {
	var (
		t           capture.Task
		description sql.NullString
		priority    sql.NullInt64
		projectID   sql.NullString
	)
	err := db.QueryRowContext(ctx, `
		SELECT id, name, description, priority, project_id, created_at
		FROM tasks WHERE id = ?
	`, id).Scan(&t.ID, &t.Name, &description, &priority, &projectID, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	if description.Valid {
		t.Description = description.String
	}
	if priority.Valid {
		t.Priority = int(priority.Int64)
	}
	t.ProjectID = fromNullString(projectID)

	return &t, nil
}

// InsertPerson stores a person row.
func InsertPerson(ctx context.Context, db *sql.DB, id, name, notes string) error {
	var notesNS sql.NullString
	if notes != "" {
		notesNS = sql.NullString{String: notes, Valid: true}
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO people (id, name, notes, created_at) VALUES (?, ?, ?, ?)
	`, id, name, notesNS, time.Now().Unix())
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// InsertLearning stores a learning row.
func InsertLearning(ctx context.Context, db *sql.DB, id, content, source string) error {
	var sourceNS sql.NullString
	if source != "" {
		sourceNS = sql.NullString{String: source, Valid: true}
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO learnings (id, content, source, created_at) VALUES (?, ?, ?, ?)
	`, id, content, sourceNS, time.Now().Unix())
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// InsertHealthLog stores a health log row.
func InsertHealthLog(ctx context.Context, db *sql.DB, id, content string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO health_logs (id, content, created_at) VALUES (?, ?, ?)
	`, id, content, time.Now().Unix())
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// InsertContentItem stores a content item row.
func InsertContentItem(ctx context.Context, db *sql.DB, id, title, url, notes string) error {
	var urlNS, notesNS sql.NullString
	if url != "" {
		urlNS = sql.NullString{String: url, Valid: true}
	}
	if notes != "" {
		notesNS = sql.NullString{String: notes, Valid: true}
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO content_items (id, title, url, notes, created_at) VALUES (?, ?, ?, ?, ?)
	`, id, title, urlNS, notesNS, time.Now().Unix())
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// InsertQuestion stores a question row.
func InsertQuestion(ctx context.Context, db *sql.DB, id, content string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO questions (id, content, created_at) VALUES (?, ?, ?)
	`, id, content, time.Now().Unix())
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
