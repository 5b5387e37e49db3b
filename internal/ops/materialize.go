package ops

import (
	"context"
	"database/sql"

	"github.com/siftlabs/sift/internal/capture"
	"github.com/siftlabs/sift/internal/db"
	"github.com/siftlabs/sift/internal/errors"
)

// Materialize creates the concrete domain record for a category and
// returns its destination reference. Dispatch is exhaustive over
// capture.Category; an unknown category is a validation error, not a
// materialization failure.
//
// rawText backs the content categories (learning, health, question) when
// the classifier supplied no description, so those categories always have
// something to file.
func Materialize(ctx context.Context, database *sql.DB, category capture.Category, fields capture.Fields, rawText string) (capture.Ref, error) {
	if _, ok := capture.ParseCategory(string(category)); !ok {
		return capture.Ref{}, errors.NewInvalidRequest("unknown category: " + string(category))
	}
	if !fields.CompleteFor(category) {
		return capture.Ref{}, errors.NewMaterializationFailed(string(category), fields.ToMap(),
			errors.NewInvalidRequest("missing required fields"))
	}

	id, err := generateULID()
	if err != nil {
		return capture.Ref{}, errors.NewInternal(err)
	}

	content := fields.Description
	if content == "" {
		content = rawText
	}

	switch category {
	case capture.CategoryTask:
		return materializeTask(ctx, database, id, fields)

	case capture.CategoryProject:
		projectID, err := db.UpsertProject(ctx, database, id, fields.Name, fields.Domain)
		if err != nil {
			return capture.Ref{}, wrapMaterialization(category, fields, err)
		}
		return capture.Ref{Table: category.Table(), ID: projectID}, nil

	case capture.CategoryPerson:
		if err := db.InsertPerson(ctx, database, id, fields.Name, content); err != nil {
			return capture.Ref{}, wrapMaterialization(category, fields, err)
		}
		return capture.Ref{Table: category.Table(), ID: id}, nil

	case capture.CategoryLearning:
		if err := db.InsertLearning(ctx, database, id, content, fields.URL); err != nil {
			return capture.Ref{}, wrapMaterialization(category, fields, err)
		}
		return capture.Ref{Table: category.Table(), ID: id}, nil

	case capture.CategoryHealth:
		if err := db.InsertHealthLog(ctx, database, id, content); err != nil {
			return capture.Ref{}, wrapMaterialization(category, fields, err)
		}
		return capture.Ref{Table: category.Table(), ID: id}, nil

	case capture.CategoryContent:
		if err := db.InsertContentItem(ctx, database, id, fields.Name, fields.URL, fields.Description); err != nil {
			return capture.Ref{}, wrapMaterialization(category, fields, err)
		}
		return capture.Ref{Table: category.Table(), ID: id}, nil

	case capture.CategoryQuestion:
		if err := db.InsertQuestion(ctx, database, id, content); err != nil {
			return capture.Ref{}, wrapMaterialization(category, fields, err)
		}
		return capture.Ref{Table: category.Table(), ID: id}, nil
	}

	return capture.Ref{}, errors.NewInvalidRequest("unknown category: " + string(category))
}

// materializeTask creates a task, resolving or creating its parent project
// by case-insensitive name first. Two captures racing to create the same
// brand-new project name converge on one project row via the name_norm
// unique index (see db.UpsertProject).
func materializeTask(ctx context.Context, database *sql.DB, taskID string, fields capture.Fields) (capture.Ref, error) {
	var projectID *string
	if fields.Project != "" {
		pid, err := generateULID()
		if err != nil {
			return capture.Ref{}, errors.NewInternal(err)
		}
		resolved, err := db.UpsertProject(ctx, database, pid, fields.Project, fields.Domain)
		if err != nil {
			return capture.Ref{}, wrapMaterialization(capture.CategoryTask, fields, err)
		}
		projectID = &resolved
	}

	task := &capture.Task{
		ID:          taskID,
		Name:        fields.Name,
		Description: fields.Description,
		Priority:    fields.Priority,
		ProjectID:   projectID,
	}
	if err := db.InsertTask(ctx, database, task); err != nil {
		return capture.Ref{}, wrapMaterialization(capture.CategoryTask, fields, err)
	}

	return capture.Ref{Table: capture.CategoryTask.Table(), ID: taskID}, nil
}

// wrapMaterialization tags a store failure with the category and fields so
// the caller can preserve them for manual retry.
func wrapMaterialization(category capture.Category, fields capture.Fields, err error) error {
	if errors.Is(err, errors.ErrMaterializationFailed) {
		return err
	}
	return errors.NewMaterializationFailed(string(category), fields.ToMap(), err)
}
