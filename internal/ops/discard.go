package ops

import (
	"context"
	"database/sql"

	"github.com/siftlabs/sift/internal/db"
	"github.com/siftlabs/sift/internal/errors"
)

// DiscardInput contains parameters for the Discard operation.
type DiscardInput struct {
	ID string
}

// DiscardOutput contains the result of the Discard operation.
type DiscardOutput struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Discard permanently deletes a capture row. This is the only way a
// capture leaves the audit log, and it is a terminal hard delete, not a
// state flag. Any materialized destination record is left in place.
func Discard(ctx context.Context, database *sql.DB, input DiscardInput) (*DiscardOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	if err := db.DeleteCapture(ctx, database, input.ID); err != nil {
		return nil, err
	}

	return &DiscardOutput{
		ID:      input.ID,
		Message: "capture discarded",
	}, nil
}
