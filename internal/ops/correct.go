package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/siftlabs/sift/internal/capture"
	"github.com/siftlabs/sift/internal/db"
	"github.com/siftlabs/sift/internal/errors"
)

// CorrectInput contains parameters for the Correct operation.
type CorrectInput struct {
	ID       string
	Category string
	Fields   capture.Fields
	Note     string

	// EditedText optionally replaces the raw text fed to the materializer
	// for content categories. The stored raw_text audit value is never
	// rewritten.
	EditedText string
}

// CorrectOutput contains the result of the Correct operation.
type CorrectOutput struct {
	ID          string           `json:"id"`
	Category    capture.Category `json:"category"`
	Destination capture.Ref      `json:"destination"`
}

// Correct applies a human override to a queued capture: materialize under
// the chosen category, then atomically record the correction. A capture
// that is no longer under review reports ALREADY_RESOLVED: a benign
// conflict when two review surfaces race, not a fatal error.
func Correct(ctx context.Context, database *sql.DB, input CorrectInput) (*CorrectOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	category, ok := capture.ParseCategory(strings.TrimSpace(strings.ToLower(input.Category)))
	if !ok {
		return nil, errors.NewInvalidRequest("unknown category: " + input.Category)
	}
	if strings.TrimSpace(input.Note) == "" {
		return nil, errors.NewInvalidRequest("correction note is required")
	}

	// Check review state up front so an already-resolved capture fails
	// before a destination record is created.
	c, err := db.GetCaptureByID(ctx, database, input.ID)
	if err != nil {
		return nil, err
	}
	if !c.NeedsReview {
		return nil, errors.NewAlreadyResolved(input.ID)
	}

	materializerText := c.RawText
	if strings.TrimSpace(input.EditedText) != "" {
		materializerText = input.EditedText
	}

	ref, err := Materialize(ctx, database, category, input.Fields, materializerText)
	if err != nil {
		return nil, err
	}

	// The guarded update closes the race window between the check above
	// and now: if another actor resolved the capture meanwhile, this
	// reports ALREADY_RESOLVED instead of double-resolving.
	if err := db.ResolveCorrect(ctx, database, input.ID, category, ref, input.Note); err != nil {
		return nil, err
	}

	return &CorrectOutput{
		ID:          input.ID,
		Category:    category,
		Destination: ref,
	}, nil
}
