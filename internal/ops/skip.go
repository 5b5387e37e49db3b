package ops

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/siftlabs/sift/internal/db"
	"github.com/siftlabs/sift/internal/errors"
)

// SkipInput contains parameters for the Skip operation.
type SkipInput struct {
	ID string
}

// SkipOutput contains the result of the Skip operation.
type SkipOutput struct {
	ID string `json:"id"`
}

// Skip dismisses a queued capture without filing it anywhere: needs_review
// clears, no destination record is created, corrected stays false. This is
// terminal; nothing re-surfaces a skipped capture.
func Skip(ctx context.Context, database *sql.DB, input SkipInput) (*SkipOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	if err := db.ResolveSkip(ctx, database, input.ID); err != nil {
		return nil, err
	}

	return &SkipOutput{ID: input.ID}, nil
}

// BatchSkipInput contains parameters for the BatchSkip operation.
type BatchSkipInput struct {
	IDs []string
}

// BatchSkipResult is the per-item outcome of a batch skip.
type BatchSkipResult struct {
	ID      string `json:"id"`
	Skipped bool   `json:"skipped"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// BatchSkipOutput contains the result of the BatchSkip operation.
type BatchSkipOutput struct {
	Results []BatchSkipResult `json:"results"`
	Skipped int               `json:"skipped"`
	Failed  int               `json:"failed"`
}

// BatchSkip applies Skip to each id independently. One failed item does
// not roll back the others; the caller always receives one result per
// requested id, in request order.
func BatchSkip(ctx context.Context, database *sql.DB, input BatchSkipInput) (*BatchSkipOutput, error) {
	if len(input.IDs) == 0 {
		return nil, errors.NewInvalidRequest("at least one id is required")
	}
	if len(input.IDs) > MaxBatchSkipItems {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("too many items: %d (max %d)", len(input.IDs), MaxBatchSkipItems))
	}

	output := &BatchSkipOutput{
		Results: make([]BatchSkipResult, 0, len(input.IDs)),
	}

	for _, id := range input.IDs {
		result := BatchSkipResult{ID: id}

		if _, err := Skip(ctx, database, SkipInput{ID: id}); err != nil {
			result.Skipped = false
			if sErr, ok := err.(*errors.SiftError); ok {
				result.Code = string(sErr.Code)
				result.Message = sErr.Message
			} else {
				result.Code = string(errors.ErrInternal)
				result.Message = err.Error()
			}
			output.Failed++
		} else {
			result.Skipped = true
			output.Skipped++
		}

		output.Results = append(output.Results, result)
	}

	return output, nil
}
