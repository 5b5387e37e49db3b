package ops

import (
	"context"
	"database/sql"

	"github.com/siftlabs/sift/internal/capture"
	"github.com/siftlabs/sift/internal/db"
	"github.com/siftlabs/sift/internal/errors"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID string
}

// FetchOutput is the full audit view of one capture.
type FetchOutput struct {
	ID             string            `json:"id"`
	RawText        string            `json:"raw_text"`
	Category       *capture.Category `json:"category,omitempty"`
	Confidence     *float64          `json:"confidence,omitempty"`
	Band           string            `json:"band"`
	Status         capture.Status    `json:"status"`
	NeedsReview    bool              `json:"needs_review"`
	Corrected      bool              `json:"corrected"`
	CorrectionNote *string           `json:"correction_note,omitempty"`
	Destination    *capture.Ref      `json:"destination,omitempty"`
	CreatedAt      int64             `json:"created_at"`
	UpdatedAt      int64             `json:"updated_at"`
}

// Fetch retrieves one capture by id.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*FetchOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	c, err := db.GetCaptureByID(ctx, database, input.ID)
	if err != nil {
		return nil, err
	}

	return captureToFetchOutput(c), nil
}

// captureToFetchOutput converts a Capture to its audit view.
func captureToFetchOutput(c *capture.Capture) *FetchOutput {
	band := capture.BandLow
	if c.Confidence != nil {
		band = capture.Band(*c.Confidence)
	}

	return &FetchOutput{
		ID:             c.ID,
		RawText:        c.RawText,
		Category:       c.Category,
		Confidence:     c.Confidence,
		Band:           band,
		Status:         c.Status(),
		NeedsReview:    c.NeedsReview,
		Corrected:      c.Corrected,
		CorrectionNote: c.CorrectionNote,
		Destination:    c.Destination(),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
