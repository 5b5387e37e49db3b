package ops

import (
	"context"
	"database/sql"

	"github.com/siftlabs/sift/internal/capture"
	"github.com/siftlabs/sift/internal/db"
)

// QueueInput contains parameters for the Queue operation.
type QueueInput struct {
	Limit  int // default: 20, max: 100
	Offset int // default: 0
}

// QueueItem is one capture awaiting review, with display metadata.
type QueueItem struct {
	ID         string            `json:"id"`
	RawText    string            `json:"raw_text"`
	Category   *capture.Category `json:"category,omitempty"`
	Confidence *float64          `json:"confidence,omitempty"`
	Band       string            `json:"band"`
	CreatedAt  int64             `json:"created_at"`
}

// QueueOutput contains the result of the Queue operation.
type QueueOutput struct {
	Items      []QueueItem `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

// Queue lists captures awaiting review, newest first. The confidence band
// is display-only color coding; routing already happened at ingest.
func Queue(ctx context.Context, database *sql.DB, input QueueInput) (*QueueOutput, error) {
	limit := clampLimit(input.Limit, DefaultQueueLimit, MaxQueueLimit)
	offset := max(input.Offset, 0)

	captures, total, err := db.ListReviewQueue(ctx, database, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]QueueItem, len(captures))
	for i, c := range captures {
		band := capture.BandLow
		if c.Confidence != nil {
			band = capture.Band(*c.Confidence)
		}
		items[i] = QueueItem{
			ID:         c.ID,
			RawText:    c.RawText,
			Category:   c.Category,
			Confidence: c.Confidence,
			Band:       band,
			CreatedAt:  c.CreatedAt,
		}
	}

	return &QueueOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
	}, nil
}
