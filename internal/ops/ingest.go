package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/siftlabs/sift/internal/capture"
	"github.com/siftlabs/sift/internal/classify"
	"github.com/siftlabs/sift/internal/config"
	"github.com/siftlabs/sift/internal/db"
	"github.com/siftlabs/sift/internal/errors"
)

// IngestInput contains parameters for the Ingest operation.
type IngestInput struct {
	RawText string
}

// IngestStatus is the triage outcome for a capture.
type IngestStatus string

const (
	StatusFiled  IngestStatus = "filed"
	StatusQueued IngestStatus = "queued"
)

// IngestOutput contains the result of the Ingest operation.
type IngestOutput struct {
	ID          string            `json:"id"`
	Status      IngestStatus      `json:"status"`
	Category    *capture.Category `json:"category,omitempty"`
	Confidence  *float64          `json:"confidence,omitempty"`
	Band        string            `json:"band,omitempty"`
	Destination *capture.Ref      `json:"destination,omitempty"`
	Response    string            `json:"response,omitempty"`

	// Warning explains why a capture was queued instead of filed when the
	// cause was a degraded collaborator, not low confidence.
	Warning string `json:"warning,omitempty"`
}

// Ingest runs the triage pipeline for one raw capture: classify, route,
// and write exactly one capture row. The capture is never lost: classifier
// or materializer failures degrade to a queued, reviewable row.
//
// The materializer is invoked at most once per call.
func Ingest(ctx context.Context, database *sql.DB, cfg *config.Config, classifier classify.Classifier, input IngestInput) (*IngestOutput, error) {
	if err := ValidateRawText(input.RawText, cfg); err != nil {
		return nil, err
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	now := time.Now().Unix()

	c := &capture.Capture{
		ID:          id,
		RawText:     input.RawText,
		NeedsReview: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	output := &IngestOutput{
		ID:     id,
		Status: StatusQueued,
	}

	cl := classifyCapture(ctx, classifier, input.RawText, output)
	if cl != nil {
		applyClassification(c, cl, output)

		if category, ok := cl.Category(); ok {
			threshold := cfg.ReviewThreshold
			if threshold <= 0 {
				threshold = capture.DefaultReviewThreshold
			}
			fields := cl.ToFields()

			// Inclusive threshold: confidence exactly at the cutoff auto-files.
			if cl.ConfidenceOrZero() >= threshold && fields.CompleteFor(category) {
				ref, err := Materialize(ctx, database, category, fields, input.RawText)
				if err != nil {
					// Routing never drops a capture: fall back to review.
					output.Warning = err.Error()
				} else {
					table := ref.Table
					refID := ref.ID
					c.DestinationTable = &table
					c.DestinationID = &refID
					c.NeedsReview = false
					output.Status = StatusFiled
					output.Destination = &ref
				}
			}
		}
	}

	if err := db.InsertCapture(ctx, database, c); err != nil {
		return nil, err
	}

	return output, nil
}

// classifyCapture invokes the collaborator, degrading any failure to a
// nil classification plus a warning. Nil classifier means classification
// is disabled entirely.
func classifyCapture(ctx context.Context, classifier classify.Classifier, rawText string, output *IngestOutput) *capture.Classification {
	if classifier == nil {
		output.Warning = "classification disabled; capture queued for manual review"
		return nil
	}

	cl, err := classifier.Classify(ctx, rawText)
	if err != nil {
		output.Warning = errors.NewClassificationUnavailable(err).Error()
		return nil
	}
	return cl
}

// applyClassification records the suggested category and confidence on the
// capture row and mirrors them into the output. The category is pre-filled
// even when the capture stays queued, so the review surface can default to
// the suggestion.
func applyClassification(c *capture.Capture, cl *capture.Classification, output *IngestOutput) {
	if category, ok := cl.Category(); ok {
		c.Category = &category
		output.Category = &category
	}
	if cl.Confidence != nil {
		conf := *cl.Confidence
		c.Confidence = &conf
		output.Confidence = &conf
	}
	output.Band = capture.Band(cl.ConfidenceOrZero())
	output.Response = cl.Response
}
