package capture

// Capture represents one raw-text ingestion event and its classification
// outcome. Rows are append-only from the audit perspective: raw_text and
// confidence never change after insert, and only the triage and correction
// paths may flip the review flags.
type Capture struct {
	// ID is a ULID that uniquely identifies this capture
	ID string

	// RawText is the original captured text, immutable once created
	RawText string

	// Category is the classified (or human-corrected) category, nil until
	// a classification has been recorded
	Category *Category

	// Confidence is the classifier's confidence in [0,1], nil when the
	// classifier was unavailable. Immutable after creation.
	Confidence *float64

	// DestinationTable and DestinationID reference the materialized
	// record; both nil until the capture has been filed
	DestinationTable *string
	DestinationID    *string

	// NeedsReview is true while the capture awaits a human decision
	NeedsReview bool

	// Corrected is true once a human has overridden the original category
	Corrected bool

	// CorrectionNote explains the override, nil until corrected
	CorrectionNote *string

	// CreatedAt is the Unix timestamp when the capture was ingested
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last state change
	UpdatedAt int64
}

// Status is the display status of a capture.
type Status string

const (
	StatusFiled       Status = "Filed"
	StatusNeedsReview Status = "Needs Review"
	StatusCorrected   Status = "Corrected"
)

// Status derives the display status from the review flags.
// Corrected wins over Filed; a skipped capture (no destination, not
// corrected, review cleared) reports as Filed for audit purposes.
func (c *Capture) Status() Status {
	switch {
	case c.NeedsReview:
		return StatusNeedsReview
	case c.Corrected:
		return StatusCorrected
	default:
		return StatusFiled
	}
}

// Ref identifies a materialized destination record.
type Ref struct {
	Table string `json:"table"`
	ID    string `json:"id"`
}

// Destination returns the destination reference, or nil if unfiled.
func (c *Capture) Destination() *Ref {
	if c.DestinationTable == nil || c.DestinationID == nil {
		return nil
	}
	return &Ref{Table: *c.DestinationTable, ID: *c.DestinationID}
}
