package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/siftlabs/sift/internal/capture"
	"github.com/siftlabs/sift/internal/errors"
)

// captureColumns is the canonical column list for capture scans.
const captureColumns = `id, raw_text, classified_category, confidence,
	destination_table, destination_id, needs_review, corrected,
	correction_note, created_at, updated_at`

// InsertCapture stores a new capture row. Exactly one row is written per
// ingestion; raw_text and confidence are immutable afterwards.
func InsertCapture(ctx context.Context, db *sql.DB, c *capture.Capture) error {
	var category sql.NullString
	if c.Category != nil {
		category = sql.NullString{String: string(*c.Category), Valid: true}
	}

	query := `
		INSERT INTO captures (
			id, raw_text, classified_category, confidence,
			destination_table, destination_id, needs_review, corrected,
			correction_note, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		c.ID, c.RawText, category, toNullFloat(c.Confidence),
		toNullString(c.DestinationTable), toNullString(c.DestinationID),
		boolToInt(c.NeedsReview), boolToInt(c.Corrected),
		toNullString(c.CorrectionNote), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// GetCaptureByID retrieves a capture by its ULID.
func GetCaptureByID(ctx context.Context, db *sql.DB, id string) (*capture.Capture, error) {
	query := "SELECT " + captureColumns + " FROM captures WHERE id = ?"

	row := db.QueryRowContext(ctx, query, id)
	c, err := scanCapture(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return c, nil
}

// ListReviewQueue returns captures awaiting review, newest first, with the
// total queue size for pagination.
func ListReviewQueue(ctx context.Context, db *sql.DB, limit, offset int) ([]capture.Capture, int, error) {
	var total int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM captures WHERE needs_review = 1").Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := "SELECT " + captureColumns + `
		FROM captures
		WHERE needs_review = 1
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`

	rows, err := db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var items []capture.Capture
	for rows.Next() {
		c, err := ScanCaptureFromRows(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return items, total, nil
}

// ResolveSkip clears needs_review without filing or correcting.
// The needs_review guard makes resolution single-shot: a capture that has
// already been resolved reports ALREADY_RESOLVED, never re-opens.
func ResolveSkip(ctx context.Context, db *sql.DB, id string) error {
	now := time.Now().Unix()

	result, err := db.ExecContext(ctx, `
		UPDATE captures
		SET needs_review = 0, updated_at = ?
		WHERE id = ? AND needs_review = 1
	`, now, id)
	if err != nil {
		return errors.NewInternal(err)
	}

	return checkResolved(ctx, db, result, id)
}

// ResolveCorrect applies a human correction in one guarded update:
// category, destination, corrected flag, and note change together, and
// needs_review clears. raw_text and confidence are untouched.
func ResolveCorrect(ctx context.Context, db *sql.DB, id string, category capture.Category, ref capture.Ref, note string) error {
	now := time.Now().Unix()

	result, err := db.ExecContext(ctx, `
		UPDATE captures
		SET classified_category = ?, destination_table = ?, destination_id = ?,
			corrected = 1, needs_review = 0, correction_note = ?, updated_at = ?
		WHERE id = ? AND needs_review = 1
	`, string(category), ref.Table, ref.ID, note, now, id)
	if err != nil {
		return errors.NewInternal(err)
	}

	return checkResolved(ctx, db, result, id)
}

// checkResolved distinguishes a missing capture from one already resolved
// when a guarded resolution update touches zero rows.
func checkResolved(ctx context.Context, db *sql.DB, result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists int
	err = db.QueryRowContext(ctx, "SELECT 1 FROM captures WHERE id = ?", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return errors.NewNotFound(id)
	}
	if err != nil {
		return errors.NewInternal(err)
	}
	return errors.NewAlreadyResolved(id)
}

// DeleteCapture removes a capture row permanently. Discard is terminal;
// there is no soft-delete flag for captures.
func DeleteCapture(ctx context.Context, db *sql.DB, id string) error {
	result, err := db.ExecContext(ctx, "DELETE FROM captures WHERE id = ?", id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}

	return nil
}

// StreamCaptures returns all capture rows ordered oldest first, for export.
// Caller must close the rows.
func StreamCaptures(ctx context.Context, db *sql.DB) (*sql.Rows, error) {
	query := "SELECT " + captureColumns + " FROM captures ORDER BY created_at ASC, id ASC"
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return rows, nil
}

// rowScanner abstracts sql.Row and sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...any) error
}

// ScanCaptureFromRows scans the current row of a capture query.
func ScanCaptureFromRows(rows *sql.Rows) (*capture.Capture, error) {
	return scanCapture(rows)
}

// scanCapture scans a single row into a Capture struct.
func scanCapture(row rowScanner) (*capture.Capture, error) {
	var (
		c           capture.Capture
		category    sql.NullString
		confidence  sql.NullFloat64
		destTable   sql.NullString
		destID      sql.NullString
		needsReview int
		corrected   int
		note        sql.NullString
	)

	err := row.Scan(
		&c.ID, &c.RawText, &category, &confidence,
		&destTable, &destID, &needsReview, &corrected,
		&note, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if category.Valid {
		cat := capture.Category(category.String)
		c.Category = &cat
	}
	if confidence.Valid {
		c.Confidence = &confidence.Float64
	}
	c.DestinationTable = fromNullString(destTable)
	c.DestinationID = fromNullString(destID)
	c.NeedsReview = needsReview != 0
	c.Corrected = corrected != 0
	c.CorrectionNote = fromNullString(note)

	return &c, nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint
// violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// toNullFloat converts a *float64 to sql.NullFloat64.
func toNullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// boolToInt converts a bool to the 0/1 integers SQLite stores.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
