package ops

import (
	"context"
	"testing"

	"github.com/siftlabs/sift/internal/capture"
	"github.com/siftlabs/sift/internal/errors"
)

func TestDiscard_RemovesRow(t *testing.T) {
	database := setupTestDB(t)
	ids := seedQueued(t, database, 2)

	output, err := Discard(context.Background(), database, DiscardInput{ID: ids[0]})
	if err != nil {
		t.Fatalf("Discard failed: %v", err)
	}
	if output.ID != ids[0] {
		t.Errorf("ID = %q, want %q", output.ID, ids[0])
	}

	if n := countCaptures(t, database); n != 1 {
		t.Errorf("capture rows = %d, want 1 after discard", n)
	}

	_, err = Fetch(context.Background(), database, FetchInput{ID: ids[0]})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("fetch after discard: err = %v, want NOT_FOUND", err)
	}
}

func TestDiscard_LeavesDestinationRecord(t *testing.T) {
	database := setupTestDB(t)
	ids := seedQueued(t, database, 1)

	corrected, err := Correct(context.Background(), database, CorrectInput{
		ID:       ids[0],
		Category: "task",
		Fields:   capture.Fields{Name: "Keep me"},
		Note:     "filed by hand",
	})
	if err != nil {
		t.Fatalf("Correct failed: %v", err)
	}

	if _, err := Discard(context.Background(), database, DiscardInput{ID: ids[0]}); err != nil {
		t.Fatalf("Discard failed: %v", err)
	}

	// Audit row gone, task record untouched.
	var n int
	if err := database.QueryRow("SELECT COUNT(*) FROM tasks WHERE id = ?", corrected.Destination.ID).Scan(&n); err != nil {
		t.Fatalf("count tasks: %v", err)
	}
	if n != 1 {
		t.Error("discard must leave the materialized record in place")
	}
}

func TestDiscard_Missing(t *testing.T) {
	database := setupTestDB(t)

	_, err := Discard(context.Background(), database, DiscardInput{ID: "nope"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}
