package ops

import (
	"context"
	"testing"

	"github.com/siftlabs/sift/internal/capture"
	"github.com/siftlabs/sift/internal/db"
	"github.com/siftlabs/sift/internal/errors"
)

func TestCorrect_FilesUnderChosenCategory(t *testing.T) {
	database := setupTestDB(t)
	ids := seedQueued(t, database, 1)

	output, err := Correct(context.Background(), database, CorrectInput{
		ID:       ids[0],
		Category: "task",
		Fields: capture.Fields{
			Name:    "Follow up with vendor",
			Project: "Launch Event",
		},
		Note: "classifier saw a learning, this is a task",
	})
	if err != nil {
		t.Fatalf("Correct failed: %v", err)
	}
	if output.Category != capture.CategoryTask {
		t.Errorf("Category = %q, want task", output.Category)
	}
	if output.Destination.Table != "tasks" {
		t.Errorf("Destination.Table = %q, want tasks", output.Destination.Table)
	}

	c, err := db.GetCaptureByID(context.Background(), database, ids[0])
	if err != nil {
		t.Fatalf("GetCaptureByID failed: %v", err)
	}
	if c.NeedsReview {
		t.Error("corrected capture should not need review")
	}
	if !c.Corrected {
		t.Error("Corrected = false, want true")
	}
	if c.CorrectionNote == nil || *c.CorrectionNote != "classifier saw a learning, this is a task" {
		t.Errorf("CorrectionNote = %v, want the supplied note", c.CorrectionNote)
	}
	if c.RawText != "queued capture 0" {
		t.Errorf("RawText = %q, audit text must never be rewritten", c.RawText)
	}

	if _, err := db.GetTask(context.Background(), database, output.Destination.ID); err != nil {
		t.Fatalf("destination task missing: %v", err)
	}
}

func TestCorrect_EditedTextFeedsMaterializerOnly(t *testing.T) {
	database := setupTestDB(t)
	ids := seedQueued(t, database, 1)

	output, err := Correct(context.Background(), database, CorrectInput{
		ID:         ids[0],
		Category:   "learning",
		Note:       "cleaned up phrasing",
		EditedText: "WAL mode allows concurrent readers",
	})
	if err != nil {
		t.Fatalf("Correct failed: %v", err)
	}

	var content string
	err = database.QueryRow("SELECT content FROM learnings WHERE id = ?", output.Destination.ID).Scan(&content)
	if err != nil {
		t.Fatalf("read learning: %v", err)
	}
	if content != "WAL mode allows concurrent readers" {
		t.Errorf("learning content = %q, want edited text", content)
	}

	c, err := db.GetCaptureByID(context.Background(), database, ids[0])
	if err != nil {
		t.Fatalf("GetCaptureByID failed: %v", err)
	}
	if c.RawText != "queued capture 0" {
		t.Errorf("RawText = %q, editing must not rewrite the audit text", c.RawText)
	}
}

func TestCorrect_AlreadyResolved(t *testing.T) {
	database := setupTestDB(t)
	ids := seedQueued(t, database, 1)

	if _, err := Skip(context.Background(), database, SkipInput{ID: ids[0]}); err != nil {
		t.Fatalf("Skip failed: %v", err)
	}

	_, err := Correct(context.Background(), database, CorrectInput{
		ID:       ids[0],
		Category: "question",
		Note:     "too late",
	})
	if !errors.Is(err, errors.ErrAlreadyResolved) {
		t.Fatalf("err = %v, want ALREADY_RESOLVED", err)
	}
}

func TestCorrect_Validation(t *testing.T) {
	database := setupTestDB(t)
	ids := seedQueued(t, database, 1)

	cases := []struct {
		name  string
		input CorrectInput
	}{
		{"missing id", CorrectInput{Category: "task", Note: "n"}},
		{"unknown category", CorrectInput{ID: ids[0], Category: "widget", Note: "n"}},
		{"missing note", CorrectInput{ID: ids[0], Category: "task", Fields: capture.Fields{Name: "x"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Correct(context.Background(), database, tc.input)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Fatalf("err = %v, want INVALID_REQUEST", err)
			}
		})
	}
}

func TestCorrect_IncompleteFields(t *testing.T) {
	database := setupTestDB(t)
	ids := seedQueued(t, database, 1)

	// A task correction with no name cannot materialize; the capture must
	// stay in the queue for another attempt.
	_, err := Correct(context.Background(), database, CorrectInput{
		ID:       ids[0],
		Category: "task",
		Note:     "retry later",
	})
	if !errors.Is(err, errors.ErrMaterializationFailed) {
		t.Fatalf("err = %v, want MATERIALIZATION_FAILED", err)
	}

	c, err := db.GetCaptureByID(context.Background(), database, ids[0])
	if err != nil {
		t.Fatalf("GetCaptureByID failed: %v", err)
	}
	if !c.NeedsReview {
		t.Error("failed correction must leave the capture queued")
	}
}
