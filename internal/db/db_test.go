package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/siftlabs/sift/internal/capture"
	"github.com/siftlabs/sift/internal/config"
	"github.com/siftlabs/sift/internal/errors"
)

func TestInit_CreatesSchema(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	version, err := GetUserVersion(database)
	if err != nil {
		t.Fatalf("GetUserVersion failed: %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, CurrentSchemaVersion)
	}

	// All tables exist
	tables := []string{
		"captures", "projects", "tasks", "people", "learnings",
		"health_logs", "content_items", "questions",
		"knowledge_items", "task_knowledge_links",
	}
	for _, table := range tables {
		var name string
		err := database.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q missing: %v", table, err)
		}
	}
}

func TestInit_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("first Init failed: %v", err)
	}
	database.Close()

	database, err = Init(tmpDir)
	if err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	database.Close()
}

func TestInit_CreatesExportsDir(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	if _, err := Init(filepath.Join(tmpDir)); err != nil {
		t.Errorf("re-init over existing dir failed: %v", err)
	}
}

func TestConfigurePool(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	// Should not panic with nil or zero config
	ConfigurePool(database, nil)
	ConfigurePool(database, &config.Config{})
	ConfigurePool(database, &config.Config{DBMaxOpenConns: 1, DBMaxIdleConns: 1})
}

func testCapture(id string, needsReview bool) *capture.Capture {
	now := time.Now().Unix()
	cat := capture.CategoryTask
	conf := 0.9
	return &capture.Capture{
		ID:          id,
		RawText:     "buy groceries for the week",
		Category:    &cat,
		Confidence:  &conf,
		NeedsReview: needsReview,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestInsertAndGetCapture(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()
	ctx := context.Background()

	c := testCapture("01HQZX0000000000000000AAAA", true)
	if err := InsertCapture(ctx, database, c); err != nil {
		t.Fatalf("InsertCapture failed: %v", err)
	}

	got, err := GetCaptureByID(ctx, database, c.ID)
	if err != nil {
		t.Fatalf("GetCaptureByID failed: %v", err)
	}
	if got.RawText != c.RawText {
		t.Errorf("RawText = %q", got.RawText)
	}
	if got.Category == nil || *got.Category != capture.CategoryTask {
		t.Errorf("Category = %v", got.Category)
	}
	if got.Confidence == nil || *got.Confidence != 0.9 {
		t.Errorf("Confidence = %v", got.Confidence)
	}
	if !got.NeedsReview || got.Corrected {
		t.Errorf("flags: needs_review=%v corrected=%v", got.NeedsReview, got.Corrected)
	}
}

func TestGetCapture_NotFound(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	_, err = GetCaptureByID(context.Background(), database, "missing")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestListReviewQueue_NewestFirst(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()
	ctx := context.Background()

	old := testCapture("01A", true)
	old.CreatedAt = 100
	mid := testCapture("01B", true)
	mid.CreatedAt = 200
	filed := testCapture("01C", false)
	filed.CreatedAt = 300
	newest := testCapture("01D", true)
	newest.CreatedAt = 400

	for _, c := range []*capture.Capture{old, mid, filed, newest} {
		if err := InsertCapture(ctx, database, c); err != nil {
			t.Fatalf("InsertCapture failed: %v", err)
		}
	}

	items, total, err := ListReviewQueue(ctx, database, 10, 0)
	if err != nil {
		t.Fatalf("ListReviewQueue failed: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3 (filed capture excluded)", total)
	}
	if len(items) != 3 || items[0].ID != "01D" || items[1].ID != "01B" || items[2].ID != "01A" {
		ids := make([]string, len(items))
		for i, c := range items {
			ids[i] = c.ID
		}
		t.Errorf("queue order = %v, want [01D 01B 01A]", ids)
	}
}

func TestListReviewQueue_Pagination(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()
	ctx := context.Background()

	for i := range 5 {
		c := testCapture(string(rune('A'+i)), true)
		c.CreatedAt = int64(i)
		if err := InsertCapture(ctx, database, c); err != nil {
			t.Fatalf("InsertCapture failed: %v", err)
		}
	}

	items, total, err := ListReviewQueue(ctx, database, 2, 2)
	if err != nil {
		t.Fatalf("ListReviewQueue failed: %v", err)
	}
	if total != 5 || len(items) != 2 {
		t.Errorf("total = %d len = %d, want 5 and 2", total, len(items))
	}
}

func TestResolveSkip_Guard(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()
	ctx := context.Background()

	c := testCapture("01SKIP", true)
	if err := InsertCapture(ctx, database, c); err != nil {
		t.Fatalf("InsertCapture failed: %v", err)
	}

	if err := ResolveSkip(ctx, database, c.ID); err != nil {
		t.Fatalf("first skip failed: %v", err)
	}

	got, err := GetCaptureByID(ctx, database, c.ID)
	if err != nil {
		t.Fatalf("GetCaptureByID failed: %v", err)
	}
	if got.NeedsReview || got.Corrected || got.Destination() != nil {
		t.Errorf("skip should only clear needs_review: %+v", got)
	}

	// Second skip: already resolved, never re-opens
	err = ResolveSkip(ctx, database, c.ID)
	if !errors.Is(err, errors.ErrAlreadyResolved) {
		t.Errorf("second skip err = %v, want ALREADY_RESOLVED", err)
	}

	// Missing capture: not found
	err = ResolveSkip(ctx, database, "missing")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("missing skip err = %v, want NOT_FOUND", err)
	}
}

func TestResolveCorrect(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()
	ctx := context.Background()

	c := testCapture("01FIX", true)
	if err := InsertCapture(ctx, database, c); err != nil {
		t.Fatalf("InsertCapture failed: %v", err)
	}

	ref := capture.Ref{Table: "projects", ID: "01PROJ"}
	if err := ResolveCorrect(ctx, database, c.ID, capture.CategoryProject, ref, "was actually a project"); err != nil {
		t.Fatalf("ResolveCorrect failed: %v", err)
	}

	got, err := GetCaptureByID(ctx, database, c.ID)
	if err != nil {
		t.Fatalf("GetCaptureByID failed: %v", err)
	}
	if got.NeedsReview {
		t.Error("needs_review should be cleared")
	}
	if !got.Corrected || got.CorrectionNote == nil || *got.CorrectionNote != "was actually a project" {
		t.Errorf("correction state: corrected=%v note=%v", got.Corrected, got.CorrectionNote)
	}
	if got.Category == nil || *got.Category != capture.CategoryProject {
		t.Errorf("category = %v, want project", got.Category)
	}
	dest := got.Destination()
	if dest == nil || dest.Table != "projects" || dest.ID != "01PROJ" {
		t.Errorf("destination = %+v", dest)
	}
	// Audit values untouched
	if got.RawText != c.RawText {
		t.Error("raw_text must never change")
	}
	if got.Confidence == nil || *got.Confidence != 0.9 {
		t.Error("confidence must never change")
	}

	// Correcting again: resolution is final
	err = ResolveCorrect(ctx, database, c.ID, capture.CategoryTask, ref, "again")
	if !errors.Is(err, errors.ErrAlreadyResolved) {
		t.Errorf("second correct err = %v, want ALREADY_RESOLVED", err)
	}
}

func TestDeleteCapture(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()
	ctx := context.Background()

	c := testCapture("01DEL", false)
	if err := InsertCapture(ctx, database, c); err != nil {
		t.Fatalf("InsertCapture failed: %v", err)
	}

	if err := DeleteCapture(ctx, database, c.ID); err != nil {
		t.Fatalf("DeleteCapture failed: %v", err)
	}
	if _, err := GetCaptureByID(ctx, database, c.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("deleted capture should be gone, got %v", err)
	}
	if err := DeleteCapture(ctx, database, c.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("double delete err = %v, want NOT_FOUND", err)
	}
}

func TestUpsertProject_Converges(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()
	ctx := context.Background()

	first, err := UpsertProject(ctx, database, "01P1", "Launch Event", "work")
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if first != "01P1" {
		t.Errorf("first upsert id = %q, want 01P1", first)
	}

	// Same name, different case and spacing: resolves to the existing row
	second, err := UpsertProject(ctx, database, "01P2", "  launch   EVENT ", "")
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if second != "01P1" {
		t.Errorf("second upsert id = %q, want the surviving 01P1", second)
	}

	count, err := CountProjects(ctx, database)
	if err != nil {
		t.Fatalf("CountProjects failed: %v", err)
	}
	if count != 1 {
		t.Errorf("project count = %d, want 1", count)
	}
}

func TestUpsertProject_EmptyName(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	_, err = UpsertProject(context.Background(), database, "01P", "   ", "")
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}

func TestTaskRoundTrip(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()
	ctx := context.Background()

	projectID, err := UpsertProject(ctx, database, "01P", "Events", "")
	if err != nil {
		t.Fatalf("UpsertProject failed: %v", err)
	}

	task := &capture.Task{
		ID:          "01T",
		Name:        "Book venue",
		Description: "call three venues",
		Priority:    2,
		ProjectID:   &projectID,
	}
	if err := InsertTask(ctx, database, task); err != nil {
		t.Fatalf("InsertTask failed: %v", err)
	}

	got, err := GetTask(ctx, database, "01T")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Name != "Book venue" || got.Description != "call three venues" || got.Priority != 2 {
		t.Errorf("task = %+v", got)
	}
	if got.ProjectID == nil || *got.ProjectID != projectID {
		t.Errorf("ProjectID = %v, want %s", got.ProjectID, projectID)
	}
}

func TestLinks(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()
	ctx := context.Background()

	item := &capture.KnowledgeItem{ID: "01K", Type: "note", Content: "venue shortlist"}
	if err := InsertKnowledgeItem(ctx, database, item); err != nil {
		t.Fatalf("InsertKnowledgeItem failed: %v", err)
	}

	if err := InsertLink(ctx, database, "01T", "01K"); err != nil {
		t.Fatalf("InsertLink failed: %v", err)
	}

	// Duplicate pair rejected
	err = InsertLink(ctx, database, "01T", "01K")
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("duplicate link err = %v, want INVALID_REQUEST", err)
	}

	linked, err := ListLinkedItemIDs(ctx, database, "01T")
	if err != nil {
		t.Fatalf("ListLinkedItemIDs failed: %v", err)
	}
	if !linked["01K"] || len(linked) != 1 {
		t.Errorf("linked = %v", linked)
	}

	if err := DeleteLink(ctx, database, "01T", "01K"); err != nil {
		t.Fatalf("DeleteLink failed: %v", err)
	}
	err = DeleteLink(ctx, database, "01T", "01K")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("unlink absent pair err = %v, want NOT_FOUND", err)
	}
}
