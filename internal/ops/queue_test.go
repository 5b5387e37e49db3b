package ops

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/siftlabs/sift/internal/config"
)

// seedQueued ingests n captures with no classifier so all land in the
// review queue. Returns ids in insertion order. Timestamps are spread one
// second apart so ordering assertions are deterministic.
func seedQueued(t *testing.T, database *sql.DB, n int) []string {
	t.Helper()
	cfg := config.DefaultConfig()
	base := time.Now().Unix() - int64(n)
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		output, err := Ingest(context.Background(), database, cfg, nil, IngestInput{
			RawText: fmt.Sprintf("queued capture %d", i),
		})
		if err != nil {
			t.Fatalf("Ingest %d failed: %v", i, err)
		}
		if _, err := database.Exec("UPDATE captures SET created_at = ? WHERE id = ?", base+int64(i), output.ID); err != nil {
			t.Fatalf("backdate capture %d: %v", i, err)
		}
		ids = append(ids, output.ID)
	}
	return ids
}

func TestQueue_NewestFirst(t *testing.T) {
	database := setupTestDB(t)
	ids := seedQueued(t, database, 3)

	output, err := Queue(context.Background(), database, QueueInput{})
	if err != nil {
		t.Fatalf("Queue failed: %v", err)
	}

	if len(output.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(output.Items))
	}
	for i, want := range []string{ids[2], ids[1], ids[0]} {
		if output.Items[i].ID != want {
			t.Errorf("items[%d].ID = %q, want %q", i, output.Items[i].ID, want)
		}
	}
}

func TestQueue_Pagination(t *testing.T) {
	database := setupTestDB(t)
	seedQueued(t, database, 5)

	page1, err := Queue(context.Background(), database, QueueInput{Limit: 2})
	if err != nil {
		t.Fatalf("Queue failed: %v", err)
	}
	if len(page1.Items) != 2 {
		t.Fatalf("page1 items = %d, want 2", len(page1.Items))
	}
	if !page1.Pagination.HasMore {
		t.Error("page1 HasMore = false, want true")
	}
	if page1.Pagination.Total != 5 {
		t.Errorf("Total = %d, want 5", page1.Pagination.Total)
	}

	page3, err := Queue(context.Background(), database, QueueInput{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("Queue failed: %v", err)
	}
	if len(page3.Items) != 1 {
		t.Fatalf("page3 items = %d, want 1", len(page3.Items))
	}
	if page3.Pagination.HasMore {
		t.Error("page3 HasMore = true, want false")
	}
}

func TestQueue_LimitClamped(t *testing.T) {
	database := setupTestDB(t)
	seedQueued(t, database, 1)

	output, err := Queue(context.Background(), database, QueueInput{Limit: 10000})
	if err != nil {
		t.Fatalf("Queue failed: %v", err)
	}
	if output.Pagination.Limit != MaxQueueLimit {
		t.Errorf("Limit = %d, want clamped to %d", output.Pagination.Limit, MaxQueueLimit)
	}

	output, err = Queue(context.Background(), database, QueueInput{Limit: -1, Offset: -5})
	if err != nil {
		t.Fatalf("Queue failed: %v", err)
	}
	if output.Pagination.Limit != DefaultQueueLimit {
		t.Errorf("Limit = %d, want default %d", output.Pagination.Limit, DefaultQueueLimit)
	}
	if output.Pagination.Offset != 0 {
		t.Errorf("Offset = %d, want 0", output.Pagination.Offset)
	}
}

func TestQueue_ExcludesResolved(t *testing.T) {
	database := setupTestDB(t)
	ids := seedQueued(t, database, 2)

	if _, err := Skip(context.Background(), database, SkipInput{ID: ids[0]}); err != nil {
		t.Fatalf("Skip failed: %v", err)
	}

	output, err := Queue(context.Background(), database, QueueInput{})
	if err != nil {
		t.Fatalf("Queue failed: %v", err)
	}
	if len(output.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(output.Items))
	}
	if output.Items[0].ID != ids[1] {
		t.Errorf("remaining item = %q, want %q", output.Items[0].ID, ids[1])
	}
}
