package relevance

import (
	"reflect"
	"strings"
	"testing"

	"github.com/siftlabs/sift/internal/capture"
)

func strPtr(s string) *string { return &s }

func TestKeywords(t *testing.T) {
	task := capture.Task{
		Name:        "Plan launch event",
		Description: "venue and budget",
	}
	got := Keywords(task)
	want := []string{"plan", "launch", "event", "venue", "budget"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Keywords = %v, want %v", got, want)
	}
}

func TestKeywords_ShortTokensDropped(t *testing.T) {
	task := capture.Task{Name: "fix a big bug in DNS now"}
	for _, kw := range Keywords(task) {
		if len(kw) < MinKeywordLen {
			t.Errorf("keyword %q shorter than %d", kw, MinKeywordLen)
		}
	}
}

func TestKeywords_CapAndNoDedup(t *testing.T) {
	task := capture.Task{
		Name: strings.Repeat("alpha beta ", 10), // 20 qualifying tokens
	}
	got := Keywords(task)
	if len(got) != MaxKeywords {
		t.Fatalf("len = %d, want %d", len(got), MaxKeywords)
	}
	// No dedup: alternating tokens preserved in encounter order
	if got[0] != "alpha" || got[1] != "beta" || got[2] != "alpha" {
		t.Errorf("keywords = %v", got)
	}
}

func TestKeywords_Empty(t *testing.T) {
	if got := Keywords(capture.Task{}); len(got) != 0 {
		t.Errorf("empty task should yield no keywords, got %v", got)
	}
}

// TestRank_WorkedExample pins the documented scoring example: the matching
// note scores 10 (project) + 2 (venue) + 1 (note) = 13, the unrelated item
// scores 0 and is discarded.
func TestRank_WorkedExample(t *testing.T) {
	p := "P"
	q := "Q"
	task := capture.Task{
		ID:          "T1",
		Name:        "Plan launch event",
		Description: "venue and budget",
		ProjectID:   &p,
	}
	items := []capture.KnowledgeItem{
		{ID: "K1", Content: "Found a great venue downtown", ProjectID: &p, Type: "note"},
		{ID: "K2", Content: "Random grocery list", ProjectID: &q, Type: "idea"},
	}

	ranked := Rank(task, items, nil)
	if len(ranked) != 1 {
		t.Fatalf("len = %d, want 1", len(ranked))
	}
	if ranked[0].Item.ID != "K1" {
		t.Errorf("top item = %s, want K1", ranked[0].Item.ID)
	}
	if ranked[0].Score != 13 {
		t.Errorf("score = %d, want 13", ranked[0].Score)
	}
}

func TestScoreItem_URLCountsAsHaystack(t *testing.T) {
	task := capture.Task{Name: "research venue options"}
	item := capture.KnowledgeItem{
		ID:      "K1",
		Type:    "link",
		Content: "bookmarked",
		URL:     strPtr("https://example.com/venue-listings"),
	}
	keywords := Keywords(task)
	// "research"(no), "venue"(in url, +2), "options"(no)
	if got := ScoreItem(task, item, keywords); got != 2 {
		t.Errorf("score = %d, want 2", got)
	}
}

func TestRank_LinkedSortsFirst(t *testing.T) {
	task := capture.Task{ID: "T1", Name: "review budget planning"}
	items := []capture.KnowledgeItem{
		{ID: "high", Content: "budget planning review notes", Type: "note"},
		{ID: "low-linked", Content: "budget", Type: "idea"},
	}
	linked := map[string]bool{"low-linked": true}

	ranked := Rank(task, items, linked)
	if len(ranked) != 2 {
		t.Fatalf("len = %d, want 2", len(ranked))
	}
	if ranked[0].Item.ID != "low-linked" || !ranked[0].IsLinked {
		t.Errorf("linked item should sort first regardless of score: %+v", ranked)
	}
	if ranked[1].Item.ID != "high" || ranked[0].Score >= ranked[1].Score {
		t.Errorf("unlinked higher-score item should follow: %+v", ranked)
	}
}

func TestRank_StableTies(t *testing.T) {
	task := capture.Task{Name: "weekly meal prep plan"}
	items := []capture.KnowledgeItem{
		{ID: "first", Content: "meal ideas", Type: "idea"},
		{ID: "second", Content: "meal shopping", Type: "idea"},
	}

	ranked := Rank(task, items, nil)
	if len(ranked) != 2 || ranked[0].Item.ID != "first" || ranked[1].Item.ID != "second" {
		t.Errorf("equal scores must keep encounter order: %+v", ranked)
	}
}

func TestRank_Truncates(t *testing.T) {
	task := capture.Task{Name: "project kickoff"}
	var items []capture.KnowledgeItem
	for i := range 15 {
		items = append(items, capture.KnowledgeItem{
			ID:      string(rune('A' + i)),
			Content: "kickoff notes",
			Type:    "note",
		})
	}

	ranked := Rank(task, items, nil)
	if len(ranked) != MaxResults {
		t.Errorf("len = %d, want %d", len(ranked), MaxResults)
	}
}

func TestRank_Deterministic(t *testing.T) {
	p := "P"
	task := capture.Task{ID: "T1", Name: "plan offsite agenda", ProjectID: &p}
	items := []capture.KnowledgeItem{
		{ID: "A", Content: "offsite agenda draft", Type: "note", ProjectID: &p},
		{ID: "B", Content: "agenda ideas", Type: "idea"},
		{ID: "C", Content: "unrelated", Type: "note"},
	}
	linked := map[string]bool{"B": true}

	first := Rank(task, items, linked)
	for range 5 {
		again := Rank(task, items, linked)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("ranking not deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestRank_EmptyInput(t *testing.T) {
	if got := Rank(capture.Task{Name: "anything here"}, nil, nil); len(got) != 0 {
		t.Errorf("empty candidates must yield empty output, got %v", got)
	}
}

func TestRank_DoesNotMutateCandidates(t *testing.T) {
	task := capture.Task{Name: "review notes"}
	items := []capture.KnowledgeItem{
		{ID: "A", Content: "review notes", Type: "note"},
	}
	before := items[0]
	Rank(task, items, nil)
	if !reflect.DeepEqual(items[0], before) {
		t.Error("candidates must not be mutated")
	}
}
