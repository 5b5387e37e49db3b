// Package relevance ranks stored knowledge items against a task by simple
// lexical matching. Intentionally not semantic search: the scoring is a
// pure, deterministic function of its inputs so results are reproducible
// and testable.
package relevance

import (
	"sort"
	"strings"

	"github.com/siftlabs/sift/internal/capture"
)

// Scoring weights and limits.
const (
	ProjectMatchScore = 10 // item belongs to the task's project
	KeywordMatchScore = 2  // per keyword found in content+url
	NoteTypeScore     = 1  // notes rank slightly above other types

	MaxKeywords   = 10
	MinKeywordLen = 4 // tokens shorter than this carry no signal
	MaxResults    = 10
)

// Scored pairs a knowledge item with its relevance score and link status.
type Scored struct {
	Item     capture.KnowledgeItem `json:"item"`
	Score    int                   `json:"score"`
	IsLinked bool                  `json:"is_linked"`
}

// Keywords derives the keyword set from a task: lowercase the name and
// description, split on whitespace, keep tokens of length >= MinKeywordLen,
// and take the first MaxKeywords in encounter order. No dedup, no stemming.
func Keywords(task capture.Task) []string {
	text := strings.ToLower(task.Name + " " + task.Description)
	tokens := strings.Fields(text)

	keywords := make([]string, 0, MaxKeywords)
	for _, tok := range tokens {
		if len(tok) < MinKeywordLen {
			continue
		}
		keywords = append(keywords, tok)
		if len(keywords) == MaxKeywords {
			break
		}
	}
	return keywords
}

// ScoreItem computes the relevance of one knowledge item to a task.
func ScoreItem(task capture.Task, item capture.KnowledgeItem, keywords []string) int {
	score := 0

	// Project match only counts when both sides are actually assigned to a
	// project; two unassigned records share no context.
	if task.ProjectID != nil && item.ProjectID != nil && *task.ProjectID == *item.ProjectID {
		score += ProjectMatchScore
	}

	haystack := strings.ToLower(item.Content)
	if item.URL != nil {
		haystack += " " + strings.ToLower(*item.URL)
	} else {
		haystack += " "
	}
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			score += KeywordMatchScore
		}
	}

	if item.Type == "note" {
		score += NoteTypeScore
	}

	return score
}

// Rank scores the candidate items against the task and returns the ranked
// subset: zero-score items dropped, linked items before unlinked ones,
// score descending within each group, stable ties, at most MaxResults.
// Candidates are never mutated; empty input yields empty output.
func Rank(task capture.Task, items []capture.KnowledgeItem, linked map[string]bool) []Scored {
	keywords := Keywords(task)

	scored := make([]Scored, 0, len(items))
	for _, item := range items {
		s := ScoreItem(task, item, keywords)
		if s == 0 {
			continue
		}
		scored = append(scored, Scored{
			Item:     item,
			Score:    s,
			IsLinked: linked[item.ID],
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].IsLinked != scored[j].IsLinked {
			return scored[i].IsLinked
		}
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > MaxResults {
		scored = scored[:MaxResults]
	}
	return scored
}
