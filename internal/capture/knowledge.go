package capture

// KnowledgeItem is a stored knowledge record (note, link, transcript,
// idea). Immutable from this core's perspective; only read and optionally
// linked to tasks.
type KnowledgeItem struct {
	ID        string
	Type      string // "note", "link", "transcript", "idea", ...
	Content   string
	URL       *string
	ProjectID *string
	CreatedAt int64
}

// Task is the slim task view used by the relevance scorer and the
// knowledge search boundary.
type Task struct {
	ID          string
	Name        string
	Description string
	Priority    int
	ProjectID   *string
	CreatedAt   int64
}
