package capture

// Category is the destination category assigned by classification or by a
// human correction. Each category maps to exactly one destination table;
// dispatch on Category is exhaustive in the materializer.
type Category string

const (
	CategoryTask     Category = "task"
	CategoryProject  Category = "project"
	CategoryPerson   Category = "person"
	CategoryLearning Category = "learning"
	CategoryHealth   Category = "health"
	CategoryContent  Category = "content"
	CategoryQuestion Category = "question"
)

// AllCategories lists every valid category in display order.
var AllCategories = []Category{
	CategoryTask,
	CategoryProject,
	CategoryPerson,
	CategoryLearning,
	CategoryHealth,
	CategoryContent,
	CategoryQuestion,
}

// ParseCategory validates a category string.
func ParseCategory(s string) (Category, bool) {
	for _, c := range AllCategories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Table returns the destination table for the category.
func (c Category) Table() string {
	switch c {
	case CategoryTask:
		return "tasks"
	case CategoryProject:
		return "projects"
	case CategoryPerson:
		return "people"
	case CategoryLearning:
		return "learnings"
	case CategoryHealth:
		return "health_logs"
	case CategoryContent:
		return "content_items"
	case CategoryQuestion:
		return "questions"
	}
	return ""
}

// Confidence bands. The review threshold decides routing; the bands below
// it exist only for display color-coding.
const (
	BandHigh   = "high"
	BandMedium = "medium"
	BandLow    = "low"

	// DefaultReviewThreshold is the inclusive auto-file cutoff.
	DefaultReviewThreshold = 0.8
	// MediumThreshold is the display-only boundary between medium and low.
	MediumThreshold = 0.6
)

// Band buckets a confidence score for display.
func Band(confidence float64) string {
	switch {
	case confidence >= DefaultReviewThreshold:
		return BandHigh
	case confidence >= MediumThreshold:
		return BandMedium
	default:
		return BandLow
	}
}
