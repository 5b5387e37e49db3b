package capture

import "strings"

// Classification is the raw result from the classification collaborator.
// All fields except Type are optional; a missing confidence is treated as
// zero, which forces the capture into the review queue.
type Classification struct {
	Type             string   `json:"type"`
	SuggestedProject string   `json:"suggested_project,omitempty"`
	SuggestedDomain  string   `json:"suggested_domain,omitempty"`
	TaskName         string   `json:"task_name,omitempty"`
	Description      string   `json:"description,omitempty"`
	Priority         int      `json:"priority,omitempty"`
	Confidence       *float64 `json:"confidence,omitempty"`
	Response         string   `json:"response,omitempty"`
}

// Category parses the suggested type. Unknown types report false and the
// capture is treated as unclassified.
func (cl *Classification) Category() (Category, bool) {
	return ParseCategory(strings.TrimSpace(strings.ToLower(cl.Type)))
}

// ConfidenceOrZero returns the confidence, treating absence as 0.
func (cl *Classification) ConfidenceOrZero() float64 {
	if cl.Confidence == nil {
		return 0
	}
	return *cl.Confidence
}

// ToFields maps classifier suggestions onto materializer fields.
func (cl *Classification) ToFields() Fields {
	return Fields{
		Name:        strings.TrimSpace(cl.TaskName),
		Description: strings.TrimSpace(cl.Description),
		Priority:    cl.Priority,
		Project:     strings.TrimSpace(cl.SuggestedProject),
		Domain:      strings.TrimSpace(cl.SuggestedDomain),
	}
}

// Fields is the category-agnostic field payload handed to the
// materializer. Which fields matter depends on the category; CompleteFor
// reports whether the required ones are present.
type Fields struct {
	Name        string `json:"name,omitempty"`        // task/project/person name, content title
	Description string `json:"description,omitempty"` // task description, learning/health/question content
	Priority    int    `json:"priority,omitempty"`    // 1-5, tasks only
	Project     string `json:"project,omitempty"`     // parent project name for tasks
	Domain      string `json:"domain,omitempty"`      // grouping for projects
	URL         string `json:"url,omitempty"`         // content items
}

// CompleteFor reports whether the fields required to auto-file under the
// given category are present. Learning, health, and question captures fall
// back to the raw text as content, so they never block on fields.
func (f Fields) CompleteFor(cat Category) bool {
	switch cat {
	case CategoryTask, CategoryProject, CategoryPerson, CategoryContent:
		return f.Name != ""
	case CategoryLearning, CategoryHealth, CategoryQuestion:
		return true
	}
	return false
}

// ToMap flattens fields for error details, dropping zero values.
func (f Fields) ToMap() map[string]any {
	m := make(map[string]any)
	if f.Name != "" {
		m["name"] = f.Name
	}
	if f.Description != "" {
		m["description"] = f.Description
	}
	if f.Priority != 0 {
		m["priority"] = f.Priority
	}
	if f.Project != "" {
		m["project"] = f.Project
	}
	if f.Domain != "" {
		m["domain"] = f.Domain
	}
	if f.URL != "" {
		m["url"] = f.URL
	}
	return m
}
