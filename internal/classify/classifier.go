// Package classify wraps the classification collaborator: an opaque
// function from raw capture text to a classification result. The triage
// router treats any failure here as recoverable and queues the capture
// unclassified.
package classify

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/siftlabs/sift/internal/capture"
	"github.com/siftlabs/sift/internal/config"
)

// Classifier is the boundary to the classification service.
type Classifier interface {
	// Name returns the provider name.
	Name() string

	// Classify maps raw capture text to a classification result.
	Classify(ctx context.Context, rawText string) (*capture.Classification, error)
}

// New creates a classifier from configuration.
// An empty provider returns (nil, nil): classification disabled, every
// capture is queued for review unclassified.
func New(cfg config.ClassifierConfig) (Classifier, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIClassifier(cfg, os.Getenv("OPENAI_API_KEY"))

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown classifier provider: %s (supported: openai)", cfg.Provider)
	}
}

// clampConfidence bounds a confidence value to [0, 1].
func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clampPriority bounds a priority value to [1, 5], leaving 0 (unset) alone.
func clampPriority(v int) int {
	if v == 0 {
		return 0
	}
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}
