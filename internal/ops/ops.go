// Package ops implements the capture pipeline operations: ingestion and
// triage, review-queue management, correction, discard, export, and
// knowledge relevance lookup. Each operation takes an Input struct and
// returns an Output struct, keeping the CLI, MCP, and web surfaces thin.
package ops

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/siftlabs/sift/internal/capture"
	"github.com/siftlabs/sift/internal/config"
	"github.com/siftlabs/sift/internal/errors"
)

// Pagination limits
const (
	DefaultQueueLimit = 20
	MaxQueueLimit     = 100
	MaxBatchSkipItems = 50
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// ValidateRawText checks capture text bounds before any store write.
// Rejection here means no partial capture row is ever created.
func ValidateRawText(rawText string, cfg *config.Config) error {
	if strings.TrimSpace(rawText) == "" {
		return errors.NewInvalidRequest("raw text is required")
	}

	maxChars := cfg.CaptureMaxChars
	if maxChars <= 0 {
		maxChars = config.DefaultConfig().CaptureMaxChars
	}
	if chars := capture.CountChars(rawText); chars > maxChars {
		return errors.NewInvalidRequest(fmt.Sprintf("raw text exceeds maximum length: %d chars (max %d)", chars, maxChars))
	}

	return nil
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// clampLimit applies default and maximum bounds to a requested page size.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
