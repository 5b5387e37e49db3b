package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/siftlabs/sift/internal/capture"
	"github.com/siftlabs/sift/internal/config"
	"github.com/siftlabs/sift/internal/db"
	"github.com/siftlabs/sift/internal/errors"
)

// exportHeader is the CSV header row, one column per audit field.
var exportHeader = []string{"timestamp", "raw_text", "category", "confidence", "status", "destination", "correction_note"}

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path string // optional, default: ~/.sift/exports/captures-<timestamp>.csv
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes every capture to a CSV file, oldest first. The export is
// the full audit trail: skipped and corrected captures appear alongside
// filed ones, and raw text is always the original submission.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()
	exportedAt := now.Unix()

	exportPath := input.Path
	if exportPath == "" {
		var err error
		exportPath, err = defaultExportPath(now)
		if err != nil {
			return nil, err
		}
	}

	// Validate ALL paths (both user-provided and default) for security.
	if err := ValidateExportPath(exportPath, cfg); err != nil {
		return nil, err
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	// Write to temp file first, then atomic rename to preserve existing file on failure
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	// Clean up temp file on failure (original file is preserved)
	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write(exportHeader); err != nil {
		return nil, errors.NewInternal(err)
	}

	rows, err := db.StreamCaptures(ctx, database)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, errors.NewCancelled("export")
		default:
		}

		c, err := db.ScanCaptureFromRows(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}

		if err := writer.Write(captureToCSVRow(c)); err != nil {
			return nil, errors.NewInternal(err)
		}

		count++
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}

	// Close before atomic replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// Check if destination is a symlink (os.Rename would follow it)
	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInternal(fmt.Errorf("export path is a symlink"))
	}

	// Finalize export by renaming temp file into place.
	//
	// Note: On Windows, os.Rename fails if the destination exists. We intentionally
	// fail safely (preserving the existing file) instead of doing a non-atomic
	// delete+rename that could lose the original if rename fails.
	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows yet (choose a new path or delete the existing file)")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return &ExportOutput{
		Path:       exportPath,
		Count:      count,
		ExportedAt: exportedAt,
	}, nil
}

// captureToCSVRow converts a capture to its export row. Nullable fields
// render as empty cells, confidence as a whole percentage.
func captureToCSVRow(c *capture.Capture) []string {
	category := ""
	if c.Category != nil {
		category = string(*c.Category)
	}

	confidence := ""
	if c.Confidence != nil {
		confidence = fmt.Sprintf("%.0f%%", *c.Confidence*100)
	}

	destination := ""
	if c.DestinationTable != nil {
		destination = *c.DestinationTable
	}

	note := ""
	if c.CorrectionNote != nil {
		note = *c.CorrectionNote
	}

	return []string{
		time.Unix(c.CreatedAt, 0).UTC().Format(time.RFC3339),
		c.RawText,
		category,
		confidence,
		string(c.Status()),
		destination,
		note,
	}
}

// defaultExportPath generates the default export path.
// Format: ~/.sift/exports/captures-<timestamp>.csv
func defaultExportPath(now time.Time) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("captures-%s.csv", now.Format("2006-01-02T150405"))
	return filepath.Join(dir, filename), nil
}
