package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ClassifierConfig holds classification collaborator settings.
// The API key is read from the OPENAI_API_KEY environment variable, never
// from the config file.
type ClassifierConfig struct {
	// Provider selects the classifier backend. "openai" or "" (disabled;
	// every capture is queued unclassified).
	Provider string `json:"provider,omitempty"`

	// Model is the provider-specific model name.
	Model string `json:"model,omitempty"`

	// BaseURL overrides the API endpoint (OpenAI-compatible servers).
	BaseURL string `json:"base_url,omitempty"`

	// TimeoutSeconds bounds each classification call. Default 15.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
}

// Config holds application configuration.
type Config struct {
	// ReviewThreshold is the inclusive confidence cutoff for auto-filing.
	// Captures classified at or above it are filed without review.
	ReviewThreshold float64 `json:"review_threshold"`

	// CaptureMaxChars is the maximum character count for raw capture text.
	CaptureMaxChars int `json:"capture_max_chars"`

	// Classifier configures the classification collaborator.
	Classifier ClassifierConfig `json:"classifier,omitempty"`

	// AllowedPaths is an allowlist of directories for export operations.
	// Paths outside ~/.sift/exports require either being in this list or
	// AllowUnsafePaths=true. Paths should be absolute.
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for export.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized.
	// 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of tool type prefixes to disable entirely.
	// Known types: "capture", "review", "knowledge".
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ReviewThreshold: 0.8,
		CaptureMaxChars: 5000,
		Classifier: ClassifierConfig{
			TimeoutSeconds: 15,
		},
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.sift.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and
// deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.ReviewThreshold = overlay.ReviewThreshold
	if result.ReviewThreshold == 0 {
		result.ReviewThreshold = base.ReviewThreshold
	}

	result.CaptureMaxChars = overlay.CaptureMaxChars
	if result.CaptureMaxChars == 0 {
		result.CaptureMaxChars = base.CaptureMaxChars
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.Classifier = mergeClassifier(base.Classifier, overlay.Classifier)

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	// Arrays: merge and deduplicate
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

// mergeClassifier overlays classifier settings scalar by scalar.
func mergeClassifier(base, overlay ClassifierConfig) ClassifierConfig {
	result := overlay
	if result.Provider == "" {
		result.Provider = base.Provider
	}
	if result.Model == "" {
		result.Model = base.Model
	}
	if result.BaseURL == "" {
		result.BaseURL = base.BaseURL
	}
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = base.TimeoutSeconds
	}
	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes
// duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
